package backend

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/grovetools/sheetsync/config"
	"github.com/grovetools/sheetsync/errors"
	"github.com/grovetools/sheetsync/pkg/paths"
)

// New returns a Client for the configured transport. For the unix transport
// the socket must exist and accept a connection; otherwise the error carries
// BACKEND_UNAVAILABLE.
func New(ctx context.Context, cfg config.BackendConfig) (Client, error) {
	timeout := cfg.DialTimeoutDuration()

	switch cfg.Transport {
	case "", config.TransportUnix:
		socketPath := paths.SocketPath()
		if cfg.Socket != "" {
			expanded, err := paths.Expand(cfg.Socket)
			if err != nil {
				return nil, errors.BackendUnavailable(cfg.Socket, err)
			}
			socketPath = expanded
		}
		if _, err := os.Stat(socketPath); err != nil {
			return nil, errors.BackendUnavailable(socketPath, err)
		}
		conn, err := net.DialTimeout("unix", socketPath, timeout)
		if err != nil {
			return nil, errors.BackendUnavailable(socketPath, err)
		}
		conn.Close()
		return NewRemoteClient(socketPath, timeout), nil

	case config.TransportHTTP:
		return NewHTTPClient(cfg.URL, timeout), nil

	case config.TransportWebSocket:
		return DialWebSocket(ctx, cfg.URL, timeout)

	default:
		return nil, errors.ConfigInvalid(fmt.Sprintf("unknown backend transport '%s'", cfg.Transport))
	}
}
