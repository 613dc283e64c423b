package backend

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/grovetools/sheetsync/config"
	"github.com/grovetools/sheetsync/errors"
	"github.com/grovetools/sheetsync/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMissingSocket(t *testing.T) {
	t.Setenv(paths.HomeEnv, t.TempDir())

	_, err := New(context.Background(), config.BackendConfig{Transport: config.TransportUnix})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeBackendUnavailable))

	_, err = New(context.Background(), config.BackendConfig{Socket: filepath.Join(t.TempDir(), "none.sock")})
	assert.True(t, errors.Is(err, errors.ErrCodeBackendUnavailable))
}

func TestNewHTTP(t *testing.T) {
	srv := httptest.NewServer(newBackendMux(t))
	defer srv.Close()

	c, err := New(context.Background(), config.BackendConfig{Transport: config.TransportHTTP, URL: srv.URL})
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.(*RemoteClient)
	assert.True(t, ok)
	assert.True(t, c.IsRunning())
}

func TestNewWebSocket(t *testing.T) {
	srv := wsBackend(t)
	defer srv.Close()

	c, err := New(context.Background(), config.BackendConfig{Transport: config.TransportWebSocket, URL: wsURL(srv)})
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.(*WebSocketClient)
	assert.True(t, ok)
}

func TestNewUnknownTransport(t *testing.T) {
	_, err := New(context.Background(), config.BackendConfig{Transport: "carrier-pigeon"})
	assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))
}
