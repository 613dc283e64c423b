// Package backend carries commands to the editor backend that owns document
// state, and carries its responses and pushed patches back.
package backend

import (
	"context"
	"encoding/json"

	"github.com/grovetools/sheetsync/pkg/patch"
)

// Client performs round-trips against the editor backend.
// RemoteClient (HTTP, optionally over a unix socket) and WebSocketClient implement it.
type Client interface {
	// Invoke sends one command and returns the raw response. The response is a
	// patch for every command except get_state, which answers with a full snapshot.
	// A failed round-trip returns a BACKEND_TRANSPORT or BACKEND_REJECTED error.
	Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error)

	// Stream subscribes to patches the backend pushes without a request. The
	// channel is closed when the context ends or the connection is lost.
	Stream(ctx context.Context) (<-chan patch.Patch, error)

	// IsRunning returns true if the backend is available and responding.
	IsRunning() bool

	// Close cleans up any resources used by the client.
	Close() error
}

// errorBody is the shape of a rejection returned by the backend.
type errorBody struct {
	Error string `json:"error"`
}

func emptyArgs(args json.RawMessage) json.RawMessage {
	if len(args) == 0 {
		return json.RawMessage(`{}`)
	}
	return args
}
