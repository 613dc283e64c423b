package gateway

import (
	"context"
	"encoding/json"

	"github.com/grovetools/sheetsync/command"
	"github.com/grovetools/sheetsync/pkg/patch"
)

// Call is the handle for one issued command or pushed patch.
type Call struct {
	// Seq is the issuance sequence number; results apply in Seq order.
	Seq uint64
	// ID correlates the call across logs.
	ID string
	// Command is empty for pushed patches.
	Command command.Command

	done chan struct{}
	err  error
}

func newCall(seq uint64, id string, cmd command.Command) *Call {
	return &Call{Seq: seq, ID: id, Command: cmd, done: make(chan struct{})}
}

// Done is closed once the call's result has been applied, or once it has
// been settled without applying anything.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Err returns the call's error once Done is closed.
func (c *Call) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until the call settles or ctx ends. Ending ctx only stops the
// wait; the round-trip and its application still happen.
func (c *Call) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Call) settle(err error) {
	c.err = err
	close(c.done)
}

type resultKind int

const (
	resultPatch resultKind = iota
	resultSnapshot
	resultPush
	resultFailure
	resultInvalid
)

func (k resultKind) String() string {
	switch k {
	case resultPatch:
		return "patch"
	case resultSnapshot:
		return "snapshot"
	case resultPush:
		return "push"
	case resultFailure:
		return "error"
	default:
		return "invalid"
	}
}

// result is a completed round-trip parked until its turn to apply.
type result struct {
	call  *Call
	kind  resultKind
	raw   json.RawMessage
	patch patch.Patch
	err   error
}
