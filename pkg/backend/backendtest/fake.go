// Package backendtest provides an in-memory backend.Client whose responses
// are released by the test, so completion order can be forced.
package backendtest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/grovetools/sheetsync/errors"
	"github.com/grovetools/sheetsync/pkg/backend"
	"github.com/grovetools/sheetsync/pkg/patch"
)

// Handler answers a command immediately.
type Handler func(args json.RawMessage) (json.RawMessage, error)

// Request is a held round-trip waiting for the test to answer it.
type Request struct {
	Name string
	Args json.RawMessage

	reply chan result
	once  sync.Once
}

type result struct {
	raw json.RawMessage
	err error
}

// Respond completes the round-trip with a raw response.
func (r *Request) Respond(raw json.RawMessage) {
	r.once.Do(func() { r.reply <- result{raw: raw} })
}

// RespondPatch completes the round-trip with a patch.
func (r *Request) RespondPatch(p patch.Patch) {
	raw, err := json.Marshal(p)
	if err != nil {
		r.Fail(err)
		return
	}
	r.Respond(raw)
}

// Fail completes the round-trip with a transport failure.
func (r *Request) Fail(err error) {
	r.once.Do(func() { r.reply <- result{err: errors.TransportFailed(r.Name, err)} })
}

// Reject completes the round-trip with a backend rejection.
func (r *Request) Reject(reason string) {
	r.once.Do(func() { r.reply <- result{err: errors.BackendRejected(r.Name, reason)} })
}

// Fake implements backend.Client in memory. Commands with a handler are
// answered at once; every other command is held until the test answers it.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []string
	running  bool
	stream   chan patch.Patch
	streamed bool
	dropped  int

	held chan *Request
}

// NewFake returns a running fake with no handlers.
func NewFake() *Fake {
	return &Fake{
		handlers: make(map[string]Handler),
		running:  true,
		held:     make(chan *Request, 256),
		stream:   make(chan patch.Patch, 64),
	}
}

// Handle registers an immediate answer for a command.
func (f *Fake) Handle(name string, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[name] = h
}

// HandlePatch answers a command with the same patch every time.
func (f *Fake) HandlePatch(name string, p patch.Patch) {
	raw, _ := json.Marshal(p)
	f.Handle(name, func(json.RawMessage) (json.RawMessage, error) { return raw, nil })
}

// HandleState answers get_state with the given snapshot.
func (f *Fake) HandleState(snapshot any) {
	raw, _ := json.Marshal(snapshot)
	f.Handle("get_state", func(json.RawMessage) (json.RawMessage, error) { return raw, nil })
}

// Held delivers held requests in issuance order.
func (f *Fake) Held() <-chan *Request {
	return f.held
}

// Next returns the next held request, or nil if ctx ends first.
func (f *Fake) Next(ctx context.Context) *Request {
	select {
	case r := <-f.held:
		return r
	case <-ctx.Done():
		return nil
	}
}

// Calls returns the names of every command invoked so far.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Push sends a patch on the stream returned by Stream. Like the real
// transports, a push made before Stream was called is lost.
func (f *Fake) Push(p patch.Patch) {
	f.mu.Lock()
	if !f.streamed {
		f.dropped++
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	f.stream <- p
}

// Dropped counts pushes made before a stream was open.
func (f *Fake) Dropped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}

// SetRunning controls IsRunning.
func (f *Fake) SetRunning(running bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = running
}

// Invoke answers from a handler or holds the request until the test answers it.
func (f *Fake) Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	h, ok := f.handlers[name]
	f.mu.Unlock()

	if ok {
		return h(args)
	}

	req := &Request{Name: name, Args: args, reply: make(chan result, 1)}
	f.held <- req

	select {
	case res := <-req.reply:
		return res.raw, res.err
	case <-ctx.Done():
		return nil, errors.TransportFailed(name, ctx.Err())
	}
}

// Stream returns the channel fed by Push.
func (f *Fake) Stream(ctx context.Context) (<-chan patch.Patch, error) {
	f.mu.Lock()
	f.streamed = true
	f.mu.Unlock()
	return f.stream, nil
}

// IsRunning reports the value set by SetRunning.
func (f *Fake) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// Close marks the fake as stopped.
func (f *Fake) Close() error {
	f.SetRunning(false)
	return nil
}

var _ backend.Client = (*Fake)(nil)
