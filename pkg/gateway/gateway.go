// Package gateway is the only path from user intent to the backend and back
// into the state store. Every command is one round-trip whose result is
// applied exactly once, in the order the commands were issued.
package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grovetools/sheetsync/command"
	"github.com/grovetools/sheetsync/errors"
	"github.com/grovetools/sheetsync/pkg/backend"
	"github.com/grovetools/sheetsync/pkg/patch"
	"github.com/grovetools/sheetsync/pkg/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// DefaultStallWarning is how long a call may stay unanswered before the
// gateway logs that later results are parked behind it.
const DefaultStallWarning = 5 * time.Second

// Gateway issues commands and serializes the application of their results.
type Gateway struct {
	store   *state.Store
	client  backend.Client
	logger  *logrus.Entry
	metrics *Metrics
	stall   time.Duration

	mu        sync.Mutex
	nextSeq   uint64
	nextApply uint64
	parked    map[uint64]result
	advanced  chan struct{}
	// adopted is set once a snapshot has been applied. Pushes sequenced
	// before that are already part of the snapshot.
	adopted bool
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the gateway logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithRegistry registers the gateway metrics with reg.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(g *Gateway) {
		g.metrics = NewMetrics(reg)
	}
}

// WithStallWarning sets the delay after which an unanswered call is logged.
// Zero disables the warning.
func WithStallWarning(d time.Duration) Option {
	return func(g *Gateway) {
		g.stall = d
	}
}

// New creates a gateway applying results to store.
func New(store *state.Store, client backend.Client, opts ...Option) *Gateway {
	g := &Gateway{
		store:    store,
		client:   client,
		logger:   logrus.NewEntry(logrus.StandardLogger()),
		stall:    DefaultStallWarning,
		parked:   make(map[uint64]result),
		advanced: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.metrics == nil {
		g.metrics = NewMetrics(nil)
	}
	return g
}

// Invoke issues cmd and returns at once. The round-trip runs in the
// background and is not cancelled by ctx; its result is applied after the
// results of every earlier call.
func (g *Gateway) Invoke(ctx context.Context, cmd command.Command) *Call {
	call := g.issue(cmd)
	g.metrics.Issued.WithLabelValues(cmd.Name).Inc()

	log := g.logger.WithFields(logrus.Fields{"seq": call.Seq, "id": call.ID, "command": cmd.Name})

	if err := command.Validate(cmd); err != nil {
		log.WithError(err).Warn("Refusing to send invalid command")
		g.complete(result{call: call, kind: resultInvalid, err: err})
		return call
	}
	payload, err := cmd.Payload()
	if err != nil {
		g.complete(result{call: call, kind: resultInvalid, err: err})
		return call
	}

	log.Debug("Invoking backend command")
	go g.roundTrip(context.WithoutCancel(ctx), call, payload, log)
	return call
}

// Bootstrap fetches the backend's full state and replaces the mirror with it.
// It waits for every earlier call to apply first.
func (g *Gateway) Bootstrap(ctx context.Context) error {
	return g.Invoke(ctx, command.GetState()).Wait(ctx)
}

// Follow feeds backend-pushed patches into the same ordered queue. Each patch
// is sequenced on arrival. Follow returns when ch closes or ctx ends.
func (g *Gateway) Follow(ctx context.Context, ch <-chan patch.Patch) {
	for {
		select {
		case p, ok := <-ch:
			if !ok {
				return
			}
			call := g.issue(command.Command{})
			g.complete(result{call: call, kind: resultPush, patch: p})
		case <-ctx.Done():
			return
		}
	}
}

// Drain waits until every call issued before Drain has been settled.
func (g *Gateway) Drain(ctx context.Context) error {
	g.mu.Lock()
	target := g.nextSeq
	g.mu.Unlock()

	for {
		g.mu.Lock()
		if g.nextApply >= target {
			g.mu.Unlock()
			return nil
		}
		advanced := g.advanced
		g.mu.Unlock()

		select {
		case <-advanced:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Pending returns the number of issued calls not yet settled.
func (g *Gateway) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return int(g.nextSeq - g.nextApply)
}

func (g *Gateway) issue(cmd command.Command) *Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	call := newCall(g.nextSeq, uuid.NewString(), cmd)
	g.nextSeq++
	g.metrics.InFlight.Inc()
	return call
}

func (g *Gateway) roundTrip(ctx context.Context, call *Call, payload []byte, log *logrus.Entry) {
	if g.stall > 0 {
		timer := time.AfterFunc(g.stall, func() {
			log.WithField("after", g.stall).Warn("Backend has not answered; later results stay parked until it does")
		})
		defer timer.Stop()
	}

	start := time.Now()
	raw, err := g.client.Invoke(ctx, call.Command.Name, payload)
	g.metrics.RoundTrip.WithLabelValues(call.Command.Name).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		g.complete(result{call: call, kind: resultFailure, err: err})
	case call.Command.Name == command.NameGetState:
		g.complete(result{call: call, kind: resultSnapshot, raw: raw})
	default:
		g.complete(result{call: call, kind: resultPatch, raw: raw})
	}
}

// complete parks res and applies every result that is now next in line.
// Application happens under the gateway mutex, so at most one result is
// being applied at any time.
func (g *Gateway) complete(res result) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.parked[res.call.Seq] = res
	progressed := false
	for {
		next, ok := g.parked[g.nextApply]
		if !ok {
			break
		}
		delete(g.parked, g.nextApply)
		next.call.settle(g.apply(next))
		g.nextApply++
		g.metrics.InFlight.Dec()
		progressed = true
	}

	if progressed {
		close(g.advanced)
		g.advanced = make(chan struct{})
	}
}

func (g *Gateway) apply(res result) error {
	name := res.call.Command.Name
	log := g.logger.WithFields(logrus.Fields{"seq": res.call.Seq, "id": res.call.ID})
	if name != "" {
		log = log.WithField("command", name)
	}

	var err error
	switch res.kind {
	case resultInvalid:
		g.fail(name, res.err)
		return res.err

	case resultSnapshot:
		if err = g.store.ReplaceJSON(res.raw); err == nil {
			g.adopted = true
		}

	case resultPatch:
		var p patch.Patch
		if p, err = patch.Decode(res.raw); err == nil {
			err = g.store.Apply(p)
		}

	case resultPush:
		if !g.adopted {
			log.Debug("Skipping push sequenced before the first snapshot")
			return nil
		}
		err = g.store.Apply(res.patch)

	case resultFailure:
		code := errors.GetCode(res.err)
		log.WithError(res.err).WithField("code", code).Warn("Backend round-trip failed; nothing applied")
		g.fail(name, res.err)
		if slotErr := g.store.Apply(errorSlotPatch(name, res.err)); slotErr != nil {
			log.WithError(slotErr).Error("Failed to record error for display")
		}
		g.metrics.Applied.WithLabelValues(res.kind.String()).Inc()
		return res.err
	}

	if err != nil {
		code := errors.GetCode(err)
		// Resolution failures mean the mirror and the backend disagree on the tree's shape.
		log.WithError(err).WithField("code", code).Error("Failed to apply backend result")
		g.fail(name, err)
		return err
	}

	g.metrics.Applied.WithLabelValues(res.kind.String()).Inc()
	log.WithField("kind", res.kind.String()).Debug("Applied backend result")
	return nil
}

func (g *Gateway) fail(name string, err error) {
	if name == "" {
		name = "push"
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	g.metrics.Failed.WithLabelValues(name, string(code)).Inc()
}

// errorSlotPatch sets the single user-facing error. A later failure overwrites it.
func errorSlotPatch(name string, err error) patch.Patch {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeBackendTransport
	}
	return patch.Patch{{
		Op:   patch.KindAdd,
		Path: "/error",
		Value: state.UserFacingError{
			Key:     string(code),
			Title:   "Command failed",
			Summary: fmt.Sprintf("The editor could not complete %s.", name),
			Details: err.Error(),
		},
	}}
}
