package state

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/grovetools/sheetsync/errors"
	"github.com/grovetools/sheetsync/pkg/patch"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
)

// UpdateKind tells subscribers how the mirror changed.
type UpdateKind string

const (
	UpdateReplaced UpdateKind = "replaced"
	UpdatePatched  UpdateKind = "patched"
)

// Update is broadcast to subscribers after every committed mutation.
type Update struct {
	Kind    UpdateKind
	Version uint64
	Patch   patch.Patch
}

// Store is the single mutable holder of the mirrored AppState.
// Reads are safe from any goroutine. Callers that mutate are expected to
// serialize themselves; the store does not order writers.
type Store struct {
	mu          sync.RWMutex
	tree        any
	snapshot    *AppState
	version     uint64
	subscribers map[chan Update]struct{}
	closed      bool

	logger      *logrus.Entry
	enforceTest bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for invariant warnings.
func WithLogger(logger *logrus.Entry) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithTestEnforcement makes "test" operations real assertions.
func WithTestEnforcement(enabled bool) Option {
	return func(s *Store) {
		s.enforceTest = enabled
	}
}

// New creates a store holding an empty AppState.
func New(opts ...Option) *Store {
	s := &Store{
		subscribers: make(map[chan Update]struct{}),
		logger:      logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}

	empty := &AppState{Documents: []Document{}, RecentDocumentPaths: []string{}}
	tree, err := encodeTree(empty)
	if err != nil {
		// AppState always encodes.
		panic(err)
	}
	s.tree = tree
	s.snapshot = empty
	return s
}

// Snapshot returns the current state. The returned value is never mutated by the
// store; later changes produce a new snapshot.
func (s *Store) Snapshot() *AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Version counts committed mutations.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Tree returns a deep copy of the raw JSON tree behind the current snapshot.
func (s *Store) Tree() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return patch.Clone(s.tree)
}

// Replace substitutes the whole state unconditionally.
func (s *Store) Replace(next *AppState) error {
	if next == nil {
		return errors.New(errors.ErrCodeInvalidInput, "cannot replace state with nil")
	}
	tree, err := encodeTree(next)
	if err != nil {
		return err
	}
	return s.commitReplace(tree)
}

// ReplaceJSON substitutes the whole state from a backend snapshot payload.
func (s *Store) ReplaceJSON(data []byte) error {
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return errors.Wrap(err, errors.ErrCodeStateDecode, "snapshot is not valid JSON")
	}
	if _, ok := tree.(map[string]any); !ok {
		return errors.New(errors.ErrCodeStateDecode, "snapshot must be a JSON object")
	}
	return s.commitReplace(tree)
}

func (s *Store) commitReplace(tree any) error {
	snapshot, err := decodeTree(tree)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.tree = tree
	s.snapshot = snapshot
	s.version++
	update := Update{Kind: UpdateReplaced, Version: s.version}
	s.broadcast(update)
	s.mu.Unlock()

	s.reportViolations(snapshot)
	return nil
}

// Apply runs p against the mirror. Either every operation lands or none does:
// operations run against a private copy that is committed only on success.
// An empty patch changes nothing and notifies nobody.
func (s *Store) Apply(p patch.Patch) error {
	if len(p) == 0 {
		return nil
	}

	s.mu.RLock()
	working := patch.Clone(s.tree)
	s.mu.RUnlock()

	next, err := patch.Apply(working, p, patch.WithTestEnforcement(s.enforceTest))
	if err != nil {
		return err
	}
	snapshot, err := decodeTree(next)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.tree = next
	s.snapshot = snapshot
	s.version++
	s.broadcast(Update{Kind: UpdatePatched, Version: s.version, Patch: p})
	s.mu.Unlock()

	s.reportViolations(snapshot)
	return nil
}

// Subscribe returns a buffered channel receiving every committed update.
// Slow subscribers miss updates rather than stalling the store.
func (s *Store) Subscribe() chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Update, 64)
	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch chan Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; !ok {
		return
	}
	delete(s.subscribers, ch)
	close(ch)
}

// Close closes every subscriber channel. The store stays readable.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = make(map[chan Update]struct{})
}

// broadcast must be called with s.mu held.
func (s *Store) broadcast(u Update) {
	for ch := range s.subscribers {
		select {
		case ch <- u:
		default:
		}
	}
}

func (s *Store) reportViolations(snapshot *AppState) {
	for _, v := range CheckInvariants(snapshot) {
		s.logger.WithFields(logrus.Fields{
			"rule": v.Rule,
			"path": v.Path,
		}).Warn(v.Message)
	}
}

func encodeTree(v *AppState) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStateDecode, "failed to encode state")
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStateDecode, "failed to encode state")
	}
	return tree, nil
}

func decodeTree(tree any) (*AppState, error) {
	out := &AppState{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     out,
		DecodeHook: rejectFractionalInts,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build state decoder")
	}
	if err := decoder.Decode(tree); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStateDecode, "state tree does not match the AppState shape")
	}
	return out, nil
}

// rejectFractionalInts stops mapstructure from truncating a JSON number with
// a fractional part into an integer field.
func rejectFractionalInts(from, to reflect.Kind, data any) (any, error) {
	if from != reflect.Float64 {
		return data, nil
	}
	switch to {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if f := data.(float64); f != math.Trunc(f) {
			return nil, fmt.Errorf("%v is not an integer", f)
		}
	}
	return data, nil
}
