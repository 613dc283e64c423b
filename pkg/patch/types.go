// Package patch implements the structural edit operations the backend sends to keep the
// mirrored state tree current. The operation set is the closed JSON-Patch (RFC 6902) set.
package patch

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/grovetools/sheetsync/errors"
)

// Version identifies the operation representation understood by this package.
// Envelopes carrying any other version are rejected.
const Version = 1

// Kind is one of the six JSON-Patch operation kinds.
type Kind string

const (
	KindAdd     Kind = "add"
	KindRemove  Kind = "remove"
	KindReplace Kind = "replace"
	KindMove    Kind = "move"
	KindCopy    Kind = "copy"
	KindTest    Kind = "test"
)

// Valid reports whether k belongs to the closed set of operation kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindAdd, KindRemove, KindReplace, KindMove, KindCopy, KindTest:
		return true
	}
	return false
}

// UnmarshalJSON rejects kinds outside the closed set.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.PatchInvalid("operation kind must be a string")
	}
	if !Kind(s).Valid() {
		return errors.PatchInvalid(fmt.Sprintf("unknown operation kind %q", s))
	}
	*k = Kind(s)
	return nil
}

// Operation is a single structural edit.
type Operation struct {
	Op    Kind   `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
	From  string `json:"from,omitempty"`
}

// MarshalJSON always emits value for the kinds that carry one, so a null value survives.
func (o Operation) MarshalJSON() ([]byte, error) {
	type wire struct {
		Op    Kind   `json:"op"`
		Path  string `json:"path"`
		Value *any   `json:"value,omitempty"`
		From  string `json:"from,omitempty"`
	}
	w := wire{Op: o.Op, Path: o.Path, From: o.From}
	switch o.Op {
	case KindAdd, KindReplace, KindTest:
		v := o.Value
		w.Value = &v
	}
	return json.Marshal(w)
}

// Patch is an ordered sequence of operations.
type Patch []Operation

// Envelope is the versioned wrapper a backend may send instead of a bare operation array.
type Envelope struct {
	Version    int   `json:"version"`
	Operations Patch `json:"operations"`
}

// Decode parses either a bare JSON-Patch array or a versioned Envelope.
// A JSON null decodes to an empty patch.
func Decode(data []byte) (Patch, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Patch{}, nil
	}

	if trimmed[0] == '{' {
		var env Envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, asInvalid(err)
		}
		if env.Version != Version {
			return nil, errors.PatchInvalid(fmt.Sprintf("unsupported version %d", env.Version)).
				WithDetail("version", env.Version)
		}
		return checkKinds(env.Operations)
	}

	var p Patch
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, asInvalid(err)
	}
	return checkKinds(p)
}

// checkKinds catches operations whose "op" member was missing entirely.
func checkKinds(p Patch) (Patch, error) {
	for i, op := range p {
		if op.Op == "" {
			return nil, errors.PatchInvalid(fmt.Sprintf("operation %d has no kind", i))
		}
	}
	return p, nil
}

func asInvalid(err error) error {
	if errors.GetCode(err) == errors.ErrCodePatchInvalid {
		return err
	}
	return errors.Wrap(err, errors.ErrCodePatchInvalid, "malformed patch payload")
}
