package patch

import (
	"encoding/json"
	"reflect"

	"github.com/grovetools/sheetsync/errors"
)

// Clone deep-copies a JSON tree made of maps, slices and scalars.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = Clone(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = Clone(child)
		}
		return out
	default:
		return v
	}
}

// Normalize converts an arbitrary Go value into its JSON tree form
// (map[string]any, []any, string, float64, bool or nil).
func Normalize(v any) (any, error) {
	if isTree(v) {
		return Clone(v), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePatchInvalid, "value is not JSON-encodable")
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePatchInvalid, "value is not JSON-encodable")
	}
	return out, nil
}

func isTree(v any) bool {
	switch t := v.(type) {
	case nil, string, float64, bool:
		return true
	case map[string]any:
		for _, child := range t {
			if !isTree(child) {
				return false
			}
		}
		return true
	case []any:
		for _, child := range t {
			if !isTree(child) {
				return false
			}
		}
		return true
	}
	return false
}

// Equal compares two JSON trees structurally.
func Equal(a, b any) bool {
	na, err := Normalize(a)
	if err != nil {
		return false
	}
	nb, err := Normalize(b)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(na, nb)
}
