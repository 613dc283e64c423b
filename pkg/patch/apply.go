package patch

import (
	"fmt"

	"github.com/grovetools/sheetsync/errors"
)

type applyConfig struct {
	enforceTest bool
}

// Option configures Apply.
type Option func(*applyConfig)

// WithTestEnforcement turns the "test" operation into a real assertion. It is off by
// default: the backend is trusted and test operations are skipped. A failed test is
// reported exactly like an unresolved path.
func WithTestEnforcement(enabled bool) Option {
	return func(c *applyConfig) {
		c.enforceTest = enabled
	}
}

// Apply runs every operation of p against doc, strictly in order, mutating doc in place.
// The returned value is the new root, which differs from doc only when an operation
// replaced the root itself. Apply stops at the first failing operation; operations before
// it have already been applied, so callers wanting all-or-nothing must pass a Clone.
func Apply(doc any, p Patch, opts ...Option) (any, error) {
	cfg := applyConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	for i, op := range p {
		next, err := applyOne(doc, op, cfg)
		if err != nil {
			if r, ok := err.(resolutionError); ok {
				return doc, errors.PatchResolution(i, string(op.Op), r.path, r.reason)
			}
			return doc, err
		}
		doc = next
	}
	return doc, nil
}

// resolutionError is annotated with the operation index by Apply.
type resolutionError struct {
	path   string
	reason string
}

func (e resolutionError) Error() string {
	return fmt.Sprintf("%s: %s", e.path, e.reason)
}

func unresolved(p Pointer, format string, args ...any) error {
	return resolutionError{path: p.String(), reason: fmt.Sprintf(format, args...)}
}

func applyOne(doc any, op Operation, cfg applyConfig) (any, error) {
	path, err := ParsePointer(op.Path)
	if err != nil {
		return doc, err
	}

	switch op.Op {
	case KindAdd:
		value, err := Normalize(op.Value)
		if err != nil {
			return doc, err
		}
		return add(doc, path, value)

	case KindRemove:
		if path.IsRoot() {
			return doc, unresolved(path, "cannot remove the document root")
		}
		next, _, err := remove(doc, path)
		return next, err

	case KindReplace:
		value, err := Normalize(op.Value)
		if err != nil {
			return doc, err
		}
		if path.IsRoot() {
			return value, nil
		}
		return edit(doc, path, path.tokens, func(container any, token string) (any, error) {
			return replaceIn(container, token, value, path)
		})

	case KindMove:
		from, err := ParsePointer(op.From)
		if err != nil {
			return doc, err
		}
		if path.HasPrefix(from) {
			return doc, unresolved(path, "cannot move a value into one of its own children")
		}
		if from.Equal(path) {
			if _, err := get(doc, from); err != nil {
				return doc, err
			}
			return doc, nil
		}
		if from.IsRoot() {
			return doc, unresolved(from, "cannot move the document root")
		}
		next, value, err := remove(doc, from)
		if err != nil {
			return doc, err
		}
		return add(next, path, value)

	case KindCopy:
		from, err := ParsePointer(op.From)
		if err != nil {
			return doc, err
		}
		value, err := get(doc, from)
		if err != nil {
			return doc, err
		}
		return add(doc, path, Clone(value))

	case KindTest:
		if !cfg.enforceTest {
			return doc, nil
		}
		actual, err := get(doc, path)
		if err != nil {
			return doc, err
		}
		if !Equal(actual, op.Value) {
			return doc, unresolved(path, "test failed: value differs")
		}
		return doc, nil
	}

	return doc, errors.PatchInvalid(fmt.Sprintf("unknown operation kind %q", op.Op))
}

func add(doc any, path Pointer, value any) (any, error) {
	if path.IsRoot() {
		return value, nil
	}
	return edit(doc, path, path.tokens, func(container any, token string) (any, error) {
		return addTo(container, token, value, path)
	})
}

func remove(doc any, path Pointer) (any, any, error) {
	var removed any
	next, err := edit(doc, path, path.tokens, func(container any, token string) (any, error) {
		c, v, err := removeFrom(container, token, path)
		removed = v
		return c, err
	})
	return next, removed, err
}

// edit walks to the parent of the last token and lets f rewrite that container.
// Containers returned by f are stored back into their own parents so that slices
// that grew or shrank stay attached to the tree.
func edit(node any, path Pointer, tokens []string, f func(container any, token string) (any, error)) (any, error) {
	if len(tokens) == 1 {
		return f(node, tokens[0])
	}
	next, err := child(node, tokens[0], path)
	if err != nil {
		return node, err
	}
	updated, err := edit(next, path, tokens[1:], f)
	if err != nil {
		return node, err
	}
	return setChild(node, tokens[0], updated, path)
}

func get(doc any, path Pointer) (any, error) {
	node := doc
	for _, token := range path.tokens {
		next, err := child(node, token, path)
		if err != nil {
			return nil, err
		}
		node = next
	}
	return node, nil
}

func child(node any, token string, path Pointer) (any, error) {
	switch c := node.(type) {
	case map[string]any:
		v, ok := c[token]
		if !ok {
			return nil, unresolved(path, "member %q does not exist", token)
		}
		return v, nil
	case []any:
		i, ok := arrayIndex(token)
		if !ok || i >= len(c) {
			return nil, unresolved(path, "index %q is out of range (length %d)", token, len(c))
		}
		return c[i], nil
	default:
		return nil, unresolved(path, "segment %q is not inside a container", token)
	}
}

func setChild(node any, token string, value any, path Pointer) (any, error) {
	switch c := node.(type) {
	case map[string]any:
		c[token] = value
		return c, nil
	case []any:
		i, ok := arrayIndex(token)
		if !ok || i >= len(c) {
			return node, unresolved(path, "index %q is out of range (length %d)", token, len(c))
		}
		c[i] = value
		return c, nil
	}
	return node, unresolved(path, "segment %q is not inside a container", token)
}

func addTo(container any, token string, value any, path Pointer) (any, error) {
	switch c := container.(type) {
	case map[string]any:
		c[token] = value
		return c, nil
	case []any:
		if token == "-" {
			return append(c, value), nil
		}
		i, ok := arrayIndex(token)
		if !ok || i > len(c) {
			return container, unresolved(path, "insert index %q is out of range (length %d)", token, len(c))
		}
		c = append(c, nil)
		copy(c[i+1:], c[i:])
		c[i] = value
		return c, nil
	}
	return container, unresolved(path, "parent is not a container")
}

func replaceIn(container any, token string, value any, path Pointer) (any, error) {
	switch c := container.(type) {
	case map[string]any:
		if _, ok := c[token]; !ok {
			return container, unresolved(path, "member %q does not exist", token)
		}
		c[token] = value
		return c, nil
	case []any:
		i, ok := arrayIndex(token)
		if !ok || i >= len(c) {
			return container, unresolved(path, "index %q is out of range (length %d)", token, len(c))
		}
		c[i] = value
		return c, nil
	}
	return container, unresolved(path, "parent is not a container")
}

func removeFrom(container any, token string, path Pointer) (any, any, error) {
	switch c := container.(type) {
	case map[string]any:
		v, ok := c[token]
		if !ok {
			return container, nil, unresolved(path, "member %q does not exist", token)
		}
		delete(c, token)
		return c, v, nil
	case []any:
		i, ok := arrayIndex(token)
		if !ok || i >= len(c) {
			return container, nil, unresolved(path, "index %q is out of range (length %d)", token, len(c))
		}
		v := c[i]
		return append(c[:i], c[i+1:]...), v, nil
	}
	return container, nil, unresolved(path, "parent is not a container")
}
