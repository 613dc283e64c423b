package patch

import (
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"github.com/grovetools/sheetsync/errors"
)

// Pointer is a parsed RFC 6901 JSON pointer. The zero value addresses the document root.
type Pointer struct {
	tokens []string
}

// ParsePointer decodes a pointer string such as "/documents/0/sheet/animations/Walk".
func ParsePointer(s string) (Pointer, error) {
	p, err := jsonpointer.New(s)
	if err != nil {
		return Pointer{}, errors.Wrap(err, errors.ErrCodePatchInvalid, "malformed pointer").
			WithDetail("pointer", s)
	}
	return Pointer{tokens: p.DecodedTokens()}, nil
}

// MustPointer builds a pointer from already-decoded tokens.
func MustPointer(tokens ...string) Pointer {
	return Pointer{tokens: append([]string(nil), tokens...)}
}

// Tokens returns the decoded reference tokens.
func (p Pointer) Tokens() []string {
	return p.tokens
}

// IsRoot reports whether the pointer addresses the whole document.
func (p Pointer) IsRoot() bool {
	return len(p.tokens) == 0
}

// Parent returns the pointer to the containing value.
func (p Pointer) Parent() Pointer {
	if p.IsRoot() {
		return p
	}
	return Pointer{tokens: p.tokens[:len(p.tokens)-1]}
}

// Last returns the final reference token.
func (p Pointer) Last() string {
	if p.IsRoot() {
		return ""
	}
	return p.tokens[len(p.tokens)-1]
}

// HasPrefix reports whether q is a proper ancestor of p.
func (p Pointer) HasPrefix(q Pointer) bool {
	if len(q.tokens) >= len(p.tokens) {
		return false
	}
	for i, t := range q.tokens {
		if p.tokens[i] != t {
			return false
		}
	}
	return true
}

// Equal reports whether both pointers address the same location.
func (p Pointer) Equal(q Pointer) bool {
	if len(p.tokens) != len(q.tokens) {
		return false
	}
	for i := range p.tokens {
		if p.tokens[i] != q.tokens[i] {
			return false
		}
	}
	return true
}

// String re-encodes the pointer.
func (p Pointer) String() string {
	if p.IsRoot() {
		return ""
	}
	var b strings.Builder
	for _, t := range p.tokens {
		b.WriteByte('/')
		b.WriteString(jsonpointer.Escape(t))
	}
	return b.String()
}

// arrayIndex parses an array reference token. Leading zeros and signs are not allowed.
func arrayIndex(token string) (int, bool) {
	if token == "" || (len(token) > 1 && token[0] == '0') {
		return 0, false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return i, true
}
