// Package input turns key events into at most one gateway call each,
// applying the editor's focus, modifier and guard rules.
package input

import (
	"fmt"
	"strings"

	"github.com/grovetools/sheetsync/errors"
)

// KeyEvent is a physical key press with its modifier flags.
// Key is the lower-case key name: a character ("a", "=", "+") or a named key
// ("space", "delete", "up", "home", "f2", "enter", "esc").
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool
}

// Primary reports whether the primary modifier is held. Ctrl and Meta both
// count so the same bindings work on every platform.
func (e KeyEvent) Primary() bool {
	return e.Ctrl || e.Meta
}

// String renders the event as a chord such as "ctrl+shift+z". Meta is
// folded into ctrl.
func (e KeyEvent) String() string {
	var parts []string
	if e.Primary() {
		parts = append(parts, "ctrl")
	}
	if e.Alt {
		parts = append(parts, "alt")
	}
	if e.Shift {
		parts = append(parts, "shift")
	}
	return strings.Join(append(parts, e.Key), "+")
}

// withoutShift returns the chord with the shift flag cleared.
func (e KeyEvent) withoutShift() KeyEvent {
	e.Shift = false
	return e
}

var keyAliases = map[string]string{
	"escape":     "esc",
	"del":        "delete",
	"return":     "enter",
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
}

// ParseKey parses a chord like "ctrl+shift+s", "cmd+z" or "ctrl++".
// Modifier order does not matter.
func ParseKey(s string) (KeyEvent, error) {
	if s == " " {
		return KeyEvent{Key: "space"}, nil
	}
	raw := strings.ToLower(strings.TrimSpace(s))
	s = raw
	if s == "" {
		return KeyEvent{}, errors.New(errors.ErrCodeInvalidInput, "empty key")
	}

	var ev KeyEvent
	keyName := s
	if strings.HasSuffix(s, "++") {
		keyName = "+"
		s = strings.TrimSuffix(s, "++")
	} else if i := strings.LastIndex(s, "+"); i >= 0 && s != "+" {
		keyName = s[i+1:]
		s = s[:i]
	} else {
		s = ""
	}

	if s != "" {
		for _, mod := range strings.Split(s, "+") {
			switch mod {
			case "ctrl", "control":
				ev.Ctrl = true
			case "meta", "cmd", "super":
				ev.Meta = true
			case "alt", "option":
				ev.Alt = true
			case "shift":
				ev.Shift = true
			default:
				return KeyEvent{}, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown modifier %q in key %q", mod, raw)).
					WithDetail("modifier", mod)
			}
		}
	}

	if alias, ok := keyAliases[keyName]; ok {
		keyName = alias
	}
	if keyName == "" {
		return KeyEvent{}, errors.New(errors.ErrCodeInvalidInput, "key has modifiers but no key")
	}
	ev.Key = keyName
	return ev, nil
}

// Focus describes what kind of element has keyboard focus.
type Focus int

const (
	// FocusNone means no control has focus.
	FocusNone Focus = iota
	// FocusTextEntry is a text input; typing must reach it untouched.
	FocusTextEntry
	// FocusInteractive is a button or similar control that reacts to space and enter.
	FocusInteractive
)

func (f Focus) String() string {
	switch f {
	case FocusTextEntry:
		return "text_entry"
	case FocusInteractive:
		return "interactive"
	default:
		return "none"
	}
}
