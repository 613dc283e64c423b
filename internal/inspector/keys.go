package inspector

import (
	"sync"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/sheetsync/pkg/input"
)

// Keys handled by the inspector itself. Everything else goes to the dispatcher.
var (
	quitKey = key.NewBinding(
		key.WithKeys("ctrl+q"),
		key.WithHelp("ctrl+q", "quit"),
	)
	helpKey = key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	)
	scrollKeys = key.NewBinding(
		key.WithKeys("pgup", "pgdown"),
		key.WithHelp("pgup/pgdn", "scroll"),
	)
)

// keyBus is the inspector's key source. The dispatcher attaches to it and
// receives every key the inspector does not keep for itself.
type keyBus struct {
	mu        sync.Mutex
	next      int
	listeners map[int]func(input.KeyEvent, input.Focus)
}

func newKeyBus() *keyBus {
	return &keyBus{listeners: make(map[int]func(input.KeyEvent, input.Focus))}
}

// AddKeyListener implements input.KeySource.
func (b *keyBus) AddKeyListener(fn func(input.KeyEvent, input.Focus)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.listeners[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

func (b *keyBus) publish(ev input.KeyEvent, focus input.Focus) int {
	b.mu.Lock()
	fns := make([]func(input.KeyEvent, input.Focus), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev, focus)
	}
	return len(fns)
}

// fromKeyMsg converts a terminal key press. Keys the terminal reports in a
// form ParseKey does not know are ignored.
func fromKeyMsg(msg tea.KeyMsg) (input.KeyEvent, bool) {
	ev, err := input.ParseKey(msg.String())
	if err != nil {
		return input.KeyEvent{}, false
	}
	return ev, true
}

var _ input.KeySource = (*keyBus)(nil)
