// Package inspector is a terminal view of a running session. It renders the
// mirrored state through the derived views and feeds key presses to the
// session's dispatcher, so every edit still goes through the backend.
package inspector

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/sheetsync/pkg/input"
	"github.com/grovetools/sheetsync/pkg/state"
	"github.com/grovetools/sheetsync/tui/theme"
)

// StateSource is the part of the store the inspector reads.
type StateSource interface {
	Snapshot() *state.AppState
	Version() uint64
	Subscribe() chan state.Update
	Unsubscribe(ch chan state.Update)
}

// KeymapSource provides the bindings shown in the help view.
type KeymapSource interface {
	Keymap() input.Keymap
}

// PendingCounter reports calls issued but not yet applied.
type PendingCounter interface {
	Pending() int
}

type stateChangedMsg struct {
	update state.Update
}

type updatesClosedMsg struct{}

// Model is the bubbletea model of the inspector.
type Model struct {
	store   StateSource
	pending PendingCounter
	keys    KeymapSource
	theme   *theme.Theme

	bus     *keyBus
	updates chan state.Update

	viewport viewport.Model
	help     help.Model
	ready    bool
	showHelp bool
	width    int
	height   int

	lastKey    string
	lastUpdate state.UpdateKind
}

// New creates an inspector over store. Key presses are published to the
// source returned by KeySource.
func New(store StateSource, pending PendingCounter, keys KeymapSource) *Model {
	return &Model{
		store:   store,
		pending: pending,
		keys:    keys,
		theme:   theme.DefaultTheme,
		bus:     newKeyBus(),
		updates: store.Subscribe(),
		help:    help.New(),
	}
}

// KeySource is where the dispatcher attaches.
func (m *Model) KeySource() input.KeySource {
	return m.bus
}

// Close stops the store subscription.
func (m *Model) Close() {
	m.store.Unsubscribe(m.updates)
}

// Init starts listening for store updates.
func (m *Model) Init() tea.Cmd {
	return m.waitForUpdate()
}

func (m *Model) waitForUpdate() tea.Cmd {
	ch := m.updates
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return updatesClosedMsg{}
		}
		return stateChangedMsg{update: u}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		bodyHeight := m.bodyHeight()
		if !m.ready {
			m.viewport = viewport.New(msg.Width, bodyHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = bodyHeight
		}
		m.refresh()
		return m, nil

	case stateChangedMsg:
		m.lastUpdate = msg.update.Kind
		m.refresh()
		return m, m.waitForUpdate()

	case updatesClosedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, quitKey):
			return m, tea.Quit
		case key.Matches(msg, helpKey):
			m.showHelp = !m.showHelp
			if m.ready {
				m.viewport.Height = m.bodyHeight()
			}
			return m, nil
		case key.Matches(msg, scrollKeys):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		if ev, ok := fromKeyMsg(msg); ok {
			m.lastKey = ev.String()
			m.bus.publish(ev, input.FocusNone)
		}
		return m, nil
	}
	return m, nil
}

// View renders the inspector.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.theme.Header.Render("sheetsync inspector"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.help.FullHelpView(append([][]key.Binding{{quitKey, helpKey, scrollKeys}}, m.keys.Keymap().FullHelp()...)))
	}
	return b.String()
}

func (m *Model) statusLine() string {
	parts := []string{
		fmt.Sprintf("v%d", m.store.Version()),
		fmt.Sprintf("%d pending", m.pending.Pending()),
	}
	if m.lastUpdate != "" {
		parts = append(parts, "last "+string(m.lastUpdate))
	}
	if m.lastKey != "" {
		parts = append(parts, "key "+m.keyLabel())
	}
	parts = append(parts, helpKey.Help().Key+" help", quitKey.Help().Key+" quit")
	return m.theme.Muted.Render(strings.Join(parts, " • "))
}

func (m *Model) keyLabel() string {
	return m.theme.Code.Render(m.lastKey)
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderState(m.store.Snapshot(), m.theme))
}

func (m *Model) bodyHeight() int {
	// header with its margin, status line
	reserved := 3
	if m.showHelp {
		reserved += 12
	}
	if h := m.height - reserved; h > 1 {
		return h
	}
	return 1
}
