package input

import (
	"github.com/charmbracelet/bubbles/key"
)

// Keymap holds the editor's key bindings. Field names map to snake_case
// keys in the keybindings.editor config section (SaveAs -> save_as).
//
// Bindings in the shiftable group are matched with shift stripped; holding
// shift then picks the secondary behaviour (timeline instead of workbench,
// large nudge, extend selection).
type Keymap struct {
	// TextEntry lists the keys still dispatched while a text input has focus.
	TextEntry key.Binding

	// Primary modifier, exact match.
	NewDocument   key.Binding
	OpenDocuments key.Binding
	Save          key.Binding
	SaveAs        key.Binding
	SaveAll       key.Binding
	Export        key.Binding
	ExportAs      key.Binding
	CloseCurrent  key.Binding
	CloseAll      key.Binding
	Undo          key.Binding
	Redo          key.Binding
	Cut           key.Binding
	Copy          key.Binding
	Paste         key.Binding
	SelectAll     key.Binding

	// Primary modifier, shiftable.
	CenterView key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	ResetZoom  key.Binding
	NudgeUp    key.Binding
	NudgeDown  key.Binding
	NudgeLeft  key.Binding
	NudgeRight key.Binding

	// No modifier.
	PlayPause     key.Binding
	Delete        key.Binding
	Rename        key.Binding
	Confirm       key.Binding
	Cancel        key.Binding
	BrowseUp      key.Binding
	BrowseDown    key.Binding
	BrowseLeft    key.Binding
	BrowseRight   key.Binding
	BrowseToStart key.Binding
	BrowseToEnd   key.Binding
}

// DefaultKeymap returns the built-in bindings.
func DefaultKeymap() Keymap {
	return Keymap{
		TextEntry: key.NewBinding(
			key.WithKeys("esc", "ctrl+s", "ctrl+shift+s", "ctrl+alt+s"),
			key.WithHelp("esc/ctrl+s", "keys active while typing"),
		),

		NewDocument: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new document"),
		),
		OpenDocuments: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "open documents"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		SaveAs: key.NewBinding(
			key.WithKeys("ctrl+shift+s"),
			key.WithHelp("ctrl+shift+s", "save as"),
		),
		SaveAll: key.NewBinding(
			key.WithKeys("ctrl+alt+s"),
			key.WithHelp("ctrl+alt+s", "save all"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "export"),
		),
		ExportAs: key.NewBinding(
			key.WithKeys("ctrl+shift+e"),
			key.WithHelp("ctrl+shift+e", "export as"),
		),
		CloseCurrent: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "close document"),
		),
		CloseAll: key.NewBinding(
			key.WithKeys("ctrl+shift+w"),
			key.WithHelp("ctrl+shift+w", "close all documents"),
		),
		Undo: key.NewBinding(
			key.WithKeys("ctrl+z"),
			key.WithHelp("ctrl+z", "undo"),
		),
		Redo: key.NewBinding(
			key.WithKeys("ctrl+shift+z", "ctrl+y"),
			key.WithHelp("ctrl+shift+z", "redo"),
		),
		Cut: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "cut"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "copy"),
		),
		Paste: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("ctrl+v", "paste"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "select all"),
		),

		CenterView: key.NewBinding(
			key.WithKeys("ctrl+space"),
			key.WithHelp("ctrl+space", "center workbench"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("ctrl+=", "ctrl++"),
			key.WithHelp("ctrl+=", "zoom in (shift: timeline)"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("ctrl+-"),
			key.WithHelp("ctrl+-", "zoom out (shift: timeline)"),
		),
		ResetZoom: key.NewBinding(
			key.WithKeys("ctrl+0"),
			key.WithHelp("ctrl+0", "reset zoom (shift: timeline)"),
		),
		NudgeUp: key.NewBinding(
			key.WithKeys("ctrl+up"),
			key.WithHelp("ctrl+↑", "nudge up (shift: large)"),
		),
		NudgeDown: key.NewBinding(
			key.WithKeys("ctrl+down"),
			key.WithHelp("ctrl+↓", "nudge down (shift: large)"),
		),
		NudgeLeft: key.NewBinding(
			key.WithKeys("ctrl+left"),
			key.WithHelp("ctrl+←", "nudge left (shift: large)"),
		),
		NudgeRight: key.NewBinding(
			key.WithKeys("ctrl+right"),
			key.WithHelp("ctrl+→", "nudge right (shift: large)"),
		),

		PlayPause: key.NewBinding(
			key.WithKeys("space"),
			key.WithHelp("space", "play/pause"),
		),
		Delete: key.NewBinding(
			key.WithKeys("delete"),
			key.WithHelp("del", "delete selection"),
		),
		Rename: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "rename"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss / cancel"),
		),
		BrowseUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "browse up"),
		),
		BrowseDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "browse down"),
		),
		BrowseLeft: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "browse left"),
		),
		BrowseRight: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "browse right"),
		),
		BrowseToStart: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "browse to start"),
		),
		BrowseToEnd: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "browse to end"),
		),
	}
}

// matches reports whether ev triggers b. Binding keys are normalized through
// ParseKey, so "shift+ctrl+s" and "cmd+s" match like "ctrl+shift+s" and "ctrl+s".
func matches(ev KeyEvent, b key.Binding) bool {
	if !b.Enabled() {
		return false
	}
	chord := ev.String()
	for _, k := range b.Keys() {
		parsed, err := ParseKey(k)
		if err != nil {
			continue
		}
		if parsed.String() == chord {
			return true
		}
	}
	return false
}

// ShortHelp returns the bindings shown in a one-line help bar.
func (k Keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Undo, k.Redo, k.PlayPause, k.Cancel}
}

// FullHelp returns every binding, grouped for a help view.
func (k Keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NewDocument, k.OpenDocuments, k.Save, k.SaveAs, k.SaveAll, k.Export, k.ExportAs, k.CloseCurrent, k.CloseAll},
		{k.Undo, k.Redo, k.Cut, k.Copy, k.Paste, k.SelectAll, k.Delete, k.Rename},
		{k.CenterView, k.ZoomIn, k.ZoomOut, k.ResetZoom, k.NudgeUp, k.NudgeDown, k.NudgeLeft, k.NudgeRight},
		{k.PlayPause, k.BrowseUp, k.BrowseDown, k.BrowseLeft, k.BrowseRight, k.BrowseToStart, k.BrowseToEnd, k.Confirm, k.Cancel},
	}
}
