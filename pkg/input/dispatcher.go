package input

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/grovetools/sheetsync/command"
	"github.com/grovetools/sheetsync/pkg/gateway"
	"github.com/grovetools/sheetsync/pkg/state"
	"github.com/grovetools/sheetsync/pkg/views"
	"github.com/sirupsen/logrus"
)

// Invoker issues commands. *gateway.Gateway satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, cmd command.Command) *gateway.Call
}

// StateSource provides the state guards are evaluated against. *state.Store satisfies it.
type StateSource interface {
	Snapshot() *state.AppState
}

// Prompter asks the user for file paths. Each method reports false when the
// user cancels.
type Prompter interface {
	NewDocumentPath(ctx context.Context) (string, bool)
	OpenDocumentPaths(ctx context.Context) ([]string, bool)
	SaveAsPath(ctx context.Context, doc *state.Document) (string, bool)
}

// KeySource delivers key events to registered listeners. The returned func
// removes the listener.
type KeySource interface {
	AddKeyListener(fn func(KeyEvent, Focus)) (remove func())
}

// OutcomeKind says what Dispatch did with an event.
type OutcomeKind int

const (
	// PassThrough means no rule claimed the event; the focused control should get it.
	PassThrough OutcomeKind = iota
	// Dispatched means exactly one command was issued.
	Dispatched
	// Swallowed means the event was consumed without issuing a command.
	Swallowed
	// Dropped means a rule matched but its precondition did not hold.
	Dropped
)

func (k OutcomeKind) String() string {
	switch k {
	case Dispatched:
		return "dispatched"
	case Swallowed:
		return "swallowed"
	case Dropped:
		return "dropped"
	default:
		return "pass_through"
	}
}

// Outcome is the result of dispatching one key event.
type Outcome struct {
	Kind    OutcomeKind
	Command command.Command
	Call    *gateway.Call
	Reason  string
}

// Dispatcher maps key events to gateway calls.
type Dispatcher struct {
	invoker  Invoker
	state    StateSource
	prompter Prompter
	logger   *logrus.Entry

	mu     sync.Mutex
	keymap Keymap

	attachMu sync.Mutex
	detach   func()
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithPrompter sets the path prompter. Without one, commands that need a
// path are dropped.
func WithPrompter(p Prompter) DispatcherOption {
	return func(d *Dispatcher) {
		d.prompter = p
	}
}

// WithKeymap replaces the default bindings.
func WithKeymap(km Keymap) DispatcherOption {
	return func(d *Dispatcher) {
		d.keymap = km
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger *logrus.Entry) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a dispatcher issuing commands through invoker and
// reading guard state from src.
func NewDispatcher(invoker Invoker, src StateSource, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		invoker: invoker,
		state:   src,
		logger:  logrus.NewEntry(logrus.StandardLogger()),
		keymap:  DefaultKeymap(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetKeymap swaps the bindings used by later events.
func (d *Dispatcher) SetKeymap(km Keymap) {
	d.mu.Lock()
	d.keymap = km
	d.mu.Unlock()
}

// Keymap returns the bindings currently in use.
func (d *Dispatcher) Keymap() Keymap {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.keymap
}

// Attach registers the dispatcher as a listener on src. It reports false,
// and does nothing, when a listener is already registered.
func (d *Dispatcher) Attach(ctx context.Context, src KeySource) bool {
	d.attachMu.Lock()
	defer d.attachMu.Unlock()
	if d.detach != nil {
		return false
	}
	d.detach = src.AddKeyListener(func(ev KeyEvent, focus Focus) {
		d.Dispatch(ctx, ev, focus)
	})
	return true
}

// Detach removes the listener registered by Attach. It reports false when
// nothing was attached.
func (d *Dispatcher) Detach() bool {
	d.attachMu.Lock()
	remove := d.detach
	d.detach = nil
	d.attachMu.Unlock()
	if remove == nil {
		return false
	}
	remove()
	return true
}

// Dispatch turns one key event into at most one command.
func (d *Dispatcher) Dispatch(ctx context.Context, ev KeyEvent, focus Focus) Outcome {
	km := d.Keymap()
	snapshot := d.state.Snapshot()

	var out Outcome
	switch {
	case focus == FocusTextEntry && !matches(ev, km.TextEntry):
		out = Outcome{Kind: PassThrough, Reason: "text entry has focus"}
	case ev.Primary():
		out = d.primary(ctx, km, ev, snapshot)
	default:
		out = d.plain(km, ev, focus, snapshot)
	}

	if out.Kind == Dispatched {
		out = d.issue(ctx, out.Command, snapshot)
	}

	log := d.logger.WithFields(logrus.Fields{"key": ev.String(), "focus": focus.String(), "outcome": out.Kind.String()})
	switch out.Kind {
	case Dispatched:
		log.WithField("command", out.Command.Name).Debug("Dispatched key event")
	case Dropped:
		log.WithField("reason", out.Reason).Debug("Dropped key event")
	}
	return out
}

func (d *Dispatcher) primary(ctx context.Context, km Keymap, ev KeyEvent, s *state.AppState) Outcome {
	switch {
	case matches(ev, km.NewDocument):
		path, ok := d.promptNewDocument(ctx)
		if !ok {
			return dropped("new document prompt cancelled")
		}
		return dispatch(command.NewDocument(path))
	case matches(ev, km.OpenDocuments):
		paths, ok := d.promptOpenDocuments(ctx)
		if !ok || len(paths) == 0 {
			return dropped("open prompt cancelled")
		}
		return dispatch(command.OpenDocuments(paths))
	case matches(ev, km.Save):
		return dispatch(command.Save())
	case matches(ev, km.SaveAs):
		doc := views.CurrentDocument(s)
		if doc == nil {
			return dropped("no current document")
		}
		path, ok := d.promptSaveAs(ctx, doc)
		if !ok {
			return dropped("save as prompt cancelled")
		}
		return dispatch(command.SaveAs(path))
	case matches(ev, km.SaveAll):
		return dispatch(command.SaveAll())
	case matches(ev, km.Export):
		return dispatch(command.DoExport())
	case matches(ev, km.ExportAs):
		return dispatch(command.BeginExportAs())
	case matches(ev, km.CloseCurrent):
		return dispatch(command.CloseCurrentDocument())
	case matches(ev, km.CloseAll):
		return dispatch(command.CloseAllDocuments())
	case matches(ev, km.Undo):
		return dispatch(command.Undo())
	case matches(ev, km.Redo):
		return dispatch(command.Redo())
	case matches(ev, km.Cut):
		if !views.CanCut(s) {
			return dropped("nothing to cut")
		}
		return dispatch(command.Cut())
	case matches(ev, km.Copy):
		if !views.CanCopy(s) {
			return dropped("nothing to copy")
		}
		return dispatch(command.Copy())
	case matches(ev, km.Paste):
		if !views.CanPaste(s) {
			return dropped("nothing to paste")
		}
		return dispatch(command.Paste())
	case matches(ev, km.SelectAll):
		return dispatch(command.SelectAll())
	}

	base, secondary := ev.withoutShift(), ev.Shift
	switch {
	case matches(base, km.CenterView):
		if secondary {
			return dropped("timeline has no center command")
		}
		return dispatch(command.CenterWorkbench())
	case matches(base, km.ZoomIn):
		return dispatch(pick(secondary, command.ZoomInTimeline(), command.ZoomInWorkbench()))
	case matches(base, km.ZoomOut):
		return dispatch(pick(secondary, command.ZoomOutTimeline(), command.ZoomOutWorkbench()))
	case matches(base, km.ResetZoom):
		return dispatch(pick(secondary, command.ResetTimelineZoom(), command.ResetWorkbenchZoom()))
	case matches(base, km.NudgeUp):
		return dispatch(command.NudgeSelection(command.Up, secondary))
	case matches(base, km.NudgeDown):
		return dispatch(command.NudgeSelection(command.Down, secondary))
	case matches(base, km.NudgeLeft):
		return dispatch(command.NudgeSelection(command.Left, secondary))
	case matches(base, km.NudgeRight):
		return dispatch(command.NudgeSelection(command.Right, secondary))
	}

	return Outcome{Kind: PassThrough}
}

func (d *Dispatcher) plain(km Keymap, ev KeyEvent, focus Focus, s *state.AppState) Outcome {
	base, shift := ev.withoutShift(), ev.Shift
	switch {
	case matches(ev, km.PlayPause):
		if focus == FocusInteractive {
			return Outcome{Kind: PassThrough, Reason: "interactive control has focus"}
		}
		doc := views.CurrentDocument(s)
		if doc == nil {
			return dropped("no current document")
		}
		return dispatch(pick(doc.TimelineIsPlaying, command.Pause(), command.Play()))
	case matches(ev, km.Delete):
		if !views.HasSelection(s) {
			return dropped("nothing selected")
		}
		return dispatch(command.DeleteSelection())
	case matches(ev, km.Rename):
		return dispatch(command.BeginRenameSelection())
	case matches(ev, km.Confirm):
		return Outcome{Kind: Swallowed, Reason: "enter"}
	case matches(ev, km.Cancel):
		return escape(s)
	case matches(base, km.BrowseUp):
		return dispatch(command.BrowseSelection(command.Up, shift))
	case matches(base, km.BrowseDown):
		return dispatch(command.BrowseSelection(command.Down, shift))
	case matches(base, km.BrowseLeft):
		return dispatch(command.BrowseSelection(command.Left, shift))
	case matches(base, km.BrowseRight):
		return dispatch(command.BrowseSelection(command.Right, shift))
	case matches(base, km.BrowseToStart):
		return dispatch(command.BrowseToStart(shift))
	case matches(base, km.BrowseToEnd):
		return dispatch(command.BrowseToEnd(shift))
	}
	return Outcome{Kind: PassThrough}
}

// escape resolves the first pending condition: an error to acknowledge, a
// close request, a frame relocation, then an export settings edit.
func escape(s *state.AppState) Outcome {
	if views.CurrentError(s) != nil {
		return dispatch(command.AcknowledgeError())
	}
	if views.IsExitPending(s) {
		return dispatch(command.CancelExit())
	}
	if doc := views.CurrentDocument(s); doc != nil {
		if doc.IsRelocatingFrames {
			return dispatch(command.CancelRelocateFrames())
		}
		if doc.IsEditingExportSettings {
			return dispatch(command.CancelExportAs())
		}
	}
	return dropped("nothing to cancel")
}

// issue applies the document guard and hands cmd to the invoker.
func (d *Dispatcher) issue(ctx context.Context, cmd command.Command, s *state.AppState) Outcome {
	if command.DocumentScoped(cmd.Name) && views.CurrentDocument(s) == nil {
		return Outcome{Kind: Dropped, Command: cmd, Reason: "no current document"}
	}
	return Outcome{Kind: Dispatched, Command: cmd, Call: d.invoker.Invoke(ctx, cmd)}
}

func (d *Dispatcher) promptNewDocument(ctx context.Context) (string, bool) {
	if d.prompter == nil {
		return "", false
	}
	return d.prompter.NewDocumentPath(ctx)
}

func (d *Dispatcher) promptOpenDocuments(ctx context.Context) ([]string, bool) {
	if d.prompter == nil {
		return nil, false
	}
	return d.prompter.OpenDocumentPaths(ctx)
}

func (d *Dispatcher) promptSaveAs(ctx context.Context, doc *state.Document) (string, bool) {
	if d.prompter == nil {
		return "", false
	}
	return d.prompter.SaveAsPath(ctx, doc)
}

func dispatch(cmd command.Command) Outcome {
	return Outcome{Kind: Dispatched, Command: cmd}
}

func dropped(reason string) Outcome {
	return Outcome{Kind: Dropped, Reason: reason}
}

func pick(cond bool, then, otherwise command.Command) command.Command {
	if cond {
		return then
	}
	return otherwise
}

var _ help.KeyMap = Keymap{}
