package input

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/grovetools/sheetsync/command"
	"github.com/grovetools/sheetsync/pkg/backend/backendtest"
	"github.com/grovetools/sheetsync/pkg/gateway"
	"github.com/grovetools/sheetsync/pkg/patch"
	"github.com/grovetools/sheetsync/pkg/state"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docPath = "/sheets/hero.tiger"

func fixture() *state.AppState {
	path := docPath
	return &state.AppState{
		Documents: []state.Document{{
			Path: docPath,
			Name: "hero.tiger",
			Sheet: state.Sheet{
				Animations: map[string]state.Animation{
					"Walk": {Name: "Walk", Sequences: map[state.Direction]state.Sequence{}},
				},
				Frames: []state.Frame{{Path: "/sheets/walk_0.png", Name: "walk_0"}},
			},
			ContentTab:    state.ContentTabAnimations,
			WorkbenchZoom: 1,
			TimelineZoom:  1,
		}},
		CurrentDocumentPath: &path,
	}
}

type recorder struct {
	mu   sync.Mutex
	cmds []command.Command
}

func (r *recorder) Invoke(_ context.Context, cmd command.Command) *gateway.Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, cmd)
	return nil
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, c := range r.cmds {
		names = append(names, c.Name)
	}
	return names
}

type staticState struct{ s *state.AppState }

func (s staticState) Snapshot() *state.AppState { return s.s }

type prompter struct {
	path   string
	paths  []string
	cancel bool
}

func (p prompter) NewDocumentPath(context.Context) (string, bool) { return p.path, !p.cancel }
func (p prompter) OpenDocumentPaths(context.Context) ([]string, bool) { return p.paths, !p.cancel }
func (p prompter) SaveAsPath(_ context.Context, doc *state.Document) (string, bool) {
	return p.path, !p.cancel && doc != nil
}

func newDispatcher(s *state.AppState, opts ...DispatcherOption) (*Dispatcher, *recorder) {
	rec := &recorder{}
	logger, _ := logtest.NewNullLogger()
	opts = append([]DispatcherOption{WithLogger(logrus.NewEntry(logger))}, opts...)
	return NewDispatcher(rec, staticState{s}, opts...), rec
}

func chord(s string) KeyEvent {
	ev, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return ev
}

func TestDispatchCommandMapping(t *testing.T) {
	s := fixture()
	s.Documents[0].Sheet.Animations["Walk"] = state.Animation{Name: "Walk", Selected: true}
	clip := state.ClipboardAnimations
	s.ClipboardManifest = &clip

	tests := []struct {
		key  string
		want command.Command
	}{
		{"ctrl+s", command.Save()},
		{"cmd+s", command.Save()},
		{"ctrl+alt+s", command.SaveAll()},
		{"ctrl+e", command.DoExport()},
		{"ctrl+shift+e", command.BeginExportAs()},
		{"ctrl+w", command.CloseCurrentDocument()},
		{"ctrl+shift+w", command.CloseAllDocuments()},
		{"ctrl+z", command.Undo()},
		{"ctrl+shift+z", command.Redo()},
		{"ctrl+y", command.Redo()},
		{"ctrl+x", command.Cut()},
		{"ctrl+c", command.Copy()},
		{"ctrl+v", command.Paste()},
		{"ctrl+a", command.SelectAll()},
		{"ctrl+space", command.CenterWorkbench()},
		{"ctrl+=", command.ZoomInWorkbench()},
		{"ctrl++", command.ZoomInWorkbench()},
		{"ctrl+shift+=", command.ZoomInTimeline()},
		{"ctrl+-", command.ZoomOutWorkbench()},
		{"ctrl+shift+-", command.ZoomOutTimeline()},
		{"ctrl+0", command.ResetWorkbenchZoom()},
		{"ctrl+shift+0", command.ResetTimelineZoom()},
		{"ctrl+up", command.NudgeSelection(command.Up, false)},
		{"ctrl+shift+left", command.NudgeSelection(command.Left, true)},
		{"space", command.Play()},
		{"delete", command.DeleteSelection()},
		{"f2", command.BeginRenameSelection()},
		{"down", command.BrowseSelection(command.Down, false)},
		{"shift+right", command.BrowseSelection(command.Right, true)},
		{"home", command.BrowseToStart(false)},
		{"shift+end", command.BrowseToEnd(true)},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			d, rec := newDispatcher(s)
			out := d.Dispatch(context.Background(), chord(tt.key), FocusNone)
			assert.Equal(t, Dispatched, out.Kind, out.Reason)
			assert.Equal(t, tt.want, out.Command)
			assert.Equal(t, []string{tt.want.Name}, rec.names())
		})
	}
}

func TestSpaceTogglesPlayback(t *testing.T) {
	s := fixture()
	s.Documents[0].TimelineIsPlaying = true
	d, _ := newDispatcher(s)
	out := d.Dispatch(context.Background(), chord("space"), FocusNone)
	assert.Equal(t, command.Pause(), out.Command)
}

func TestSpaceOnInteractiveFocusPassesThrough(t *testing.T) {
	d, rec := newDispatcher(fixture())
	out := d.Dispatch(context.Background(), chord("space"), FocusInteractive)
	assert.Equal(t, PassThrough, out.Kind)
	assert.Empty(t, rec.names())
}

func TestTextEntryLetsTypingThrough(t *testing.T) {
	d, rec := newDispatcher(fixture())
	for _, k := range []string{"a", "shift+a", "space", "delete", "ctrl+a", "ctrl+z", "f2", "left"} {
		out := d.Dispatch(context.Background(), chord(k), FocusTextEntry)
		assert.Equal(t, PassThrough, out.Kind, k)
	}
	assert.Empty(t, rec.names())
}

func TestTextEntryClosedSetStillDispatches(t *testing.T) {
	s := fixture()
	s.Error = &state.UserFacingError{Key: "BACKEND_TRANSPORT"}
	d, rec := newDispatcher(s, WithPrompter(prompter{path: "/sheets/copy.tiger"}))

	d.Dispatch(context.Background(), chord("ctrl+s"), FocusTextEntry)
	d.Dispatch(context.Background(), chord("ctrl+shift+s"), FocusTextEntry)
	d.Dispatch(context.Background(), chord("ctrl+alt+s"), FocusTextEntry)
	d.Dispatch(context.Background(), chord("esc"), FocusTextEntry)

	assert.Equal(t, []string{command.NameSave, command.NameSaveAs, command.NameSaveAll, command.NameAcknowledgeError}, rec.names())
}

func TestPlainLetterDispatchesNothing(t *testing.T) {
	d, rec := newDispatcher(fixture())
	out := d.Dispatch(context.Background(), chord("a"), FocusNone)
	assert.Equal(t, PassThrough, out.Kind)
	assert.Empty(t, rec.names())
}

func TestEnterIsSwallowed(t *testing.T) {
	d, rec := newDispatcher(fixture())
	out := d.Dispatch(context.Background(), chord("enter"), FocusInteractive)
	assert.Equal(t, Swallowed, out.Kind)
	assert.Empty(t, rec.names())
}

func TestEscapePriority(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*state.AppState)
		want  string
	}{
		{
			name: "error wins over close request",
			setup: func(s *state.AppState) {
				s.Error = &state.UserFacingError{Key: "BACKEND_REJECTED"}
				s.Documents[0].WasCloseRequested = true
				s.Documents[0].IsRelocatingFrames = true
			},
			want: command.NameAcknowledgeError,
		},
		{
			name: "close request",
			setup: func(s *state.AppState) {
				s.Documents[0].WasCloseRequested = true
				s.Documents[0].IsEditingExportSettings = true
			},
			want: command.NameCancelExit,
		},
		{
			name: "frame relocation",
			setup: func(s *state.AppState) {
				s.Documents[0].IsRelocatingFrames = true
				s.Documents[0].IsEditingExportSettings = true
			},
			want: command.NameCancelRelocateFrames,
		},
		{
			name:  "export settings",
			setup: func(s *state.AppState) { s.Documents[0].IsEditingExportSettings = true },
			want:  command.NameCancelExportAs,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fixture()
			tt.setup(s)
			d, rec := newDispatcher(s)
			out := d.Dispatch(context.Background(), chord("esc"), FocusNone)
			assert.Equal(t, Dispatched, out.Kind)
			assert.Equal(t, []string{tt.want}, rec.names())
		})
	}
}

func TestEscapeWithNothingPendingIsNoop(t *testing.T) {
	d, rec := newDispatcher(fixture())
	out := d.Dispatch(context.Background(), chord("esc"), FocusNone)
	assert.Equal(t, Dropped, out.Kind)
	assert.Empty(t, rec.names())
}

func TestGuardsDropSilently(t *testing.T) {
	s := fixture()
	s.Documents[0].Sheet.Frames[0].Selected = true

	d, rec := newDispatcher(s)
	ctx := context.Background()

	assert.Equal(t, Dropped, d.Dispatch(ctx, chord("ctrl+x"), FocusNone).Kind, "frames cannot be cut")
	assert.Equal(t, Dropped, d.Dispatch(ctx, chord("ctrl+v"), FocusNone).Kind, "clipboard is empty")
	assert.Equal(t, Dispatched, d.Dispatch(ctx, chord("ctrl+c"), FocusNone).Kind)
	assert.Equal(t, Dispatched, d.Dispatch(ctx, chord("delete"), FocusNone).Kind)
	assert.Equal(t, []string{command.NameCopy, command.NameDeleteSelection}, rec.names())

	d, rec = newDispatcher(fixture())
	assert.Equal(t, Dropped, d.Dispatch(ctx, chord("delete"), FocusNone).Kind)
	assert.Equal(t, Dropped, d.Dispatch(ctx, chord("ctrl+c"), FocusNone).Kind)
	assert.Empty(t, rec.names())
}

func TestDocumentScopedCommandsNeedCurrentDocument(t *testing.T) {
	s := fixture()
	s.CurrentDocumentPath = nil
	d, rec := newDispatcher(s, WithPrompter(prompter{path: "/sheets/new.tiger"}))
	ctx := context.Background()

	for _, k := range []string{"ctrl+s", "ctrl+z", "ctrl+=", "f2", "up", "space", "ctrl+shift+s"} {
		assert.Equal(t, Dropped, d.Dispatch(ctx, chord(k), FocusNone).Kind, k)
	}
	assert.Equal(t, Dispatched, d.Dispatch(ctx, chord("ctrl+alt+s"), FocusNone).Kind)
	assert.Equal(t, Dispatched, d.Dispatch(ctx, chord("ctrl+n"), FocusNone).Kind)
	assert.Equal(t, []string{command.NameSaveAll, command.NameNewDocument}, rec.names())
}

func TestPrompterSuppliesPaths(t *testing.T) {
	p := prompter{path: "/sheets/new.tiger", paths: []string{"/sheets/a.tiger", "/sheets/b.tiger"}}
	d, rec := newDispatcher(fixture(), WithPrompter(p))
	ctx := context.Background()

	assert.Equal(t, command.NewDocument("/sheets/new.tiger"), d.Dispatch(ctx, chord("ctrl+n"), FocusNone).Command)
	assert.Equal(t, command.OpenDocuments(p.paths), d.Dispatch(ctx, chord("ctrl+o"), FocusNone).Command)
	assert.Equal(t, command.SaveAs("/sheets/new.tiger"), d.Dispatch(ctx, chord("ctrl+shift+s"), FocusNone).Command)
	assert.Len(t, rec.names(), 3)
}

func TestCancelledPromptIssuesNothing(t *testing.T) {
	for _, opts := range [][]DispatcherOption{
		{WithPrompter(prompter{cancel: true})},
		nil,
	} {
		d, rec := newDispatcher(fixture(), opts...)
		ctx := context.Background()
		for _, k := range []string{"ctrl+n", "ctrl+o", "ctrl+shift+s"} {
			assert.Equal(t, Dropped, d.Dispatch(ctx, chord(k), FocusNone).Kind, k)
		}
		assert.Empty(t, rec.names())
	}
}

func TestSetKeymapAppliesToLaterEvents(t *testing.T) {
	d, rec := newDispatcher(fixture())
	km := DefaultKeymap()
	ApplyOverrides(&km, map[string][]string{"undo": {"ctrl+u"}})
	d.SetKeymap(km)

	assert.Equal(t, PassThrough, d.Dispatch(context.Background(), chord("ctrl+z"), FocusNone).Kind)
	assert.Equal(t, Dispatched, d.Dispatch(context.Background(), chord("ctrl+u"), FocusNone).Kind)
	assert.Equal(t, []string{command.NameUndo}, rec.names())
}

type keySource struct {
	mu        sync.Mutex
	listeners map[int]func(KeyEvent, Focus)
	next      int
}

func (k *keySource) AddKeyListener(fn func(KeyEvent, Focus)) func() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.listeners == nil {
		k.listeners = make(map[int]func(KeyEvent, Focus))
	}
	id := k.next
	k.next++
	k.listeners[id] = fn
	return func() {
		k.mu.Lock()
		defer k.mu.Unlock()
		delete(k.listeners, id)
	}
}

func (k *keySource) press(ev KeyEvent, focus Focus) {
	k.mu.Lock()
	fns := make([]func(KeyEvent, Focus), 0, len(k.listeners))
	for _, fn := range k.listeners {
		fns = append(fns, fn)
	}
	k.mu.Unlock()
	for _, fn := range fns {
		fn(ev, focus)
	}
}

func (k *keySource) count() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.listeners)
}

func TestAttachDetachArePaired(t *testing.T) {
	src := &keySource{}
	d, rec := newDispatcher(fixture())
	ctx := context.Background()

	assert.True(t, d.Attach(ctx, src))
	assert.False(t, d.Attach(ctx, src))
	assert.Equal(t, 1, src.count())

	src.press(chord("ctrl+z"), FocusNone)
	assert.Equal(t, []string{command.NameUndo}, rec.names())

	assert.True(t, d.Detach())
	assert.False(t, d.Detach())
	assert.Equal(t, 0, src.count())

	src.press(chord("ctrl+z"), FocusNone)
	assert.Len(t, rec.names(), 1)

	assert.True(t, d.Attach(ctx, src))
	assert.Equal(t, 1, src.count())
	d.Detach()
}

func TestEscapeAcknowledgesBackendErrorThroughGateway(t *testing.T) {
	s := fixture()
	s.Documents[0].WasCloseRequested = true

	store := state.New()
	t.Cleanup(store.Close)
	fake := backendtest.NewFake()
	fake.HandleState(s)
	fake.HandlePatch(command.NameAcknowledgeError, patch.Patch{{Op: patch.KindRemove, Path: "/error"}})

	logger, _ := logtest.NewNullLogger()
	gw := gateway.New(store, fake, gateway.WithLogger(logrus.NewEntry(logger)), gateway.WithStallWarning(0))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, gw.Bootstrap(ctx))

	save := gw.Invoke(ctx, command.Save())
	fake.Next(ctx).Reject("disk full")
	require.Error(t, save.Wait(ctx))
	require.NotNil(t, store.Snapshot().Error)

	d := NewDispatcher(gw, store, WithLogger(logrus.NewEntry(logger)))
	out := d.Dispatch(ctx, chord("esc"), FocusNone)
	require.Equal(t, Dispatched, out.Kind)
	require.NoError(t, out.Call.Wait(ctx))

	assert.Nil(t, store.Snapshot().Error)
	assert.True(t, store.Snapshot().Documents[0].WasCloseRequested, "only the error is acknowledged")
	assert.Equal(t, []string{command.NameGetState, command.NameSave, command.NameAcknowledgeError}, fake.Calls())
}
