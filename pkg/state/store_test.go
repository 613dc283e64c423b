package state

import (
	"bytes"
	"testing"

	"github.com/grovetools/sheetsync/errors"
	"github.com/grovetools/sheetsync/pkg/patch"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSnapshot = `{
	"documents": [{
		"path": "/sheets/hero.tiger",
		"name": "hero.tiger",
		"hasUnsavedChanges": false,
		"sheet": {
			"animations": {
				"Walk": {
					"name": "Walk",
					"selected": false,
					"isLooping": true,
					"sequences": {
						"East": {"keyframes": [
							{"frame": "/frames/walk_0.png", "selected": false, "startTimeMillis": 0, "durationMillis": 100, "hitboxes": []},
							{"frame": "/frames/walk_1.png", "selected": true, "startTimeMillis": 100, "durationMillis": 100, "hitboxes": [{"name": "body", "selected": true}]}
						], "durationMillis": 200}
					}
				}
			},
			"frames": [{"path": "/frames/walk_0.png", "name": "walk_0", "selected": false}]
		},
		"currentAnimationName": "Walk",
		"currentSequenceDirection": "East",
		"currentKeyframeIndex": 1,
		"timelineIsPlaying": false,
		"wasCloseRequested": false,
		"isRelocatingFrames": false,
		"isEditingExportSettings": false,
		"contentTab": "animations",
		"workbenchOffset": [12.5, -4],
		"workbenchZoom": 2,
		"timelineClockMillis": 100,
		"timelineZoom": 1
	}],
	"currentDocumentPath": "/sheets/hero.tiger",
	"recentDocumentPaths": ["/sheets/hero.tiger"],
	"clipboardManifest": null,
	"isReleaseBuild": false,
	"error": null
}`

func loadedStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s := New(opts...)
	require.NoError(t, s.ReplaceJSON([]byte(sampleSnapshot)))
	return s
}

func TestNewStoreIsEmpty(t *testing.T) {
	s := New()
	snap := s.Snapshot()
	require.NotNil(t, snap)
	assert.Empty(t, snap.Documents)
	assert.Nil(t, snap.CurrentDocumentPath)
	assert.Nil(t, snap.Error)
	assert.Equal(t, uint64(0), s.Version())
}

func TestReplaceJSONDecodesSnapshot(t *testing.T) {
	s := loadedStore(t)
	snap := s.Snapshot()

	require.Len(t, snap.Documents, 1)
	doc := snap.Documents[0]
	assert.Equal(t, "hero.tiger", doc.Name)
	require.NotNil(t, doc.CurrentKeyframeIndex)
	assert.Equal(t, 1, *doc.CurrentKeyframeIndex)
	require.NotNil(t, doc.CurrentSequenceDirection)
	assert.Equal(t, East, *doc.CurrentSequenceDirection)
	assert.Equal(t, [2]float64{12.5, -4}, doc.WorkbenchOffset)
	assert.Equal(t, ContentTabAnimations, doc.ContentTab)

	walk := doc.Sheet.Animations["Walk"]
	assert.True(t, walk.IsLooping)
	seq := walk.Sequences[East]
	require.Len(t, seq.Keyframes, 2)
	assert.True(t, seq.Keyframes[1].Hitboxes[0].Selected)
	require.NotNil(t, seq.DurationMillis)
	assert.Equal(t, 200.0, *seq.DurationMillis)
	assert.Equal(t, uint64(1), s.Version())
}

func TestReplaceJSONRejectsNonObject(t *testing.T) {
	s := New()
	err := s.ReplaceJSON([]byte(`[1,2]`))
	assert.True(t, errors.Is(err, errors.ErrCodeStateDecode))

	err = s.ReplaceJSON([]byte(`{"documents": 7}`))
	assert.True(t, errors.Is(err, errors.ErrCodeStateDecode))
	assert.Equal(t, uint64(0), s.Version())
}

func TestReplaceTypedState(t *testing.T) {
	s := New()
	path := "/a.tiger"
	require.NoError(t, s.Replace(&AppState{
		Documents:           []Document{{Path: path, Name: "a.tiger"}},
		CurrentDocumentPath: &path,
	}))

	require.NoError(t, s.Apply(patch.Patch{{Op: patch.KindReplace, Path: "/documents/0/timelineIsPlaying", Value: true}}))
	assert.True(t, s.Snapshot().Documents[0].TimelineIsPlaying)

	assert.True(t, errors.Is(s.Replace(nil), errors.ErrCodeInvalidInput))
}

func TestApplyIsAtomic(t *testing.T) {
	s := loadedStore(t)
	before := s.Snapshot()
	version := s.Version()

	err := s.Apply(patch.Patch{
		{Op: patch.KindReplace, Path: "/documents/0/timelineIsPlaying", Value: true},
		{Op: patch.KindRemove, Path: "/documents/3"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodePatchResolution))

	assert.Same(t, before, s.Snapshot())
	assert.False(t, s.Snapshot().Documents[0].TimelineIsPlaying)
	assert.Equal(t, version, s.Version())
}

func TestApplyRejectsFractionalIntegers(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
		code  errors.ErrorCode
	}{
		{"fractional", 1.5, 1, errors.ErrCodeStateDecode},
		{"whole float", 0.0, 0, ""},
		{"int", 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loadedStore(t)
			before := s.Snapshot()

			err := s.Apply(patch.Patch{{Op: patch.KindReplace, Path: "/documents/0/currentKeyframeIndex", Value: tt.value}})
			if tt.code != "" {
				require.Error(t, err)
				assert.Equal(t, tt.code, errors.GetCode(err))
				assert.Same(t, before, s.Snapshot())
			} else {
				require.NoError(t, err)
			}
			require.NotNil(t, s.Snapshot().Documents[0].CurrentKeyframeIndex)
			assert.Equal(t, tt.want, *s.Snapshot().Documents[0].CurrentKeyframeIndex)
		})
	}
}

func TestApplyEmptyPatchIsNoop(t *testing.T) {
	s := loadedStore(t)
	ch := s.Subscribe()
	before := s.Snapshot()

	require.NoError(t, s.Apply(nil))
	require.NoError(t, s.Apply(patch.Patch{}))

	assert.Same(t, before, s.Snapshot())
	assert.Equal(t, uint64(1), s.Version())
	assert.Len(t, ch, 0)
}

func TestSnapshotsAreImmutable(t *testing.T) {
	s := loadedStore(t)
	old := s.Snapshot()

	require.NoError(t, s.Apply(patch.Patch{
		{Op: patch.KindReplace, Path: "/documents/0/sheet/animations/Walk/sequences/East/keyframes/0/selected", Value: true},
	}))

	assert.False(t, old.Documents[0].Sheet.Animations["Walk"].Sequences[East].Keyframes[0].Selected)
	assert.True(t, s.Snapshot().Documents[0].Sheet.Animations["Walk"].Sequences[East].Keyframes[0].Selected)
}

func TestApplyDocumentLifecycle(t *testing.T) {
	s := loadedStore(t)

	require.NoError(t, s.Apply(patch.Patch{
		{Op: patch.KindAdd, Path: "/documents/-", Value: map[string]any{"path": "/b.tiger", "name": "b.tiger"}},
		{Op: patch.KindReplace, Path: "/currentDocumentPath", Value: "/b.tiger"},
	}))
	snap := s.Snapshot()
	require.Len(t, snap.Documents, 2)
	assert.Equal(t, "/b.tiger", *snap.CurrentDocumentPath)

	require.NoError(t, s.Apply(patch.Patch{
		{Op: patch.KindRemove, Path: "/documents/1"},
		{Op: patch.KindReplace, Path: "/currentDocumentPath", Value: nil},
	}))
	snap = s.Snapshot()
	assert.Len(t, snap.Documents, 1)
	assert.Nil(t, snap.CurrentDocumentPath)
}

func TestApplyTestEnforcement(t *testing.T) {
	failing := patch.Patch{{Op: patch.KindTest, Path: "/isReleaseBuild", Value: true}}

	lenient := loadedStore(t)
	assert.NoError(t, lenient.Apply(failing))

	strict := loadedStore(t, WithTestEnforcement(true))
	assert.True(t, errors.Is(strict.Apply(failing), errors.ErrCodePatchResolution))
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	s := New()
	ch := s.Subscribe()

	require.NoError(t, s.ReplaceJSON([]byte(sampleSnapshot)))
	p := patch.Patch{{Op: patch.KindReplace, Path: "/isReleaseBuild", Value: true}}
	require.NoError(t, s.Apply(p))

	first := <-ch
	assert.Equal(t, UpdateReplaced, first.Kind)
	assert.Equal(t, uint64(1), first.Version)

	second := <-ch
	assert.Equal(t, UpdatePatched, second.Kind)
	assert.Equal(t, uint64(2), second.Version)
	assert.Equal(t, p, second.Patch)

	s.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)

	// A second unsubscribe must not close twice.
	s.Unsubscribe(ch)
}

func TestCloseClosesSubscribers(t *testing.T) {
	s := New()
	ch := s.Subscribe()
	s.Close()
	s.Close()

	_, open := <-ch
	assert.False(t, open)

	late := s.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestInvariantViolationsAreLoggedNotRepaired(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	s := New(WithLogger(logrus.NewEntry(logger)))

	require.NoError(t, s.ReplaceJSON([]byte(`{
		"documents": [{"path": "/a"}, {"path": "/a"}],
		"currentDocumentPath": "/missing"
	}`)))

	snap := s.Snapshot()
	assert.Len(t, snap.Documents, 2)
	assert.Equal(t, "/missing", *snap.CurrentDocumentPath)
	assert.Contains(t, buf.String(), RuleDuplicateDocument)
	assert.Contains(t, buf.String(), RuleDanglingDocument)
}
