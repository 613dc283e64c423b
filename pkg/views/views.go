// Package views derives read-only projections from a state snapshot.
//
// Every function is pure. A nil result means "none"; an available but empty
// collection is returned as a non-nil empty slice. Dangling references (a current
// animation name with no matching animation, an out-of-range keyframe index) read as
// "none" and are never repaired here.
package views

import (
	"sort"
	"strings"

	"github.com/grovetools/sheetsync/pkg/state"
)

// CurrentDocument returns the document whose path equals currentDocumentPath.
func CurrentDocument(s *state.AppState) *state.Document {
	if s == nil || s.CurrentDocumentPath == nil {
		return nil
	}
	return DocumentByPath(s, *s.CurrentDocumentPath)
}

// DocumentByPath returns the open document with the given path.
func DocumentByPath(s *state.AppState, path string) *state.Document {
	if s == nil {
		return nil
	}
	for i := range s.Documents {
		if s.Documents[i].Path == path {
			return &s.Documents[i]
		}
	}
	return nil
}

// SortedAnimations returns the current document's animations ordered by name,
// case-insensitively. Names that fold to the same key keep a stable byte order.
func SortedAnimations(s *state.AppState) []state.Animation {
	doc := CurrentDocument(s)
	if doc == nil {
		return nil
	}
	out := make([]state.Animation, 0, len(doc.Sheet.Animations))
	for _, animation := range doc.Sheet.Animations {
		out = append(out, animation)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// CurrentAnimation returns the animation named by the current document.
func CurrentAnimation(s *state.AppState) *state.Animation {
	doc := CurrentDocument(s)
	if doc == nil || doc.CurrentAnimationName == nil {
		return nil
	}
	animation, ok := doc.Sheet.Animations[*doc.CurrentAnimationName]
	if !ok {
		return nil
	}
	return &animation
}

// CurrentSequence returns the current animation's sequence for the current direction.
func CurrentSequence(s *state.AppState) *state.Sequence {
	animation := CurrentAnimation(s)
	if animation == nil {
		return nil
	}
	doc := CurrentDocument(s)
	if doc.CurrentSequenceDirection == nil {
		return nil
	}
	sequence, ok := animation.Sequences[*doc.CurrentSequenceDirection]
	if !ok {
		return nil
	}
	return &sequence
}

// CurrentKeyframe returns the keyframe at the current index of the current sequence.
func CurrentKeyframe(s *state.AppState) *state.Keyframe {
	sequence := CurrentSequence(s)
	if sequence == nil {
		return nil
	}
	doc := CurrentDocument(s)
	if doc.CurrentKeyframeIndex == nil {
		return nil
	}
	index := *doc.CurrentKeyframeIndex
	if index < 0 || index >= len(sequence.Keyframes) {
		return nil
	}
	keyframe := sequence.Keyframes[index]
	return &keyframe
}

// SelectedFrames returns the selected frames of the current document in sheet order.
func SelectedFrames(s *state.AppState) []state.Frame {
	doc := CurrentDocument(s)
	if doc == nil {
		return nil
	}
	out := []state.Frame{}
	for _, frame := range doc.Sheet.Frames {
		if frame.Selected {
			out = append(out, frame)
		}
	}
	return out
}

// SelectedAnimations returns the selected animations of the current document, sorted
// like SortedAnimations.
func SelectedAnimations(s *state.AppState) []state.Animation {
	sorted := SortedAnimations(s)
	if sorted == nil {
		return nil
	}
	out := []state.Animation{}
	for _, animation := range sorted {
		if animation.Selected {
			out = append(out, animation)
		}
	}
	return out
}

// SelectedKeyframes returns the selected keyframes across every sequence of the current
// animation: directions in canonical order, then keyframe index.
func SelectedKeyframes(s *state.AppState) []state.Keyframe {
	animation := CurrentAnimation(s)
	if animation == nil {
		return nil
	}
	out := []state.Keyframe{}
	for _, direction := range orderedDirections(animation) {
		for _, keyframe := range animation.Sequences[direction].Keyframes {
			if keyframe.Selected {
				out = append(out, keyframe)
			}
		}
	}
	return out
}

// SelectedHitboxes returns the selected hitboxes of the current keyframe.
func SelectedHitboxes(s *state.AppState) []state.Hitbox {
	keyframe := CurrentKeyframe(s)
	if keyframe == nil {
		return nil
	}
	out := []state.Hitbox{}
	for _, hitbox := range keyframe.Hitboxes {
		if hitbox.Selected {
			out = append(out, hitbox)
		}
	}
	return out
}

// CanCut reports whether a cut has anything to act on. Frames cannot be cut.
func CanCut(s *state.AppState) bool {
	return len(SelectedAnimations(s)) > 0 ||
		len(SelectedKeyframes(s)) > 0 ||
		len(SelectedHitboxes(s)) > 0
}

// CanCopy reports whether any selection exists.
func CanCopy(s *state.AppState) bool {
	return len(SelectedFrames(s)) > 0 || CanCut(s)
}

// CanPaste reports whether the clipboard holds content and there is a document to paste into.
func CanPaste(s *state.AppState) bool {
	return s != nil && s.ClipboardManifest != nil && CurrentDocument(s) != nil
}

// HasSelection reports whether the current document has anything selected.
func HasSelection(s *state.AppState) bool {
	return CanCopy(s)
}

// IsExitPending reports whether any document has a close request outstanding.
func IsExitPending(s *state.AppState) bool {
	if s == nil {
		return false
	}
	for _, doc := range s.Documents {
		if doc.WasCloseRequested {
			return true
		}
	}
	return false
}

// CurrentError returns the error awaiting acknowledgement.
func CurrentError(s *state.AppState) *state.UserFacingError {
	if s == nil {
		return nil
	}
	return s.Error
}

// orderedDirections lists the animation's directions in canonical order, followed by
// any unrecognised directions sorted by name.
func orderedDirections(animation *state.Animation) []state.Direction {
	out := make([]state.Direction, 0, len(animation.Sequences))
	for direction := range animation.Sequences {
		out = append(out, direction)
	}
	sort.Slice(out, func(i, j int) bool {
		oi, oj := out[i].Ordinal(), out[j].Ordinal()
		if oi != oj {
			return oi < oj
		}
		return out[i] < out[j]
	})
	return out
}
