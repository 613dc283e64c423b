// Package state holds the frontend's mirror of the backend's application state.
package state

// AppState is the root of the mirrored tree.
type AppState struct {
	Documents           []Document         `json:"documents"`
	CurrentDocumentPath *string            `json:"currentDocumentPath"`
	RecentDocumentPaths []string           `json:"recentDocumentPaths"`
	ClipboardManifest   *ClipboardManifest `json:"clipboardManifest"`
	IsReleaseBuild      bool               `json:"isReleaseBuild"`
	Error               *UserFacingError   `json:"error"`
}

// UserFacingError is the single error slot shown to the user until acknowledged.
type UserFacingError struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Details string `json:"details"`
}

// ClipboardManifest describes what kind of content the clipboard currently holds.
type ClipboardManifest string

const (
	ClipboardAnimations ClipboardManifest = "animations"
	ClipboardKeyframes  ClipboardManifest = "keyframes"
	ClipboardHitboxes   ClipboardManifest = "hitboxes"
	ClipboardFrames     ClipboardManifest = "frames"
)

// ContentTab is the tab shown in the content panel.
type ContentTab string

const (
	ContentTabFrames     ContentTab = "frames"
	ContentTabAnimations ContentTab = "animations"
)

// Document is one open sprite sheet and its editing state.
type Document struct {
	Path                     string     `json:"path"`
	Name                     string     `json:"name"`
	HasUnsavedChanges        bool       `json:"hasUnsavedChanges"`
	Sheet                    Sheet      `json:"sheet"`
	CurrentAnimationName     *string    `json:"currentAnimationName"`
	CurrentSequenceDirection *Direction `json:"currentSequenceDirection"`
	CurrentKeyframeIndex     *int       `json:"currentKeyframeIndex"`
	TimelineIsPlaying        bool       `json:"timelineIsPlaying"`
	WasCloseRequested        bool       `json:"wasCloseRequested"`
	IsRelocatingFrames       bool       `json:"isRelocatingFrames"`
	IsEditingExportSettings  bool       `json:"isEditingExportSettings"`

	ContentTab          ContentTab `json:"contentTab"`
	WorkbenchOffset     [2]float64 `json:"workbenchOffset"`
	WorkbenchZoom       float64    `json:"workbenchZoom"`
	TimelineClockMillis float64    `json:"timelineClockMillis"`
	TimelineZoom        float64    `json:"timelineZoom"`
}

// Sheet is the animation content of a document.
type Sheet struct {
	Animations map[string]Animation `json:"animations"`
	Frames     []Frame              `json:"frames"`
}

// Animation is a named set of per-direction sequences.
type Animation struct {
	Name      string                 `json:"name"`
	Selected  bool                   `json:"selected"`
	IsLooping bool                   `json:"isLooping"`
	Sequences map[Direction]Sequence `json:"sequences"`
}

// Sequence is the ordered keyframe list of one direction.
type Sequence struct {
	Keyframes      []Keyframe `json:"keyframes"`
	DurationMillis *float64   `json:"durationMillis"`
}

// Keyframe places a frame on the timeline and carries its hitboxes.
type Keyframe struct {
	Frame           string   `json:"frame"`
	Selected        bool     `json:"selected"`
	StartTimeMillis float64  `json:"startTimeMillis"`
	DurationMillis  float64  `json:"durationMillis"`
	Hitboxes        []Hitbox `json:"hitboxes"`
}

// Frame is a source image of the sheet.
type Frame struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// Hitbox is a selectable region attached to a keyframe.
type Hitbox struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// Direction names a sequence within an animation.
type Direction string

const (
	East      Direction = "East"
	NorthEast Direction = "NorthEast"
	North     Direction = "North"
	NorthWest Direction = "NorthWest"
	West      Direction = "West"
	SouthWest Direction = "SouthWest"
	South     Direction = "South"
	SouthEast Direction = "SouthEast"
)

// Directions lists every direction in canonical order. Code that walks a sequence map
// uses this order so results do not depend on map iteration.
var Directions = []Direction{East, NorthEast, North, NorthWest, West, SouthWest, South, SouthEast}

// Ordinal returns the position of d in Directions, or len(Directions) for unknown values.
func (d Direction) Ordinal() int {
	for i, candidate := range Directions {
		if candidate == d {
			return i
		}
	}
	return len(Directions)
}
