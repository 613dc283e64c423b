package inspector

import (
	"fmt"
	"strings"

	"github.com/grovetools/sheetsync/pkg/state"
	"github.com/grovetools/sheetsync/pkg/views"
	"github.com/grovetools/sheetsync/tui/theme"
)

// renderState draws the mirror as the derived views see it.
func renderState(s *state.AppState, t *theme.Theme) string {
	var b strings.Builder

	if e := views.CurrentError(s); e != nil {
		body := fmt.Sprintf("%s\n%s", t.Error.Render(e.Title), e.Summary)
		if e.Details != "" {
			body += "\n" + t.Muted.Render(e.Details)
		}
		body += "\n" + t.Key.Render(e.Key)
		b.WriteString(t.Box.Render(body))
		b.WriteString("\n\n")
	}

	b.WriteString(t.Bold.Render("Documents"))
	b.WriteString("\n")
	current := views.CurrentDocument(s)
	if s == nil || len(s.Documents) == 0 {
		b.WriteString(t.Muted.Render("  (none open)"))
		b.WriteString("\n")
	} else {
		for _, doc := range s.Documents {
			marker := "  "
			if current != nil && doc.Path == current.Path {
				marker = t.Accent.Render("▸ ")
			}
			name := doc.Name
			if doc.HasUnsavedChanges {
				name += "*"
			}
			fmt.Fprintf(&b, "%s%s %s\n", marker, name, t.Path.Render(doc.Path))
		}
	}

	if current == nil {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(t.Bold.Render("Current"))
	b.WriteString("\n")
	field(&b, t, "animation", currentAnimationName(s))
	field(&b, t, "sequence", currentDirection(current))
	field(&b, t, "keyframe", currentKeyframe(s, current))
	field(&b, t, "tab", string(current.ContentTab))
	field(&b, t, "workbench", fmt.Sprintf("zoom %gx offset (%g, %g)", current.WorkbenchZoom, current.WorkbenchOffset[0], current.WorkbenchOffset[1]))
	field(&b, t, "timeline", fmt.Sprintf("%s at %gms zoom %gx", playing(current), current.TimelineClockMillis, current.TimelineZoom))

	if flags := pendingFlags(current); len(flags) > 0 {
		field(&b, t, "pending", t.Warning.Render(strings.Join(flags, ", ")))
	}

	b.WriteString("\n")
	b.WriteString(t.Bold.Render("Animations"))
	b.WriteString("\n")
	animations := views.SortedAnimations(s)
	if len(animations) == 0 {
		b.WriteString(t.Muted.Render("  (none)"))
		b.WriteString("\n")
	}
	for _, a := range animations {
		line := "  " + a.Name
		if a.Selected {
			line = t.Selected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(t.Bold.Render("Selection"))
	b.WriteString("\n")
	field(&b, t, "frames", fmt.Sprint(len(views.SelectedFrames(s))))
	field(&b, t, "animations", fmt.Sprint(len(views.SelectedAnimations(s))))
	field(&b, t, "keyframes", fmt.Sprint(len(views.SelectedKeyframes(s))))
	field(&b, t, "hitboxes", fmt.Sprint(len(views.SelectedHitboxes(s))))
	field(&b, t, "clipboard", fmt.Sprintf("cut %s  copy %s  paste %s",
		yesNo(t, views.CanCut(s)), yesNo(t, views.CanCopy(s)), yesNo(t, views.CanPaste(s))))

	return b.String()
}

func field(b *strings.Builder, t *theme.Theme, label, value string) {
	fmt.Fprintf(b, "  %s %s\n", t.Key.Render(fmt.Sprintf("%-11s", label)), value)
}

func currentAnimationName(s *state.AppState) string {
	if a := views.CurrentAnimation(s); a != nil {
		return a.Name
	}
	return "-"
}

func currentDirection(doc *state.Document) string {
	if doc.CurrentSequenceDirection == nil {
		return "-"
	}
	return string(*doc.CurrentSequenceDirection)
}

func currentKeyframe(s *state.AppState, doc *state.Document) string {
	k := views.CurrentKeyframe(s)
	if k == nil {
		return "-"
	}
	return fmt.Sprintf("#%d %s (%d hitboxes)", *doc.CurrentKeyframeIndex, k.Frame, len(k.Hitboxes))
}

func playing(doc *state.Document) string {
	if doc.TimelineIsPlaying {
		return "playing"
	}
	return "paused"
}

func pendingFlags(doc *state.Document) []string {
	var flags []string
	if doc.WasCloseRequested {
		flags = append(flags, "close requested")
	}
	if doc.IsRelocatingFrames {
		flags = append(flags, "relocating frames")
	}
	if doc.IsEditingExportSettings {
		flags = append(flags, "editing export settings")
	}
	return flags
}

func yesNo(t *theme.Theme, ok bool) string {
	if ok {
		return t.Success.Render("yes")
	}
	return t.Muted.Render("no")
}

// Render draws s the way the inspector does, using the default theme.
func Render(s *state.AppState) string {
	return renderState(s, theme.DefaultTheme)
}
