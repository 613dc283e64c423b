package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/sheetsync/tui/theme"
)

// PrettyLogger writes human-facing command output, as opposed to the
// structured component logs.
type PrettyLogger struct {
	writer io.Writer
	theme  *theme.Theme
}

// NewPrettyLogger creates a pretty logger writing to stderr.
func NewPrettyLogger() *PrettyLogger {
	return &PrettyLogger{
		writer: os.Stderr,
		theme:  theme.DefaultTheme,
	}
}

// WithWriter sets a custom writer for pretty output
func (p *PrettyLogger) WithWriter(w io.Writer) *PrettyLogger {
	p.writer = w
	return p
}

func (p *PrettyLogger) render(style interface{ Render(...string) string }, s string) string {
	if !theme.ColorEnabled() {
		return s
	}
	return style.Render(s)
}

// Success prints a message with a checkmark.
func (p *PrettyLogger) Success(message string) {
	fmt.Fprintf(p.writer, "%s %s\n", p.render(p.theme.Success, "✓"), p.render(p.theme.Success, message))
}

// Warn prints a warning.
func (p *PrettyLogger) Warn(message string) {
	fmt.Fprintf(p.writer, "%s %s\n", p.render(p.theme.Warning, "⚠"), p.render(p.theme.Warning, message))
}

// Field prints a key-value pair.
func (p *PrettyLogger) Field(key string, value interface{}) {
	fmt.Fprintf(p.writer, "%s: %s\n", p.render(p.theme.Key, key), p.render(p.theme.Bold, fmt.Sprint(value)))
}

// Path prints a labelled file path.
func (p *PrettyLogger) Path(label string, path string) {
	fmt.Fprintf(p.writer, "%s: %s\n", p.render(p.theme.Key, label), p.render(p.theme.Path, path))
}
