package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grovetools/sheetsync/tui/theme"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHelp(t *testing.T) {
	root := NewStandardCommand("sheetsync", "Mirror an editor")
	sub := &cobra.Command{
		Use:     "invoke <command>",
		Short:   "Send one command",
		Example: "  # Undo\n  sheetsync invoke undo",
		RunE:    func(*cobra.Command, []string) error { return nil },
	}
	sub.Flags().Bool("list", false, "List commands")
	root.AddCommand(sub)

	var out bytes.Buffer
	renderHelp(&out, root, theme.NewThemeWithName("terminal"), 60)
	assert.Contains(t, out.String(), "SHEETSYNC")
	assert.Contains(t, out.String(), "COMMANDS")
	assert.Contains(t, out.String(), "invoke")
	assert.Contains(t, out.String(), "--verbose")

	out.Reset()
	renderHelp(&out, sub, theme.NewThemeWithName("terminal"), 60)
	assert.Contains(t, out.String(), "SHEETSYNC INVOKE")
	assert.Contains(t, out.String(), "--list")
	assert.Contains(t, out.String(), "sheetsync invoke undo")
	assert.NotContains(t, out.String(), "[command] --help")
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five\nshort", 10)
	require.Equal(t, []string{"one two", "three four", "five", "short"}, lines)
	for _, line := range lines {
		assert.LessOrEqual(t, len(strings.TrimSpace(line)), 10)
	}
}

func TestGetOptions(t *testing.T) {
	cmd := NewStandardCommand("sheetsync", "x")
	require.NoError(t, cmd.ParseFlags([]string{"-v", "--json", "-c", "/tmp/s.yml"}))
	assert.Equal(t, CommandOptions{ConfigFile: "/tmp/s.yml", Verbose: true, JSONOutput: true}, GetOptions(cmd))
}
