package input

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/grovetools/sheetsync/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCamelToSnake(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"SaveAs", "save_as"},
		{"BrowseToStart", "browse_to_start"},
		{"Undo", "undo"},
		{"HTTPServer", "h_t_t_p_server"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := camelToSnake(tt.input); got != tt.expected {
				t.Errorf("camelToSnake(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDefaultKeymapBindingsParse(t *testing.T) {
	km := DefaultKeymap()
	for _, group := range km.FullHelp() {
		for _, b := range group {
			require.NotEmpty(t, b.Keys(), b.Help().Desc)
			for _, k := range b.Keys() {
				_, err := ParseKey(k)
				assert.NoError(t, err, "binding %q for %q", k, b.Help().Desc)
			}
		}
	}
	for _, k := range km.TextEntry.Keys() {
		_, err := ParseKey(k)
		assert.NoError(t, err, k)
	}
}

func TestMatchesNormalizesBindings(t *testing.T) {
	b := key.NewBinding(key.WithKeys("shift+cmd+s"))
	assert.True(t, matches(KeyEvent{Key: "s", Ctrl: true, Shift: true}, b))
	assert.True(t, matches(KeyEvent{Key: "s", Meta: true, Shift: true}, b))
	assert.False(t, matches(KeyEvent{Key: "s", Ctrl: true}, b))

	b.SetEnabled(false)
	assert.False(t, matches(KeyEvent{Key: "s", Ctrl: true, Shift: true}, b))
}

type embeddedKeys struct {
	Quit key.Binding
}

type testKeymap struct {
	embeddedKeys
	SaveAs      key.Binding
	ZoomIn      key.Binding
	unexported  key.Binding
	NotABinding string
}

func TestApplyOverrides(t *testing.T) {
	km := testKeymap{
		embeddedKeys: embeddedKeys{Quit: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))},
		SaveAs:       key.NewBinding(key.WithKeys("ctrl+shift+s"), key.WithHelp("ctrl+shift+s", "save as")),
		ZoomIn:       key.NewBinding(key.WithKeys("ctrl+="), key.WithHelp("ctrl+=", "zoom in")),
		unexported:   key.NewBinding(key.WithKeys("x")),
		NotABinding:  "untouched",
	}

	rejected := ApplyOverrides(&km, config.KeybindingSectionConfig{
		"save_as":    {"ctrl+alt+a", "f12"},
		"quit":       {"ctrl+q"},
		"zoom_in":    {"hyper+="},
		"unexported": {"y"},
		"no_such":    {"z"},
	})

	assert.Equal(t, []string{"ctrl+alt+a", "f12"}, km.SaveAs.Keys())
	assert.Equal(t, "ctrl+alt+a", km.SaveAs.Help().Key)
	assert.Equal(t, "save as", km.SaveAs.Help().Desc)
	assert.Equal(t, []string{"ctrl+q"}, km.Quit.Keys())
	assert.Equal(t, "quit", km.Quit.Help().Desc)

	assert.Equal(t, []string{"ctrl+="}, km.ZoomIn.Keys(), "unparseable override is ignored")
	assert.Equal(t, []string{"x"}, km.unexported.Keys())
	assert.Equal(t, "untouched", km.NotABinding)

	assert.Equal(t, []string{"no_such", "unexported", "zoom_in"}, rejected)
}

func TestApplyOverridesToDefaultKeymap(t *testing.T) {
	km := DefaultKeymap()
	rejected := ApplyOverrides(&km, config.KeybindingSectionConfig{"browse_to_start": {"ctrl+home", "g"}})
	assert.Empty(t, rejected)
	assert.True(t, matches(KeyEvent{Key: "g"}, km.BrowseToStart))
	assert.False(t, matches(KeyEvent{Key: "home"}, km.BrowseToStart))
}

func TestApplyOverridesIgnoresNonPointers(t *testing.T) {
	km := DefaultKeymap()
	assert.Nil(t, ApplyOverrides(km, config.KeybindingSectionConfig{"save": {"f5"}}))
	assert.Nil(t, ApplyOverrides(&km, nil))
	assert.Equal(t, []string{"ctrl+s"}, km.Save.Keys())
}
