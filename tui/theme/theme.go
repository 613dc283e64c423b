package theme

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/sheetsync/config"
	"github.com/muesli/termenv"
)

// ThemeEnv overrides the palette chosen in the tui config extension.
const ThemeEnv = "SHEETSYNC_THEME"

const defaultThemeName = "kanagawa"

// Colors is the palette a theme is built from.
type Colors struct {
	Green     lipgloss.TerminalColor
	Yellow    lipgloss.TerminalColor
	Red       lipgloss.TerminalColor
	Orange    lipgloss.TerminalColor
	Cyan      lipgloss.TerminalColor
	Violet    lipgloss.TerminalColor
	LightText lipgloss.TerminalColor
	MutedText lipgloss.TerminalColor
	Border    lipgloss.TerminalColor
	Selected  lipgloss.TerminalColor
}

// Theme holds the styles shared by log output and the inspector.
type Theme struct {
	Colors Colors

	Header  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Bold     lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Accent   lipgloss.Style
	Key      lipgloss.Style
	Path     lipgloss.Style
	Code     lipgloss.Style
	Box      lipgloss.Style
}

var palettes = map[string]func() Colors{
	"kanagawa": kanagawaColors,
	"terminal": terminalColors,
}

// DefaultTheme is resolved once from SHEETSYNC_THEME or the tui.theme setting.
var DefaultTheme = NewThemeWithName(themeName())

// NewThemeWithName builds a theme from a palette name. Unknown names use the default palette.
func NewThemeWithName(name string) *Theme {
	build, ok := palettes[normalize(name)]
	if !ok {
		build = palettes[defaultThemeName]
	}
	return newTheme(build())
}

// ColorEnabled reports whether styled output should carry colour escapes.
func ColorEnabled() bool {
	return !termenv.EnvNoColor()
}

func newTheme(c Colors) *Theme {
	return &Theme{
		Colors: c,

		Header:  lipgloss.NewStyle().Bold(true).MarginBottom(1),
		Success: lipgloss.NewStyle().Foreground(c.Green).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(c.Red).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(c.Yellow).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(c.Cyan).Bold(true),

		Bold:     lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Faint(true),
		Selected: lipgloss.NewStyle().Background(c.Selected).Foreground(c.LightText),
		Accent:   lipgloss.NewStyle().Foreground(c.Violet).Bold(true),
		Key:      lipgloss.NewStyle().Foreground(c.MutedText),
		Path:     lipgloss.NewStyle().Foreground(c.Cyan).Italic(true),
		Code:     lipgloss.NewStyle().Foreground(c.Orange),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.Border).
			Padding(0, 1),
	}
}

func normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(n, "_", "-")
}

func themeName() string {
	if name := normalize(os.Getenv(ThemeEnv)); name != "" {
		return name
	}

	cfg, err := config.LoadDefault()
	if err != nil || cfg == nil {
		return defaultThemeName
	}

	var tuiCfg struct {
		Theme string `yaml:"theme"`
	}
	if err := cfg.UnmarshalExtension("tui", &tuiCfg); err == nil {
		if name := normalize(tuiCfg.Theme); name != "" {
			return name
		}
	}
	return defaultThemeName
}

func kanagawaColors() Colors {
	return Colors{
		Green:     lipgloss.AdaptiveColor{Light: "#4E7C5A", Dark: "#98BB6C"},
		Yellow:    lipgloss.AdaptiveColor{Light: "#A68A64", Dark: "#FF9E3B"},
		Red:       lipgloss.AdaptiveColor{Light: "#C34043", Dark: "#FF5D62"},
		Orange:    lipgloss.AdaptiveColor{Light: "#CC6B4E", Dark: "#FFA066"},
		Cyan:      lipgloss.AdaptiveColor{Light: "#5B8BBE", Dark: "#7E9CD8"},
		Violet:    lipgloss.AdaptiveColor{Light: "#674D7A", Dark: "#957FB8"},
		LightText: lipgloss.AdaptiveColor{Light: "#2B2F42", Dark: "#DCD7BA"},
		MutedText: lipgloss.AdaptiveColor{Light: "#6C7086", Dark: "#727169"},
		Border:    lipgloss.AdaptiveColor{Light: "#B5BDC5", Dark: "#363646"},
		Selected:  lipgloss.AdaptiveColor{Light: "#E2E6F3", Dark: "#223249"},
	}
}

func terminalColors() Colors {
	return Colors{
		Green:     lipgloss.Color("2"),
		Yellow:    lipgloss.Color("3"),
		Red:       lipgloss.Color("1"),
		Orange:    lipgloss.Color("208"),
		Cyan:      lipgloss.Color("6"),
		Violet:    lipgloss.Color("5"),
		LightText: lipgloss.Color("7"),
		MutedText: lipgloss.Color("8"),
		Border:    lipgloss.Color("8"),
		Selected:  lipgloss.Color("8"),
	}
}
