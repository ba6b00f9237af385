package render

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and icons for terminal rendering.
type Theme struct {
	Name    string
	Primary lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Icons   ThemeIcons
}

// ThemeIcons defines the icon set for a theme.
type ThemeIcons struct {
	Pass   string
	Fail   string
	Skip   string // indeterminate results
	Warn   string
	Info   string
	Ref    string // reference side of a diff
	Cand   string // candidate side of a diff
	Bullet string
}

var themes = map[string]func() Theme{
	"default": DefaultTheme,
	"orca":    OrcaTheme,
	"mono":    MonoTheme,
}

// ThemeNames returns the names accepted by ThemeByName.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	if fn, ok := themes[name]; ok {
		return fn()
	}
	return DefaultTheme()
}

// DefaultTheme returns a vibrant color theme.
func DefaultTheme() Theme {
	return Theme{
		Name:    "default",
		Primary: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),  // blue
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),  // green
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // orange
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // red
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")), // gray
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons:   unicodeIcons("⚠"),
	}
}

// OrcaTheme returns a muted, professional theme.
func OrcaTheme() Theme {
	return Theme{
		Name:    "orca",
		Primary: lipgloss.NewStyle().Foreground(lipgloss.Color("75")),  // pale blue
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("108")), // sage green
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("179")), // muted gold
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("167")), // muted red
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")), // lighter gray
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons:   unicodeIcons("!"),
	}
}

// MonoTheme returns a monochrome theme with ASCII icons.
func MonoTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Name:    "mono",
		Primary: plain,
		Success: plain,
		Warning: plain,
		Error:   plain,
		Muted:   plain,
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Pass:   "+",
			Fail:   "x",
			Skip:   "?",
			Warn:   "!",
			Info:   "*",
			Ref:    "-",
			Cand:   "+",
			Bullet: "-",
		},
	}
}

func unicodeIcons(warn string) ThemeIcons {
	return ThemeIcons{
		Pass:   "✓",
		Fail:   "✗",
		Skip:   "○",
		Warn:   warn,
		Info:   "●",
		Ref:    "−",
		Cand:   "+",
		Bullet: "·",
	}
}
