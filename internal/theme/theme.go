// Package theme holds the color palettes used by the renderer.
package theme

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines all colors used by the interface.
type Theme struct {
	Accent    lipgloss.Color
	AccentFg  lipgloss.Color // text drawn on Accent
	AccentDim lipgloss.Color // selected row background
	Border    lipgloss.Color
	MutedFg   lipgloss.Color
	TextFg    lipgloss.Color
	SuccessFg lipgloss.Color
	WarnFg    lipgloss.Color
	ErrorFg   lipgloss.Color
	Cyan      lipgloss.Color
	Yellow    lipgloss.Color
}

// Theme names.
const (
	DraculaName         = "dracula"
	NordName            = "nord"
	MonokaiName         = "monokai"
	GruvboxDarkName     = "gruvbox-dark"
	CatppuccinLatteName = "catppuccin-latte"
	SolarizedLightName  = "solarized-light"
)

// palette order: accent, accentFg, accentDim, border, muted, text, success, warn, error, cyan, yellow
var palettes = map[string][11]string{
	DraculaName:         {"#BD93F9", "#282A36", "#44475A", "#6272A4", "#6272A4", "#F8F8F2", "#50FA7B", "#FFB86C", "#FF5555", "#8BE9FD", "#F1FA8C"},
	NordName:            {"#88C0D0", "#2E3440", "#3B4252", "#4C566A", "#81A1C1", "#E5E9F0", "#A3BE8C", "#EBCB8B", "#BF616A", "#88C0D0", "#EBCB8B"},
	MonokaiName:         {"#A6E22E", "#272822", "#3E3D32", "#75715E", "#75715E", "#F8F8F2", "#A6E22E", "#FD971F", "#F92672", "#66D9EF", "#E6DB74"},
	GruvboxDarkName:     {"#FABD2F", "#282828", "#3C3836", "#504945", "#928374", "#EBDBB2", "#B8BB26", "#FABD2F", "#FB4934", "#83A598", "#FABD2F"},
	CatppuccinLatteName: {"#1E66F5", "#FFFFFF", "#CCD0DA", "#9CA0B0", "#6C6F85", "#4C4F69", "#40A02B", "#DF8E1D", "#D20F39", "#04A5E5", "#DF8E1D"},
	SolarizedLightName:  {"#268BD2", "#FDF6E3", "#EEE8D5", "#93A1A1", "#93A1A1", "#073642", "#859900", "#B58900", "#DC322F", "#2AA198", "#B58900"},
}

func fromPalette(p [11]string) *Theme {
	return &Theme{
		Accent:    lipgloss.Color(p[0]),
		AccentFg:  lipgloss.Color(p[1]),
		AccentDim: lipgloss.Color(p[2]),
		Border:    lipgloss.Color(p[3]),
		MutedFg:   lipgloss.Color(p[4]),
		TextFg:    lipgloss.Color(p[5]),
		SuccessFg: lipgloss.Color(p[6]),
		WarnFg:    lipgloss.Color(p[7]),
		ErrorFg:   lipgloss.Color(p[8]),
		Cyan:      lipgloss.Color(p[9]),
		Yellow:    lipgloss.Color(p[10]),
	}
}

// Dracula returns the default dark theme.
func Dracula() *Theme {
	return fromPalette(palettes[DraculaName])
}

// GetTheme returns a theme by name, or Dracula if not found.
func GetTheme(name string) *Theme {
	if p, ok := palettes[name]; ok {
		return fromPalette(p)
	}
	return Dracula()
}

// IsLight reports whether the theme targets light terminals.
func IsLight(name string) bool {
	return name == CatppuccinLatteName || name == SolarizedLightName
}

// AvailableThemes returns the theme names in sorted order.
func AvailableThemes() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
