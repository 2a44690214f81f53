package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/todo/internal/store"
)

// Palette is one color theme for the interactive views
type Palette struct {
	Name string

	// Text Colors
	PrimaryText   string // task text, user input, titles
	SecondaryText string // metadata, placeholders
	DisabledText  string // completed tasks, empty markers
	HelpText      string

	// Accent Colors
	AccentMain   string // logo, selected row border, progress bar start
	AccentBright string // highlights, progress bar end
	Border       string

	// State Colors
	Error   string
	Success string
	Warning string
}

// DarkPalette is the purple-on-dark theme
var DarkPalette = Palette{
	Name:          store.ThemeDark,
	PrimaryText:   "#E6EAF2",
	SecondaryText: "#B1B8C7",
	DisabledText:  "#6D7383",
	HelpText:      "240",
	AccentMain:    "#7C3AED",
	AccentBright:  "#A78BFA",
	Border:        "#3A3F55",
	Error:         "#EF4444",
	Success:       "#22C55E",
	Warning:       "#F59E0B",
}

// LightPalette keeps the same accents, darkened for light terminals
var LightPalette = Palette{
	Name:          store.ThemeLight,
	PrimaryText:   "#1F2937",
	SecondaryText: "#4B5563",
	DisabledText:  "#9CA3AF",
	HelpText:      "245",
	AccentMain:    "#6D28D9",
	AccentBright:  "#7C3AED",
	Border:        "#D1D5DB",
	Error:         "#DC2626",
	Success:       "#16A34A",
	Warning:       "#D97706",
}

// PaletteFor returns the palette for a stored theme name
func PaletteFor(theme string) Palette {
	if theme == store.ThemeDark {
		return DarkPalette
	}
	return LightPalette
}

func (p Palette) fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// OtherTheme returns the theme the 't' key switches to
func OtherTheme(theme string) string {
	if theme == store.ThemeDark {
		return store.ThemeLight
	}
	return store.ThemeDark
}
