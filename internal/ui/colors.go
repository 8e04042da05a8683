package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// profile is the color capability of the attached terminal, detected once
// at startup from TERM/COLORTERM and NO_COLOR.
var profile = termenv.EnvColorProfile()

// ColorEnabled reports whether the terminal supports colored output.
// Renderers fall back to plain glyphs when it is false.
func ColorEnabled() bool {
	return profile != termenv.Ascii
}

// Color palette using ANSI color codes for terminal compatibility.

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)
