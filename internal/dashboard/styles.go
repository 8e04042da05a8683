package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/wraith/internal/engine"
	"github.com/rileyhilliard/wraith/internal/server"
	"github.com/rileyhilliard/wraith/internal/ui"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ui.ColorInfo)

	footerStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ui.ColorPrimary).
				Background(lipgloss.Color("17"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)

	popupInfoStyle    = popupStyle.BorderForeground(ui.ColorInfo)
	popupSuccessStyle = popupStyle.BorderForeground(ui.ColorSuccess)
	popupErrorStyle   = popupStyle.BorderForeground(ui.ColorError)

	sectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ui.ColorSecondary)
)

var statusStyles = map[engine.Status]lipgloss.Style{
	engine.StatusOnline:     lipgloss.NewStyle().Foreground(ui.ColorSuccess),
	engine.StatusOffline:    lipgloss.NewStyle().Foreground(ui.ColorError),
	engine.StatusConnecting: lipgloss.NewStyle().Foreground(ui.ColorInfo),
	engine.StatusWarning:    lipgloss.NewStyle().Foreground(ui.ColorWarning),
	engine.StatusUnknown:    lipgloss.NewStyle().Foreground(ui.ColorMuted),
}

// statusSymbol renders the colored status glyph.
func statusSymbol(s engine.Status) string {
	symbol := ui.SymbolUnknown
	switch s {
	case engine.StatusOnline:
		symbol = ui.SymbolOnline
	case engine.StatusOffline:
		symbol = ui.SymbolOffline
	case engine.StatusConnecting:
		symbol = ui.SymbolConnecting
	case engine.StatusWarning:
		symbol = ui.SymbolWarning
	}
	return statusStyles[s].Render(symbol)
}

// classLabel renders the colored security classification.
func classLabel(c server.Classification) string {
	switch c {
	case server.ClassSecure:
		return lipgloss.NewStyle().Foreground(ui.ColorSuccess).Render(ui.SymbolSecure + " SECURE")
	case server.ClassVulnerable:
		return lipgloss.NewStyle().Foreground(ui.ColorError).Render(ui.SymbolVulnerable + " VULNERABLE")
	default:
		return mutedStyle.Render("? UNKNOWN")
	}
}
