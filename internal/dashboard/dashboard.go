package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/wraith/internal/engine"
	"github.com/rileyhilliard/wraith/internal/errors"
)

// Run starts the dashboard and blocks until the user quits.
func Run(store *engine.Store) error {
	p := tea.NewProgram(NewModel(store), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "dashboard terminated unexpectedly")
	}
	return nil
}
