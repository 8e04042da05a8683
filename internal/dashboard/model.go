// Package dashboard is the interactive TUI: a Bubble Tea program that
// renders engine snapshots and feeds key presses back as engine commands.
//
// The model owns the engine store. A 100ms tick message drives
// Store.ApplyTick and refreshes the rendered snapshot; all mutation goes
// through store commands between ticks, so the engine's single-writer
// discipline holds.
package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/wraith/internal/engine"
	"github.com/rileyhilliard/wraith/internal/ui"
)

// tickInterval is the control-loop heartbeat, roughly ten per second.
const tickInterval = 100 * time.Millisecond

// ViewMode defines the current display mode of the dashboard.
type ViewMode int

const (
	ViewServers ViewMode = iota
	ViewAnalytics
)

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	store *engine.Store
	snap  engine.Snapshot
	now   time.Time

	selected   int
	width      int
	height     int
	viewMode   ViewMode
	showHelp   bool
	onlineOnly bool
	quitting   bool

	filtering bool
	filter    textinput.Model
	spinner   spinner.Model

	// pendingDelete holds the id awaiting a y/n confirmation, empty
	// otherwise.
	pendingDelete string
}

// tickMsg signals one control-loop heartbeat.
type tickMsg time.Time

// NewModel creates a dashboard model driving the given store.
func NewModel(store *engine.Store) Model {
	filter := textinput.New()
	filter.Placeholder = "filter servers"
	filter.Prompt = "/"
	filter.CharLimit = 64

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(ui.ColorInfo)),
	)

	now := time.Now()
	return Model{
		store:   store,
		snap:    store.Snapshot(now),
		now:     now,
		filter:  filter,
		spinner: sp,
	}
}

// Init starts the tick loop and the connecting-indicator spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.spinner.Tick)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.now = time.Time(msg)
		m.store.ApplyTick(m.now)
		m.snap = m.store.Snapshot(m.now)
		m.clampSelection()
		// The delete confirmation lives in the popup; once that expires
		// the next keypress must not act on an invisible prompt.
		if m.pendingDelete != "" && m.snap.Popup == nil {
			m.pendingDelete = ""
		}
		return m, m.tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// visibleServers applies the filter text and the online-only toggle.
func (m Model) visibleServers() []engine.ServerView {
	var out []engine.ServerView
	for _, v := range m.snap.Servers {
		if m.onlineOnly && v.Status != engine.StatusOnline && v.Status != engine.StatusConnecting {
			continue
		}
		if !v.Matches(m.filter.Value()) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (m *Model) clampSelection() {
	n := len(m.visibleServers())
	if n == 0 {
		m.selected = 0
		return
	}
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// selectedServer returns the highlighted server, if any.
func (m Model) selectedServer() (engine.ServerView, bool) {
	servers := m.visibleServers()
	if len(servers) == 0 || m.selected < 0 || m.selected >= len(servers) {
		return engine.ServerView{}, false
	}
	return servers[m.selected], true
}

// refreshSnapshot re-reads the store after a command so the next frame shows
// the result without waiting for the tick.
func (m *Model) refreshSnapshot() {
	m.snap = m.store.Snapshot(m.now)
	m.clampSelection()
}
