package dashboard

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/wraith/internal/engine"
	"github.com/rileyhilliard/wraith/internal/logger"
	"github.com/rileyhilliard/wraith/internal/probe"
	"github.com/rileyhilliard/wraith/internal/server"
	sessiontest "github.com/rileyhilliard/wraith/internal/session/testing"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func key(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, records ...server.Record) (Model, *sessiontest.FakeLauncher) {
	t.Helper()
	launcher := sessiontest.NewFakeLauncher()
	store := engine.New(engine.DefaultConfig(), launcher, sessiontest.NewFakeChecker())
	store.SetLogger(logger.Noop())
	store.SetProber(func(ctx context.Context, address string, timeout time.Duration) probe.Result {
		return probe.Result{Reachable: true, Latency: 10 * time.Millisecond}
	})
	store.Load(records)
	m := NewModel(store)
	return m, launcher
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func records(names ...string) []server.Record {
	var out []server.Record
	for _, n := range names {
		out = append(out, server.NewRecord(n, n+".example.com", 22, "root"))
	}
	return out
}

func TestTick_AdvancesStoreAndSnapshot(t *testing.T) {
	m, _ := newTestModel(t, records("alpha")...)

	m = update(m, tickMsg(t0))
	require.Len(t, m.snap.Servers, 1)
	assert.Equal(t, t0, m.now)

	next, cmd := m.Update(tickMsg(t0.Add(tickInterval)))
	m = next.(Model)
	assert.NotNil(t, cmd, "tick must reschedule itself")
}

func TestSelection_Moves(t *testing.T) {
	m, _ := newTestModel(t, records("alpha", "bravo", "charlie")...)
	m = update(m, tickMsg(t0))

	m = update(m, key("j"))
	assert.Equal(t, 1, m.selected)
	m = update(m, key("j"))
	m = update(m, key("j"))
	assert.Equal(t, 2, m.selected, "selection clamps at the end")
	m = update(m, key("k"))
	assert.Equal(t, 1, m.selected)
}

func TestConnect_LaunchesSelected(t *testing.T) {
	m, launcher := newTestModel(t, records("alpha", "bravo")...)
	m = update(m, tickMsg(t0))

	m = update(m, key("j"))
	m = update(m, key("c"))

	require.Len(t, launcher.Launched, 1)
	assert.Equal(t, "bravo.example.com", launcher.Launched[0].Host)
	require.NotNil(t, m.snap.Popup)
	assert.Contains(t, m.snap.Popup.Message, "bravo")
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	m, _ := newTestModel(t, records("alpha", "bravo")...)
	m = update(m, tickMsg(t0))

	m = update(m, key("d"))
	require.NotEmpty(t, m.pendingDelete)
	require.Len(t, m.snap.Servers, 2, "nothing deleted before confirmation")

	// Any key other than y cancels.
	m = update(m, key("n"))
	assert.Empty(t, m.pendingDelete)
	assert.Len(t, m.snap.Servers, 2)

	m = update(m, key("d"))
	m = update(m, key("y"))
	assert.Len(t, m.snap.Servers, 1)
	assert.Equal(t, "bravo", m.snap.Servers[0].Name)
}

func TestDelete_PromptExpiryDisarmsConfirmation(t *testing.T) {
	m, _ := newTestModel(t, records("alpha", "bravo")...)
	m = update(m, tickMsg(t0))

	m = update(m, key("d"))
	require.NotEmpty(t, m.pendingDelete)
	require.NotNil(t, m.snap.Popup)

	// Once the prompt popup times out, y must not delete anything.
	m = update(m, tickMsg(t0.Add(engine.DefaultConfig().PopupTTL+time.Second)))
	assert.Empty(t, m.pendingDelete)
	require.Nil(t, m.snap.Popup)

	m = update(m, key("y"))
	assert.Len(t, m.snap.Servers, 2)
}

func TestFilter_NarrowsList(t *testing.T) {
	m, _ := newTestModel(t, records("alpha", "bravo")...)
	m = update(m, tickMsg(t0))

	m = update(m, key("/"))
	require.True(t, m.filtering)
	m = update(m, key("b"))
	m = update(m, key("enter"))

	visible := m.visibleServers()
	require.Len(t, visible, 1)
	assert.Equal(t, "bravo", visible[0].Name)

	m = update(m, key("esc"))
	assert.Len(t, m.visibleServers(), 2, "esc clears the filter")
}

func TestOnlineOnly_HidesUnprobedServers(t *testing.T) {
	m, _ := newTestModel(t, records("alpha")...)
	// No tick yet: server is still Unknown.
	m = update(m, key("o"))
	assert.Empty(t, m.visibleServers())
	m = update(m, key("o"))
	assert.Len(t, m.visibleServers(), 1)
}

func TestAnalyticsView_Toggles(t *testing.T) {
	m, _ := newTestModel(t, records("alpha")...)
	m = update(m, key("a"))
	assert.Equal(t, ViewAnalytics, m.viewMode)
	m = update(m, key("esc"))
	assert.Equal(t, ViewServers, m.viewMode)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	next, cmd := m.Update(key("q"))
	assert.True(t, next.(Model).quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestView_RendersServersAndPopup(t *testing.T) {
	m, _ := newTestModel(t, records("alpha")...)
	m = update(m, tickMsg(t0))
	m = update(m, key("c"))

	out := m.View()
	assert.True(t, strings.Contains(out, "alpha"), "server name rendered")
	assert.True(t, strings.Contains(out, "Connecting to alpha"), "popup rendered")
	assert.True(t, strings.Contains(out, "wraith"), "header rendered")
}

func TestView_HelpOverlay(t *testing.T) {
	m, _ := newTestModel(t, records("alpha")...)
	m = update(m, key("?"))
	assert.Contains(t, m.View(), "connect to selected server")
}
