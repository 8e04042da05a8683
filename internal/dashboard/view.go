package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/wraith/internal/engine"
	"github.com/rileyhilliard/wraith/internal/ui"
)

const sparklineWidth = 12

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.showHelp {
		b.WriteString(m.renderHelp())
	} else if m.viewMode == ViewAnalytics {
		b.WriteString(m.renderAnalytics())
	} else {
		b.WriteString(m.renderServers())
		if len(m.snap.Sessions) > 0 {
			b.WriteString("\n")
			b.WriteString(m.renderSessions())
		}
	}

	if m.snap.Popup != nil {
		b.WriteString("\n")
		b.WriteString(renderPopup(m.snap.Popup))
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	t := m.snap.Totals
	title := headerStyle.Render("wraith")
	counts := fmt.Sprintf("%s %d online  %s %d offline  %s %d connecting  %s %d sessions",
		statusSymbol(engine.StatusOnline), t.Online,
		statusSymbol(engine.StatusOffline), t.Offline,
		statusSymbol(engine.StatusConnecting), t.Connecting,
		ui.SymbolSession, t.Sessions)
	if t.Warning > 0 {
		counts += fmt.Sprintf("  %s %d warning", statusSymbol(engine.StatusWarning), t.Warning)
	}
	rate := mutedStyle.Render(fmt.Sprintf("probe success %.0f%%", t.SuccessRate*100))
	return title + "  " + counts + "  " + rate
}

func (m Model) renderServers() string {
	servers := m.visibleServers()
	if len(servers) == 0 {
		if m.filter.Value() != "" || m.onlineOnly {
			return mutedStyle.Render("no servers match the current filter")
		}
		return mutedStyle.Render("no servers configured; add one with 'wraith server add'")
	}

	var b strings.Builder
	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	for i, v := range servers {
		row := m.renderServerRow(v)
		if i == m.selected {
			row = selectedRowStyle.Render("▶ ") + row
		} else {
			row = "  " + row
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderServerRow(v engine.ServerView) string {
	latency := "—"
	if v.Status == engine.StatusOnline && v.Latency > 0 {
		latency = fmt.Sprintf("%dms", v.Latency.Milliseconds())
	}
	if v.Status == engine.StatusOffline && v.LastError != "" {
		latency = v.LastError
	}

	spark := ui.RenderSparkline(v.Analytics.LatencyHistory, sparklineWidth)
	if spark == "" {
		spark = mutedStyle.Render(strings.Repeat("·", sparklineWidth))
	}

	sessions := ""
	if v.Sessions > 0 {
		sessions = fmt.Sprintf(" %s%d", ui.SymbolSession, v.Sessions)
	}

	symbol := statusSymbol(v.Status)
	if v.Status == engine.StatusConnecting {
		symbol = m.spinner.View()
	}

	return fmt.Sprintf("%s %-18s %-28s %-14s %s  %-10s %s%s",
		symbol,
		truncate(v.Name, 18),
		truncate(v.ConnectionLabel(), 28),
		classLabel(v.Classification),
		spark,
		latency,
		mutedStyle.Render(strings.Join(v.Tags, ",")),
		sessions)
}

func (m Model) renderSessions() string {
	var b strings.Builder
	b.WriteString(sectionTitleStyle.Render("Active sessions"))
	b.WriteString("\n")
	for _, s := range m.snap.Sessions {
		name := s.ServerName
		if name == "" {
			name = mutedStyle.Render("(deleted server)")
		}
		b.WriteString(fmt.Sprintf("  %s %s  pid %d  up %s\n",
			ui.SymbolSession, name, s.PID, formatDuration(s.Duration)))
	}
	return b.String()
}

func (m Model) renderAnalytics() string {
	var b strings.Builder
	b.WriteString(sectionTitleStyle.Render("Most used servers"))
	b.WriteString("\n")
	if len(m.snap.Ranking) == 0 {
		b.WriteString(mutedStyle.Render("  no sessions launched yet\n"))
	}
	names := make(map[string]string, len(m.snap.Servers))
	for _, v := range m.snap.Servers {
		names[v.ID] = v.Name
	}
	for i, u := range m.snap.Ranking {
		name := names[u.ServerID]
		if name == "" {
			name = "(deleted)"
		}
		b.WriteString(fmt.Sprintf("  %d. %-20s %d sessions\n", i+1, truncate(name, 20), u.Sessions))
	}

	b.WriteString("\n")
	b.WriteString(sectionTitleStyle.Render("Recent connections"))
	b.WriteString("\n")
	if len(m.snap.History) == 0 {
		b.WriteString(mutedStyle.Render("  none\n"))
	}
	for i, h := range m.snap.History {
		if i >= 10 {
			break
		}
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			mutedStyle.Render(h.LaunchedAt.Format("15:04:05")), h.ServerName))
	}
	return b.String()
}

func (m Model) renderHelp() string {
	lines := []string{
		"c/enter  connect to selected server",
		"r        refresh selected server",
		"R        refresh all servers",
		"d        delete selected server (y confirms)",
		"K        kill all sessions",
		"/        filter servers",
		"o        toggle online-only",
		"a        analytics view",
		"esc      dismiss popup / clear filter",
		"q        quit",
	}
	return sectionTitleStyle.Render("Keys") + "\n  " + strings.Join(lines, "\n  ") + "\n"
}

func (m Model) renderFooter() string {
	return footerStyle.Render("c connect · r refresh · d delete · / filter · a analytics · ? help · q quit")
}

func renderPopup(p *engine.PopupView) string {
	style := popupInfoStyle
	switch p.Kind {
	case engine.PopupSuccess:
		style = popupSuccessStyle
	case engine.PopupError:
		style = popupErrorStyle
	}
	remaining := mutedStyle.Render(fmt.Sprintf(" (%ds)", int(p.Remaining.Seconds()+0.999)))
	return style.Render(p.Message + remaining)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}

func truncate(s string, max int) string {
	if lipgloss.Width(s) <= max {
		return s
	}
	runes := []rune(s)
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
