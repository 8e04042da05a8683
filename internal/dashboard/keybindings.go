package dashboard

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/wraith/internal/engine"
)

// Key bindings as constants for consistency.
const (
	KeyQuit          = "q"
	KeyQuitAlt       = "ctrl+c"
	KeyConnect       = "c"
	KeyConnectAlt    = "enter"
	KeyRefresh       = "r"
	KeyRefreshAll    = "R"
	KeyDelete        = "d"
	KeyConfirm       = "y"
	KeyKillSessions  = "K"
	KeySelectPrev    = "up"
	KeySelectPrevK   = "k"
	KeySelectNext    = "down"
	KeySelectNextJ   = "j"
	KeySelectFirst   = "home"
	KeySelectLast    = "end"
	KeyFilter        = "/"
	KeyOnlineOnly    = "o"
	KeyAnalyticsView = "a"
	KeyDismiss       = "esc"
	KeyToggleHelp    = "?"
)

// HandleKeyMsg processes keyboard input. Returns true if the key was
// handled.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// While typing a filter, keys go to the input.
	if m.filtering {
		switch key {
		case KeyDismiss:
			m.filtering = false
			m.filter.SetValue("")
			m.filter.Blur()
			m.clampSelection()
			return true, nil
		case "enter":
			m.filtering = false
			m.filter.Blur()
			m.clampSelection()
			return true, nil
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.clampSelection()
			return true, cmd
		}
	}

	// A pending delete consumes the next key: y confirms, anything else
	// cancels.
	if m.pendingDelete != "" {
		id := m.pendingDelete
		m.pendingDelete = ""
		if key == KeyConfirm {
			if err := m.store.DeleteServer(id); err == nil {
				m.store.ShowPopup("Server deleted", engine.PopupInfo, m.now)
			}
			m.refreshSnapshot()
		} else {
			m.store.DismissPopup()
			m.refreshSnapshot()
		}
		return true, nil
	}

	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key == KeyDismiss {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return true, tea.Quit

	case KeySelectPrev, KeySelectPrevK:
		if m.selected > 0 {
			m.selected--
		}
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		if m.selected < len(m.visibleServers())-1 {
			m.selected++
		}
		return true, nil

	case KeySelectFirst:
		m.selected = 0
		return true, nil

	case KeySelectLast:
		if n := len(m.visibleServers()); n > 0 {
			m.selected = n - 1
		}
		return true, nil

	case KeyConnect, KeyConnectAlt:
		if v, ok := m.selectedServer(); ok {
			// errors surface through the popup; nothing else to do here
			_ = m.store.Connect(v.ID, m.now)
			m.refreshSnapshot()
		}
		return true, nil

	case KeyRefresh:
		if v, ok := m.selectedServer(); ok {
			_ = m.store.Refresh(v.ID)
		}
		return true, nil

	case KeyRefreshAll:
		m.store.RefreshAll()
		return true, nil

	case KeyDelete:
		if v, ok := m.selectedServer(); ok {
			m.pendingDelete = v.ID
			m.store.ShowPopup("Delete "+v.Name+"? Press y to confirm", engine.PopupInfo, m.now)
			m.refreshSnapshot()
		}
		return true, nil

	case KeyKillSessions:
		m.store.KillAllSessions(m.now)
		m.refreshSnapshot()
		return true, nil

	case KeyFilter:
		m.filtering = true
		m.filter.Focus()
		return true, textinput.Blink

	case KeyOnlineOnly:
		m.onlineOnly = !m.onlineOnly
		m.clampSelection()
		return true, nil

	case KeyAnalyticsView:
		if m.viewMode == ViewAnalytics {
			m.viewMode = ViewServers
		} else {
			m.viewMode = ViewAnalytics
		}
		return true, nil

	case KeyDismiss:
		if m.viewMode == ViewAnalytics {
			m.viewMode = ViewServers
			return true, nil
		}
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.clampSelection()
			return true, nil
		}
		m.store.DismissPopup()
		m.refreshSnapshot()
		return true, nil
	}

	return false, nil
}
