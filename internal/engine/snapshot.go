package engine

import (
	"time"

	"github.com/rileyhilliard/wraith/internal/analytics"
	"github.com/rileyhilliard/wraith/internal/server"
)

// ServerView is one server as rendered on the dashboard.
type ServerView struct {
	ID             string
	Name           string
	Host           string
	Port           int
	Username       string
	Auth           server.AuthMethod
	Tags           []string
	Description    string
	Status         Status
	Classification server.Classification
	Latency        time.Duration
	LastProbe      time.Time
	LastError      string
	Sessions       int
	Analytics      analytics.View
}

// ConnectionLabel returns the user@host:port form shown in the server list.
func (v ServerView) ConnectionLabel() string {
	rec := server.Record{Host: v.Host, Port: v.Port, Username: v.Username}
	if v.Username == "" {
		return rec.Address()
	}
	return rec.ConnectionString()
}

// Matches reports whether the view matches a free-text filter.
func (v ServerView) Matches(filter string) bool {
	rec := server.Record{
		Name: v.Name, Host: v.Host, Username: v.Username,
		Tags: v.Tags, Description: v.Description,
	}
	return rec.Matches(filter)
}

// SessionView is one live session as rendered on the dashboard. ServerName
// is empty for sessions orphaned by a server deletion.
type SessionView struct {
	PID        int
	ServerID   string
	ServerName string
	StartedAt  time.Time
	Duration   time.Duration
}

// PopupView is the active popup with its remaining auto-dismiss time.
type PopupView struct {
	Message   string
	Kind      PopupKind
	Remaining time.Duration
}

// Totals aggregates per-status counts and global figures.
type Totals struct {
	Online      int
	Offline     int
	Connecting  int
	Warning     int
	Unknown     int
	Sessions    int
	SuccessRate float64
}

// Snapshot is an immutable view of the store for one rendered frame. The
// presentation layer reads snapshots only and submits commands for any
// mutation.
type Snapshot struct {
	Servers  []ServerView
	Sessions []SessionView
	Popup    *PopupView
	Totals   Totals
	Ranking  []analytics.Usage
	History  []analytics.LaunchEntry
	TakenAt  time.Time
}

// Snapshot captures the store's current state. The result shares nothing
// mutable with the store.
func (s *Store) Snapshot(now time.Time) Snapshot {
	snap := Snapshot{
		Servers: make([]ServerView, 0, len(s.order)),
		TakenAt: now,
	}

	for _, id := range s.order {
		st := s.servers[id]
		view := ServerView{
			ID:             st.rec.ID,
			Name:           st.rec.Name,
			Host:           st.rec.Host,
			Port:           st.rec.Port,
			Username:       st.rec.Username,
			Auth:           st.rec.Auth,
			Tags:           append([]string(nil), st.rec.Tags...),
			Description:    st.rec.Description,
			Status:         st.status,
			Classification: st.class,
			Latency:        st.latency,
			LastProbe:      st.lastProbe,
			LastError:      st.lastErr,
			Sessions:       s.tracker.CountFor(id),
			Analytics:      s.stats.Snapshot(id),
		}
		snap.Servers = append(snap.Servers, view)

		switch st.status {
		case StatusOnline:
			snap.Totals.Online++
		case StatusOffline:
			snap.Totals.Offline++
		case StatusConnecting:
			snap.Totals.Connecting++
		case StatusWarning:
			snap.Totals.Warning++
		default:
			snap.Totals.Unknown++
		}
	}

	for _, sess := range s.tracker.Sessions() {
		view := SessionView{
			PID:       sess.PID,
			ServerID:  sess.ServerID,
			StartedAt: sess.StartedAt,
			Duration:  sess.Duration(now),
		}
		if st, ok := s.servers[sess.ServerID]; ok {
			view.ServerName = st.rec.Name
		}
		snap.Sessions = append(snap.Sessions, view)
	}
	snap.Totals.Sessions = len(snap.Sessions)
	snap.Totals.SuccessRate = s.stats.GlobalSuccessRate()

	if s.popup != nil {
		remaining := s.popup.deadline.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		snap.Popup = &PopupView{
			Message:   s.popup.message,
			Kind:      s.popup.kind,
			Remaining: remaining,
		}
	}

	snap.Ranking = s.stats.Ranking()
	snap.History = s.stats.History()
	return snap
}
