// Package session tracks the lifecycle of spawned terminal sessions.
//
// The tracker owns the pid table: launches register a session, Reconcile
// sweeps the table against the process table and returns whatever ended.
// It is not safe for concurrent use; the engine store is its single owner.
package session

import (
	"sort"
	"time"

	"github.com/rileyhilliard/wraith/internal/logger"
)

// Session is one live terminal process attached to a server.
type Session struct {
	PID       int
	ServerID  string
	StartedAt time.Time
}

// Duration reports how long the session has been running.
func (s Session) Duration(now time.Time) time.Duration {
	d := now.Sub(s.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Tracker maintains the set of live sessions keyed by pid.
type Tracker struct {
	launcher Launcher
	checker  ProcessChecker
	sessions map[int]Session
	log      logger.Logger
}

// NewTracker builds a tracker that spawns through launcher and checks
// liveness through checker.
func NewTracker(launcher Launcher, checker ProcessChecker) *Tracker {
	return &Tracker{
		launcher: launcher,
		checker:  checker,
		sessions: make(map[int]Session),
		log:      logger.Default(),
	}
}

// SetLogger replaces the tracker's logger.
func (t *Tracker) SetLogger(log logger.Logger) {
	if log != nil {
		t.log = log
	}
}

// Launch spawns a session for the given server and registers it. On failure
// the returned error is a *LaunchError and the table is unchanged.
func (t *Tracker) Launch(serverID string, spec Spec, now time.Time) (Session, error) {
	pid, err := t.launcher.Launch(spec)
	if err != nil {
		t.log.Debug("session launch failed for %s: %v", spec.ServerName, err)
		return Session{}, err
	}
	sess := Session{PID: pid, ServerID: serverID, StartedAt: now}
	t.sessions[pid] = sess
	t.log.Debug("session started: pid=%d server=%s", pid, spec.ServerName)
	return sess, nil
}

// Reconcile removes sessions whose process has exited and returns them,
// oldest first. Sessions whose liveness cannot be determined are treated as
// ended rather than lingering forever.
func (t *Tracker) Reconcile(now time.Time) []Session {
	var ended []Session
	for pid, sess := range t.sessions {
		if !t.checker.Alive(pid) {
			ended = append(ended, sess)
			delete(t.sessions, pid)
		}
	}
	sort.Slice(ended, func(i, j int) bool {
		if ended[i].StartedAt.Equal(ended[j].StartedAt) {
			return ended[i].PID < ended[j].PID
		}
		return ended[i].StartedAt.Before(ended[j].StartedAt)
	})
	if len(ended) > 0 {
		t.log.Debug("reconciled %d ended session(s)", len(ended))
	}
	return ended
}

// Sessions returns all live sessions, oldest first.
func (t *Tracker) Sessions() []Session {
	out := make([]Session, 0, len(t.sessions))
	for _, sess := range t.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].PID < out[j].PID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

// Count reports the number of live sessions.
func (t *Tracker) Count() int {
	return len(t.sessions)
}

// CountFor reports the number of live sessions attached to a server.
func (t *Tracker) CountFor(serverID string) int {
	n := 0
	for _, sess := range t.sessions {
		if sess.ServerID == serverID {
			n++
		}
	}
	return n
}

// Kill terminates a single session by pid and removes it from the table.
// The entry is removed even if termination fails: the next reconcile would
// drop it anyway once the process is gone, and a stuck process should not
// pin a dead table entry.
func (t *Tracker) Kill(pid int) (Session, bool) {
	sess, ok := t.sessions[pid]
	if !ok {
		return Session{}, false
	}
	if err := t.checker.Terminate(pid); err != nil {
		t.log.Debug("terminate pid %d: %v", pid, err)
	}
	delete(t.sessions, pid)
	return sess, true
}

// KillAll terminates every live session and clears the table. It returns the
// sessions that were terminated, oldest first.
func (t *Tracker) KillAll() []Session {
	ended := t.Sessions()
	for _, sess := range ended {
		if err := t.checker.Terminate(sess.PID); err != nil {
			t.log.Debug("terminate pid %d: %v", sess.PID, err)
		}
	}
	t.sessions = make(map[int]Session)
	return ended
}
