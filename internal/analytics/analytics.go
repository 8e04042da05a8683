// Package analytics aggregates rolling per-server statistics: latency
// history, probe counters, and session usage ranking. The engine store is the
// single owner; all reads return copies.
package analytics

import (
	"sort"
	"time"
)

// DefaultHistorySize is the number of latency samples retained per server.
const DefaultHistorySize = 20

// MaxLaunchHistory caps the global most-recent-first launch log.
const MaxLaunchHistory = 50

// Set tracks statistics for a collection of servers.
type Set struct {
	size    int
	servers map[string]*serverStats
	history []LaunchEntry
}

// serverStats holds the rolling state for one server.
// Counters only increase; the ring buffer overwrites its oldest sample.
type serverStats struct {
	latency     *ringBuffer
	attempts    uint64
	failures    uint64
	sessions    uint64
	ended       uint64
	lastLatency time.Duration
	lastSeen    time.Time
}

// LaunchEntry records one session launch for the history log.
type LaunchEntry struct {
	ServerID   string
	ServerName string
	LaunchedAt time.Time
}

// Usage ranks a server by how many sessions were launched against it.
type Usage struct {
	ServerID string
	Sessions uint64
}

// View is a read-only snapshot of one server's statistics.
type View struct {
	Attempts      uint64
	Failures      uint64
	Sessions      uint64
	EndedSessions uint64
	SuccessRate   float64 // 0 when no attempts yet
	// LatencyHistory is in chronological order (oldest first), in
	// milliseconds, sized for sparkline rendering.
	LatencyHistory []float64
	LastLatency    time.Duration
	LastSeen       time.Time
}

// NewSet creates an analytics set retaining size latency samples per server.
func NewSet(size int) *Set {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &Set{
		size:    size,
		servers: make(map[string]*serverStats),
	}
}

// RecordProbe records one probe outcome for the given server.
// Failed probes count an attempt and a failure but push no latency sample:
// a timeout's duration measures the deadline, not the network.
func (s *Set) RecordProbe(id string, success bool, latency time.Duration, now time.Time) {
	st := s.getOrCreate(id)
	st.attempts++
	if success {
		st.latency.push(float64(latency.Milliseconds()))
		st.lastLatency = latency
		st.lastSeen = now
	} else {
		st.failures++
	}
}

// RecordLaunch records a session launch against the given server.
func (s *Set) RecordLaunch(id, name string, now time.Time) {
	st := s.getOrCreate(id)
	st.sessions++

	s.history = append([]LaunchEntry{{
		ServerID:   id,
		ServerName: name,
		LaunchedAt: now,
	}}, s.history...)
	if len(s.history) > MaxLaunchHistory {
		s.history = s.history[:MaxLaunchHistory]
	}
}

// RecordSessionEnd notes that a session for the given server ended.
// Orphaned sessions may reference a deleted server; those ends are dropped.
func (s *Set) RecordSessionEnd(id string) {
	if st, ok := s.servers[id]; ok {
		st.ended++
	}
}

// Snapshot returns a copy of the statistics for one server. A server never
// probed yields a zero view with SuccessRate 0.
func (s *Set) Snapshot(id string) View {
	st, ok := s.servers[id]
	if !ok {
		return View{}
	}

	v := View{
		Attempts:      st.attempts,
		Failures:      st.failures,
		Sessions:      st.sessions,
		EndedSessions: st.ended,
		LastLatency:   st.lastLatency,
		LastSeen:      st.lastSeen,
	}
	if st.attempts > 0 {
		v.SuccessRate = float64(st.attempts-st.failures) / float64(st.attempts)
	}
	v.LatencyHistory = st.latency.getAll()
	return v
}

// Ranking returns all tracked servers ordered by sessions launched,
// descending. Ties break by server id so the order is deterministic.
func (s *Set) Ranking() []Usage {
	ranking := make([]Usage, 0, len(s.servers))
	for id, st := range s.servers {
		ranking = append(ranking, Usage{ServerID: id, Sessions: st.sessions})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Sessions != ranking[j].Sessions {
			return ranking[i].Sessions > ranking[j].Sessions
		}
		return ranking[i].ServerID < ranking[j].ServerID
	})
	return ranking
}

// History returns the launch log, most recent first.
func (s *Set) History() []LaunchEntry {
	out := make([]LaunchEntry, len(s.history))
	copy(out, s.history)
	return out
}

// Forget drops all statistics for a server. Called when a record is deleted.
func (s *Set) Forget(id string) {
	delete(s.servers, id)
}

// GlobalSuccessRate returns successes over attempts across every server,
// or 0 when nothing has been probed yet.
func (s *Set) GlobalSuccessRate() float64 {
	var attempts, failures uint64
	for _, st := range s.servers {
		attempts += st.attempts
		failures += st.failures
	}
	if attempts == 0 {
		return 0
	}
	return float64(attempts-failures) / float64(attempts)
}

func (s *Set) getOrCreate(id string) *serverStats {
	st, ok := s.servers[id]
	if !ok {
		st = &serverStats{latency: newRingBuffer(s.size)}
		s.servers[id] = st
	}
	return st
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

// push adds a value, overwriting the oldest sample once full.
func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}

	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head points to the next write position, so the most recent value is at
	// head-1; we want count values ending there.
	start := (r.head - count + r.size) % r.size

	for i := 0; i < count; i++ {
		idx := (start + i) % r.size
		result[i] = r.data[idx]
	}

	return result
}

// getAll returns all stored values in chronological order.
func (r *ringBuffer) getAll() []float64 {
	return r.getLast(r.count)
}
