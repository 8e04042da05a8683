// Package engine holds the dashboard's single mutable state: server records
// and statuses, live sessions, analytics, and the active popup.
//
// One control loop drives the store: ApplyTick advances time-based work
// (probe scheduling, session reconciliation, popup expiry) and the command
// methods apply user actions between ticks. The store is never mutated from
// two call sites concurrently; the only parallelism is the probe fan-out,
// which rejoins through a completion queue drained at the start of each
// tick.
package engine

import (
	"time"

	"github.com/rileyhilliard/wraith/internal/analytics"
	errs "github.com/rileyhilliard/wraith/internal/errors"
	"github.com/rileyhilliard/wraith/internal/logger"
	"github.com/rileyhilliard/wraith/internal/probe"
	"github.com/rileyhilliard/wraith/internal/server"
	"github.com/rileyhilliard/wraith/internal/session"
)

// Status is a server's current reachability as shown on the dashboard.
type Status int

const (
	StatusUnknown Status = iota
	StatusOnline
	StatusOffline
	StatusConnecting
	StatusWarning
)

// String returns the dashboard label for the status.
func (s Status) String() string {
	switch s {
	case StatusOnline:
		return "ONLINE"
	case StatusOffline:
		return "OFFLINE"
	case StatusConnecting:
		return "CONNECTING"
	case StatusWarning:
		return "WARNING"
	default:
		return "UNKNOWN"
	}
}

// Config tunes the engine's timing and concurrency.
type Config struct {
	// BaseInterval is the probe cadence for a healthy server.
	BaseInterval time.Duration
	// ProbeTimeout bounds each probe attempt.
	ProbeTimeout time.Duration
	// PopupTTL is how long popups stay up before auto-dismissing.
	PopupTTL time.Duration
	// MaxInFlight caps concurrent probe attempts.
	MaxInFlight int
	// MaxMultiplier caps the adaptive backoff multiplier. A server failing
	// repeatedly is probed at BaseInterval×MaxMultiplier at most.
	MaxMultiplier int
	// HistorySize is the per-server latency ring capacity.
	HistorySize int
}

// DefaultConfig returns the tuning used by the dashboard.
func DefaultConfig() Config {
	return Config{
		BaseInterval:  30 * time.Second,
		ProbeTimeout:  probe.DefaultTimeout,
		PopupTTL:      4 * time.Second,
		MaxInFlight:   16,
		MaxMultiplier: 8,
		HistorySize:   analytics.DefaultHistorySize,
	}
}

// PopupKind selects the popup's styling.
type PopupKind int

const (
	PopupInfo PopupKind = iota
	PopupSuccess
	PopupError
)

// popupState is the single active popup. New popups replace the old one.
type popupState struct {
	message  string
	kind     PopupKind
	created  time.Time
	deadline time.Time
}

// serverState is everything the store tracks for one record beyond the
// record itself.
type serverState struct {
	rec   server.Record
	class server.Classification

	status Status
	// lastReachable is the most recent probe-derived status. While sessions
	// are active the visible status stays Connecting; this is the value it
	// reverts to when the last session ends.
	lastReachable Status

	latency    time.Duration
	lastProbe  time.Time
	lastErr    string
	multiplier int
	probing    bool
	forceProbe bool
}

// PersistFunc saves the current record set after each mutating command.
type PersistFunc func(records []server.Record) error

// Store owns all engine state. Not safe for concurrent use: one goroutine
// drives ApplyTick and the command methods.
type Store struct {
	cfg     Config
	servers map[string]*serverState
	order   []string
	tracker *session.Tracker
	sched   *scheduler
	stats   *analytics.Set
	popup   *popupState
	persist PersistFunc
	log     logger.Logger
}

// New builds a store that launches sessions through launcher and checks
// their liveness through checker. Probing defaults to a TCP reachability
// check; SetProber overrides it.
func New(cfg Config, launcher session.Launcher, checker session.ProcessChecker) *Store {
	if cfg.BaseInterval <= 0 {
		cfg.BaseInterval = DefaultConfig().BaseInterval
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultConfig().ProbeTimeout
	}
	if cfg.PopupTTL <= 0 {
		cfg.PopupTTL = DefaultConfig().PopupTTL
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = DefaultConfig().MaxInFlight
	}
	if cfg.MaxMultiplier <= 0 {
		cfg.MaxMultiplier = DefaultConfig().MaxMultiplier
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultConfig().HistorySize
	}
	return &Store{
		cfg:     cfg,
		servers: make(map[string]*serverState),
		tracker: session.NewTracker(launcher, checker),
		sched:   newScheduler(probe.TCP, cfg.ProbeTimeout, cfg.MaxInFlight),
		stats:   analytics.NewSet(cfg.HistorySize),
		log:     logger.NewEnvLogger("[engine]"),
	}
}

// SetProber replaces the probe function. Tests inject deterministic probes
// here; the CLI swaps in the deep SSH handshake probe.
func (s *Store) SetProber(fn probe.Func) {
	if fn != nil {
		s.sched.prober = fn
	}
}

// SetLogger replaces the store's logger.
func (s *Store) SetLogger(log logger.Logger) {
	if log != nil {
		s.log = log
		s.tracker.SetLogger(log)
	}
}

// OnPersist registers the callback invoked with the full record set after
// every mutating command.
func (s *Store) OnPersist(fn PersistFunc) {
	s.persist = fn
}

// Load seeds the store with records, typically from the configuration file.
// Every server starts Unknown and is due for an immediate probe.
func (s *Store) Load(records []server.Record) {
	for _, rec := range records {
		if _, exists := s.servers[rec.ID]; exists {
			continue
		}
		s.servers[rec.ID] = newServerState(rec)
		s.order = append(s.order, rec.ID)
	}
}

func newServerState(rec server.Record) *serverState {
	return &serverState{
		rec:           rec,
		class:         server.Assess(rec.Auth, rec.Port),
		status:        StatusUnknown,
		lastReachable: StatusUnknown,
		multiplier:    1,
	}
}

// ApplyTick advances all time-based work: drains finished probes, schedules
// due ones, reconciles sessions, and expires the popup. Probe application
// runs before session reconciliation so a session ending in the same tick as
// a probe completing resolves deterministically.
func (s *Store) ApplyTick(now time.Time) {
	for _, o := range s.sched.drain() {
		s.applyOutcome(o, now)
	}
	s.scheduleDue(now)
	for _, ended := range s.tracker.Reconcile(now) {
		s.sessionEnded(ended)
	}
	if s.popup != nil && !now.Before(s.popup.deadline) {
		s.popup = nil
	}
}

// scheduleDue launches probes for every server whose adaptive interval has
// elapsed or that has a pending manual refresh. A server already being
// probed is skipped; a pending manual refresh for it coalesces into the
// in-flight attempt.
func (s *Store) scheduleDue(now time.Time) {
	for _, id := range s.order {
		st := s.servers[id]
		if st.probing {
			st.forceProbe = false
			continue
		}
		interval := s.cfg.BaseInterval * time.Duration(st.multiplier)
		due := st.forceProbe || st.lastProbe.IsZero() || now.Sub(st.lastProbe) >= interval
		if !due {
			continue
		}
		if !s.sched.tryLaunch(id, st.rec.Address()) {
			// concurrency cap reached; stays due for a later tick
			continue
		}
		st.probing = true
		st.forceProbe = false
		st.lastProbe = now
	}
}

// applyOutcome folds one finished probe into the store. Outcomes for
// deleted servers are discarded silently.
func (s *Store) applyOutcome(o outcome, now time.Time) {
	st, ok := s.servers[o.id]
	if !ok {
		return
	}
	st.probing = false
	s.stats.RecordProbe(o.id, o.result.Reachable, o.result.Latency, now)

	prev := st.lastReachable
	if o.result.Reachable {
		st.multiplier = 1
		st.lastReachable = StatusOnline
		st.latency = o.result.Latency
		st.lastErr = ""
		if prev == StatusOffline {
			s.showPopup(st.rec.Name+" is back online", PopupSuccess, now)
		}
	} else {
		st.multiplier *= 2
		if st.multiplier > s.cfg.MaxMultiplier {
			st.multiplier = s.cfg.MaxMultiplier
		}
		st.lastReachable = StatusOffline
		if o.result.Err != nil {
			st.lastErr = o.result.Err.Kind.String()
		} else {
			st.lastErr = "unreachable"
		}
		if prev == StatusOnline {
			s.showPopup(st.rec.Name+" went offline", PopupError, now)
		}
	}
	// While sessions are active the visible status stays Connecting; the
	// probe result becomes the revert target instead.
	if s.tracker.CountFor(o.id) == 0 {
		st.status = st.lastReachable
	}
}

// sessionEnded records an ended session and, when it was the server's last,
// reverts the status to the probe-derived value. Sessions of deleted
// servers pass through with analytics dropped.
func (s *Store) sessionEnded(ended session.Session) {
	s.stats.RecordSessionEnd(ended.ServerID)
	st, ok := s.servers[ended.ServerID]
	if !ok {
		return
	}
	if s.tracker.CountFor(ended.ServerID) == 0 {
		st.status = st.lastReachable
	}
}

// AddServer registers a new record and persists the record set.
func (s *Store) AddServer(rec server.Record) error {
	if rec.ID == "" {
		return errs.New(errs.ErrEngine, "server record has no id", "create records with server.NewRecord")
	}
	if _, exists := s.servers[rec.ID]; exists {
		return errs.New(errs.ErrEngine, "server already exists: "+rec.Name, "")
	}
	s.servers[rec.ID] = newServerState(rec)
	s.order = append(s.order, rec.ID)
	s.log.Debug("added server %s (%s)", rec.Name, rec.Address())
	return s.persistRecords()
}

// EditServer replaces an existing record, recomputes its security
// classification, and forces a fresh probe of the possibly-changed address.
func (s *Store) EditServer(rec server.Record) error {
	st, ok := s.servers[rec.ID]
	if !ok {
		return errs.New(errs.ErrEngine, "server not found", "")
	}
	st.rec = rec
	st.class = server.Assess(rec.Auth, rec.Port)
	st.forceProbe = true
	return s.persistRecords()
}

// DeleteServer removes a record and its analytics. Sessions tracked against
// it keep running as orphans: they are still reconciled, just no longer
// grouped under a record.
func (s *Store) DeleteServer(id string) error {
	st, ok := s.servers[id]
	if !ok {
		return errs.New(errs.ErrEngine, "server not found", "")
	}
	delete(s.servers, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.stats.Forget(id)
	s.log.Debug("deleted server %s", st.rec.Name)
	return s.persistRecords()
}

// Connect launches a terminal session for the server. On success the status
// becomes Connecting and a popup confirms the launch; on failure the status
// is left unchanged and the popup carries the error.
func (s *Store) Connect(id string, now time.Time) error {
	st, ok := s.servers[id]
	if !ok {
		return errs.New(errs.ErrEngine, "server not found", "")
	}
	_, err := s.tracker.Launch(id, session.SpecFor(st.rec), now)
	if err != nil {
		s.showPopup("Failed to connect to "+st.rec.Name+": "+err.Error(), PopupError, now)
		return err
	}
	s.stats.RecordLaunch(id, st.rec.Name, now)
	st.status = StatusConnecting
	s.showPopup("Connecting to "+st.rec.Name, PopupSuccess, now)
	return nil
}

// Refresh forces an immediate probe of one server, bypassing the adaptive
// interval. If a probe is already in flight the request coalesces into it.
func (s *Store) Refresh(id string) error {
	st, ok := s.servers[id]
	if !ok {
		return errs.New(errs.ErrEngine, "server not found", "")
	}
	if !st.probing {
		st.forceProbe = true
	}
	return nil
}

// RefreshAll forces an immediate probe of every server.
func (s *Store) RefreshAll() {
	for _, st := range s.servers {
		if !st.probing {
			st.forceProbe = true
		}
	}
}

// KillSession terminates one tracked session by pid.
func (s *Store) KillSession(pid int, now time.Time) error {
	ended, ok := s.tracker.Kill(pid)
	if !ok {
		return errs.New(errs.ErrEngine, "no session with that pid", "")
	}
	s.sessionEnded(ended)
	s.showPopup("Session killed", PopupInfo, now)
	return nil
}

// KillAllSessions terminates every tracked session.
func (s *Store) KillAllSessions(now time.Time) {
	ended := s.tracker.KillAll()
	for _, sess := range ended {
		s.sessionEnded(sess)
	}
	if len(ended) > 0 {
		s.showPopup("All sessions killed", PopupInfo, now)
	}
}

// ShowPopup displays a message, replacing any active popup.
func (s *Store) ShowPopup(message string, kind PopupKind, now time.Time) {
	s.showPopup(message, kind, now)
}

// DismissPopup clears the active popup. Calling it with none active is a
// no-op.
func (s *Store) DismissPopup() {
	s.popup = nil
}

func (s *Store) showPopup(message string, kind PopupKind, now time.Time) {
	s.popup = &popupState{
		message:  message,
		kind:     kind,
		created:  now,
		deadline: now.Add(s.cfg.PopupTTL),
	}
}

// Records returns a copy of the record set in display order.
func (s *Store) Records() []server.Record {
	out := make([]server.Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.servers[id].rec)
	}
	return out
}

func (s *Store) persistRecords() error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist(s.Records()); err != nil {
		s.log.Error("persist failed: %v", err)
		return errs.WrapWithCode(err, errs.ErrConfig, "failed to save server list", "check that the config directory is writable")
	}
	return nil
}
