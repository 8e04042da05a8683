package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/wraith/internal/logger"
	"github.com/rileyhilliard/wraith/internal/probe"
	"github.com/rileyhilliard/wraith/internal/server"
	"github.com/rileyhilliard/wraith/internal/session"
	sessiontest "github.com/rileyhilliard/wraith/internal/session/testing"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func okProber(latency time.Duration) probe.Func {
	return func(ctx context.Context, address string, timeout time.Duration) probe.Result {
		return probe.Result{Reachable: true, Latency: latency}
	}
}

func failProber(kind probe.ErrorKind) probe.Func {
	return func(ctx context.Context, address string, timeout time.Duration) probe.Result {
		return probe.Result{Err: &probe.Error{Address: address, Kind: kind}}
	}
}

func newTestStore(t *testing.T, prober probe.Func) (*Store, *sessiontest.FakeLauncher, *sessiontest.FakeChecker) {
	t.Helper()
	launcher := sessiontest.NewFakeLauncher()
	checker := sessiontest.NewFakeChecker()
	s := New(DefaultConfig(), launcher, checker)
	s.SetLogger(logger.Noop())
	if prober != nil {
		s.SetProber(prober)
	}
	return s, launcher, checker
}

// waitIdle blocks until all in-flight probes have queued their outcomes.
// Workers release their slot only after sending, so an empty slot pool
// means every outcome is ready to drain.
func waitIdle(t *testing.T, s *Store) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.sched.inFlight() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("probes did not finish in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func passwordServer(name string) server.Record {
	rec := server.NewRecord(name, "10.0.0.5", 22, "root")
	rec.Auth = server.AuthPassword
	return rec
}

func TestFirstProbe_OnlineVulnerable(t *testing.T) {
	s, _, _ := newTestStore(t, okProber(42*time.Millisecond))
	rec := passwordServer("alpha")
	s.Load([]server.Record{rec})

	s.ApplyTick(t0)
	waitIdle(t, s)
	s.ApplyTick(t0.Add(100 * time.Millisecond))

	snap := s.Snapshot(t0.Add(100 * time.Millisecond))
	require.Len(t, snap.Servers, 1)
	v := snap.Servers[0]
	assert.Equal(t, StatusOnline, v.Status)
	assert.Equal(t, server.ClassVulnerable, v.Classification)
	assert.Equal(t, 42*time.Millisecond, v.Latency)
	assert.Equal(t, 1.0, v.Analytics.SuccessRate)
	assert.Equal(t, []float64{42}, v.Analytics.LatencyHistory)
	assert.Equal(t, 1, snap.Totals.Online)
}

func TestFailedProbe_OfflineWithErrorKind(t *testing.T) {
	s, _, _ := newTestStore(t, failProber(probe.KindConnectionRefused))
	rec := passwordServer("alpha")
	s.Load([]server.Record{rec})

	s.ApplyTick(t0)
	waitIdle(t, s)
	s.ApplyTick(t0.Add(100 * time.Millisecond))

	v := s.Snapshot(t0).Servers[0]
	assert.Equal(t, StatusOffline, v.Status)
	assert.Equal(t, "connection refused", v.LastError)
	assert.Equal(t, 0.0, v.Analytics.SuccessRate)
	assert.Empty(t, v.Analytics.LatencyHistory, "failures add no latency samples")
}

func TestBackoff_DoublesToCapAndResets(t *testing.T) {
	s, _, _ := newTestStore(t, failProber(probe.KindTimeout))
	rec := passwordServer("alpha")
	s.Load([]server.Record{rec})

	now := t0
	wantMultipliers := []int{2, 4, 8, 8, 8}
	for i, want := range wantMultipliers {
		s.ApplyTick(now)
		waitIdle(t, s)
		s.ApplyTick(now)
		st := s.servers[rec.ID]
		assert.Equal(t, want, st.multiplier, "after %d failures", i+1)

		// Not due again until base×multiplier has elapsed.
		shortly := now.Add(s.cfg.BaseInterval*time.Duration(want) - time.Second)
		s.ApplyTick(shortly)
		assert.False(t, st.probing, "probed before backoff interval elapsed")

		now = now.Add(s.cfg.BaseInterval * time.Duration(want))
	}

	s.SetProber(okProber(time.Millisecond))
	s.ApplyTick(now)
	waitIdle(t, s)
	s.ApplyTick(now)
	assert.Equal(t, 1, s.servers[rec.ID].multiplier, "success resets backoff")
}

func TestConcurrencyCap_NeverExceeded(t *testing.T) {
	gate := make(chan struct{})
	var active, peak int64
	prober := func(ctx context.Context, address string, timeout time.Duration) probe.Result {
		n := atomic.AddInt64(&active, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		<-gate
		atomic.AddInt64(&active, -1)
		return probe.Result{Reachable: true, Latency: time.Millisecond}
	}

	s, _, _ := newTestStore(t, prober)
	var records []server.Record
	for i := 0; i < 100; i++ {
		records = append(records, server.NewRecord("srv", "10.0.0.5", 22, "root"))
	}
	s.Load(records)

	s.ApplyTick(t0)
	assert.Equal(t, s.cfg.MaxInFlight, s.sched.inFlight())

	// More ticks while saturated must not start extra probes.
	s.ApplyTick(t0.Add(100 * time.Millisecond))
	assert.LessOrEqual(t, int(atomic.LoadInt64(&peak)), s.cfg.MaxInFlight)

	close(gate)
	waitIdle(t, s)
	s.ApplyTick(t0.Add(200 * time.Millisecond))
	assert.LessOrEqual(t, int(atomic.LoadInt64(&peak)), s.cfg.MaxInFlight)
}

func TestRefresh_CoalescesWithInFlightProbe(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan struct{})
	var calls int64
	prober := func(ctx context.Context, address string, timeout time.Duration) probe.Result {
		if atomic.AddInt64(&calls, 1) == 1 {
			close(started)
		}
		<-gate
		return probe.Result{Reachable: true, Latency: time.Millisecond}
	}
	s, _, _ := newTestStore(t, prober)
	rec := passwordServer("alpha")
	s.Load([]server.Record{rec})

	s.ApplyTick(t0)
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("probe did not start in time")
	}
	require.NoError(t, s.Refresh(rec.ID))
	s.ApplyTick(t0.Add(100 * time.Millisecond))
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls), "manual refresh must coalesce, not duplicate")

	close(gate)
	waitIdle(t, s)
	s.ApplyTick(t0.Add(200 * time.Millisecond))
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))
	assert.False(t, s.servers[rec.ID].forceProbe)
}

func TestRefresh_BypassesInterval(t *testing.T) {
	var calls int64
	prober := func(ctx context.Context, address string, timeout time.Duration) probe.Result {
		atomic.AddInt64(&calls, 1)
		return probe.Result{Reachable: true, Latency: time.Millisecond}
	}
	s, _, _ := newTestStore(t, prober)
	rec := passwordServer("alpha")
	s.Load([]server.Record{rec})

	s.ApplyTick(t0)
	waitIdle(t, s)
	s.ApplyTick(t0.Add(time.Second))
	require.EqualValues(t, 1, atomic.LoadInt64(&calls))

	// Well inside the 30s interval, a manual refresh still probes.
	require.NoError(t, s.Refresh(rec.ID))
	s.ApplyTick(t0.Add(2 * time.Second))
	waitIdle(t, s)
	assert.EqualValues(t, 2, atomic.LoadInt64(&calls))
}

func TestConnect_Success(t *testing.T) {
	s, launcher, _ := newTestStore(t, okProber(time.Millisecond))
	rec := passwordServer("alpha")
	s.Load([]server.Record{rec})

	require.NoError(t, s.Connect(rec.ID, t0))
	require.Len(t, launcher.Launched, 1)
	assert.Equal(t, "10.0.0.5", launcher.Launched[0].Host)

	snap := s.Snapshot(t0)
	assert.Equal(t, StatusConnecting, snap.Servers[0].Status)
	assert.Equal(t, 1, snap.Servers[0].Sessions)
	require.Len(t, snap.Sessions, 1)
	assert.Equal(t, "alpha", snap.Sessions[0].ServerName)
	require.NotNil(t, snap.Popup)
	assert.Equal(t, PopupSuccess, snap.Popup.Kind)
}

func TestConnect_NoTerminalLeavesStatusUnchanged(t *testing.T) {
	s, launcher, _ := newTestStore(t, okProber(time.Millisecond))
	rec := passwordServer("alpha")
	s.Load([]server.Record{rec})

	s.ApplyTick(t0)
	waitIdle(t, s)
	s.ApplyTick(t0.Add(time.Second))
	require.Equal(t, StatusOnline, s.Snapshot(t0).Servers[0].Status)

	launcher.Err = &session.LaunchError{Kind: session.LaunchNoTerminal}
	err := s.Connect(rec.ID, t0.Add(2*time.Second))
	var lerr *session.LaunchError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, session.LaunchNoTerminal, lerr.Kind)

	snap := s.Snapshot(t0.Add(2 * time.Second))
	assert.Equal(t, StatusOnline, snap.Servers[0].Status, "failed launch must not change status")
	assert.Empty(t, snap.Sessions)
	require.NotNil(t, snap.Popup)
	assert.Equal(t, PopupError, snap.Popup.Kind)
}

func TestSessionEnd_RevertsToLastReachable(t *testing.T) {
	s, _, checker := newTestStore(t, okProber(time.Millisecond))
	rec := passwordServer("alpha")
	s.Load([]server.Record{rec})

	s.ApplyTick(t0)
	waitIdle(t, s)
	s.ApplyTick(t0.Add(time.Second))

	require.NoError(t, s.Connect(rec.ID, t0.Add(2*time.Second)))
	require.Equal(t, StatusConnecting, s.Snapshot(t0).Servers[0].Status)

	pid := s.tracker.Sessions()[0].PID
	checker.MarkDead(pid)
	s.ApplyTick(t0.Add(3 * time.Second))

	snap := s.Snapshot(t0.Add(3 * time.Second))
	assert.Equal(t, StatusOnline, snap.Servers[0].Status, "reverts to probe-derived status")
	assert.Empty(t, snap.Sessions)
	assert.Equal(t, uint64(1), snap.Servers[0].Analytics.EndedSessions)
}

func TestProbeDuringConnecting_UpdatesRevertTargetOnly(t *testing.T) {
	s, _, checker := newTestStore(t, okProber(time.Millisecond))
	rec := passwordServer("alpha")
	s.Load([]server.Record{rec})
	require.NoError(t, s.Connect(rec.ID, t0))

	// A probe failing while a session is active must not clobber Connecting.
	s.SetProber(failProber(probe.KindTimeout))
	s.ApplyTick(t0)
	waitIdle(t, s)
	s.ApplyTick(t0.Add(time.Second))
	assert.Equal(t, StatusConnecting, s.Snapshot(t0).Servers[0].Status)

	pid := s.tracker.Sessions()[0].PID
	checker.MarkDead(pid)
	s.ApplyTick(t0.Add(2 * time.Second))
	assert.Equal(t, StatusOffline, s.Snapshot(t0).Servers[0].Status, "session end reveals the probe result")
}

func TestDeleteServer_OrphansSessions(t *testing.T) {
	s, _, checker := newTestStore(t, okProber(time.Millisecond))
	rec := passwordServer("alpha")
	s.Load([]server.Record{rec})
	require.NoError(t, s.Connect(rec.ID, t0))

	require.NoError(t, s.DeleteServer(rec.ID))
	snap := s.Snapshot(t0)
	assert.Empty(t, snap.Servers)
	require.Len(t, snap.Sessions, 1, "orphaned session keeps running")
	assert.Empty(t, snap.Sessions[0].ServerName)

	// Orphans are still reconciled.
	checker.MarkDead(snap.Sessions[0].PID)
	s.ApplyTick(t0.Add(time.Second))
	assert.Empty(t, s.Snapshot(t0).Sessions)
}

func TestProbeOutcomeForDeletedServer_Discarded(t *testing.T) {
	gate := make(chan struct{})
	prober := func(ctx context.Context, address string, timeout time.Duration) probe.Result {
		<-gate
		return probe.Result{Reachable: true, Latency: time.Millisecond}
	}
	s, _, _ := newTestStore(t, prober)
	rec := passwordServer("alpha")
	s.Load([]server.Record{rec})

	s.ApplyTick(t0)
	require.NoError(t, s.DeleteServer(rec.ID))
	close(gate)
	waitIdle(t, s)

	s.ApplyTick(t0.Add(time.Second))
	snap := s.Snapshot(t0)
	assert.Empty(t, snap.Servers)
	assert.Zero(t, snap.Totals.SuccessRate, "late outcome for deleted server is discarded")
}

func TestPopup_AutoDismissAndReplacement(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	s.ShowPopup("first", PopupInfo, t0)
	s.ShowPopup("second", PopupError, t0.Add(time.Second))

	snap := s.Snapshot(t0.Add(time.Second))
	require.NotNil(t, snap.Popup)
	assert.Equal(t, "second", snap.Popup.Message, "new popup replaces the old one")
	assert.Equal(t, s.cfg.PopupTTL, snap.Popup.Remaining)

	// Not yet expired at 4s from the second popup's creation minus epsilon.
	s.ApplyTick(t0.Add(time.Second).Add(s.cfg.PopupTTL - 100*time.Millisecond))
	assert.NotNil(t, s.Snapshot(t0).Popup)

	// Expired 100ms past the deadline.
	s.ApplyTick(t0.Add(time.Second).Add(s.cfg.PopupTTL + 100*time.Millisecond))
	assert.Nil(t, s.Snapshot(t0).Popup)
}

func TestProbeFlip_ShowsTransitionPopups(t *testing.T) {
	var up atomic.Bool
	up.Store(true)
	flaky := func(ctx context.Context, address string, timeout time.Duration) probe.Result {
		if up.Load() {
			return probe.Result{Reachable: true, Latency: 10 * time.Millisecond}
		}
		return probe.Result{Err: &probe.Error{Address: address, Kind: probe.KindTimeout}}
	}

	s, _, _ := newTestStore(t, flaky)
	rec := passwordServer("alpha")
	s.Load([]server.Record{rec})

	// First probe: unknown to online is not a flip, no popup.
	s.ApplyTick(t0)
	waitIdle(t, s)
	s.ApplyTick(t0)
	assert.Nil(t, s.Snapshot(t0).Popup)

	up.Store(false)
	s.Refresh(rec.ID)
	s.ApplyTick(t0.Add(time.Second))
	waitIdle(t, s)
	s.ApplyTick(t0.Add(time.Second))

	snap := s.Snapshot(t0.Add(time.Second))
	require.NotNil(t, snap.Popup)
	assert.Equal(t, "alpha went offline", snap.Popup.Message)
	assert.Equal(t, PopupError, snap.Popup.Kind)

	up.Store(true)
	s.Refresh(rec.ID)
	s.ApplyTick(t0.Add(2 * time.Second))
	waitIdle(t, s)
	s.ApplyTick(t0.Add(2 * time.Second))

	snap = s.Snapshot(t0.Add(2 * time.Second))
	require.NotNil(t, snap.Popup)
	assert.Equal(t, "alpha is back online", snap.Popup.Message)
	assert.Equal(t, PopupSuccess, snap.Popup.Kind)
}

func TestDismissPopup_Idempotent(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	s.DismissPopup()
	s.ShowPopup("hello", PopupInfo, t0)
	s.DismissPopup()
	s.DismissPopup()
	assert.Nil(t, s.Snapshot(t0).Popup)
}

func TestEditServer_RecomputesClassification(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	rec := passwordServer("alpha")
	s.Load([]server.Record{rec})
	require.Equal(t, server.ClassVulnerable, s.Snapshot(t0).Servers[0].Classification)

	rec.Auth = server.AuthKeyFile
	rec.KeyPath = "~/.ssh/id_ed25519"
	require.NoError(t, s.EditServer(rec))

	v := s.Snapshot(t0).Servers[0]
	assert.Equal(t, server.ClassSecure, v.Classification)
	assert.True(t, s.servers[rec.ID].forceProbe, "edit forces a fresh probe")
}

func TestCommands_NotFound(t *testing.T) {
	s, _, _ := newTestStore(t, nil)

	assert.Error(t, s.EditServer(server.Record{ID: "ghost"}))
	assert.Error(t, s.DeleteServer("ghost"))
	assert.Error(t, s.Connect("ghost", t0))
	assert.Error(t, s.Refresh("ghost"))
	assert.Error(t, s.KillSession(12345, t0))
	assert.Empty(t, s.Snapshot(t0).Servers, "rejected commands mutate nothing")
}

func TestPersist_CalledOnMutatingCommands(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	var saved [][]server.Record
	s.OnPersist(func(records []server.Record) error {
		saved = append(saved, records)
		return nil
	})

	rec := passwordServer("alpha")
	require.NoError(t, s.AddServer(rec))
	rec.Name = "renamed"
	require.NoError(t, s.EditServer(rec))
	require.NoError(t, s.DeleteServer(rec.ID))

	require.Len(t, saved, 3)
	assert.Equal(t, "renamed", saved[1][0].Name)
	assert.Empty(t, saved[2])
}

func TestKillAllSessions(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	a := passwordServer("alpha")
	b := passwordServer("bravo")
	s.Load([]server.Record{a, b})
	require.NoError(t, s.Connect(a.ID, t0))
	require.NoError(t, s.Connect(b.ID, t0))

	s.KillAllSessions(t0.Add(time.Second))
	snap := s.Snapshot(t0.Add(time.Second))
	assert.Empty(t, snap.Sessions)
	assert.Equal(t, uint64(1), snap.Servers[0].Analytics.EndedSessions)
	assert.Equal(t, uint64(1), snap.Servers[1].Analytics.EndedSessions)
}

func TestRanking_InSnapshot(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	a := passwordServer("alpha")
	b := passwordServer("bravo")
	s.Load([]server.Record{a, b})
	require.NoError(t, s.Connect(b.ID, t0))
	require.NoError(t, s.Connect(b.ID, t0))
	require.NoError(t, s.Connect(a.ID, t0))

	snap := s.Snapshot(t0)
	require.Len(t, snap.Ranking, 2)
	assert.Equal(t, b.ID, snap.Ranking[0].ServerID)
	require.Len(t, snap.History, 3)
	assert.Equal(t, a.ID, snap.History[0].ServerID, "history is newest first")
}
