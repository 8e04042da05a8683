// Package testing provides test doubles for the session package: fakes for
// the launcher and process checker so the tracker and engine can be driven
// without spawning real processes.
package testing

import (
	"github.com/rileyhilliard/wraith/internal/session"
)

// FakeLauncher hands out sequential pids, or fails with a configured error.
type FakeLauncher struct {
	NextPID  int
	Err      error
	Launched []session.Spec
}

// NewFakeLauncher returns a launcher whose first pid is 1000.
func NewFakeLauncher() *FakeLauncher {
	return &FakeLauncher{NextPID: 1000}
}

func (f *FakeLauncher) Launch(spec session.Spec) (int, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	f.Launched = append(f.Launched, spec)
	pid := f.NextPID
	f.NextPID++
	return pid, nil
}

// FakeChecker simulates the process table. Pids are alive until marked dead.
type FakeChecker struct {
	Dead       map[int]bool
	Terminated []int
}

func NewFakeChecker() *FakeChecker {
	return &FakeChecker{Dead: make(map[int]bool)}
}

// MarkDead makes subsequent Alive calls for pid report false.
func (f *FakeChecker) MarkDead(pid int) {
	f.Dead[pid] = true
}

func (f *FakeChecker) Alive(pid int) bool {
	return !f.Dead[pid]
}

func (f *FakeChecker) Terminate(pid int) error {
	f.Terminated = append(f.Terminated, pid)
	f.Dead[pid] = true
	return nil
}
