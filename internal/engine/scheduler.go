package engine

import (
	"context"
	"time"

	"github.com/rileyhilliard/wraith/internal/probe"
)

// outcome is one completed probe, queued until the store drains it at the
// start of the next tick.
type outcome struct {
	id     string
	result probe.Result
}

// scheduler fans probe attempts out to bounded worker goroutines. Workers
// report through the completions channel and never touch store state: the
// store is the single writer, draining outcomes synchronously each tick.
type scheduler struct {
	prober      probe.Func
	timeout     time.Duration
	slots       chan struct{}
	completions chan outcome
}

func newScheduler(prober probe.Func, timeout time.Duration, maxInFlight int) *scheduler {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &scheduler{
		prober:  prober,
		timeout: timeout,
		slots:   make(chan struct{}, maxInFlight),
		// A slot is released only after its outcome is queued, so the
		// buffer can never overflow and workers never block on send.
		completions: make(chan outcome, maxInFlight),
	}
}

// tryLaunch starts a probe for the server if a slot is free. Returns false
// when the concurrency cap is reached; the server stays due and is retried
// on a later tick.
func (s *scheduler) tryLaunch(id, address string) bool {
	select {
	case s.slots <- struct{}{}:
	default:
		return false
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		res := s.prober(ctx, address, s.timeout)
		s.completions <- outcome{id: id, result: res}
		<-s.slots
	}()
	return true
}

// drain removes and returns all queued outcomes without blocking.
func (s *scheduler) drain() []outcome {
	var out []outcome
	for {
		select {
		case o := <-s.completions:
			out = append(out, o)
		default:
			return out
		}
	}
}

// inFlight reports how many probes are currently running.
func (s *scheduler) inFlight() int {
	return len(s.slots)
}
