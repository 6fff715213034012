package poller

import (
	"sync"
	"time"
)

// Scheduler runs fn once after delay.
type Scheduler interface {
	Schedule(delay time.Duration, fn func())
}

// TimerScheduler schedules on the runtime timer.
type TimerScheduler struct{}

// Schedule implements Scheduler with time.AfterFunc.
func (TimerScheduler) Schedule(delay time.Duration, fn func()) {
	time.AfterFunc(delay, fn)
}

// ManualScheduler queues callbacks until RunNext is called. It never waits on
// the wall clock, which makes retry policies testable.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []func()
	delays  []time.Duration
}

// Schedule queues fn and records delay.
func (s *ManualScheduler) Schedule(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, fn)
	s.delays = append(s.delays, delay)
}

// RunNext runs the oldest queued callback on the calling goroutine.
// It returns false when nothing is queued.
func (s *ManualScheduler) RunNext() bool {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return false
	}
	fn := s.pending[0]
	s.pending = s.pending[1:]
	s.mu.Unlock()

	fn()
	return true
}

// Pending returns the number of queued callbacks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Delays returns every delay passed to Schedule so far.
func (s *ManualScheduler) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.delays))
	copy(out, s.delays)
	return out
}
