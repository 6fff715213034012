// Package poller implements a poll-until-ready loop: run a probe, and if the
// target is not ready yet, re-arm exactly one check after a fixed interval.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"aidetect/internal/logging"
)

// DefaultInterval is the fixed delay between readiness checks.
const DefaultInterval = 5 * time.Second

// Probe performs one readiness check. detail is a short description of the
// observed state, used for logging.
type Probe func(ctx context.Context) (ready bool, detail string, err error)

// Poller repeats a Probe until it reports ready. Attempts are unbounded and
// every retry uses the same interval.
type Poller struct {
	probe     Probe
	interval  time.Duration
	scheduler Scheduler
	logger    *zap.Logger

	// OnReady is called once, when the probe first reports ready.
	OnReady func()
	// OnRetry is called after every failed check, before the retry is armed.
	OnRetry func(attempt int, detail string, err error)

	mu       sync.Mutex
	attempts int
	ready    bool
	running  bool
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the retry interval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithScheduler replaces the timer-backed scheduler.
func WithScheduler(s Scheduler) Option {
	return func(p *Poller) { p.scheduler = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// New creates a poller for probe.
func New(probe Probe, opts ...Option) *Poller {
	p := &Poller{
		probe:     probe,
		interval:  DefaultInterval,
		scheduler: TimerScheduler{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.OrNop(p.logger)
	return p
}

// Run performs a check now. If the target is not ready, one further check is
// scheduled after the interval, and so on until ready. Run returns after the
// first check; later checks run on the scheduler. Calling Run while a loop is
// already active is a no-op, so one poller never has two checks in flight.
func (p *Poller) Run(ctx context.Context) {
	p.mu.Lock()
	if p.running || p.ready {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.tick(ctx)
}

func (p *Poller) tick(ctx context.Context) {
	if ctx.Err() != nil {
		p.stop()
		p.logger.Debug("Polling stopped", zap.Error(ctx.Err()))
		return
	}

	ready, detail, err := p.probe(ctx)

	p.mu.Lock()
	p.attempts++
	attempt := p.attempts
	if ready {
		p.ready = true
		p.running = false
	}
	p.mu.Unlock()

	if ready {
		p.logger.Info("Target ready", zap.Int("attempt", attempt), zap.String("detail", detail))
		if p.OnReady != nil {
			p.OnReady()
		}
		return
	}

	if err != nil {
		p.logger.Warn("Readiness check failed, retrying",
			zap.Int("attempt", attempt), zap.Duration("retry_in", p.interval), zap.Error(err))
	} else {
		p.logger.Info("Target not ready, retrying",
			zap.Int("attempt", attempt), zap.String("detail", detail), zap.Duration("retry_in", p.interval))
	}
	if p.OnRetry != nil {
		p.OnRetry(attempt, detail, err)
	}

	p.scheduler.Schedule(p.interval, func() { p.tick(ctx) })
}

func (p *Poller) stop() {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}

// Attempts returns how many checks have completed.
func (p *Poller) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

// Ready reports whether the probe has reported ready.
func (p *Poller) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// Interval returns the retry interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}
