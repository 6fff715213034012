package availability

import (
	"context"
	"time"

	"go.uber.org/zap"

	"aidetect/internal/poller"
	"aidetect/internal/prediction"
)

// StatusChecker reports the remote service's status string.
type StatusChecker interface {
	Status(ctx context.Context) (string, error)
}

// Service is the remote side of a Monitor.
type Service interface {
	StatusChecker
	Wakeup(ctx context.Context) error
}

type options struct {
	interval  time.Duration
	scheduler poller.Scheduler
	logger    *zap.Logger
}

// Option configures a Monitor or Watcher.
type Option func(*options)

// WithInterval sets the status retry interval.
func WithInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

// WithScheduler sets the scheduler used for retries.
func WithScheduler(s poller.Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{
		interval:  poller.DefaultInterval,
		scheduler: poller.TimerScheduler{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

func (o options) poller(probe poller.Probe) *poller.Poller {
	return poller.New(probe,
		poller.WithInterval(o.interval),
		poller.WithScheduler(o.scheduler),
		poller.WithLogger(o.logger),
	)
}

// statusProbe treats anything other than an "online" status, including
// transport and decode errors, as not ready.
func statusProbe(svc StatusChecker) poller.Probe {
	return func(ctx context.Context) (bool, string, error) {
		status, err := svc.Status(ctx)
		if err != nil {
			return false, "", err
		}
		return status == prediction.StatusOnline, status, nil
	}
}
