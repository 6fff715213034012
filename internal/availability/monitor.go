// Package availability tracks whether the remote prediction service is ready
// to take requests: a Monitor wakes the service and polls until it is online,
// a Watcher only polls.
package availability

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"aidetect/internal/poller"
)

const subscriberBuffer = 8

// Monitor runs the wake-then-poll cycle for one page. Each page owns its own
// Monitor; nothing is shared between instances.
type Monitor struct {
	svc    Service
	poller *poller.Poller
	logger *zap.Logger

	mu      sync.Mutex
	state   State
	err     error
	started bool
	subs    []chan State
	ready   chan struct{}
	done    chan struct{}
}

// New creates a monitor in the Loading state.
func New(svc Service, opts ...Option) *Monitor {
	o := buildOptions(opts)
	m := &Monitor{
		svc:    svc,
		logger: o.logger,
		state:  Loading,
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
	m.poller = o.poller(statusProbe(svc))
	m.poller.OnReady = func() {
		m.logger.Info("Server is online and model loaded")
		m.setState(Online, nil)
	}
	return m
}

// Start sends the wake call and, if it succeeds, begins polling. It returns
// once the wake call and the first status check are done; later checks run
// on the scheduler. A wake failure moves the monitor to Error for good.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	m.setState(Waking, nil)
	if err := m.svc.Wakeup(ctx); err != nil {
		m.logger.Error("Error during wake-up", zap.Error(err))
		m.setState(Error, err)
		return
	}
	m.logger.Info("Wake-up call sent, starting status check")

	m.setState(Waiting, nil)
	m.poller.Run(ctx)
}

func (m *Monitor) setState(s State, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Terminal() || m.state == s {
		return
	}
	m.state = s
	m.err = err

	for _, ch := range m.subs {
		select {
		case ch <- s:
		default:
		}
	}

	switch s {
	case Online:
		close(m.ready)
		fallthrough
	case Error:
		close(m.done)
		for _, ch := range m.subs {
			close(ch)
		}
		m.subs = nil
	}
}

// State returns the current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Indicator returns the status badge for the current state.
func (m *Monitor) Indicator() Indicator {
	return m.State().Indicator()
}

// IsOnline reports whether the service is ready.
func (m *Monitor) IsOnline() bool {
	return m.State() == Online
}

// Err returns the wake failure once the monitor is in Error.
func (m *Monitor) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Attempts returns the number of status checks made so far.
func (m *Monitor) Attempts() int {
	return m.poller.Attempts()
}

// Ready is closed when the monitor reaches Online.
func (m *Monitor) Ready() <-chan struct{} {
	return m.ready
}

// Done is closed when the monitor reaches Online or Error.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// Subscribe returns a channel that receives the current state followed by
// every later transition. It is closed after a terminal state.
func (m *Monitor) Subscribe() <-chan State {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan State, subscriberBuffer)
	ch <- m.state
	if m.state.Terminal() {
		close(ch)
		return ch
	}
	m.subs = append(m.subs, ch)
	return ch
}

// RunIfOnline runs fn only when the service is online. Otherwise it logs a
// warning and does nothing. It reports whether fn ran.
func (m *Monitor) RunIfOnline(action string, fn func()) bool {
	if !m.IsOnline() {
		m.logger.Warn("Server not yet online. Cannot start.",
			zap.String("action", action), zap.Stringer("state", m.State()))
		return false
	}
	fn()
	return true
}
