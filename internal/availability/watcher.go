package availability

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"aidetect/internal/poller"
)

// WatchState is the questionnaire page's view of the service.
type WatchState int

const (
	Checking WatchState = iota
	ServerOnline
	Offline
)

func (s WatchState) String() string {
	switch s {
	case Checking:
		return "checking"
	case ServerOnline:
		return "online"
	case Offline:
		return "offline"
	}
	return "unknown"
}

// MarshalText encodes the state by name.
func (s WatchState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *WatchState) UnmarshalText(text []byte) error {
	for c := Checking; c <= Offline; c++ {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown watch state %q", text)
}

// Indicator derives the badge for s.
func (s WatchState) Indicator() Indicator {
	switch s {
	case ServerOnline:
		return Indicator{Text: "Server Online", Color: ColorGreen, Visible: true}
	case Offline:
		return Indicator{Text: "Cannot connect to server", Color: ColorRed, Visible: true}
	}
	return Indicator{Text: "Checking server...", Color: ColorGray, Visible: true}
}

// Watcher polls the status endpoint without waking the service first. Every
// check that does not come back online marks the server Offline until the
// next one.
type Watcher struct {
	poller *poller.Poller
	logger *zap.Logger

	mu    sync.Mutex
	state WatchState
}

// NewWatcher creates a watcher in the Checking state.
func NewWatcher(svc StatusChecker, opts ...Option) *Watcher {
	o := buildOptions(opts)
	w := &Watcher{logger: o.logger}
	w.poller = o.poller(statusProbe(svc))
	w.poller.OnReady = func() { w.set(ServerOnline) }
	w.poller.OnRetry = func(int, string, error) { w.set(Offline) }
	return w
}

// Start runs the first check and keeps polling until online.
func (w *Watcher) Start(ctx context.Context) {
	w.poller.Run(ctx)
}

func (w *Watcher) set(s WatchState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == ServerOnline || w.state == s {
		return
	}
	w.state = s
	w.logger.Debug("Server status changed", zap.Stringer("state", s))
}

// State returns the current state.
func (w *Watcher) State() WatchState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Indicator returns the badge for the current state.
func (w *Watcher) Indicator() Indicator {
	return w.State().Indicator()
}
