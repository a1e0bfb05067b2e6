package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/timeclock-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/cron"
)

// State is the kiosk's view of API connectivity.
type State string

const (
	StateUnknown State = "unknown"
	StateOnline  State = "online"
	StateOffline State = "offline"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor tracks connectivity. Each transition to online (including the
// first successful probe after start) runs the registered callbacks.
type Monitor struct {
	pinger Pinger

	mu       sync.Mutex
	state    State
	onOnline []func(ctx context.Context) error
}

func NewMonitor(pinger Pinger) *Monitor {
	return &Monitor{pinger: pinger, state: StateUnknown}
}

// OnOnline registers fn to run after every transition to online.
func (m *Monitor) OnOnline(fn func(ctx context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOnline = append(m.onOnline, fn)
}

func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// KnownOffline reports whether the last observation was a failure. An
// unknown state is not offline: the caller should try the API.
func (m *Monitor) KnownOffline() bool {
	return m.State() == StateOffline
}

// Probe pings the API and records the result. It returns the first
// callback error of an online transition; being offline is not an error.
func (m *Monitor) Probe(ctx context.Context) error {
	if err := m.pinger.Ping(ctx); err != nil {
		m.set(ctx, StateOffline, err)
		return nil
	}
	return m.set(ctx, StateOnline, nil)
}

// Check pings the API and records the result without running the online
// callbacks. It is for callers that act on the outcome themselves.
func (m *Monitor) Check(ctx context.Context) bool {
	if err := m.pinger.Ping(ctx); err != nil {
		m.record(StateOffline, err)
		return false
	}
	m.record(StateOnline, nil)
	return true
}

// Observe feeds the outcome of a regular API call into the monitor. Only
// network failures mark the API offline.
func (m *Monitor) Observe(err error) {
	if apperror.Is(err, apperror.KindNetwork) {
		_ = m.set(context.Background(), StateOffline, err)
	}
}

func (m *Monitor) set(ctx context.Context, next State, cause error) error {
	if !m.record(next, cause) || next != StateOnline {
		return nil
	}

	m.mu.Lock()
	callbacks := append([]func(context.Context) error(nil), m.onOnline...)
	m.mu.Unlock()

	var firstErr error
	for _, fn := range callbacks {
		if err := fn(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// record stores next and reports whether it changed the state.
func (m *Monitor) record(next State, cause error) bool {
	m.mu.Lock()
	prev := m.state
	m.state = next
	m.mu.Unlock()

	if prev == next {
		return false
	}
	if next == StateOffline {
		slog.Warn("API unreachable, actions will be queued", "previous", prev, "error", cause)
	} else {
		slog.Info("API reachable", "previous", prev)
	}
	return true
}

// Schedule registers the probe as a cron job.
func (m *Monitor) Schedule(s *cron.Scheduler, interval time.Duration) {
	s.AddJob("connectivity-probe", interval, m.Probe)
}
