// Package health tracks whether the answering service is reachable and ready to answer.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/ethanbaker/essaychat/pkg/sdk"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultInterval is how often the backend is probed when no interval is configured
const DefaultInterval = 30 * time.Second

// probeTimeout bounds a single health probe
const probeTimeout = 5 * time.Second

// Prober is the subset of the backend client the monitor needs
type Prober interface {
	Health(ctx context.Context) (*sdk.HealthResponse, error)
}

// Status is the backend readiness as last observed
type Status struct {
	Reachable bool      `json:"reachable"`       // Health endpoint answered with a 2xx
	Ready     bool      `json:"ready"`           // Retrieval index is initialized
	CheckedAt time.Time `json:"checked_at"`      // Zero until the first probe
	Error     string    `json:"error,omitempty"` // Last probe error, if any
}

// Monitor probes the backend health endpoint on a schedule
type Monitor struct {
	prober   Prober
	interval time.Duration
	cron     *cron.Cron
	now      func() time.Time

	probes  sync.WaitGroup // probes started outside cron
	probeMu sync.Mutex     // one probe at a time, so results are stored in the order they ran

	mu     sync.RWMutex
	status Status
}

// NewMonitor creates a monitor. A non-positive interval uses DefaultInterval
func NewMonitor(prober Prober, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Monitor{
		prober:   prober,
		interval: interval,
		cron:     cron.New(),
		now:      time.Now,
	}
}

// Start schedules periodic probes and runs the first one immediately in the background
func (m *Monitor) Start() error {
	if _, err := m.cron.AddFunc("@every "+m.interval.String(), m.probe); err != nil {
		return errors.Wrap(err, "schedule health probe")
	}

	m.cron.Start()

	m.probes.Add(1)
	go func() {
		defer m.probes.Done()
		m.probe()
	}()

	log.Info().Str("component", "health").Dur("interval", m.interval).Msg("backend monitor started")
	return nil
}

// Stop halts the schedule and waits for running probes to finish
func (m *Monitor) Stop() {
	<-m.cron.Stop().Done()
	m.probes.Wait()
}

// Status returns the last observed backend status
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	m.Check(ctx)
}

// Check probes the backend once, records and returns the result
func (m *Monitor) Check(ctx context.Context) Status {
	m.probeMu.Lock()
	defer m.probeMu.Unlock()

	next := Status{CheckedAt: m.now()}

	resp, err := m.prober.Health(ctx)
	if err != nil {
		next.Error = err.Error()
	} else {
		next.Reachable = true
		next.Ready = resp.RagInitialized
	}

	m.mu.Lock()
	prev := m.status
	m.status = next
	m.mu.Unlock()

	logTransition(prev, next)
	return next
}

// logTransition reports changes in reachability or readiness
func logTransition(prev, next Status) {
	first := prev.CheckedAt.IsZero()
	if !first && prev.Reachable == next.Reachable && prev.Ready == next.Ready {
		return
	}

	switch {
	case !next.Reachable:
		log.Warn().Str("component", "health").Str("error", next.Error).Msg("backend unreachable")
	case !next.Ready:
		log.Info().Str("component", "health").Msg("backend reachable, index still initializing")
	default:
		log.Info().Str("component", "health").Msg("backend ready")
	}
}
