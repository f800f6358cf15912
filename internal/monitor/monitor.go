package monitor

import (
	"context"
	"log"
	"time"

	"fleet-tracker-backend/config"
	"fleet-tracker-backend/internal/notification"
	"fleet-tracker-backend/internal/store"
)

// Monitor periodically sweeps the store for vehicles that have stopped
// reporting and dispatches one alert job per newly stale vehicle. A vehicle
// is re-armed once it reports again.
type Monitor struct {
	cfg     *config.Config
	store   store.Store
	pool    *notification.WorkerPool
	alerted map[int64]bool
}

// New creates a monitor backed by the given store and worker pool.
func New(cfg *config.Config, s store.Store, pool *notification.WorkerPool) *Monitor {
	return &Monitor{
		cfg:     cfg,
		store:   s,
		pool:    pool,
		alerted: make(map[int64]bool),
	}
}

// Run starts the sweep loop. It blocks until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	if !m.cfg.Monitor.Enabled {
		log.Println("Stale-vehicle monitor is disabled. Not starting.")
		return
	}
	log.Println("Starting stale-vehicle monitor...")

	m.pool.Start(ctx)

	timer := time.NewTimer(m.cfg.Monitor.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Stale-vehicle monitor shutting down.")
			return
		case <-timer.C:
			m.SweepOnce(ctx)
			timer.Reset(m.cfg.Monitor.Interval)
		}
	}
}

// SweepOnce performs a single staleness sweep, dispatching alerts for
// vehicles that went quiet since the previous sweep.
func (m *Monitor) SweepOnce(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-m.cfg.Monitor.StaleAfter)

	stale, err := m.store.StaleVehicles(ctx, cutoff)
	if err != nil {
		log.Printf("Error querying stale vehicles: %v", err)
		return
	}

	staleSet := make(map[int64]bool, len(stale))
	for _, v := range stale {
		staleSet[v.ID] = true
		if !m.alerted[v.ID] {
			log.Printf("Vehicle %d (%s) went quiet, dispatching alert", v.ID, v.Name)
			m.alerted[v.ID] = true
			m.pool.Dispatch(v.ID)
		}
	}

	// Re-arm vehicles that reported again since they were alerted.
	for id := range m.alerted {
		if !staleSet[id] {
			delete(m.alerted, id)
		}
	}
}
