// Package sweeper drives expiry reclamation in the background. The store
// itself never runs a timer loop; a Sweeper is what a host starts when it
// wants expired records reclaimed without paying cleanup cost on reads.
package sweeper

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/tempokv/kvstorage"
)

// Store is the reclamation surface the sweeper pumps. *kvstorage.Guarded
// satisfies it. A bare *kvstorage.Storage does too, but only when nothing
// else touches that store while the sweeper runs.
type Store interface {
	RemoveOneExpiredEntry() (kvstorage.Entry, bool)
}

// Sweeper periodically drains expired records from a Store.
type Sweeper struct {
	id       string
	store    Store
	interval time.Duration
	maxBatch int

	stop    chan struct{}
	stopped chan struct{}
}

// New creates a sweeper for store. Zero config fields fall back to the
// package defaults.
func New(store Store, cfg Config) *Sweeper {
	return &Sweeper{
		id:       uuid.NewString(),
		store:    store,
		interval: cfg.interval(),
		maxBatch: cfg.maxPerSweep(),
	}
}

// Start launches the background sweep goroutine. It stops when Stop is
// called or ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})

	go func() {
		defer close(s.stopped)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()

	log.Debug().
		Str("sweeper", s.id).
		Dur("interval", s.interval).
		Int("max_per_sweep", s.maxBatch).
		Msg("Started TTL sweeper")
}

// Stop terminates the sweep goroutine and waits for it to exit.
func (s *Sweeper) Stop() {
	if s.stop != nil {
		close(s.stop)
		<-s.stopped
		log.Debug().Str("sweeper", s.id).Msg("Stopped TTL sweeper")
	}
}

// Sweep reclaims up to MaxPerSweep expired records immediately and returns
// how many were removed. The background goroutine calls this on every
// tick; hosts may also call it by hand.
func (s *Sweeper) Sweep() int {
	reclaimed := 0
	for reclaimed < s.maxBatch {
		if _, ok := s.store.RemoveOneExpiredEntry(); !ok {
			break
		}
		reclaimed++
	}

	if reclaimed > 0 {
		log.Debug().
			Str("sweeper", s.id).
			Int("count", reclaimed).
			Msg("Reclaimed expired records")
	}

	return reclaimed
}
