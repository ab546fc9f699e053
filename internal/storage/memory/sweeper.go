// Package memory provides the in-memory cart store for CartVault.
package memory

import (
	"log/slog"
	"sync"
	"time"

	"github.com/freshlane/cartvault/internal/core/domain"
)

// Sweeper defaults.
const (
	DefaultSweepInterval  = time.Minute
	DefaultSweepScanLimit = 1024
	DefaultSweepBudget    = 50 * time.Millisecond
)

// SweepResult describes one sweep run.
type SweepResult struct {
	// Scanned is the number of entries examined.
	Scanned int
	// Deleted is the number of expired entries removed.
	Deleted int
	// Truncated reports whether the run stopped at its scan limit or
	// time budget with entries left unexamined.
	Truncated bool
	// Elapsed is the wall-clock time the run took.
	Elapsed time.Duration
}

// Sweeper is the bounded background expiration pass.
//
// The sweep is a hygiene mechanism only: Get and Update enforce expiry
// independently, so a truncated or stopped sweep never affects
// correctness. Each run scans at most its scan limit of entries and
// stops early once its wall-clock budget elapses, taking and releasing
// shard locks incrementally so the request path is never starved.
type Sweeper struct {
	store     *Store
	interval  time.Duration
	scanLimit int
	budget    time.Duration
	logger    *slog.Logger
	onSwept   func(SweepResult)

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithInterval sets the time between sweep runs.
func WithInterval(d time.Duration) SweeperOption {
	return func(sw *Sweeper) {
		sw.interval = d
	}
}

// WithScanLimit caps the entries examined per run.
func WithScanLimit(n int) SweeperOption {
	return func(sw *Sweeper) {
		sw.scanLimit = n
	}
}

// WithBudget caps the wall-clock time spent per run.
func WithBudget(d time.Duration) SweeperOption {
	return func(sw *Sweeper) {
		sw.budget = d
	}
}

// WithLogger sets the sweep logger.
func WithLogger(logger *slog.Logger) SweeperOption {
	return func(sw *Sweeper) {
		sw.logger = logger
	}
}

// WithOnSwept registers a callback invoked after every run, used to
// surface sweep stats to metrics.
func WithOnSwept(fn func(SweepResult)) SweeperOption {
	return func(sw *Sweeper) {
		sw.onSwept = fn
	}
}

// NewSweeper creates a Sweeper over the given store.
func NewSweeper(store *Store, opts ...SweeperOption) *Sweeper {
	sw := &Sweeper{
		store:     store,
		interval:  DefaultSweepInterval,
		scanLimit: DefaultSweepScanLimit,
		budget:    DefaultSweepBudget,
		logger:    slog.Default(),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(sw)
	}

	return sw
}

// Start launches the periodic sweep goroutine. Starting twice is a
// no-op.
func (sw *Sweeper) Start() {
	sw.startOnce.Do(func() {
		go sw.loop()
	})
}

// Stop halts the sweep and waits for the current run, if any, to
// finish. Safe to call multiple times and before Start. Stopping the
// sweep leaves lazy expiration fully in force.
func (sw *Sweeper) Stop() {
	sw.stopOnce.Do(func() {
		close(sw.stop)
	})
	sw.startOnce.Do(func() {
		close(sw.done) // never started; nothing to wait for
	})
	<-sw.done
}

func (sw *Sweeper) loop() {
	defer close(sw.done)

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sw.stop:
			return
		case <-ticker.C:
			result := sw.RunOnce()
			if result.Deleted > 0 || result.Truncated {
				sw.logger.Debug("sweep run finished",
					"scanned", result.Scanned,
					"deleted", result.Deleted,
					"truncated", result.Truncated,
				)
			}
		}
	}
}

// RunOnce performs a single bounded sweep pass and returns its result.
//
// Candidates are collected under shard read locks in the map's natural
// iteration order, then deleted one by one with a per-entry expiry
// recheck so a concurrently refreshed record is never removed.
func (sw *Sweeper) RunOnce() SweepResult {
	started := time.Now()
	now := sw.store.clock.Now()

	var result SweepResult
	var candidates []string

	// Truncated records the run hitting one of its own bounds, never
	// store growth during the scan.
	budgetHit := false
	scanned, limitHit := sw.store.carts.RangeWithLimit(sw.scanLimit, func(id string, cart *domain.Cart) bool {
		if cart.IsExpiredAt(now) {
			candidates = append(candidates, id)
		}
		if time.Since(started) >= sw.budget {
			budgetHit = true
			return false
		}
		return true
	})
	result.Scanned = scanned
	result.Truncated = limitHit || budgetHit

	for _, id := range candidates {
		if time.Since(started) >= sw.budget {
			result.Truncated = true
			break
		}
		if sw.store.deleteIfExpired(id, now) {
			result.Deleted++
		}
	}

	result.Elapsed = time.Since(started)
	if sw.onSwept != nil {
		sw.onSwept(result)
	}
	return result
}
