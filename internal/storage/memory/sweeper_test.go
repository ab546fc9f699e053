// Package memory provides the in-memory cart store for CartVault.
package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/freshlane/cartvault/internal/core/domain"
	"github.com/freshlane/cartvault/pkg/clock"
)

func fillStore(t *testing.T, store *Store, clk *clock.Mock, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		cart := newTestCart(t, clk)
		if err := store.Create(context.Background(), cart); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		ids[i] = cart.ID
	}
	return ids
}

func TestRunOnceDeletesExpired(t *testing.T) {
	store, clk := newTestStore(t)
	fillStore(t, store, clk, 10)

	clk.Advance(testTTL + time.Millisecond)

	sw := NewSweeper(store, WithScanLimit(100), WithBudget(time.Second))
	result := sw.RunOnce()

	if result.Deleted != 10 {
		t.Errorf("Deleted = %d, want 10", result.Deleted)
	}
	if result.Truncated {
		t.Error("run with room to spare should not be truncated")
	}
	if store.Count() != 0 {
		t.Errorf("Count() after sweep = %d, want 0", store.Count())
	}
}

func TestRunOnceLeavesLiveRecords(t *testing.T) {
	store, clk := newTestStore(t)
	ids := fillStore(t, store, clk, 5)

	sw := NewSweeper(store, WithScanLimit(100), WithBudget(time.Second))
	result := sw.RunOnce()

	if result.Deleted != 0 {
		t.Errorf("Deleted = %d, want 0 for live records", result.Deleted)
	}
	if store.Count() != 5 {
		t.Errorf("Count() = %d, want 5", store.Count())
	}

	for _, id := range ids {
		if _, err := store.Get(context.Background(), id); err != nil {
			t.Errorf("Get(%s) after sweep error = %v", id, err)
		}
	}
}

func TestRunOnceRespectsScanLimit(t *testing.T) {
	store, clk := newTestStore(t)
	fillStore(t, store, clk, 50)

	clk.Advance(testTTL + time.Millisecond)

	sw := NewSweeper(store, WithScanLimit(10), WithBudget(time.Second))
	result := sw.RunOnce()

	if result.Scanned > 10 {
		t.Errorf("Scanned = %d, want at most 10", result.Scanned)
	}
	if result.Deleted > 10 {
		t.Errorf("Deleted = %d, want at most 10", result.Deleted)
	}
	if !result.Truncated {
		t.Error("run hitting its scan limit should report Truncated")
	}

	// Remaining expired entries stay for the next run but are invisible
	// to readers regardless.
	remaining := store.carts.Keys()
	if len(remaining) != 40 {
		t.Errorf("remaining entries = %d, want 40", len(remaining))
	}
	if _, err := store.Get(context.Background(), remaining[0]); !errors.Is(err, domain.ErrCartNotFound) {
		t.Errorf("Get(deferred expired) error = %v, want ErrCartNotFound", err)
	}
}

func TestRunOnceFullScanAtLimitNotTruncated(t *testing.T) {
	store, clk := newTestStore(t)
	fillStore(t, store, clk, 10)

	clk.Advance(testTTL + time.Millisecond)

	// Scanning every entry is a complete run even when the count lands
	// exactly on the scan limit.
	sw := NewSweeper(store, WithScanLimit(10), WithBudget(time.Second))
	result := sw.RunOnce()

	if result.Scanned != 10 {
		t.Errorf("Scanned = %d, want 10", result.Scanned)
	}
	if result.Truncated {
		t.Error("complete run should not report Truncated")
	}
	if result.Deleted != 10 {
		t.Errorf("Deleted = %d, want 10", result.Deleted)
	}
}

func TestRunOnceDrainsAcrossRuns(t *testing.T) {
	store, clk := newTestStore(t)
	fillStore(t, store, clk, 30)

	clk.Advance(testTTL + time.Millisecond)

	sw := NewSweeper(store, WithScanLimit(10), WithBudget(time.Second))
	for i := 0; i < 5 && store.Count() > 0; i++ {
		sw.RunOnce()
	}

	if store.Count() != 0 {
		t.Errorf("Count() after repeated runs = %d, want 0", store.Count())
	}
}

func TestRunOnceRechecksExpiryBeforeDelete(t *testing.T) {
	store, clk := newTestStore(t)
	cart := newTestCart(t, clk)
	store.Create(context.Background(), cart)

	clk.Advance(testTTL + time.Millisecond)

	// A Get between candidate collection and deletion would refresh the
	// record; deleteIfExpired must honor that refresh.
	now := clk.Now()
	stored, _ := store.carts.Get(cart.ID)
	refreshed := stored.Clone()
	refreshed.SetExpiration(now, store.ttl)
	store.carts.Set(cart.ID, refreshed)

	if store.deleteIfExpired(cart.ID, now) {
		t.Error("deleteIfExpired removed a record refreshed after candidate collection")
	}
	if store.Count() != 1 {
		t.Errorf("Count() = %d, want 1", store.Count())
	}
}

func TestSweeperOnSweptCallback(t *testing.T) {
	store, clk := newTestStore(t)
	fillStore(t, store, clk, 3)
	clk.Advance(testTTL + time.Millisecond)

	var got SweepResult
	sw := NewSweeper(store,
		WithScanLimit(100),
		WithBudget(time.Second),
		WithOnSwept(func(r SweepResult) { got = r }),
	)
	sw.RunOnce()

	if got.Deleted != 3 {
		t.Errorf("callback Deleted = %d, want 3", got.Deleted)
	}
}

func TestSweeperStartStop(t *testing.T) {
	store, clk := newTestStore(t)
	fillStore(t, store, clk, 5)
	clk.Advance(testTTL + time.Millisecond)

	sw := NewSweeper(store,
		WithInterval(5*time.Millisecond),
		WithScanLimit(100),
		WithBudget(time.Second),
	)
	sw.Start()

	deadline := time.After(2 * time.Second)
	for store.Count() > 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper did not drain expired records in time")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	sw.Stop()
	// Stop is idempotent.
	sw.Stop()
}

func TestSweeperStopWithoutStart(t *testing.T) {
	store, _ := newTestStore(t)
	sw := NewSweeper(store)

	done := make(chan struct{})
	go func() {
		sw.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() without Start() should not block")
	}
}

func TestStoppedSweeperDoesNotAffectLazyExpiry(t *testing.T) {
	store, clk := newTestStore(t)
	cart := newTestCart(t, clk)
	store.Create(context.Background(), cart)

	sw := NewSweeper(store, WithInterval(time.Hour))
	sw.Start()
	sw.Stop()

	clk.Advance(testTTL + time.Millisecond)
	if _, err := store.Get(context.Background(), cart.ID); !errors.Is(err, domain.ErrCartNotFound) {
		t.Errorf("Get() after expiry with stopped sweeper error = %v, want ErrCartNotFound", err)
	}
}
