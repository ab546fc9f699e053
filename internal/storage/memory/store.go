// Package memory provides the in-memory cart store for CartVault.
package memory

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/freshlane/cartvault/internal/core/domain"
	"github.com/freshlane/cartvault/pkg/clock"
	"github.com/freshlane/cartvault/pkg/cmap"
)

// DefaultTTL is the cart time-to-live applied when none is configured.
const DefaultTTL = 30 * time.Minute

// Store provides in-memory cart storage with dual expiration.
type Store struct {
	carts *cmap.Map[string, *domain.Cart]
	ttl   time.Duration
	clock clock.Clock

	// Expiration counters, split by which mechanism fired.
	expiredLazy  atomic.Int64
	expiredSwept atomic.Int64
}

// Option configures the Store.
type Option func(*Store)

// WithClock sets the time source for expiry computations.
func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithShardCount sets the shard count of the underlying map.
func WithShardCount(n int) Option {
	return func(s *Store) {
		s.carts = cmap.NewWithShards[string, *domain.Cart](n)
	}
}

// New creates a new in-memory store. Records live for ttl after their
// last successful access.
func New(ttl time.Duration, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &Store{
		carts: cmap.New[string, *domain.Cart](),
		ttl:   ttl,
		clock: clock.System(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// TTL returns the configured time-to-live.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create inserts a cart unconditionally and stamps a fresh TTL window.
// The stored record is a clone; the caller's cart gets the stamped
// expiry written back.
func (s *Store) Create(_ context.Context, cart *domain.Cart) error {
	if err := cart.Validate(); err != nil {
		return err
	}

	now := s.clock.Now()
	stored := cart.Clone()
	stored.SetExpiration(now, s.ttl)
	s.carts.Set(stored.ID, stored)

	cart.ExpiresAt = stored.ExpiresAt
	return nil
}

// Get retrieves a cart by ID.
//
// A missing or expired entry yields ErrCartNotFound; an expired entry
// is deleted on the way out. On a hit the record's expiry advances to
// now+ttl before the (cloned) record is returned.
func (s *Store) Get(_ context.Context, id string) (*domain.Cart, error) {
	now := s.clock.Now()

	var hit *domain.Cart
	s.carts.Compute(id, func(cart *domain.Cart, exists bool) (*domain.Cart, bool) {
		if !exists {
			return nil, false
		}
		if cart.IsExpiredAt(now) {
			s.expiredLazy.Add(1)
			return nil, false
		}

		refreshed := cart.Clone()
		refreshed.SetExpiration(now, s.ttl)
		hit = refreshed
		return refreshed, true
	})

	if hit == nil {
		return nil, domain.ErrCartNotFound
	}
	return hit.Clone(), nil
}

// Update replaces the stored record's fields with the given cart's,
// advancing the expiry to now+ttl and UpdatedAt to now.
//
// A missing or expired target yields ErrCartNotFound (the expired
// entry is deleted). Creation time and ID are never overwritten.
func (s *Store) Update(_ context.Context, cart *domain.Cart) (*domain.Cart, error) {
	if err := cart.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()

	var stored *domain.Cart
	s.carts.Compute(cart.ID, func(current *domain.Cart, exists bool) (*domain.Cart, bool) {
		if !exists {
			return nil, false
		}
		if current.IsExpiredAt(now) {
			s.expiredLazy.Add(1)
			return nil, false
		}

		next := cart.Clone()
		next.CreatedAt = current.CreatedAt
		next.UpdatedAt = now.UnixMilli()
		next.SetExpiration(now, s.ttl)
		stored = next
		return next, true
	})

	if stored == nil {
		return nil, domain.ErrCartNotFound
	}
	return stored.Clone(), nil
}

// Delete removes a cart unconditionally. Deleting a missing cart is a
// no-op; a removed ID is never reinstated by the store.
func (s *Store) Delete(_ context.Context, id string) {
	s.carts.Delete(id)
}

// Count returns the number of records currently held, including any
// expired records the sweep has not reached yet.
func (s *Store) Count() int {
	return s.carts.Count()
}

// ExpiredCounts returns how many records each expiration mechanism has
// removed since the store was created.
func (s *Store) ExpiredCounts() (lazy, swept int64) {
	return s.expiredLazy.Load(), s.expiredSwept.Load()
}

// deleteIfExpired removes the record only if it is still expired as of
// now, under the shard lock. A record refreshed by a concurrent access
// between candidate collection and deletion survives.
func (s *Store) deleteIfExpired(id string, now time.Time) bool {
	deleted := false
	s.carts.Compute(id, func(cart *domain.Cart, exists bool) (*domain.Cart, bool) {
		if !exists {
			return nil, false
		}
		if !cart.IsExpiredAt(now) {
			return cart, true
		}
		deleted = true
		return nil, false
	})

	if deleted {
		s.expiredSwept.Add(1)
	}
	return deleted
}
