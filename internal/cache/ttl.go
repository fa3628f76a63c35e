// Package cache provides an in-memory cache whose entries expire a fixed
// duration after they were stored.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTTL is the expiry window used when none is configured.
const DefaultTTL = 600 * time.Second

// Entry is a cached value and the time it was stored.
type Entry[V any] struct {
	StoredAt time.Time
	Value    V
}

// TTL is a thread-safe key/value cache with lazy expiry: an entry is treated
// as absent once ttl has elapsed since it was stored. Nothing is evicted; an
// expired entry stays in memory until the key is written again.
type TTL[K comparable, V any] struct {
	ttl   time.Duration
	clock clockwork.Clock

	mu      sync.RWMutex
	entries map[K]Entry[V]
}

// NewTTL creates a cache with the given expiry window. A non-positive ttl
// selects DefaultTTL; a nil clock selects the real clock.
func NewTTL[K comparable, V any](ttl time.Duration, clock clockwork.Clock) *TTL[K, V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TTL[K, V]{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[K]Entry[V]),
	}
}

// Get returns the entry for key. ok is false if the key was never stored or
// if now - StoredAt >= ttl.
func (c *TTL[K, V]) Get(key K) (Entry[V], bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.clock.Since(e.StoredAt) >= c.ttl {
		return Entry[V]{}, false
	}
	return e, true
}

// Put stores value under key, stamped with the current time. The last write wins.
func (c *TTL[K, V]) Put(key K, value V) {
	e := Entry[V]{StoredAt: c.clock.Now(), Value: value}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TTL returns the expiry window.
func (c *TTL[K, V]) TTL() time.Duration {
	return c.ttl
}
