// Package cache provides a bounded, time-expiring, in-memory key-value
// store. It knows nothing about geography or POIs; the tile orchestrator
// owns an instance and is its only writer.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cache is a generic key-value store with per-entry expiry and a capacity
// bound. When full, Set evicts the single oldest entry by creation time
// (insertion order, not access recency). Expired entries are removed lazily
// on Get; PurgeExpired sweeps the rest on the caller's schedule.
type Cache[T any] struct {
	mu         sync.Mutex
	clock      clockwork.Clock
	defaultTTL time.Duration
	capacity   int
	entries    map[string]entry[T]
}

type entry[T any] struct {
	value     T
	createdAt time.Time
	expiresAt time.Time
}

// New creates a cache using the real clock.
func New[T any](defaultTTL time.Duration, capacity int) *Cache[T] {
	return NewWithClock[T](defaultTTL, capacity, clockwork.NewRealClock())
}

// NewWithClock creates a cache with an injected time source so tests can
// advance time deterministically.
func NewWithClock[T any](defaultTTL time.Duration, capacity int, clock clockwork.Clock) *Cache[T] {
	return &Cache[T]{
		clock:      clock,
		defaultTTL: defaultTTL,
		capacity:   capacity,
		entries:    make(map[string]entry[T]),
	}
}

// Set stores value under key with the default TTL, silently replacing any
// existing entry.
func (c *Cache[T]) Set(key string, value T) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL stores value under key with an explicit TTL. If the cache is at
// capacity the oldest entry is evicted first.
func (c *Cache[T]) SetTTL(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.capacity {
		c.evictOldest()
	}

	now := c.clock.Now()
	c.entries[key] = entry[T]{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

// Get returns the value for key. A missing or expired key reports false;
// an expired entry is deleted as a side effect of the read.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.clock.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Delete removes key if present.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[T])
}

// PurgeExpired removes every entry whose expiry has passed and returns the
// number removed. Intended for periodic maintenance; never called
// automatically.
func (c *Cache[T]) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the current entry count.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns a snapshot of all stored keys, expired entries included.
func (c *Cache[T]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	return keys
}

// evictOldest removes the entry with the earliest creation time.
// Caller must hold c.mu.
func (c *Cache[T]) evictOldest() {
	var oldestKey string
	var oldestAt time.Time
	first := true

	for key, e := range c.entries {
		if first || e.createdAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.createdAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
