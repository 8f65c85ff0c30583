package store

import (
	"sync"
	"time"
)

// ResultCache is a concurrency-safe holder for the latest result of a single
// computation. An entry older than maxAge is considered stale but remains
// available through Latest until it is replaced or invalidated.
type ResultCache[T any] struct {
	mu       sync.RWMutex
	value    T
	ok       bool
	storedAt time.Time

	// maxAge of 0 means entries never go stale.
	maxAge time.Duration
}

// NewResultCache creates a ResultCache with the given staleness window.
func NewResultCache[T any](maxAge time.Duration) *ResultCache[T] {
	return &ResultCache[T]{maxAge: maxAge}
}

// Put replaces the cached value and resets its age.
func (c *ResultCache[T]) Put(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = v
	c.ok = true
	c.storedAt = time.Now()
}

// Get returns the cached value if one is present and still fresh.
func (c *ResultCache[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.ok {
		var zero T
		return zero, false
	}
	if c.maxAge > 0 && time.Since(c.storedAt) > c.maxAge {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Latest returns the cached value regardless of staleness.
func (c *ResultCache[T]) Latest() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.ok {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Invalidate drops the cached value so the next read recomputes.
func (c *ResultCache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.value = zero
	c.ok = false
	c.storedAt = time.Time{}
}
