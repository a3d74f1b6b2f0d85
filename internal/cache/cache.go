// Package cache provides a process-wide TTL cache for read-mostly lookups.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value  T
	expiry time.Time
}

// Cache is a concurrency-safe map with per-entry expiry. Values are keyed by
// business identifiers and deterministic given the same inputs, so a
// concurrent write always replaces an entry with an equivalent value.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
}

// New creates an empty cache.
func New[T any]() *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]entry[T]),
	}
}

// Get returns the cached value for key, or false if absent or expired.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	if time.Now().After(e.expiry) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for ttl.
func (c *Cache[T]) Set(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry[T]{value: value, expiry: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Len returns the number of entries, including any not yet evicted.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
