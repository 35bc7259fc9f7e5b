// Package cache provides a small thread-safe in-memory cache with TTL.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL maps keys to values that expire a fixed duration after their last Set.
type TTL[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]*entry[V]
	ttl     time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewTTL creates a cache and starts its cleanup loop. Call Close to stop it.
func NewTTL[K comparable, V any](ttl time.Duration) *TTL[K, V] {
	c := &TTL[K, V]{
		entries: make(map[K]*entry[V]),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get returns the value for key if present and not expired.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, found := c.entries[key]
	if !found || c.now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key.
func (c *TTL[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// GetOrCreate returns the live value for key, storing create() when absent.
// The expiry is refreshed on every call.
func (c *TTL[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, found := c.entries[key]; found && !now.After(e.expiresAt) {
		e.expiresAt = now.Add(c.ttl)
		return e.value
	}
	v := create()
	c.entries[key] = &entry[V]{value: v, expiresAt: now.Add(c.ttl)}
	return v
}

// Delete removes key.
func (c *TTL[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Len returns the number of stored entries, expired or not.
func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Close stops the cleanup loop.
func (c *TTL[K, V]) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *TTL[K, V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

func (c *TTL[K, V]) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}
