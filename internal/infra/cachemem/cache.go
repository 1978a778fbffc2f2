// Package cachemem is a small mutex-guarded TTL cache.
package cachemem

import (
	"sync"
	"time"
)

type Cache[V any] struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry[V]
	now        func() time.Time
	maxEntries int
}

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
	hasExpiry bool
}

// New returns a cache holding at most maxEntries values; zero means unbounded.
func New[V any](maxEntries int) *Cache[V] {
	return &Cache[V]{
		entries:    make(map[string]cacheEntry[V]),
		now:        time.Now,
		maxEntries: maxEntries,
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if entry.hasExpiry && c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	return entry.value, true
}

func (c *Cache[V]) Put(key string, value V, ttl time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[key]; !exists {
			c.evict()
		}
	}
	entry := cacheEntry[V]{value: value}
	if ttl > 0 {
		entry.hasExpiry = true
		entry.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = entry
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evict drops expired entries, or every entry when none had expired.
func (c *Cache[V]) evict() {
	now := c.now()
	removed := false
	for key, entry := range c.entries {
		if entry.hasExpiry && now.After(entry.expiresAt) {
			delete(c.entries, key)
			removed = true
		}
	}
	if !removed {
		clear(c.entries)
	}
}
