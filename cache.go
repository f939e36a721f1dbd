package toolhub

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value     Args
	expiresAt time.Time
}

// Cache is a TTL key-value store for tool results. Eviction is lazy: an
// expired entry is treated as absent and removed on the next lookup for its
// key; there is no background sweep. Concurrent computes for the same key
// are tolerated with last-writer-wins semantics; the lock is never held
// while a compute runs, so a slow tool does not block unrelated lookups.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock overrides the cache's time source. Used in tests to step time
// past TTL boundaries without sleeping.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates an empty Cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCompute returns the live entry for key without invoking compute.
// Otherwise it invokes compute, stores the result with expiry now+ttl only
// on success, and returns it. Failures are never cached. The boolean reports
// a cache hit.
func (c *Cache) GetOrCompute(key string, ttl time.Duration, compute func() (Args, error)) (Args, bool, error) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		if c.now().Before(entry.expiresAt) {
			c.mu.Unlock()
			return entry.value, true, nil
		}
		delete(c.entries, key)
	}
	c.mu.Unlock()

	value, err := compute()
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return value, false, nil
}

// Len returns the number of stored entries, including not-yet-evicted
// expired ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}
