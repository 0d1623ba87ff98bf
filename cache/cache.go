// ABOUTME: In-memory cache with TTL-based expiration checked at read time.
// ABOUTME: Thread-safe via sync.Map with a background sweep of expired entries.

package cache

import (
	"log/slog"
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache stores values with per-entry expiry. Expired entries are treated as
// absent on read; a background sweep reclaims them eventually.
type Cache struct {
	store      sync.Map
	defaultTTL time.Duration
}

// New creates a cache with the given default TTL and starts the sweep loop.
func New(defaultTTL time.Duration) *Cache {
	c := &Cache{defaultTTL: defaultTTL}
	go c.sweepLoop()
	return c
}

// Get returns the value for key, or found=false if absent or expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	val, ok := c.store.Load(key)
	if !ok {
		slog.Debug("Cache miss", "key", key)
		return nil, false
	}

	e := val.(entry)
	if time.Now().After(e.expiresAt) {
		c.store.Delete(key)
		slog.Debug("Cache expired", "key", key)
		return nil, false
	}

	slog.Debug("Cache hit", "key", key)
	return e.value, true
}

// Put stores a value with the default TTL.
func (c *Cache) Put(key string, value interface{}) {
	c.PutTTL(key, value, c.defaultTTL)
}

// PutTTL stores a value with a custom TTL.
func (c *Cache) PutTTL(key string, value interface{}, ttl time.Duration) {
	c.store.Store(key, entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})
	slog.Debug("Cache put", "key", key, "ttl", ttl)
}

// Invalidate removes a key immediately.
func (c *Cache) Invalidate(key string) {
	c.store.Delete(key)
}

func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.store.Range(func(key, val interface{}) bool {
			if now.After(val.(entry).expiresAt) {
				c.store.Delete(key)
			}
			return true
		})
	}
}
