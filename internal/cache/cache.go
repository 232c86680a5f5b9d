// Package cache provides a small TTL key-value cache used to avoid
// redundant external fetches (benchmark return series, FX rates).
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache wraps an in-process TTL store. Entries expire individually; a
// janitor goroutine evicts them in the background.
type Cache struct {
	store *gocache.Cache
}

// New creates a cache whose entries default to the given TTL.
func New(defaultTTL time.Duration) *Cache {
	return &Cache{
		store: gocache.New(defaultTTL, 10*time.Minute),
	}
}

// Get returns the cached value for key, or false if absent or expired.
func (c *Cache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

// Set stores value under key with an explicit TTL.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}
