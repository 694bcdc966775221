package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps recently downloaded payloads in process memory so a
// run touching the same object twice pays for one download.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates a memory cache with the given default TTL.
// Expired entries are swept at twice the TTL; Get already ignores them.
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		store: gocache.New(defaultTTL, 2*defaultTTL),
	}
}

// Get retrieves a payload from the cache
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	v, found := c.store.Get(key)
	if !found {
		return nil, false
	}
	data, ok := v.([]byte)
	return data, ok
}

// Set stores a payload in the cache with the given TTL
func (c *MemoryCache) Set(key string, data []byte, ttl time.Duration) error {
	c.store.Set(key, data, ttl)
	return nil
}

// Delete removes a payload from the cache
func (c *MemoryCache) Delete(key string) error {
	c.store.Delete(key)
	return nil
}

// Clear removes all payloads from the cache
func (c *MemoryCache) Clear() error {
	c.store.Flush()
	return nil
}
