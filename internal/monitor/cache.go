package monitor

import (
	"sync"
	"time"
)

// Cache is a TTL key/value cache. Expired entries are dropped lazily on Get
// and eagerly by Cleanup; nothing runs in the background unless the owner
// wires Cleanup to a ticker.
type Cache struct {
	mu         sync.Mutex
	items      map[string]cacheItem
	defaultTTL time.Duration
	now        func() time.Time
}

type cacheItem struct {
	value  any
	expiry time.Time
}

// NewCache creates a cache with the given default TTL (5 minutes if <= 0).
func NewCache(defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &Cache{
		items:      make(map[string]cacheItem),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL stores value under key with an explicit TTL.
func (c *Cache) SetTTL(key string, value any, ttl time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cacheItem{value: value, expiry: c.now().Add(ttl)}
}

// Get returns the cached value, or false if absent or expired.
func (c *Cache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if c.now().After(item.expiry) {
		delete(c.items, key)
		return nil, false
	}
	return item.value, true
}

// Delete removes a key.
func (c *Cache) Delete(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Cleanup removes every expired entry and reports how many were dropped.
func (c *Cache) Cleanup() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	dropped := 0
	for key, item := range c.items {
		if now.After(item.expiry) {
			delete(c.items, key)
			dropped++
		}
	}
	return dropped
}

// Clear removes every entry.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheItem)
}

// Len returns the number of stored entries, including not-yet-collected
// expired ones.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
