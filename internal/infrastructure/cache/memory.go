package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/opticount/backend/internal/domain"
)

// sweepInterval is how often expired entries are collected.
const sweepInterval = 10 * time.Minute

type item struct {
	value      interface{}
	expiration time.Time
}

// MemoryCache is a thread-safe in-memory cache with per-key TTL. It backs
// the brand-list reads so the context pickers do not hit the hosted store
// on every page load.
type MemoryCache struct {
	data  map[string]item
	mutex sync.RWMutex
}

// NewMemoryCache creates the cache and starts its background sweeper.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		data: make(map[string]item),
	}
	go c.sweep()
	return c
}

// Get retrieves a value; expired or missing keys report a cache miss.
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	it, ok := c.data[key]
	if !ok || time.Now().After(it.expiration) {
		return nil, domain.ErrCacheMiss
	}
	return it.value, nil
}

// Set stores a value with a TTL. The value is round-tripped through JSON so
// readers always see plain decoded data, the same shape an external cache
// would hand back.
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var stored interface{}
	if err := json.Unmarshal(jsonData, &stored); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data[key] = item{
		value:      stored,
		expiration: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes a key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.data, key)
	return nil
}

// Exists reports whether a key is present and unexpired.
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	it, ok := c.data[key]
	return ok && !time.Now().After(it.expiration), nil
}

// Size returns the current number of items (for debugging/monitoring).
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

func (c *MemoryCache) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.mutex.Lock()
		for key, it := range c.data {
			if now.After(it.expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}
