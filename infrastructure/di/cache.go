package di

import (
	"context"
	"sync"
	"time"
)

const cacheSweepInterval = time.Minute

// InMemoryCache backs ports.Cache with a process-local map. The only
// hot entry is the per-user reflection pool, so there is no size bound
// and no eviction beyond TTL expiry.
type InMemoryCache struct {
	mu    sync.RWMutex
	items map[string]cacheEntry

	stopChan    chan struct{}
	stoppedChan chan struct{}
}

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// NewInMemoryCache creates the cache and starts its expiry sweep
func NewInMemoryCache() *InMemoryCache {
	c := &InMemoryCache{
		items:       make(map[string]cacheEntry),
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
	go c.sweep()
	return c
}

// Stop terminates the expiry sweep goroutine
func (c *InMemoryCache) Stop() {
	close(c.stopChan)
	<-c.stoppedChan
}

// Get returns a live entry. An expired entry reads as a miss; the
// sweep reclaims it later.
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.items[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

// Set stores a value with a TTL in seconds
func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(time.Duration(ttlSeconds) * time.Second),
	}
	return nil
}

// Delete drops an entry, forcing the next read through to the store
func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

func (c *InMemoryCache) sweep() {
	defer close(c.stoppedChan)

	ticker := time.NewTicker(cacheSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.dropExpired()
		}
	}
}

func (c *InMemoryCache) dropExpired() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.items {
		if now.After(entry.expiresAt) {
			delete(c.items, key)
		}
	}
}
