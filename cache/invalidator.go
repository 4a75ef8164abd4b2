package cache

import (
	"context"
	"sync"
	"time"
)

// Invalidator removes cached query results by key. Invalidation is best
// effort: implementations log failures and report success, since a stale
// cache entry is an accepted, time bounded inconsistency while a failed
// pipeline is not. Keys that are not present are no-ops.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Cache is an Invalidator that can also serve reads. Reads and writes
// follow the same best effort contract; a failure surfaces as a miss, not
// an error.
type Cache interface {
	Invalidator

	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

type NopInvalidator struct{}

func (NopInvalidator) Invalidate(ctx context.Context, keys ...string) error {
	return nil
}

// MemoryCache is an in-process Cache for tests and local wiring. Entries
// never expire; the ttl is ignored.
type MemoryCache struct {
	lk      sync.Mutex
	entries map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.lk.Lock()
	defer c.lk.Unlock()

	c.entries[key] = value

	return nil
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.lk.Lock()
	defer c.lk.Unlock()

	value, ok := c.entries[key]
	return value, ok, nil
}

func (c *MemoryCache) Invalidate(ctx context.Context, keys ...string) error {
	c.lk.Lock()
	defer c.lk.Unlock()

	for _, key := range keys {
		delete(c.entries, key)
	}

	return nil
}
