package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ConsensusCache memoizes fused results per entity key within a freshness
// window and guarantees at most one in-flight fusion per key: concurrent
// callers for the same key await the one computation instead of duplicating
// provider calls. Entries are replaced atomically; a reader never observes a
// partially written entry.
type ConsensusCache struct {
	ttl   time.Duration
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value      any
	computedAt time.Time
}

func NewConsensusCache(ttl time.Duration) *ConsensusCache {
	return &ConsensusCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Do returns the cached value for key or computes it, deduplicating
// concurrent computations. force bypasses the freshness check and replaces
// the entry on success. The compute function runs under the context of the
// caller that started the flight; awaiting callers share its result.
func (c *ConsensusCache) Do(ctx context.Context, key string, force bool, compute func(context.Context) (any, error)) (any, error) {
	if !force {
		if value, ok := c.lookup(key); ok {
			return value, nil
		}
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent flight may have refreshed the entry while this caller
		// waited for its turn.
		if !force {
			if value, ok := c.lookup(key); ok {
				return value, nil
			}
		}

		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = cacheEntry{value: value, computedAt: time.Now()}
		c.mu.Unlock()
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Invalidate drops the entry for key, forcing the next Do to recompute.
func (c *ConsensusCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *ConsensusCache) lookup(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Since(entry.computedAt) > c.ttl {
		return nil, false
	}
	return entry.value, true
}
