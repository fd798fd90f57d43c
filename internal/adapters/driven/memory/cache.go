package memory

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Cache = (*Cache)(nil)

// Defaults match the CACHE_MAX_CAPACITY and CACHE_TTL_SECONDS defaults
const (
	DefaultCapacity = 1000
	DefaultTTL      = time.Hour
)

// Cache implements driven.Cache with a bounded, expiring LRU.
// Used when no Redis URL is configured. The TTL is cache-wide, so the
// ttl argument to Set is ignored.
type Cache struct {
	lru *expirable.LRU[string, []byte]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates an in-process cache holding at most capacity entries
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{lru: expirable.NewLRU[string, []byte](capacity, nil, ttl)}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, domain.ErrNotFound
	}
	c.hits.Add(1)
	return v, nil
}

func (c *Cache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.lru.Add(key, value)
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Clear drops every entry and resets the counters
func (c *Cache) Clear(_ context.Context) error {
	c.lru.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
	return nil
}

func (c *Cache) Stats(_ context.Context) (*domain.CacheStats, error) {
	return &domain.CacheStats{
		Entries: int64(c.lru.Len()),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}, nil
}

// Ping always succeeds for the in-process cache
func (c *Cache) Ping(_ context.Context) error {
	return nil
}
