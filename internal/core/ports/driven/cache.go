package driven

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// Cache is a best-effort response cache (Redis or in-memory).
// Get returns domain.ErrNotFound on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by this cache
	Clear(ctx context.Context) error

	// Stats reports entry count and hit/miss counters
	Stats(ctx context.Context) (*domain.CacheStats, error)

	// Ping checks if the cache backend is healthy
	Ping(ctx context.Context) error
}

// GetJSON reads key and decodes it into a T
func GetJSON[T any](ctx context.Context, c Cache, key string) (*T, error) {
	data, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return &v, nil
}

// SetJSON encodes v and stores it under key
func SetJSON[T any](ctx context.Context, c Cache, key string, v *T, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}
