package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

var _ driven.Cache = (*MockCache)(nil)

// MockCache is an in-memory implementation of Cache for testing.
// TTLs are recorded but never enforced.
type MockCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	hits    int64
	misses  int64

	// SetErr, when set, is returned by every Set
	SetErr error
	// PingErr, when set, is returned by Ping
	PingErr error
}

// NewMockCache creates a new MockCache
func NewMockCache() *MockCache {
	return &MockCache{
		entries: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		m.misses++
		return nil, domain.ErrNotFound
	}
	m.hits++
	return v, nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	delete(m.ttls, key)
	return nil
}

func (m *MockCache) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string][]byte)
	m.ttls = make(map[string]time.Duration)
	return nil
}

func (m *MockCache) Stats(ctx context.Context) (*domain.CacheStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &domain.CacheStats{Entries: int64(len(m.entries)), Hits: m.hits, Misses: m.misses}, nil
}

func (m *MockCache) Ping(ctx context.Context) error {
	return m.PingErr
}

// Has reports whether key is present
func (m *MockCache) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[key]
	return ok
}

// TTL returns the ttl recorded for key
func (m *MockCache) TTL(key string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ttls[key]
}
