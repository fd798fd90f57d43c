package domain

import (
	"sync"
	"time"
)

// RuntimeConfig tracks process-wide facts determined at startup,
// plus the active summarization backend which the admin API can swap.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	StartedAt    time.Time
	Version      string
	CacheBackend string // "redis" or "memory"

	// Dynamic (updated when the backend changes)
	backendAvailable bool
	backendProvider  AIProvider
	backendModel     string
}

// NewRuntimeConfig creates a RuntimeConfig stamped with the current time
func NewRuntimeConfig(version, cacheBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		StartedAt:    time.Now(),
		Version:      version,
		CacheBackend: cacheBackend,
	}
}

// Uptime returns the time elapsed since the process started
func (c *RuntimeConfig) Uptime() time.Duration {
	return time.Since(c.StartedAt)
}

// UptimeSeconds returns uptime truncated to whole seconds
func (c *RuntimeConfig) UptimeSeconds() int64 {
	return int64(c.Uptime() / time.Second)
}

// BackendAvailable returns whether a summarization backend is configured
func (c *RuntimeConfig) BackendAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.backendAvailable
}

// Backend returns the active provider and model
func (c *RuntimeConfig) Backend() (AIProvider, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.backendProvider, c.backendModel
}

// SetBackend records the active backend
func (c *RuntimeConfig) SetBackend(provider AIProvider, model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backendProvider = provider
	c.backendModel = model
	c.backendAvailable = provider != ""
}

// ClearBackend marks the backend as unavailable
func (c *RuntimeConfig) ClearBackend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backendProvider = ""
	c.backendModel = ""
	c.backendAvailable = false
}

// CanUnderstandQueries returns true if query understanding can use a backend
func (c *RuntimeConfig) CanUnderstandQueries() bool {
	return c.BackendAvailable()
}
