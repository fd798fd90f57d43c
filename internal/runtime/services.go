package runtime

import (
	"context"
	"sync"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Services holds references to dynamically configurable services.
// The summarization backend can be replaced at runtime via the admin API.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags
	config *domain.RuntimeConfig

	// Dynamic (can be nil, updated at runtime)
	backend driven.SummarizationBackend
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// Backend returns the current summarization backend (may be nil)
func (s *Services) Backend() driven.SummarizationBackend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backend
}

// SetBackend replaces the summarization backend.
// Closes the old backend if present. Updates config flags.
func (s *Services) SetBackend(provider domain.AIProvider, backend driven.SummarizationBackend) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend != nil && s.backend != backend {
		_ = s.backend.Close()
	}

	s.backend = backend
	if backend == nil {
		s.config.ClearBackend()
		return
	}
	s.config.SetBackend(provider, backend.Model())
}

// ValidateAndSetBackend pings the backend before installing it.
// An unreachable backend is closed and the current one kept.
func (s *Services) ValidateAndSetBackend(ctx context.Context, provider domain.AIProvider, backend driven.SummarizationBackend) error {
	if backend == nil {
		s.SetBackend("", nil)
		return nil
	}

	if err := backend.Ping(ctx); err != nil {
		_ = backend.Close()
		return err
	}

	s.SetBackend(provider, backend)
	return nil
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend != nil {
		_ = s.backend.Close()
		s.backend = nil
	}
	s.config.ClearBackend()

	return nil
}
