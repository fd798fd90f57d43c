package driven

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// SummarizationBackend is the opaque text model used by the pipeline.
// All failures wrap domain.ErrBackendUnavailable.
type SummarizationBackend interface {
	// Summarize produces a summary of text. targetLen and minLen are
	// length hints in tokens; the model may not respect them exactly.
	Summarize(ctx context.Context, text string, targetLen, minLen int) (string, error)

	// GenerateText completes a free-form prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error

	// Close releases resources held by the backend
	Close() error
}

// BackendFactory creates summarization backends from settings
type BackendFactory interface {
	// Create builds a backend for the configured provider.
	// Unknown providers wrap domain.ErrInvalidProvider.
	Create(settings *domain.BackendSettings) (SummarizationBackend, error)
}
