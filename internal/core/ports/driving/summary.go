package driving

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// SummaryOrchestrator runs the clean, chunk, summarize and fallback pipeline.
// It never fails; every failure degrades to an extractive or canned summary.
type SummaryOrchestrator interface {
	Summarize(ctx context.Context, text string, style domain.SummaryStyle, language string) domain.SummaryOutcome
}

// SummaryService produces, stores and caches book summaries
type SummaryService interface {
	// Summarize returns the summary for a book, generating and storing it when
	// neither the cache nor the store holds one.
	Summarize(ctx context.Context, bookID string, req domain.SummaryRequest) (*domain.SummaryResponse, error)

	// Preview generates a summary without touching the cache or the store
	Preview(ctx context.Context, bookID string, req domain.SummaryRequest) (*domain.SummaryResponse, error)

	// Get returns a stored summary by id
	Get(ctx context.Context, id string) (*domain.SummaryResponse, error)
}

// QueryService interprets free text search queries
type QueryService interface {
	// Understand extracts structured terms and builds a search query.
	// Backend failures degrade to a simple intent.
	Understand(ctx context.Context, query string) *domain.QueryIntent
}
