package driven

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// SummaryStore handles summary persistence (PostgreSQL)
type SummaryStore interface {
	// Create inserts a summary and returns it with id and timestamps assigned
	Create(ctx context.Context, summary *domain.CreateSummary) (*domain.Summary, error)

	// Get retrieves a summary by ID
	Get(ctx context.Context, id string) (*domain.Summary, error)

	// GetLatestForBook returns the newest summary for a book, language and style.
	// Returns domain.ErrNotFound when none exists.
	GetLatestForBook(ctx context.Context, bookID, language string, style domain.SummaryStyle) (*domain.Summary, error)

	// Ping checks the database connection
	Ping(ctx context.Context) error
}
