package driving

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// Aggregator fans requests out to every catalog and merges the answers
type Aggregator interface {
	// Search returns deduplicated books ranked by relevance, at most limit long
	Search(ctx context.Context, query string, limit int) ([]*domain.Book, error)

	// GetBookDetails resolves a source-qualified id and enriches it with
	// the location of its full text. Returns nil, nil when not found.
	GetBookDetails(ctx context.Context, id string) (*domain.BookDetail, error)

	// GetContent downloads the full text of a book when its source offers one
	GetContent(ctx context.Context, id string) (string, error)
}

// LibraryService is the cached, validated front of the Aggregator
type LibraryService interface {
	// Search validates the request, optionally interprets the query, and searches
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)

	// GetBook returns book details, or domain.ErrNotFound
	GetBook(ctx context.Context, id string) (*domain.BookDetail, error)
}
