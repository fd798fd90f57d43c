package driven

import (
	"context"
	"net/http"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// Doer sends HTTP requests. Catalog and backend adapters take a Doer
// so retry and rate limiting live in the transport, not the adapter.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CatalogSource searches one book catalog and normalizes its responses.
// Adapters make one request per call and never retry.
type CatalogSource interface {
	// Source returns the catalog this adapter serves.
	Source() domain.BookSource

	// Search returns at most limit books matching query.
	// Transport failures and non-2xx responses wrap domain.ErrSourceUnavailable.
	Search(ctx context.Context, query string, limit int) ([]*domain.Book, error)

	// GetByID fetches a book by its source-local id.
	// Returns nil, nil when the catalog reports 404.
	GetByID(ctx context.Context, localID string) (*domain.Book, error)
}

// FullTextSource is a catalog that can serve complete book text.
type FullTextSource interface {
	CatalogSource

	// ContentURL returns the deterministic text location for a local id.
	ContentURL(localID string) string

	// GetContent downloads the full text.
	// Bodies shorter than the minimum content size wrap domain.ErrContentUnavailable.
	GetContent(ctx context.Context, localID string) (string, error)
}

// ArchiveSource is a catalog that can point at an archived scan of a book.
type ArchiveSource interface {
	CatalogSource

	// ArchiveURL resolves the archived plain text location for a local id.
	// Returns "", nil when the catalog knows no archive copy.
	ArchiveURL(ctx context.Context, localID string) (string, error)

	// GetArchivedText downloads text from a URL returned by ArchiveURL.
	GetArchivedText(ctx context.Context, url string) (string, error)
}
