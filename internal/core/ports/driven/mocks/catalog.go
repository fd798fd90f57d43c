package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

var (
	_ driven.CatalogSource  = (*MockCatalogSource)(nil)
	_ driven.FullTextSource = (*MockFullTextSource)(nil)
	_ driven.ArchiveSource  = (*MockArchiveSource)(nil)
)

// MockCatalogSource is a mock implementation of CatalogSource for testing.
// It counts calls so tests can assert that no request was made.
type MockCatalogSource struct {
	SourceValue domain.BookSource
	SearchFn    func(ctx context.Context, query string, limit int) ([]*domain.Book, error)
	GetByIDFn   func(ctx context.Context, localID string) (*domain.Book, error)

	mu           sync.Mutex
	searchCalls  int
	getByIDCalls int
}

func NewMockCatalogSource(source domain.BookSource) *MockCatalogSource {
	return &MockCatalogSource{SourceValue: source}
}

func (m *MockCatalogSource) Source() domain.BookSource {
	return m.SourceValue
}

func (m *MockCatalogSource) Search(ctx context.Context, query string, limit int) ([]*domain.Book, error) {
	m.mu.Lock()
	m.searchCalls++
	m.mu.Unlock()
	if m.SearchFn != nil {
		return m.SearchFn(ctx, query, limit)
	}
	return []*domain.Book{}, nil
}

func (m *MockCatalogSource) GetByID(ctx context.Context, localID string) (*domain.Book, error) {
	m.mu.Lock()
	m.getByIDCalls++
	m.mu.Unlock()
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, localID)
	}
	return nil, nil
}

// Calls returns the number of Search and GetByID calls made so far
func (m *MockCatalogSource) Calls() (search, getByID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchCalls, m.getByIDCalls
}

// MockFullTextSource adds full text retrieval to MockCatalogSource
type MockFullTextSource struct {
	*MockCatalogSource
	ContentURLFn func(localID string) string
	GetContentFn func(ctx context.Context, localID string) (string, error)
}

func NewMockFullTextSource() *MockFullTextSource {
	return &MockFullTextSource{MockCatalogSource: NewMockCatalogSource(domain.BookSourceGutenberg)}
}

func (m *MockFullTextSource) ContentURL(localID string) string {
	if m.ContentURLFn != nil {
		return m.ContentURLFn(localID)
	}
	return "https://text.example/" + localID + ".txt"
}

func (m *MockFullTextSource) GetContent(ctx context.Context, localID string) (string, error) {
	if m.GetContentFn != nil {
		return m.GetContentFn(ctx, localID)
	}
	return "", domain.ErrContentUnavailable
}

// MockArchiveSource adds archive lookup to MockCatalogSource
type MockArchiveSource struct {
	*MockCatalogSource
	ArchiveURLFn      func(ctx context.Context, localID string) (string, error)
	GetArchivedTextFn func(ctx context.Context, url string) (string, error)
}

func NewMockArchiveSource() *MockArchiveSource {
	return &MockArchiveSource{MockCatalogSource: NewMockCatalogSource(domain.BookSourceOpenLibrary)}
}

func (m *MockArchiveSource) ArchiveURL(ctx context.Context, localID string) (string, error) {
	if m.ArchiveURLFn != nil {
		return m.ArchiveURLFn(ctx, localID)
	}
	return "", nil
}

func (m *MockArchiveSource) GetArchivedText(ctx context.Context, url string) (string, error) {
	if m.GetArchivedTextFn != nil {
		return m.GetArchivedTextFn(ctx, url)
	}
	return "", domain.ErrContentUnavailable
}
