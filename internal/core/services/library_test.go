package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

// Mock implementations for local testing

// MockAggregator is a mock implementation of driving.Aggregator
type MockAggregator struct {
	mock.Mock
}

func (m *MockAggregator) Search(ctx context.Context, query string, limit int) ([]*domain.Book, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Book), args.Error(1)
}

func (m *MockAggregator) GetBookDetails(ctx context.Context, id string) (*domain.BookDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookDetail), args.Error(1)
}

func (m *MockAggregator) GetContent(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// MockQueryService is a mock implementation of driving.QueryService
type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Understand(ctx context.Context, query string) *domain.QueryIntent {
	args := m.Called(ctx, query)
	return args.Get(0).(*domain.QueryIntent)
}

func TestNewLibraryService(t *testing.T) {
	svc := NewLibraryService(LibraryServiceConfig{Aggregator: &MockAggregator{}})
	require.NotNil(t, svc)
	assert.Implements(t, (*driving.LibraryService)(nil), svc)
}

func TestLibraryService_SearchValidation(t *testing.T) {
	agg := &MockAggregator{}
	svc := NewLibraryService(LibraryServiceConfig{Aggregator: agg})

	for _, q := range []string{"", "   ", "a", strings.Repeat("x", 501)} {
		_, err := svc.Search(context.Background(), domain.SearchRequest{Query: q})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "query %q", q)
	}
	agg.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestLibraryService_SearchUsesUnderstoodQuery(t *testing.T) {
	agg := &MockAggregator{}
	query := &MockQueryService{}
	cache := mocks.NewMockCache()
	svc := NewLibraryService(LibraryServiceConfig{Aggregator: agg, Query: query, Cache: cache})

	intent := domain.NewQueryIntent("scary gothic novel", domain.ExtractedTerms{Genre: "horror", Theme: "gothic"})
	books := []*domain.Book{domain.NewBook(domain.BookSourceGutenberg, "84", "Frankenstein")}

	query.On("Understand", mock.Anything, "scary gothic novel").Return(intent).Once()
	agg.On("Search", mock.Anything, "horror gothic", domain.DefaultSearchLimit).Return(books, nil).Once()

	resp, err := svc.Search(context.Background(), domain.SearchRequest{Query: "  scary gothic novel "})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalResults)
	assert.Equal(t, "horror gothic", resp.QueryUnderstood.SearchQuery)
	assert.True(t, cache.Has(domain.SearchCacheKey("scary gothic novel", domain.DefaultSearchLimit)))

	// served from cache
	resp, err = svc.Search(context.Background(), domain.SearchRequest{Query: "scary gothic novel"})
	require.NoError(t, err)
	assert.Equal(t, "gutenberg:84", resp.Results[0].ID)

	query.AssertExpectations(t)
	agg.AssertExpectations(t)
}

func TestLibraryService_SearchLimitClamped(t *testing.T) {
	agg := &MockAggregator{}
	svc := NewLibraryService(LibraryServiceConfig{Aggregator: agg})

	agg.On("Search", mock.Anything, "dune", domain.MaxSearchLimit).Return(nil, nil).Once()

	resp, err := svc.Search(context.Background(), domain.SearchRequest{Query: "dune", Limit: 500})
	require.NoError(t, err)
	assert.NotNil(t, resp.Results)
	assert.Equal(t, 0, resp.TotalResults)
	assert.Equal(t, "dune", resp.QueryUnderstood.SearchQuery)
	agg.AssertExpectations(t)
}

func TestLibraryService_SearchErrorNotCached(t *testing.T) {
	agg := &MockAggregator{}
	cache := mocks.NewMockCache()
	svc := NewLibraryService(LibraryServiceConfig{Aggregator: agg, Cache: cache})

	agg.On("Search", mock.Anything, "dune", 10).Return(nil, fmt.Errorf("%w: all down", domain.ErrSourceUnavailable))

	_, err := svc.Search(context.Background(), domain.SearchRequest{Query: "dune"})
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	stats, _ := cache.Stats(context.Background())
	assert.Zero(t, stats.Entries)
}

func TestLibraryService_SearchCacheWriteFailureIgnored(t *testing.T) {
	agg := &MockAggregator{}
	cache := mocks.NewMockCache()
	cache.SetErr = errors.New("redis down")
	svc := NewLibraryService(LibraryServiceConfig{Aggregator: agg, Cache: cache})

	agg.On("Search", mock.Anything, "dune", 10).Return([]*domain.Book{}, nil)

	_, err := svc.Search(context.Background(), domain.SearchRequest{Query: "dune"})
	assert.NoError(t, err)
}

func TestLibraryService_GetBook(t *testing.T) {
	agg := &MockAggregator{}
	cache := mocks.NewMockCache()
	svc := NewLibraryService(LibraryServiceConfig{Aggregator: agg, Cache: cache})

	detail := &domain.BookDetail{
		Book:        *domain.NewBook(domain.BookSourceGutenberg, "84", "Frankenstein"),
		ContentURL:  "https://www.gutenberg.org/files/84/84-0.txt",
		GutenbergID: 84,
	}
	agg.On("GetBookDetails", mock.Anything, "gutenberg:84").Return(detail, nil).Once()

	got, err := svc.GetBook(context.Background(), "gutenberg:84")
	require.NoError(t, err)
	assert.Equal(t, 84, got.GutenbergID)
	assert.Equal(t, DefaultCacheTTL, cache.TTL("book:gutenberg:84"))

	got, err = svc.GetBook(context.Background(), "gutenberg:84")
	require.NoError(t, err)
	assert.Equal(t, "Frankenstein", got.Title)
	agg.AssertExpectations(t)
}

func TestLibraryService_GetBookErrors(t *testing.T) {
	agg := &MockAggregator{}
	svc := NewLibraryService(LibraryServiceConfig{Aggregator: agg})

	agg.On("GetBookDetails", mock.Anything, "google:missing").Return(nil, nil)
	agg.On("GetBookDetails", mock.Anything, "badformat").Return(nil, fmt.Errorf("%w: bad id", domain.ErrInvalidInput))

	_, err := svc.GetBook(context.Background(), "google:missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetBook(context.Background(), "badformat")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
