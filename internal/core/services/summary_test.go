package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven/mocks"
)

// MockOrchestrator is a mock implementation of driving.SummaryOrchestrator
type MockOrchestrator struct {
	mock.Mock
}

func (m *MockOrchestrator) Summarize(ctx context.Context, text string, style domain.SummaryStyle, language string) domain.SummaryOutcome {
	args := m.Called(ctx, text, style, language)
	return args.Get(0).(domain.SummaryOutcome)
}

type summaryFixture struct {
	agg   *MockAggregator
	orch  *MockOrchestrator
	store *mocks.MockSummaryStore
	cache *mocks.MockCache
	svc   *summaryService
}

func newSummaryFixture(languages ...string) *summaryFixture {
	f := &summaryFixture{
		agg:   &MockAggregator{},
		orch:  &MockOrchestrator{},
		store: mocks.NewMockSummaryStore(),
		cache: mocks.NewMockCache(),
	}
	f.svc = NewSummaryService(SummaryServiceConfig{
		Library:            NewLibraryService(LibraryServiceConfig{Aggregator: f.agg}),
		Aggregator:         f.agg,
		Orchestrator:       f.orch,
		Store:              f.store,
		Cache:              f.cache,
		SupportedLanguages: languages,
	}).(*summaryService)
	return f
}

func frankenstein() *domain.BookDetail {
	b := domain.NewBook(domain.BookSourceGutenberg, "84", "Frankenstein")
	b.Authors = []string{"Mary Shelley"}
	b.ISBN = "9780141439471"
	return &domain.BookDetail{
		Book:        *b,
		ContentURL:  "https://www.gutenberg.org/files/84/84-0.txt",
		GutenbergID: 84,
	}
}

func TestSummaryService_GeneratesFromFullText(t *testing.T) {
	f := newSummaryFixture()
	ctx := context.Background()

	f.agg.On("GetBookDetails", mock.Anything, "gutenberg:84").Return(frankenstein(), nil).Once()
	f.agg.On("GetContent", mock.Anything, "gutenberg:84").Return("The full text of the novel.", nil).Once()
	f.orch.On("Summarize", mock.Anything, "The full text of the novel.", domain.SummaryStyleConcise, "en").
		Return(domain.SummaryOutcome{Text: "A scientist builds a creature.", Path: domain.SummaryPathShort}).Once()

	resp, err := f.svc.Summarize(ctx, "gutenberg:84", domain.SummaryRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "A scientist builds a creature.", resp.SummaryText)
	assert.Equal(t, 5, resp.WordCount)
	assert.Equal(t, "en", resp.Language)
	assert.Equal(t, domain.BookInfo{Title: "Frankenstein", Author: "Mary Shelley", ISBN: "9780141439471"}, resp.BookInfo)

	stored, err := f.store.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceHash("The full text of the novel."), stored.SourceHash)
	assert.True(t, f.cache.Has("summary:gutenberg:84:3:concise:en"))

	// second request is served from the cache
	again, err := f.svc.Summarize(ctx, "gutenberg:84", domain.SummaryRequest{})
	require.NoError(t, err)
	assert.Equal(t, resp.ID, again.ID)
	assert.Equal(t, 1, f.store.Count())

	f.agg.AssertExpectations(t)
	f.orch.AssertExpectations(t)
}

func TestSummaryService_ServesStoredSummary(t *testing.T) {
	f := newSummaryFixture()
	ctx := context.Background()

	existing, err := f.store.Create(ctx, domain.NewCreateSummary(&frankenstein().Book, "en", domain.SummaryStyleDetailed, "Stored text.", "source"))
	require.NoError(t, err)

	resp, err := f.svc.Summarize(ctx, "gutenberg:84", domain.SummaryRequest{Style: domain.SummaryStyleDetailed})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, resp.ID)
	assert.True(t, f.cache.Has("summary:gutenberg:84:3:detailed:en"))

	f.agg.AssertNotCalled(t, "GetBookDetails", mock.Anything, mock.Anything)
	f.orch.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSummaryService_ContentSelection(t *testing.T) {
	described := domain.NewBook(domain.BookSourceGoogle, "g1", "Dune")
	described.Authors = []string{"Frank Herbert"}
	described.Description = "<p>A <b>desert</b> planet &amp; its spice.</p>"

	bare := domain.NewBook(domain.BookSourceGoogle, "g2", "Emma")
	bare.Authors = []string{"Jane Austen", "Anonymous"}

	tests := []struct {
		name       string
		detail     *domain.BookDetail
		contentErr error
		want       string
	}{
		{
			name:   "html description",
			detail: &domain.BookDetail{Book: *described},
			want:   "A desert planet & its spice.",
		},
		{
			name:   "placeholder",
			detail: &domain.BookDetail{Book: *bare},
			want:   "Book: Emma by Jane Austen, Anonymous. No additional content available for summarization.",
		},
		{
			name: "full text failure falls back to description",
			detail: &domain.BookDetail{
				Book:       *described,
				ContentURL: "https://archive.org/stream/x/x_djvu.txt",
			},
			contentErr: fmt.Errorf("%w: 404", domain.ErrContentUnavailable),
			want:       "A desert planet & its spice.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSummaryFixture()
			f.agg.On("GetBookDetails", mock.Anything, tt.detail.ID).Return(tt.detail, nil)
			if tt.contentErr != nil {
				f.agg.On("GetContent", mock.Anything, tt.detail.ID).Return("", tt.contentErr)
			}
			f.orch.On("Summarize", mock.Anything, tt.want, domain.SummaryStyleSimple, "en").
				Return(domain.SummaryOutcome{Text: "summary"}).Once()

			_, err := f.svc.Summarize(context.Background(), tt.detail.ID, domain.SummaryRequest{Style: domain.SummaryStyleSimple})
			require.NoError(t, err)
			f.orch.AssertExpectations(t)
		})
	}
}

func TestSummaryService_Validation(t *testing.T) {
	f := newSummaryFixture("en", "fr")

	tests := []struct {
		name   string
		bookID string
		req    domain.SummaryRequest
	}{
		{"no separator", "badformat", domain.SummaryRequest{}},
		{"unknown source", "amazon:B00123", domain.SummaryRequest{}},
		{"empty local id", "gutenberg:", domain.SummaryRequest{}},
		{"unsupported language", "gutenberg:84", domain.SummaryRequest{Language: "de"}},
		{"unknown style", "gutenberg:84", domain.SummaryRequest{Style: "poetic"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Summarize(context.Background(), tt.bookID, tt.req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	f.agg.AssertNotCalled(t, "GetBookDetails", mock.Anything, mock.Anything)

	stats, err := f.cache.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Hits+stats.Misses, "cache consulted for an invalid request")
}

func TestSummaryService_BookNotFound(t *testing.T) {
	f := newSummaryFixture()
	f.agg.On("GetBookDetails", mock.Anything, "google:missing").Return(nil, nil)

	_, err := f.svc.Summarize(context.Background(), "google:missing", domain.SummaryRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSummaryService_StoreFailure(t *testing.T) {
	f := newSummaryFixture()
	f.store.CreateErr = errors.New("connection refused")
	f.agg.On("GetBookDetails", mock.Anything, "gutenberg:84").Return(frankenstein(), nil)
	f.agg.On("GetContent", mock.Anything, "gutenberg:84").Return("text", nil)
	f.orch.On("Summarize", mock.Anything, "text", domain.SummaryStyleConcise, "en").Return(domain.SummaryOutcome{Text: "s"})

	_, err := f.svc.Summarize(context.Background(), "gutenberg:84", domain.SummaryRequest{})
	assert.Error(t, err)
	assert.False(t, f.cache.Has("summary:gutenberg:84:3:concise:en"))
}

func TestSummaryService_Preview(t *testing.T) {
	f := newSummaryFixture("en", "es")
	f.agg.On("GetBookDetails", mock.Anything, "gutenberg:84").Return(frankenstein(), nil)
	f.agg.On("GetContent", mock.Anything, "gutenberg:84").Return("text", nil)
	f.orch.On("Summarize", mock.Anything, "text", domain.SummaryStyleAcademic, "es").
		Return(domain.SummaryOutcome{Text: "Un resumen breve."})

	resp, err := f.svc.Preview(context.Background(), "gutenberg:84", domain.SummaryRequest{Language: "ES", Style: domain.SummaryStyleAcademic})
	require.NoError(t, err)
	assert.Equal(t, "Un resumen breve.", resp.SummaryText)
	assert.Equal(t, 3, resp.WordCount)
	assert.Equal(t, "es", resp.Language)
	assert.Empty(t, resp.ID)
	assert.Zero(t, f.store.Count())
	assert.False(t, f.cache.Has("summary:gutenberg:84:3:academic:es"))
}

func TestSummaryService_Get(t *testing.T) {
	f := newSummaryFixture()
	ctx := context.Background()

	_, err := f.svc.Get(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, err := f.store.Create(ctx, domain.NewCreateSummary(&frankenstein().Book, "en", domain.SummaryStyleConcise, "Stored.", "src"))
	require.NoError(t, err)

	resp, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stored.", resp.SummaryText)
	assert.Equal(t, "Frankenstein", resp.BookInfo.Title)
}
