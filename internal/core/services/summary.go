package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
	"github.com/custodia-labs/lectern/internal/normalisers"
)

// Ensure summaryService implements SummaryService
var _ driving.SummaryService = (*summaryService)(nil)

// SummaryServiceConfig holds dependencies for the summary service
type SummaryServiceConfig struct {
	Library      driving.LibraryService
	Aggregator   driving.Aggregator
	Orchestrator driving.SummaryOrchestrator

	// Store and Cache may be nil; Preview never uses them
	Store    driven.SummaryStore
	Cache    driven.Cache
	CacheTTL time.Duration

	// Registry strips markup from catalog descriptions
	Registry driven.NormaliserRegistry

	// SupportedLanguages defaults to English only
	SupportedLanguages []string

	Logger *slog.Logger
}

type summaryService struct {
	library      driving.LibraryService
	aggregator   driving.Aggregator
	orchestrator driving.SummaryOrchestrator
	store        driven.SummaryStore
	cache        driven.Cache
	cacheTTL     time.Duration
	registry     driven.NormaliserRegistry
	languages    []string
	logger       *slog.Logger
}

// NewSummaryService creates the summary service
func NewSummaryService(cfg SummaryServiceConfig) driving.SummaryService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Registry == nil {
		cfg.Registry = normalisers.DefaultRegistry()
	}
	if len(cfg.SupportedLanguages) == 0 {
		cfg.SupportedLanguages = []string{domain.DefaultLanguage}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &summaryService{
		library:      cfg.Library,
		aggregator:   cfg.Aggregator,
		orchestrator: cfg.Orchestrator,
		store:        cfg.Store,
		cache:        cfg.Cache,
		cacheTTL:     cfg.CacheTTL,
		registry:     cfg.Registry,
		languages:    cfg.SupportedLanguages,
		logger:       cfg.Logger,
	}
}

// Summarize serves a summary from the cache, then the store, and
// generates one when neither has it
func (s *summaryService) Summarize(ctx context.Context, bookID string, req domain.SummaryRequest) (*domain.SummaryResponse, error) {
	req, err := s.validate(bookID, req)
	if err != nil {
		return nil, err
	}

	key := domain.SummaryCacheKey(bookID, req)
	if cached := cacheGet[domain.SummaryResponse](ctx, s.cache, key, s.logger); cached != nil {
		s.logger.Info("summary cache hit", "book_id", bookID, "style", req.Style, "cache_key", key)
		return cached, nil
	}

	if stored := s.stored(ctx, bookID, req); stored != nil {
		resp := stored.ToResponse()
		cacheSet(ctx, s.cache, key, resp, s.cacheTTL, s.logger)
		return resp, nil
	}

	book, text, outcome, err := s.generate(ctx, bookID, req)
	if err != nil {
		return nil, err
	}

	if s.store == nil {
		return nil, errors.New("summary store not configured")
	}
	summary, err := s.store.Create(ctx, domain.NewCreateSummary(book, req.Language, req.Style, outcome.Text, text))
	if err != nil {
		return nil, fmt.Errorf("save summary: %w", err)
	}

	resp := summary.ToResponse()
	cacheSet(ctx, s.cache, key, resp, s.cacheTTL, s.logger)

	s.logger.Info("summary generated",
		"book_id", bookID,
		"summary_id", summary.ID,
		"style", req.Style,
		"language", req.Language,
		"path", outcome.Path,
		"extractive", outcome.Extractive,
		"words", summary.WordCount,
	)
	return resp, nil
}

// Preview generates a summary without reading or writing the cache and store
func (s *summaryService) Preview(ctx context.Context, bookID string, req domain.SummaryRequest) (*domain.SummaryResponse, error) {
	req, err := s.validate(bookID, req)
	if err != nil {
		return nil, err
	}

	book, _, outcome, err := s.generate(ctx, bookID, req)
	if err != nil {
		return nil, err
	}

	return &domain.SummaryResponse{
		SummaryText: outcome.Text,
		Language:    req.Language,
		WordCount:   domain.WordCount(outcome.Text),
		BookInfo: domain.BookInfo{
			Title:  book.Title,
			Author: book.AuthorNames(),
			ISBN:   book.ISBN,
		},
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Get returns a stored summary
func (s *summaryService) Get(ctx context.Context, id string) (*domain.SummaryResponse, error) {
	if s.store == nil {
		return nil, domain.ErrNotFound
	}
	summary, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return summary.ToResponse(), nil
}

func (s *summaryService) validate(bookID string, req domain.SummaryRequest) (domain.SummaryRequest, error) {
	if _, _, err := domain.ParseBookID(bookID); err != nil {
		return req, err
	}
	req = req.WithDefaults()
	if err := domain.ValidateLanguage(req.Language, s.languages); err != nil {
		return req, err
	}
	if err := domain.ValidateStyle(req.Style); err != nil {
		return req, err
	}
	req.Language = strings.ToLower(req.Language)
	return req, nil
}

// stored returns the latest persisted summary, or nil
func (s *summaryService) stored(ctx context.Context, bookID string, req domain.SummaryRequest) *domain.Summary {
	if s.store == nil {
		return nil
	}
	summary, err := s.store.GetLatestForBook(ctx, bookID, req.Language, req.Style)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("stored summary lookup failed", "book_id", bookID, "error", err)
		}
		return nil
	}
	s.logger.Info("serving stored summary", "book_id", bookID, "summary_id", summary.ID)
	return summary
}

// generate loads the book, selects its text and runs the orchestrator
func (s *summaryService) generate(ctx context.Context, bookID string, req domain.SummaryRequest) (*domain.Book, string, domain.SummaryOutcome, error) {
	detail, err := s.library.GetBook(ctx, bookID)
	if err != nil {
		return nil, "", domain.SummaryOutcome{}, err
	}

	text := s.sourceText(ctx, detail)
	outcome := s.orchestrator.Summarize(ctx, text, req.Style, req.Language)
	return &detail.Book, text, outcome, nil
}

// sourceText picks the full text, else the description, else a placeholder
func (s *summaryService) sourceText(ctx context.Context, detail *domain.BookDetail) string {
	if detail.HasContentURL() && s.aggregator != nil {
		text, err := s.aggregator.GetContent(ctx, detail.ID)
		if err == nil && strings.TrimSpace(text) != "" {
			return text
		}
		s.logger.Warn("full text unavailable, using description", "book_id", detail.ID, "error", err)
	}

	if desc := normalisers.Normalise(s.registry, detail.Description, normalisers.MIMEDescription); desc != "" {
		return desc
	}

	return fmt.Sprintf("Book: %s by %s. No additional content available for summarization.",
		detail.Title, detail.AuthorNames())
}
