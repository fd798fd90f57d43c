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
)

// Ensure libraryService implements LibraryService
var _ driving.LibraryService = (*libraryService)(nil)

// DefaultCacheTTL applies to every cached response
const DefaultCacheTTL = time.Hour

// LibraryServiceConfig holds dependencies for the library service
type LibraryServiceConfig struct {
	Aggregator driving.Aggregator

	// Query interprets search text; nil searches the raw query
	Query driving.QueryService

	Cache    driven.Cache
	CacheTTL time.Duration
	Logger   *slog.Logger
}

type libraryService struct {
	aggregator driving.Aggregator
	query      driving.QueryService
	cache      driven.Cache
	cacheTTL   time.Duration
	logger     *slog.Logger
}

// NewLibraryService creates the cached search and lookup front end
func NewLibraryService(cfg LibraryServiceConfig) driving.LibraryService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &libraryService{
		aggregator: cfg.Aggregator,
		query:      cfg.Query,
		cache:      cfg.Cache,
		cacheTTL:   cfg.CacheTTL,
		logger:     cfg.Logger,
	}
}

// Search validates the query, interprets it and searches every catalog
func (s *libraryService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	if err := domain.ValidateQuery(req.Query); err != nil {
		return nil, err
	}
	req = req.WithDefaults()
	req.Query = strings.TrimSpace(req.Query)

	key := domain.SearchCacheKey(req.Query, req.Limit)
	if cached := cacheGet[domain.SearchResponse](ctx, s.cache, key, s.logger); cached != nil {
		s.logger.Debug("search cache hit", "query", req.Query)
		return cached, nil
	}

	intent := domain.SimpleIntent(req.Query)
	if s.query != nil {
		intent = s.query.Understand(ctx, req.Query)
	}

	results, err := s.aggregator.Search(ctx, intent.SearchQuery, req.Limit)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []*domain.Book{}
	}

	resp := &domain.SearchResponse{
		Results:         results,
		TotalResults:    len(results),
		QueryUnderstood: intent,
	}
	cacheSet(ctx, s.cache, key, resp, s.cacheTTL, s.logger)

	s.logger.Info("search complete",
		"query", req.Query,
		"search_query", intent.SearchQuery,
		"results", resp.TotalResults,
	)
	return resp, nil
}

// GetBook returns details for a qualified book id
func (s *libraryService) GetBook(ctx context.Context, id string) (*domain.BookDetail, error) {
	key := domain.BookCacheKey(id)
	if cached := cacheGet[domain.BookDetail](ctx, s.cache, key, s.logger); cached != nil {
		return cached, nil
	}

	detail, err := s.aggregator.GetBookDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, fmt.Errorf("%w: book %s", domain.ErrNotFound, id)
	}

	cacheSet(ctx, s.cache, key, detail, s.cacheTTL, s.logger)
	return detail, nil
}

// cacheGet reads a JSON entry; misses and cache failures return nil
func cacheGet[T any](ctx context.Context, cache driven.Cache, key string, logger *slog.Logger) *T {
	if cache == nil {
		return nil
	}
	v, err := driven.GetJSON[T](ctx, cache, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("cache read failed", "key", key, "error", err)
		}
		return nil
	}
	return v
}

// cacheSet writes a JSON entry, logging failures
func cacheSet[T any](ctx context.Context, cache driven.Cache, key string, v *T, ttl time.Duration, logger *slog.Logger) {
	if cache == nil {
		return
	}
	if err := driven.SetJSON(ctx, cache, key, v, ttl); err != nil {
		logger.Warn("cache write failed", "key", key, "error", err)
	}
}
