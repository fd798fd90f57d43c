package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

// Ensure aggregator implements Aggregator
var _ driving.Aggregator = (*aggregator)(nil)

// Aggregator timeouts
const (
	DefaultSourceTimeout  = 10 * time.Second
	DefaultContentTimeout = 60 * time.Second

	minPerSource = 5
)

// AggregatorConfig holds the catalogs and tuning for an Aggregator
type AggregatorConfig struct {
	Sources []driven.CatalogSource

	// SourceTimeout bounds each search and lookup call per source
	SourceTimeout time.Duration

	// ContentTimeout bounds full text downloads
	ContentTimeout time.Duration

	Ranker Ranker
	Logger *slog.Logger
}

type aggregator struct {
	sources        []driven.CatalogSource
	bySource       map[domain.BookSource]driven.CatalogSource
	sourceTimeout  time.Duration
	contentTimeout time.Duration
	ranker         Ranker
	logger         *slog.Logger
}

// NewAggregator creates an Aggregator over the configured sources.
// A zero Ranker uses the default weights.
func NewAggregator(cfg AggregatorConfig) driving.Aggregator {
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = DefaultSourceTimeout
	}
	if cfg.ContentTimeout <= 0 {
		cfg.ContentTimeout = DefaultContentTimeout
	}
	if cfg.Ranker.Priorities == nil {
		cfg.Ranker = DefaultRanker()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	bySource := make(map[domain.BookSource]driven.CatalogSource, len(cfg.Sources))
	for _, s := range cfg.Sources {
		bySource[s.Source()] = s
	}

	return &aggregator{
		sources:        cfg.Sources,
		bySource:       bySource,
		sourceTimeout:  cfg.SourceTimeout,
		contentTimeout: cfg.ContentTimeout,
		ranker:         cfg.Ranker,
		logger:         cfg.Logger,
	}
}

// Search queries every source concurrently, then merges, deduplicates and ranks
func (a *aggregator) Search(ctx context.Context, query string, limit int) ([]*domain.Book, error) {
	if len(a.sources) == 0 {
		return nil, fmt.Errorf("%w: no catalog sources configured", domain.ErrSourceUnavailable)
	}
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	perSource := max(minPerSource, limit/len(a.sources))

	var (
		g      errgroup.Group
		mu     sync.Mutex
		merged []*domain.Book
		failed int
	)

	// A Group without a shared context never cancels siblings when one
	// source fails; Wait reports the first failure.
	for _, src := range a.sources {
		g.Go(func() error {
			books, err := a.searchSource(ctx, src, query, perSource)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				a.logger.Warn("catalog search failed",
					"source", src.Source(),
					"query", query,
					"error", err,
				)
				return fmt.Errorf("%s: %w", src.Source(), err)
			}
			merged = append(merged, books...)
			return nil
		})
	}
	firstErr := g.Wait()

	if failed == len(a.sources) {
		return nil, fmt.Errorf("%w: every catalog failed: %v", domain.ErrSourceUnavailable, firstErr)
	}

	sortByID(merged)
	unique := a.ranker.Deduplicate(merged)
	ranked := a.ranker.Rank(unique, query)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	a.logger.Debug("catalog search complete",
		"query", query,
		"merged", len(merged),
		"unique", len(unique),
		"returned", len(ranked),
		"failed_sources", failed,
	)

	return ranked, nil
}

func (a *aggregator) searchSource(ctx context.Context, src driven.CatalogSource, query string, limit int) ([]*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancel()

	books, err := src.Search(ctx, query, limit)
	if err != nil {
		return nil, sourceError(err)
	}
	return books, nil
}

// GetBookDetails resolves a qualified id and locates its full text
func (a *aggregator) GetBookDetails(ctx context.Context, id string) (*domain.BookDetail, error) {
	src, localID, err := a.resolve(id)
	if err != nil {
		return nil, err
	}

	lookupCtx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancel()

	book, err := src.GetByID(lookupCtx, localID)
	if err != nil {
		return nil, sourceError(err)
	}
	if book == nil {
		return nil, nil
	}

	detail := &domain.BookDetail{Book: *book}

	switch s := src.(type) {
	case driven.FullTextSource:
		detail.ContentURL = s.ContentURL(localID)
		if n, err := strconv.Atoi(localID); err == nil {
			detail.GutenbergID = n
		}
	case driven.ArchiveSource:
		url, err := s.ArchiveURL(lookupCtx, localID)
		if err != nil {
			a.logger.Warn("archive lookup failed", "book_id", id, "error", err)
			break
		}
		detail.ContentURL = url
	}

	return detail, nil
}

// GetContent downloads the full text of a book from its source
func (a *aggregator) GetContent(ctx context.Context, id string) (string, error) {
	src, localID, err := a.resolve(id)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, a.contentTimeout)
	defer cancel()

	switch s := src.(type) {
	case driven.FullTextSource:
		return s.GetContent(ctx, localID)
	case driven.ArchiveSource:
		url, err := s.ArchiveURL(ctx, localID)
		if err != nil {
			return "", fmt.Errorf("%w: archive lookup: %v", domain.ErrContentUnavailable, err)
		}
		if url == "" {
			return "", fmt.Errorf("%w: no archived copy of %s", domain.ErrContentUnavailable, id)
		}
		return s.GetArchivedText(ctx, url)
	}

	return "", fmt.Errorf("%w: %s offers no full text", domain.ErrContentUnavailable, src.Source())
}

// resolve validates a qualified id and picks its adapter
func (a *aggregator) resolve(id string) (driven.CatalogSource, string, error) {
	source, localID, err := domain.ParseBookID(id)
	if err != nil {
		return nil, "", err
	}

	if source == domain.BookSourceGutenberg {
		if n, err := strconv.Atoi(localID); err != nil || n <= 0 {
			return nil, "", fmt.Errorf("%w: gutenberg id %q must be a positive number", domain.ErrInvalidInput, localID)
		}
	}

	src, ok := a.bySource[source]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s is not configured", domain.ErrSourceUnavailable, source)
	}
	return src, localID, nil
}

// sourceError maps timeouts onto ErrSourceUnavailable
func sourceError(err error) error {
	if errors.Is(err, domain.ErrSourceUnavailable) || errors.Is(err, domain.ErrInvalidInput) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: timed out", domain.ErrSourceUnavailable)
	}
	return fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
}
