// Package gutenberg adapts the Gutendex catalog and Project Gutenberg text files.
package gutenberg

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/custodia-labs/lectern/internal/adapters/driven/catalogs"
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

const (
	// DefaultBaseURL is the public Gutendex endpoint.
	DefaultBaseURL = "https://gutendex.com"

	// DefaultContentBaseURL serves the plain text files.
	DefaultContentBaseURL = "https://www.gutenberg.org"

	publisher = "Project Gutenberg"
)

// Verify interface compliance
var _ driven.FullTextSource = (*Source)(nil)

// Config holds configuration for the Gutenberg adapter.
type Config struct {
	BaseURL        string
	ContentBaseURL string
	Doer           driven.Doer
	Logger         *slog.Logger
}

// Source searches Gutendex and downloads full texts.
type Source struct {
	baseURL        string
	contentBaseURL string
	doer           driven.Doer
	logger         *slog.Logger
}

// New creates a Gutenberg adapter.
func New(cfg Config) *Source {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	contentBaseURL := cfg.ContentBaseURL
	if contentBaseURL == "" {
		contentBaseURL = DefaultContentBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		contentBaseURL: strings.TrimSuffix(contentBaseURL, "/"),
		doer:           cfg.Doer,
		logger:         logger,
	}
}

// Source returns the catalog tag.
func (s *Source) Source() domain.BookSource {
	return domain.BookSourceGutenberg
}

type booksResponse struct {
	Results []gutendexBook `json:"results"`
}

type gutendexBook struct {
	ID        int               `json:"id"`
	Title     string            `json:"title"`
	Authors   []person          `json:"authors"`
	Subjects  []string          `json:"subjects"`
	Languages []string          `json:"languages"`
	Formats   map[string]string `json:"formats"`
}

type person struct {
	Name string `json:"name"`
}

// Search queries the Gutendex books endpoint. Gutendex has no page size
// parameter so results are truncated to limit here.
func (s *Source) Search(ctx context.Context, query string, limit int) ([]*domain.Book, error) {
	var resp booksResponse
	found, err := catalogs.GetJSON(ctx, s.doer, s.baseURL+"/books/?search="+url.QueryEscape(query), &resp)
	if err != nil {
		return nil, fmt.Errorf("gutenberg search: %w", err)
	}
	if !found {
		return []*domain.Book{}, nil
	}

	results := resp.Results
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	books := make([]*domain.Book, 0, len(results))
	for _, b := range results {
		books = append(books, toBook(b))
	}
	return books, nil
}

// GetByID fetches a book by its numeric Gutenberg id.
func (s *Source) GetByID(ctx context.Context, localID string) (*domain.Book, error) {
	id, err := ParseID(localID)
	if err != nil {
		return nil, err
	}

	var b gutendexBook
	found, err := catalogs.GetJSON(ctx, s.doer, fmt.Sprintf("%s/books/%d/", s.baseURL, id), &b)
	if err != nil {
		return nil, fmt.Errorf("gutenberg get %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return toBook(b), nil
}

// ContentURL returns the canonical UTF-8 text file location.
func (s *Source) ContentURL(localID string) string {
	return fmt.Sprintf("%s/files/%s/%s-0.txt", s.contentBaseURL, localID, localID)
}

// mirrorURL is the cache copy tried when the canonical file is missing.
func (s *Source) mirrorURL(localID string) string {
	return fmt.Sprintf("%s/cache/epub/%s/pg%s.txt", s.contentBaseURL, localID, localID)
}

// GetContent downloads the full text, falling back to the cache mirror
// once when the canonical file returns 404.
func (s *Source) GetContent(ctx context.Context, localID string) (string, error) {
	if _, err := ParseID(localID); err != nil {
		return "", err
	}

	body, status, err := catalogs.GetText(ctx, s.doer, s.ContentURL(localID))
	if err == nil {
		return body, nil
	}
	if status != http.StatusNotFound {
		return "", fmt.Errorf("gutenberg content %s: %w", localID, err)
	}

	s.logger.Debug("gutenberg text missing, trying mirror", "gutenberg_id", localID)
	body, _, err = catalogs.GetText(ctx, s.doer, s.mirrorURL(localID))
	if err != nil {
		return "", fmt.Errorf("gutenberg content %s: %w", localID, err)
	}
	return body, nil
}

// ParseID validates a numeric Gutenberg id.
func ParseID(localID string) (int, error) {
	id, err := strconv.Atoi(localID)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: gutenberg id %q must be a positive number", domain.ErrInvalidInput, localID)
	}
	return id, nil
}

func toBook(b gutendexBook) *domain.Book {
	book := domain.NewBook(domain.BookSourceGutenberg, strconv.Itoa(b.ID), b.Title)
	for _, a := range b.Authors {
		book.Authors = append(book.Authors, a.Name)
	}
	book.Description = strings.Join(b.Subjects, "; ")
	book.Publisher = publisher
	if len(b.Languages) > 0 {
		book.Language = b.Languages[0]
	}
	book.CoverURL = b.Formats["image/jpeg"]
	if book.CoverURL == "" {
		book.CoverURL = b.Formats["image/png"]
	}
	book.PreviewLink = fmt.Sprintf("https://www.gutenberg.org/ebooks/%d", b.ID)
	return book
}
