// Package googlebooks adapts the Google Books volumes API.
package googlebooks

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/custodia-labs/lectern/internal/adapters/driven/catalogs"
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// DefaultBaseURL is the public Google Books endpoint.
const DefaultBaseURL = "https://www.googleapis.com/books/v1"

// Verify interface compliance
var _ driven.CatalogSource = (*Source)(nil)

// Config holds configuration for the Google Books adapter.
type Config struct {
	BaseURL string
	APIKey  string
	Doer    driven.Doer
}

// Source searches Google Books.
type Source struct {
	baseURL string
	apiKey  string
	doer    driven.Doer
}

// New creates a Google Books adapter.
func New(cfg Config) *Source {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Source{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  cfg.APIKey,
		doer:    cfg.Doer,
	}
}

// Source returns the catalog tag.
func (s *Source) Source() domain.BookSource {
	return domain.BookSourceGoogle
}

type volumesResponse struct {
	Items []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	Description         string               `json:"description"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	PageCount           int                  `json:"pageCount"`
	Language            string               `json:"language"`
	PreviewLink         string               `json:"previewLink"`
	IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
	ImageLinks          *imageLinks          `json:"imageLinks"`
}

type industryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type imageLinks struct {
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}

// Search queries the volumes endpoint.
func (s *Source) Search(ctx context.Context, query string, limit int) ([]*domain.Book, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", fmt.Sprintf("%d", limit))
	if s.apiKey != "" {
		params.Set("key", s.apiKey)
	}

	var resp volumesResponse
	found, err := catalogs.GetJSON(ctx, s.doer, s.baseURL+"/volumes?"+params.Encode(), &resp)
	if err != nil {
		return nil, fmt.Errorf("google books search: %w", err)
	}
	if !found {
		return []*domain.Book{}, nil
	}

	books := make([]*domain.Book, 0, len(resp.Items))
	for _, item := range resp.Items {
		books = append(books, toBook(item))
	}
	return books, nil
}

// GetByID fetches a single volume.
func (s *Source) GetByID(ctx context.Context, localID string) (*domain.Book, error) {
	endpoint := s.baseURL + "/volumes/" + url.PathEscape(localID)
	if s.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(s.apiKey)
	}

	var item volume
	found, err := catalogs.GetJSON(ctx, s.doer, endpoint, &item)
	if err != nil {
		return nil, fmt.Errorf("google books get %s: %w", localID, err)
	}
	if !found {
		return nil, nil
	}
	return toBook(item), nil
}

func toBook(item volume) *domain.Book {
	info := item.VolumeInfo
	book := domain.NewBook(domain.BookSourceGoogle, item.ID, info.Title)
	if len(info.Authors) > 0 {
		book.Authors = info.Authors
	}
	book.Description = info.Description
	book.ISBN = isbn(info.IndustryIdentifiers)
	book.Publisher = info.Publisher
	book.PublishedDate = info.PublishedDate
	book.PageCount = info.PageCount
	book.Language = info.Language
	book.PreviewLink = info.PreviewLink
	if info.ImageLinks != nil {
		book.CoverURL = info.ImageLinks.Thumbnail
		if book.CoverURL == "" {
			book.CoverURL = info.ImageLinks.SmallThumbnail
		}
	}
	return book
}

// isbn prefers ISBN_13 over any other ISBN identifier.
func isbn(ids []industryIdentifier) string {
	var fallback string
	for _, id := range ids {
		if id.Type == "ISBN_13" {
			return id.Identifier
		}
		if fallback == "" && strings.Contains(id.Type, "ISBN") {
			fallback = id.Identifier
		}
	}
	return fallback
}
