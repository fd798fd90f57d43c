// Package openlibrary adapts the Open Library search and works APIs.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/custodia-labs/lectern/internal/adapters/driven/catalogs"
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

const (
	// DefaultBaseURL is the public Open Library endpoint.
	DefaultBaseURL = "https://openlibrary.org"

	coverURLFormat   = "https://covers.openlibrary.org/b/id/%d-L.jpg"
	archiveURLFormat = "https://archive.org/stream/%s/%s_djvu.txt"
	previewBase      = "https://openlibrary.org"

	descriptionSubjects = 5
)

// Verify interface compliance
var _ driven.ArchiveSource = (*Source)(nil)

// Config holds configuration for the Open Library adapter.
type Config struct {
	BaseURL string
	Doer    driven.Doer
}

// Source searches Open Library and resolves Internet Archive scans.
type Source struct {
	baseURL string
	doer    driven.Doer
}

// New creates an Open Library adapter.
func New(cfg Config) *Source {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Source{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		doer:    cfg.Doer,
	}
}

// Source returns the catalog tag.
func (s *Source) Source() domain.BookSource {
	return domain.BookSourceOpenLibrary
}

type searchResponse struct {
	Docs []doc `json:"docs"`
}

type doc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	AuthorName          []string `json:"author_name"`
	FirstPublishYear    int      `json:"first_publish_year"`
	ISBN                []string `json:"isbn"`
	Publisher           []string `json:"publisher"`
	NumberOfPagesMedian int      `json:"number_of_pages_median"`
	Language            []string `json:"language"`
	CoverI              int64    `json:"cover_i"`
	Subject             []string `json:"subject"`
	IA                  []string `json:"ia"`
}

// work is the document served at {key}.json
type work struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	Description text     `json:"description"`
	Subjects    []string `json:"subjects"`
	Covers      []int64  `json:"covers"`
}

// text decodes either a bare string or an object with a value field.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = text(s)
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*t = text(obj.Value)
	return nil
}

// Search queries search.json.
func (s *Source) Search(ctx context.Context, query string, limit int) ([]*domain.Book, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	var resp searchResponse
	found, err := catalogs.GetJSON(ctx, s.doer, s.baseURL+"/search.json?"+params.Encode(), &resp)
	if err != nil {
		return nil, fmt.Errorf("open library search: %w", err)
	}
	if !found {
		return []*domain.Book{}, nil
	}

	books := make([]*domain.Book, 0, len(resp.Docs))
	for _, d := range resp.Docs {
		books = append(books, docToBook(d))
	}
	return books, nil
}

// GetByID fetches a work by its key, e.g. "/works/OL45883W".
func (s *Source) GetByID(ctx context.Context, localID string) (*domain.Book, error) {
	key := normalizeKey(localID)

	var w work
	found, err := catalogs.GetJSON(ctx, s.doer, s.baseURL+key+".json", &w)
	if err != nil {
		return nil, fmt.Errorf("open library get %s: %w", key, err)
	}
	if !found {
		return nil, nil
	}
	if w.Key == "" {
		w.Key = key
	}
	return workToBook(w), nil
}

// ArchiveURL looks up the first Internet Archive identifier for a key.
func (s *Source) ArchiveURL(ctx context.Context, localID string) (string, error) {
	params := url.Values{}
	params.Set("q", "key:"+normalizeKey(localID))
	params.Set("fields", "key,ia")
	params.Set("limit", "1")

	var resp searchResponse
	found, err := catalogs.GetJSON(ctx, s.doer, s.baseURL+"/search.json?"+params.Encode(), &resp)
	if err != nil {
		return "", fmt.Errorf("open library archive lookup: %w", err)
	}
	if !found || len(resp.Docs) == 0 || len(resp.Docs[0].IA) == 0 {
		return "", nil
	}

	ia := resp.Docs[0].IA[0]
	return fmt.Sprintf(archiveURLFormat, ia, ia), nil
}

// GetArchivedText downloads the OCR text of an archived scan.
func (s *Source) GetArchivedText(ctx context.Context, archiveURL string) (string, error) {
	body, _, err := catalogs.GetText(ctx, s.doer, archiveURL)
	if err != nil {
		return "", fmt.Errorf("open library archived text: %w", err)
	}
	return body, nil
}

func normalizeKey(localID string) string {
	if strings.HasPrefix(localID, "/") {
		return localID
	}
	if strings.HasPrefix(localID, "works/") || strings.HasPrefix(localID, "books/") {
		return "/" + localID
	}
	return "/works/" + localID
}

func docToBook(d doc) *domain.Book {
	book := domain.NewBook(domain.BookSourceOpenLibrary, d.Key, d.Title)
	if len(d.AuthorName) > 0 {
		book.Authors = d.AuthorName
	}
	book.Description = subjectDescription(d.Subject)
	book.ISBN = first(d.ISBN)
	book.Publisher = first(d.Publisher)
	if d.FirstPublishYear != 0 {
		book.PublishedDate = strconv.Itoa(d.FirstPublishYear)
	}
	book.PageCount = d.NumberOfPagesMedian
	book.Language = first(d.Language)
	if d.CoverI > 0 {
		book.CoverURL = fmt.Sprintf(coverURLFormat, d.CoverI)
	}
	book.PreviewLink = previewBase + d.Key
	return book
}

func workToBook(w work) *domain.Book {
	book := domain.NewBook(domain.BookSourceOpenLibrary, w.Key, w.Title)
	book.Description = string(w.Description)
	if book.Description == "" {
		book.Description = subjectDescription(w.Subjects)
	}
	if len(w.Covers) > 0 && w.Covers[0] > 0 {
		book.CoverURL = fmt.Sprintf(coverURLFormat, w.Covers[0])
	}
	book.PreviewLink = previewBase + w.Key
	return book
}

func subjectDescription(subjects []string) string {
	if len(subjects) > descriptionSubjects {
		subjects = subjects[:descriptionSubjects]
	}
	return strings.Join(subjects, ", ")
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
