package domain

import (
	"fmt"
	"strings"
)

// BookSource identifies the catalog a book came from
type BookSource string

const (
	BookSourceGoogle      BookSource = "google"
	BookSourceOpenLibrary BookSource = "openlibrary"
	BookSourceGutenberg   BookSource = "gutenberg"
)

// AllBookSources returns every supported source, highest trust first
func AllBookSources() []BookSource {
	return []BookSource{BookSourceGutenberg, BookSourceOpenLibrary, BookSourceGoogle}
}

// IsValid returns true if the source is one of the known catalogs
func (s BookSource) IsValid() bool {
	switch s {
	case BookSourceGoogle, BookSourceOpenLibrary, BookSourceGutenberg:
		return true
	}
	return false
}

// HasFullText returns true if the source can serve the complete text of a book
func (s BookSource) HasFullText() bool {
	return s == BookSourceGutenberg
}

// Book is a normalized catalog entry.
// ID is always "<source>:<source-local-id>" and its prefix matches Source.
type Book struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Authors       []string   `json:"authors"`
	Description   string     `json:"description,omitempty"`
	ISBN          string     `json:"isbn,omitempty"`
	Publisher     string     `json:"publisher,omitempty"`
	PublishedDate string     `json:"published_date,omitempty"`
	PageCount     int        `json:"page_count,omitempty"`
	Language      string     `json:"language,omitempty"`
	CoverURL      string     `json:"cover_url,omitempty"`
	PreviewLink   string     `json:"preview_link,omitempty"`
	Source        BookSource `json:"source"`
}

// NewBook creates a book for a source, deriving the qualified id from the local id
func NewBook(source BookSource, localID, title string) *Book {
	return &Book{
		ID:      BookID(source, localID),
		Title:   title,
		Authors: []string{},
		Source:  source,
	}
}

// BookID builds a source-qualified book id
func BookID(source BookSource, localID string) string {
	return string(source) + ":" + localID
}

// ParseBookID splits a qualified id into its source and local id.
// The id must contain exactly one ':' separator with non-empty parts.
func ParseBookID(id string) (BookSource, string, error) {
	parts := strings.Split(id, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: book id %q must have the form <source>:<id>", ErrInvalidInput, id)
	}

	source := BookSource(parts[0])
	if !source.IsValid() {
		return "", "", fmt.Errorf("%w: unknown book source %q", ErrInvalidInput, parts[0])
	}

	return source, parts[1], nil
}

// LocalID returns the source-local part of the id
func (b *Book) LocalID() string {
	_, local, found := strings.Cut(b.ID, ":")
	if !found {
		return b.ID
	}
	return local
}

// PrimaryAuthor returns the first listed author, or empty
func (b *Book) PrimaryAuthor() string {
	if len(b.Authors) == 0 {
		return ""
	}
	return b.Authors[0]
}

// AuthorNames returns authors as a single comma separated string
func (b *Book) AuthorNames() string {
	return strings.Join(b.Authors, ", ")
}

// HasContent returns true if the book's source can supply full text
func (b *Book) HasContent() bool {
	return b.Source.HasFullText()
}

// BookDetail is a Book enriched with the location of its full text, if any.
type BookDetail struct {
	Book
	ContentURL  string `json:"content_url,omitempty"`
	GutenbergID int    `json:"gutenberg_id,omitempty"`
}

// HasContentURL returns true if a full text location was resolved
func (d *BookDetail) HasContentURL() bool {
	return d.ContentURL != ""
}
