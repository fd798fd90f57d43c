package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// DefaultLanguage is used when a summary request names no language
const DefaultLanguage = "en"

// DefaultMaxPages is the max_pages value used in cache keys when unset
const DefaultMaxPages = 3

// Summary is a persisted summary record.
type Summary struct {
	ID          string       `json:"id"`
	BookID      string       `json:"book_id"`
	BookTitle   string       `json:"book_title"`
	BookAuthor  string       `json:"book_author"`
	ISBN        string       `json:"isbn,omitempty"`
	Language    string       `json:"language"`
	SummaryText string       `json:"summary_text"`
	WordCount   int          `json:"word_count"`
	Style       SummaryStyle `json:"style"`
	SourceHash  string       `json:"source_hash"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CreateSummary holds the fields needed to persist a new summary.
// The store assigns ID and timestamps.
type CreateSummary struct {
	BookID      string
	BookTitle   string
	BookAuthor  string
	ISBN        string
	Language    string
	SummaryText string
	WordCount   int
	Style       SummaryStyle
	SourceHash  string
}

// NewCreateSummary builds a record for a summary of sourceText about book
func NewCreateSummary(book *Book, language string, style SummaryStyle, summaryText, sourceText string) *CreateSummary {
	return &CreateSummary{
		BookID:      book.ID,
		BookTitle:   book.Title,
		BookAuthor:  book.AuthorNames(),
		ISBN:        book.ISBN,
		Language:    language,
		SummaryText: summaryText,
		WordCount:   WordCount(summaryText),
		Style:       style,
		SourceHash:  SourceHash(sourceText),
	}
}

// ToResponse converts the record into its API shape
func (s *Summary) ToResponse() *SummaryResponse {
	return &SummaryResponse{
		ID:          s.ID,
		SummaryText: s.SummaryText,
		Language:    s.Language,
		WordCount:   s.WordCount,
		BookInfo: BookInfo{
			Title:  s.BookTitle,
			Author: s.BookAuthor,
			ISBN:   s.ISBN,
		},
		CreatedAt: s.CreatedAt,
	}
}

// SummaryRequest asks for a summary of one book
type SummaryRequest struct {
	Language string       `json:"language"`
	Style    SummaryStyle `json:"style"`
	MaxPages *int         `json:"max_pages,omitempty"`
}

// WithDefaults fills language and style when omitted
func (r SummaryRequest) WithDefaults() SummaryRequest {
	if strings.TrimSpace(r.Language) == "" {
		r.Language = DefaultLanguage
	}
	if strings.TrimSpace(string(r.Style)) == "" {
		r.Style = DefaultSummaryStyle
	}
	return r
}

// EffectiveMaxPages returns max_pages or its default
func (r SummaryRequest) EffectiveMaxPages() int {
	if r.MaxPages == nil {
		return DefaultMaxPages
	}
	return *r.MaxPages
}

// BookInfo is the book block of a SummaryResponse
type BookInfo struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn,omitempty"`
}

// SummaryResponse is the API representation of a summary
type SummaryResponse struct {
	ID          string    `json:"id"`
	SummaryText string    `json:"summary_text"`
	Language    string    `json:"language"`
	WordCount   int       `json:"word_count"`
	BookInfo    BookInfo  `json:"book_info"`
	CreatedAt   time.Time `json:"created_at"`
}

// SummaryPath records which pipeline branch produced a summary
type SummaryPath string

const (
	SummaryPathEmpty   SummaryPath = "empty"
	SummaryPathShort   SummaryPath = "short"
	SummaryPathChunked SummaryPath = "chunked"
)

// SummaryOutcome is the result of one orchestrated summarization
type SummaryOutcome struct {
	Text             string      `json:"text"`
	Path             SummaryPath `json:"path"`
	ChunksTotal      int         `json:"chunks_total"`
	ChunksSummarized int         `json:"chunks_summarized"`
	Extractive       bool        `json:"extractive"`
}

// TextChunk is a contiguous slice of normalized text
type TextChunk struct {
	Position  int    `json:"position"`
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
}

// WordCount counts whitespace separated words
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// SourceHash returns the hex SHA-256 of the summarized text
func SourceHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Cache keys

// SearchCacheKey keys a cached search response
func SearchCacheKey(query string, limit int) string {
	return fmt.Sprintf("search:%s:%d", query, limit)
}

// BookCacheKey keys a cached book detail
func BookCacheKey(id string) string {
	return "book:" + id
}

// SummaryCacheKey keys a cached summary response
func SummaryCacheKey(bookID string, req SummaryRequest) string {
	return fmt.Sprintf("summary:%s:%d:%s:%s", bookID, req.EffectiveMaxPages(), req.Style, req.Language)
}
