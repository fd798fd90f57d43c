package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SummaryStore = (*SummaryStore)(nil)

const summaryColumns = `id, book_id, book_title, book_author, isbn, language,
	summary_text, word_count, style, source_hash, created_at, updated_at`

// SummaryStore implements driven.SummaryStore using PostgreSQL
type SummaryStore struct {
	db *sql.DB
}

// NewSummaryStore creates a new SummaryStore
func NewSummaryStore(db *sql.DB) *SummaryStore {
	return &SummaryStore{db: db}
}

// Create inserts a summary under a fresh UUID
func (s *SummaryStore) Create(ctx context.Context, summary *domain.CreateSummary) (*domain.Summary, error) {
	query := `
		INSERT INTO summaries (id, book_id, book_title, book_author, isbn, language,
							   summary_text, word_count, style, source_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + summaryColumns

	row := s.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		summary.BookID,
		summary.BookTitle,
		summary.BookAuthor,
		NullString(summary.ISBN),
		summary.Language,
		summary.SummaryText,
		summary.WordCount,
		summary.Style,
		summary.SourceHash,
	)

	created, err := scanSummary(row)
	if err != nil {
		return nil, fmt.Errorf("insert summary: %w", err)
	}
	return created, nil
}

// Get retrieves a summary by ID
func (s *SummaryStore) Get(ctx context.Context, id string) (*domain.Summary, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}

	query := `SELECT ` + summaryColumns + ` FROM summaries WHERE id = $1`

	summary, err := scanSummary(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	return summary, nil
}

// GetLatestForBook returns the newest summary for a book, language and style
func (s *SummaryStore) GetLatestForBook(ctx context.Context, bookID, language string, style domain.SummaryStyle) (*domain.Summary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM summaries
		WHERE book_id = $1 AND language = $2 AND style = $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	summary, err := scanSummary(s.db.QueryRowContext(ctx, query, bookID, language, style))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest summary: %w", err)
	}
	return summary, nil
}

// Ping checks the database connection
func (s *SummaryStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func scanSummary(row *sql.Row) (*domain.Summary, error) {
	var summary domain.Summary
	var isbn sql.NullString

	err := row.Scan(
		&summary.ID,
		&summary.BookID,
		&summary.BookTitle,
		&summary.BookAuthor,
		&isbn,
		&summary.Language,
		&summary.SummaryText,
		&summary.WordCount,
		&summary.Style,
		&summary.SourceHash,
		&summary.CreatedAt,
		&summary.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	summary.ISBN = isbn.String
	return &summary, nil
}
