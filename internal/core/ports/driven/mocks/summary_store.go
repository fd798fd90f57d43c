package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

var _ driven.SummaryStore = (*MockSummaryStore)(nil)

// MockSummaryStore is an in-memory implementation of SummaryStore for testing
type MockSummaryStore struct {
	mu        sync.RWMutex
	summaries map[string]*domain.Summary
	order     []string

	// CreateErr, when set, is returned by Create
	CreateErr error
	// PingErr, when set, is returned by Ping
	PingErr error
}

// NewMockSummaryStore creates a new MockSummaryStore
func NewMockSummaryStore() *MockSummaryStore {
	return &MockSummaryStore{
		summaries: make(map[string]*domain.Summary),
	}
}

func (m *MockSummaryStore) Create(ctx context.Context, cs *domain.CreateSummary) (*domain.Summary, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	s := &domain.Summary{
		ID:          uuid.NewString(),
		BookID:      cs.BookID,
		BookTitle:   cs.BookTitle,
		BookAuthor:  cs.BookAuthor,
		ISBN:        cs.ISBN,
		Language:    cs.Language,
		SummaryText: cs.SummaryText,
		WordCount:   cs.WordCount,
		Style:       cs.Style,
		SourceHash:  cs.SourceHash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.summaries[s.ID] = s
	m.order = append(m.order, s.ID)
	return s, nil
}

func (m *MockSummaryStore) Get(ctx context.Context, id string) (*domain.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.summaries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (m *MockSummaryStore) GetLatestForBook(ctx context.Context, bookID, language string, style domain.SummaryStyle) (*domain.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.order) - 1; i >= 0; i-- {
		s := m.summaries[m.order[i]]
		if s.BookID == bookID && s.Language == language && s.Style == style {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSummaryStore) Ping(ctx context.Context) error {
	return m.PingErr
}

// Count returns the number of stored summaries
func (m *MockSummaryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.summaries)
}
