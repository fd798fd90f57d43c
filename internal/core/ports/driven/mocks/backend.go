package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

var _ driven.SummarizationBackend = (*MockBackend)(nil)

// SummarizeCall records the arguments of one Summarize call
type SummarizeCall struct {
	Text      string
	TargetLen int
	MinLen    int
}

// MockBackend is a mock implementation of SummarizationBackend for testing.
// By default Summarize returns the first ten words of its input.
type MockBackend struct {
	SummarizeFn    func(ctx context.Context, text string, targetLen, minLen int) (string, error)
	GenerateTextFn func(ctx context.Context, prompt string) (string, error)
	PingFn         func(ctx context.Context) error
	ModelName      string

	mu        sync.Mutex
	calls     []SummarizeCall
	generated []string
	closed    bool
}

func NewMockBackend() *MockBackend {
	return &MockBackend{ModelName: "mock-model"}
}

// NewFailingBackend returns a backend whose every call fails
func NewFailingBackend() *MockBackend {
	m := NewMockBackend()
	m.SummarizeFn = func(ctx context.Context, text string, targetLen, minLen int) (string, error) {
		return "", fmt.Errorf("%w: mock failure", domain.ErrBackendUnavailable)
	}
	m.GenerateTextFn = func(ctx context.Context, prompt string) (string, error) {
		return "", fmt.Errorf("%w: mock failure", domain.ErrBackendUnavailable)
	}
	return m
}

func (m *MockBackend) Summarize(ctx context.Context, text string, targetLen, minLen int) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, SummarizeCall{Text: text, TargetLen: targetLen, MinLen: minLen})
	m.mu.Unlock()

	if m.SummarizeFn != nil {
		return m.SummarizeFn(ctx, text, targetLen, minLen)
	}
	words := strings.Fields(text)
	if len(words) > 10 {
		words = words[:10]
	}
	return strings.Join(words, " "), nil
}

func (m *MockBackend) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.generated = append(m.generated, prompt)
	m.mu.Unlock()

	if m.GenerateTextFn != nil {
		return m.GenerateTextFn(ctx, prompt)
	}
	return "{}", nil
}

func (m *MockBackend) Model() string {
	return m.ModelName
}

func (m *MockBackend) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}

func (m *MockBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SummarizeCalls returns a copy of the recorded Summarize calls
func (m *MockBackend) SummarizeCalls() []SummarizeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SummarizeCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Prompts returns the prompts passed to GenerateText
func (m *MockBackend) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.generated))
	copy(out, m.generated)
	return out
}

// Closed reports whether Close was called
func (m *MockBackend) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockBackendFactory is a mock implementation of BackendFactory for testing
type MockBackendFactory struct {
	CreateFn func(settings *domain.BackendSettings) (driven.SummarizationBackend, error)
}

func NewMockBackendFactory() *MockBackendFactory {
	return &MockBackendFactory{}
}

func (m *MockBackendFactory) Create(settings *domain.BackendSettings) (driven.SummarizationBackend, error) {
	if m.CreateFn != nil {
		return m.CreateFn(settings)
	}
	b := NewMockBackend()
	b.ModelName = settings.EffectiveModel()
	return b, nil
}
