package driving

import (
	"context"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// AdminService handles admin authentication and operations
type AdminService interface {
	// IssueToken exchanges the admin key for a signed token
	IssueToken(ctx context.Context, req domain.TokenRequest) (*domain.TokenResponse, error)

	// ValidateToken parses a token and checks the admin role
	ValidateToken(ctx context.Context, token string) (*domain.AdminClaims, error)

	// ClearCache removes every cached response
	ClearCache(ctx context.Context) error

	// SwitchBackend replaces the active summarization backend
	SwitchBackend(ctx context.Context, settings domain.BackendSettings) error
}

// HealthService reports liveness and dependency health
type HealthService interface {
	Health(ctx context.Context) *domain.HealthResponse
	Detailed(ctx context.Context) *domain.DetailedHealthResponse
}

// JobService queues summaries for background generation
type JobService interface {
	// SubmitSummary validates and enqueues a summarize_book task
	SubmitSummary(ctx context.Context, bookID string, req domain.SummaryRequest) (*domain.SummaryJob, error)

	// GetJob returns the current state of a job
	GetJob(ctx context.Context, id string) (*domain.SummaryJob, error)

	// Process runs a dequeued summarize_book task
	Process(ctx context.Context, task *domain.Task) error
}
