package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

// Ensure jobService implements JobService
var _ driving.JobService = (*jobService)(nil)

type jobService struct {
	queue     driven.TaskQueue
	summaries driving.SummaryService
	languages []string
	logger    *slog.Logger
}

// NewJobService creates a new JobService
func NewJobService(queue driven.TaskQueue, summaries driving.SummaryService, languages []string, logger *slog.Logger) driving.JobService {
	if len(languages) == 0 {
		languages = []string{domain.DefaultLanguage}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &jobService{
		queue:     queue,
		summaries: summaries,
		languages: languages,
		logger:    logger,
	}
}

// SubmitSummary validates the request and queues it
func (s *jobService) SubmitSummary(ctx context.Context, bookID string, req domain.SummaryRequest) (*domain.SummaryJob, error) {
	if err := domain.ValidateQuery(bookID); err != nil {
		return nil, err
	}
	if _, _, err := domain.ParseBookID(bookID); err != nil {
		return nil, err
	}
	req = req.WithDefaults()
	if err := domain.ValidateLanguage(req.Language, s.languages); err != nil {
		return nil, err
	}
	if err := domain.ValidateStyle(req.Style); err != nil {
		return nil, err
	}

	task := domain.NewSummarizeBookTask(bookID, req)
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueueUnavailable, err)
	}

	s.logger.Info("summary job queued", "job_id", task.ID, "book_id", bookID, "style", req.Style)
	return task, nil
}

// GetJob returns the job's current state
func (s *jobService) GetJob(ctx context.Context, id string) (*domain.SummaryJob, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: job id is required", domain.ErrInvalidInput)
	}
	return s.queue.GetTask(ctx, id)
}

// Process runs the summary service for a dequeued task and records the result
func (s *jobService) Process(ctx context.Context, task *domain.Task) error {
	if task.Type != domain.TaskTypeSummarizeBook {
		return fmt.Errorf("%w: unsupported task type %q", domain.ErrInvalidInput, task.Type)
	}

	resp, err := s.summaries.Summarize(ctx, task.BookID(), task.SummaryRequest())
	if err != nil {
		return err
	}

	task.SetSummaryID(resp.ID)
	return nil
}
