package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// GenerateID creates a unique random ID.
func GenerateID() string {
	return uuid.NewString()
}

// TaskType identifies the type of background task
type TaskType string

const (
	// TaskTypeSummarizeBook generates and stores a summary for one book
	TaskTypeSummarizeBook TaskType = "summarize_book"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// DefaultTaskMaxAttempts is the retry budget for a new task
const DefaultTaskMaxAttempts = 3

// Payload keys for summarize_book tasks
const (
	PayloadBookID    = "book_id"
	PayloadStyle     = "style"
	PayloadLanguage  = "language"
	PayloadMaxPages  = "max_pages"
	PayloadSummaryID = "summary_id"
)

// Task represents a background job processed by workers.
// A summary job (SummaryJob) is a Task of type summarize_book.
type Task struct {
	ID   string   `json:"id"`
	Type TaskType `json:"type"`

	// Payload contains task-specific data.
	// For summarize_book: book_id, style, language, optional max_pages.
	// summary_id is written back on completion.
	Payload map[string]string `json:"payload"`

	Status      TaskStatus `json:"status"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`

	// Error contains the last error message if failed
	Error string `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// ScheduledFor is when the task should next be processed
	ScheduledFor time.Time `json:"scheduled_for"`
}

// SummaryJob is the status view of a summarize_book task
type SummaryJob = Task

// NewTask creates a new task with default values
func NewTask(taskType TaskType, payload map[string]string) *Task {
	now := time.Now()
	if payload == nil {
		payload = map[string]string{}
	}
	return &Task{
		ID:           GenerateID(),
		Type:         taskType,
		Payload:      payload,
		Status:       TaskStatusPending,
		MaxAttempts:  DefaultTaskMaxAttempts,
		CreatedAt:    now,
		UpdatedAt:    now,
		ScheduledFor: now,
	}
}

// NewSummarizeBookTask creates a task that summarizes a book
func NewSummarizeBookTask(bookID string, req SummaryRequest) *Task {
	payload := map[string]string{
		PayloadBookID:   bookID,
		PayloadStyle:    string(req.Style),
		PayloadLanguage: req.Language,
	}
	if req.MaxPages != nil {
		payload[PayloadMaxPages] = strconv.Itoa(*req.MaxPages)
	}
	return NewTask(TaskTypeSummarizeBook, payload)
}

// BookID extracts the book id from the payload
func (t *Task) BookID() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload[PayloadBookID]
}

// SummaryID returns the id of the stored summary once the task completed
func (t *Task) SummaryID() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload[PayloadSummaryID]
}

// SetSummaryID records the produced summary on the task
func (t *Task) SetSummaryID(id string) {
	if t.Payload == nil {
		t.Payload = map[string]string{}
	}
	t.Payload[PayloadSummaryID] = id
}

// SummaryRequest rebuilds the request carried by a summarize_book payload
func (t *Task) SummaryRequest() SummaryRequest {
	req := SummaryRequest{
		Style:    SummaryStyle(t.Payload[PayloadStyle]),
		Language: t.Payload[PayloadLanguage],
	}
	if raw, ok := t.Payload[PayloadMaxPages]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			req.MaxPages = &n
		}
	}
	return req.WithDefaults()
}

// CanRetry returns true if the task can be retried
func (t *Task) CanRetry() bool {
	return t.Attempts < t.MaxAttempts
}

// IsReady returns true if the task is ready to be processed
func (t *Task) IsReady() bool {
	return t.Status == TaskStatusPending && !time.Now().Before(t.ScheduledFor)
}

// IsTerminal returns true once the task will not run again
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// MarkProcessing updates the task to processing state
func (t *Task) MarkProcessing() {
	now := time.Now()
	t.Status = TaskStatusProcessing
	t.StartedAt = &now
	t.UpdatedAt = now
	t.Attempts++
}

// MarkCompleted updates the task to completed state
func (t *Task) MarkCompleted() {
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.Error = ""
}

// MarkFailed updates the task to failed state
func (t *Task) MarkFailed(err string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.UpdatedAt = now
	t.Error = err
}

// Retry resets the task for retry with exponential backoff
func (t *Task) Retry(err string) {
	now := time.Now()
	t.Status = TaskStatusPending
	t.UpdatedAt = now
	t.Error = err

	// 1s, 2s, 4s, ...
	backoff := time.Duration(1<<t.Attempts) * time.Second
	if backoff > 5*time.Minute {
		backoff = 5 * time.Minute
	}
	t.ScheduledFor = now.Add(backoff)
}

// TaskResult represents the outcome of processing a task
type TaskResult struct {
	TaskID   string        `json:"task_id"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// QueueStats reports the size of the task queue
type QueueStats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
}
