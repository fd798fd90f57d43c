package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

const (
	pendingList    = "lectern:queue:pending"
	scheduledTasks = "lectern:queue:scheduled"
	processingSet  = "lectern:queue:processing"

	// Key prefixes
	taskKeyPrefix = "lectern:task:"

	// Task records expire after a day
	taskTTL = 24 * time.Hour

	scanBatch = 100
)

// Verify interface compliance
var _ driven.TaskQueue = (*Queue)(nil)

// Queue implements TaskQueue using a Redis list.
// Task records live under lectern:task:{id} as JSON; the pending list holds
// ids in FIFO order and delayed retries wait in a sorted set until due.
type Queue struct {
	client *redis.Client
}

// NewQueue creates a new Redis-backed task queue.
func NewQueue(client *redis.Client) (*Queue, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &Queue{client: client}, nil
}

// Enqueue stores the task and pushes it onto the pending list,
// or onto the scheduled set when it is not yet due.
func (q *Queue) Enqueue(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return errors.New("task is required")
	}

	taskData, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	pipe := q.client.TxPipeline()
	pipe.Set(ctx, taskKeyPrefix+task.ID, taskData, taskTTL)
	if task.ScheduledFor.After(time.Now()) {
		pipe.ZAdd(ctx, scheduledTasks, redis.Z{
			Score:  float64(task.ScheduledFor.UnixMilli()),
			Member: task.ID,
		})
	} else {
		pipe.LPush(ctx, pendingList, task.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// DequeueWithTimeout pops the oldest pending task, blocking up to timeout.
// A non-positive timeout never blocks.
func (q *Queue) DequeueWithTimeout(ctx context.Context, timeout time.Duration) (*domain.Task, error) {
	// Best effort: a failed promotion leaves retries for the next poll
	_ = q.promoteScheduledTasks(ctx)

	var taskID string
	if timeout <= 0 {
		id, err := q.client.RPop(ctx, pendingList).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to pop task: %w", err)
		}
		taskID = id
	} else {
		res, err := q.client.BRPop(ctx, timeout, pendingList).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to pop task: %w", err)
		}
		if len(res) < 2 {
			return nil, nil
		}
		taskID = res[1]
	}

	task, err := q.GetTask(ctx, taskID)
	if errors.Is(err, domain.ErrNotFound) {
		// Record expired while queued
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	task.MarkProcessing()
	if err := q.save(ctx, task, func(pipe redis.Pipeliner) {
		pipe.SAdd(ctx, processingSet, task.ID)
	}); err != nil {
		return nil, err
	}

	return task, nil
}

// Ack marks the task completed, persisting any payload the worker wrote back.
func (q *Queue) Ack(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return errors.New("task is required")
	}
	task.MarkCompleted()
	return q.save(ctx, task, func(pipe redis.Pipeliner) {
		pipe.SRem(ctx, processingSet, task.ID)
	})
}

// Nack schedules a retry with backoff, or marks the task failed once it
// has used all of its attempts.
func (q *Queue) Nack(ctx context.Context, taskID string, reason string) error {
	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}

	if task.CanRetry() {
		task.Retry(reason)
		return q.save(ctx, task, func(pipe redis.Pipeliner) {
			pipe.SRem(ctx, processingSet, task.ID)
			pipe.ZAdd(ctx, scheduledTasks, redis.Z{
				Score:  float64(task.ScheduledFor.UnixMilli()),
				Member: task.ID,
			})
		})
	}

	task.MarkFailed(reason)
	return q.save(ctx, task, func(pipe redis.Pipeliner) {
		pipe.SRem(ctx, processingSet, task.ID)
	})
}

// GetTask retrieves a task by ID.
func (q *Queue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	data, err := q.client.Get(ctx, taskKeyPrefix+taskID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	var task domain.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &task, nil
}

// Stats returns queue statistics. Completed and failed counts require a
// scan over task records and only cover tasks that have not expired.
func (q *Queue) Stats(ctx context.Context) (*domain.QueueStats, error) {
	stats := &domain.QueueStats{}

	pending, err := q.client.LLen(ctx, pendingList).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get pending count: %w", err)
	}
	scheduled, err := q.client.ZCard(ctx, scheduledTasks).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled count: %w", err)
	}
	stats.Pending = pending + scheduled

	processing, err := q.client.SCard(ctx, processingSet).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get processing count: %w", err)
	}
	stats.Processing = processing

	var cursor uint64
	for {
		keys, next, err := q.client.Scan(ctx, cursor, taskKeyPrefix+"*", scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan tasks: %w", err)
		}

		for _, key := range keys {
			data, err := q.client.Get(ctx, key).Bytes()
			if err != nil {
				continue
			}
			var task domain.Task
			if json.Unmarshal(data, &task) != nil {
				continue
			}
			switch task.Status {
			case domain.TaskStatusCompleted:
				stats.Completed++
			case domain.TaskStatusFailed:
				stats.Failed++
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return stats, nil
}

// Ping checks if the queue backend is healthy.
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Close cleans up resources.
func (q *Queue) Close() error {
	// Redis client is shared, don't close it here
	return nil
}

// save writes the task record, plus any extra commands, in one transaction
func (q *Queue) save(ctx context.Context, task *domain.Task, extra func(redis.Pipeliner)) error {
	taskData, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	pipe := q.client.TxPipeline()
	pipe.Set(ctx, taskKeyPrefix+task.ID, taskData, taskTTL)
	if extra != nil {
		extra(pipe)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save task %s: %w", task.ID, err)
	}
	return nil
}

// promoteScheduledTasks moves due retries onto the pending list.
// ZREM decides ownership so concurrent workers never promote twice.
func (q *Queue) promoteScheduledTasks(ctx context.Context) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)

	ids, err := q.client.ZRangeByScore(ctx, scheduledTasks, &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		return err
	}

	for _, id := range ids {
		removed, err := q.client.ZRem(ctx, scheduledTasks, id).Result()
		if err != nil {
			return err
		}
		if removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, pendingList, id).Err(); err != nil {
			return err
		}
	}
	return nil
}
