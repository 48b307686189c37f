package driven

import (
	"context"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
)

// TaskQueue is the durable background-task abstraction. Workers dequeue
// tasks, run them, and ack or nack; nacked tasks are retried with backoff
// until their attempt budget runs out.
type TaskQueue interface {
	// Enqueue adds a task to the queue for processing
	Enqueue(ctx context.Context, task *domain.Task) error

	// DequeueWithTimeout retrieves the next available task, waiting up to
	// timeout seconds. Returns (nil, nil) when no task is available.
	DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error)

	// Ack acknowledges successful completion of a task
	Ack(ctx context.Context, taskID string) error

	// Nack indicates task processing failed and should be retried
	Nack(ctx context.Context, taskID string, reason string) error

	// GetTask retrieves a task by ID
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)

	// Stats returns queue statistics
	Stats(ctx context.Context) (*QueueStats, error)

	// Ping checks if the queue backend is healthy
	Ping(ctx context.Context) error

	// Close cleans up resources
	Close() error
}

// QueueStats holds queue depth counters
type QueueStats struct {
	PendingCount    int64 `json:"pending_count"`
	ProcessingCount int64 `json:"processing_count"`
	CompletedCount  int64 `json:"completed_count"`
	FailedCount     int64 `json:"failed_count"`
}
