// Package worker runs background tasks dequeued from the durable task
// queue: single-source processing, pending sweeps, and retrain sweeps.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driving"
	"github.com/docbase-labs/docbase-core/internal/core/services"
)

// Worker processes tasks from the task queue.
type Worker struct {
	taskQueue driven.TaskQueue
	processor driving.ProcessorService
	retrain   *services.RetrainScheduler
	logger    *slog.Logger

	concurrency    int
	dequeueTimeout int // seconds

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Config holds configuration for the worker.
type Config struct {
	TaskQueue driven.TaskQueue
	Processor driving.ProcessorService

	// Retrain is optional. When set, the worker starts its sweep loop
	// and handles retrain_sweep tasks.
	Retrain *services.RetrainScheduler

	Logger         *slog.Logger
	Concurrency    int // Number of concurrent task processors
	DequeueTimeout int // Seconds to wait for a task before checking again
}

// New creates a task worker.
func New(cfg Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	dequeueTimeout := cfg.DequeueTimeout
	if dequeueTimeout <= 0 {
		dequeueTimeout = 5
	}
	return &Worker{
		taskQueue:      cfg.TaskQueue,
		processor:      cfg.Processor,
		retrain:        cfg.Retrain,
		logger:         logger,
		concurrency:    concurrency,
		dequeueTimeout: dequeueTimeout,
	}
}

// Start begins the worker loop. It runs until Stop is called or the
// context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting",
		"concurrency", w.concurrency,
		"dequeue_timeout", w.dequeueTimeout,
	)

	if w.retrain != nil {
		if err := w.retrain.Start(ctx); err != nil {
			w.logger.Error("failed to start retrain scheduler", "error", err)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.processLoop(ctx, workerID)
		}(i)
	}
	go func() {
		wg.Wait()
		close(w.doneCh)
	}()

	return nil
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.mu.Unlock()

	if w.retrain != nil {
		w.retrain.Stop()
	}

	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("worker stopped")
}

// Wait blocks until the worker stops.
func (w *Worker) Wait() {
	<-w.doneCh
}

// processLoop is the main processing loop for one worker goroutine.
func (w *Worker) processLoop(ctx context.Context, workerID int) {
	logger := w.logger.With("worker_id", workerID)
	logger.Info("worker goroutine started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		default:
		}

		task, err := w.taskQueue.DequeueWithTimeout(ctx, w.dequeueTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logger.Error("failed to dequeue task", "error", err)
			time.Sleep(time.Second) // Back off on error
			continue
		}
		if task == nil {
			continue
		}

		w.processTask(ctx, task, logger)
	}
}

// processTask dispatches a single task, then acks or nacks it.
func (w *Worker) processTask(ctx context.Context, task *domain.Task, logger *slog.Logger) {
	logger = logger.With("task_id", task.ID, "task_type", task.Type)
	logger.Info("processing task")

	start := time.Now()
	var err error
	switch task.Type {
	case domain.TaskTypeProcessSource:
		err = w.handleProcessSource(ctx, task)
	case domain.TaskTypeProcessPending:
		err = w.handleProcessPending(ctx)
	case domain.TaskTypeRetrainSweep:
		err = w.handleRetrainSweep(ctx)
	default:
		err = fmt.Errorf("unknown task type: %s", task.Type)
	}
	duration := time.Since(start)

	if err != nil {
		logger.Error("task failed", "duration", duration, "error", err)
		if nackErr := w.taskQueue.Nack(ctx, task.ID, err.Error()); nackErr != nil {
			logger.Error("failed to nack task", "nack_error", nackErr)
		}
		return
	}

	logger.Info("task completed", "duration", duration)
	if ackErr := w.taskQueue.Ack(ctx, task.ID); ackErr != nil {
		logger.Error("failed to ack task", "ack_error", ackErr)
	}
}

// handleProcessSource runs the pipeline for one source. A lost claim is
// treated as success: another worker owns the run.
func (w *Worker) handleProcessSource(ctx context.Context, task *domain.Task) error {
	sourceID := task.SourceID()
	if sourceID == "" {
		return fmt.Errorf("source_id not found in task payload")
	}

	result, err := w.processor.ProcessSource(ctx, sourceID, driving.ProcessOptions{Retrain: task.Retrain()})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyProcessing) {
			w.logger.Info("source claimed elsewhere", "source_id", sourceID)
			return nil
		}
		return err
	}
	if !result.Success {
		// The failure is recorded on the source; retrying the task would
		// rerun a pipeline that just failed deterministically for
		// extraction errors, but transient causes (provider outages) are
		// worth the retry budget.
		return fmt.Errorf("processing failed: %s", result.Error)
	}
	return nil
}

func (w *Worker) handleProcessPending(ctx context.Context) error {
	result, err := w.processor.ProcessPending(ctx)
	if err != nil {
		return err
	}
	w.logger.Info("pending sweep finished",
		"total", result.Total,
		"success", result.Success,
		"failed", result.Failed,
		"skipped", result.Skipped,
	)
	return nil
}

func (w *Worker) handleRetrainSweep(ctx context.Context) error {
	if w.retrain == nil {
		return fmt.Errorf("retrain scheduler not configured")
	}
	enqueued, err := w.retrain.Sweep(ctx)
	if err != nil {
		return err
	}
	w.logger.Info("retrain sweep finished", "enqueued", enqueued)
	return nil
}
