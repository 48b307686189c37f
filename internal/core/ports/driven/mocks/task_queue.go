package mocks

import (
	"context"
	"sync"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Ensure MockTaskQueue implements TaskQueue
var _ driven.TaskQueue = (*MockTaskQueue)(nil)

// MockTaskQueue is an in-memory TaskQueue for testing. Dequeue returns
// ready tasks in enqueue order without blocking.
type MockTaskQueue struct {
	mu      sync.Mutex
	pending []*domain.Task
	tasks   map[string]*domain.Task
	stats   driven.QueueStats

	// FailEnqueue forces Enqueue to return this error when set
	FailEnqueue error
}

// NewMockTaskQueue creates a new MockTaskQueue
func NewMockTaskQueue() *MockTaskQueue {
	return &MockTaskQueue{
		tasks: make(map[string]*domain.Task),
	}
}

func (m *MockTaskQueue) Enqueue(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailEnqueue != nil {
		return m.FailEnqueue
	}
	cp := *task
	m.tasks[task.ID] = &cp
	m.pending = append(m.pending, &cp)
	m.stats.PendingCount++
	return nil
}

func (m *MockTaskQueue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, task := range m.pending {
		if !task.IsReady() {
			continue
		}
		m.pending = append(m.pending[:i], m.pending[i+1:]...)
		task.MarkProcessing()
		m.stats.PendingCount--
		m.stats.ProcessingCount++
		cp := *task
		return &cp, nil
	}
	return nil, nil
}

func (m *MockTaskQueue) Ack(ctx context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[taskID]
	if !ok {
		return domain.ErrNotFound
	}
	task.MarkCompleted()
	m.stats.ProcessingCount--
	m.stats.CompletedCount++
	return nil
}

func (m *MockTaskQueue) Nack(ctx context.Context, taskID string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[taskID]
	if !ok {
		return domain.ErrNotFound
	}
	m.stats.ProcessingCount--
	if task.CanRetry() {
		task.Retry(reason)
		m.pending = append(m.pending, task)
		m.stats.PendingCount++
		return nil
	}
	task.MarkFailed(reason)
	m.stats.FailedCount++
	return nil
}

func (m *MockTaskQueue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[taskID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *task
	return &cp, nil
}

func (m *MockTaskQueue) Stats(ctx context.Context) (*driven.QueueStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := m.stats
	return &stats, nil
}

func (m *MockTaskQueue) Ping(ctx context.Context) error {
	return nil
}

func (m *MockTaskQueue) Close() error {
	return nil
}

// Helper methods for testing

func (m *MockTaskQueue) PendingTasks() []*domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Task, 0, len(m.pending))
	for _, task := range m.pending {
		cp := *task
		result = append(result, &cp)
	}
	return result
}
