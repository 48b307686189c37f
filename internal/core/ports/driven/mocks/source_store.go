package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Ensure MockSourceStore implements SourceStore
var _ driven.SourceStore = (*MockSourceStore)(nil)

// MockSourceStore is a mock implementation of SourceStore for testing
type MockSourceStore struct {
	mu      sync.RWMutex
	sources map[string]*domain.Source

	// FailSave forces Save to return this error when set
	FailSave error
}

// NewMockSourceStore creates a new MockSourceStore
func NewMockSourceStore() *MockSourceStore {
	return &MockSourceStore{
		sources: make(map[string]*domain.Source),
	}
}

func (m *MockSourceStore) Save(ctx context.Context, source *domain.Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave != nil {
		return m.FailSave
	}
	cp := *source
	m.sources[source.ID] = &cp
	return nil
}

func (m *MockSourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	source, ok := m.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *source
	return &cp, nil
}

func (m *MockSourceStore) ListByProject(ctx context.Context, projectID string) ([]*domain.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Source
	for _, source := range m.sources {
		if source.ProjectID == projectID {
			cp := *source
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockSourceStore) ListPending(ctx context.Context, limit int) ([]*domain.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Source
	for _, source := range m.sources {
		if source.Status == domain.SourceStatusPending {
			cp := *source
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockSourceStore) ListRetrainCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Source
	for _, source := range m.sources {
		if !source.AutoRetrain || !source.Type.SupportsRetrain() {
			continue
		}
		if source.Status != domain.SourceStatusCompleted {
			continue
		}
		if source.LastTrainedAt != nil && source.LastTrainedAt.After(cutoff) {
			continue
		}
		cp := *source
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockSourceStore) ClaimForProcessing(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	source, ok := m.sources[id]
	if !ok {
		return domain.ErrNotFound
	}
	if source.Status == domain.SourceStatusProcessing {
		return domain.ErrAlreadyProcessing
	}
	source.Status = domain.SourceStatusProcessing
	source.ErrorMessage = ""
	source.UpdatedAt = time.Now()
	return nil
}

func (m *MockSourceStore) MarkCompleted(ctx context.Context, id string, chunkCount, tokenCount int, trainedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	source, ok := m.sources[id]
	if !ok {
		return domain.ErrNotFound
	}
	source.Status = domain.SourceStatusCompleted
	source.ChunkCount = chunkCount
	source.TokenCount = tokenCount
	source.ErrorMessage = ""
	if trainedAt != nil {
		t := *trainedAt
		source.LastTrainedAt = &t
	}
	source.UpdatedAt = time.Now()
	return nil
}

func (m *MockSourceStore) MarkFailed(ctx context.Context, id string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	source, ok := m.sources[id]
	if !ok {
		return domain.ErrNotFound
	}
	source.Status = domain.SourceStatusFailed
	source.ErrorMessage = message
	source.ChunkCount = 0
	source.TokenCount = 0
	source.UpdatedAt = time.Now()
	return nil
}

func (m *MockSourceStore) ResetToPending(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	source, ok := m.sources[id]
	if !ok {
		return domain.ErrNotFound
	}
	source.Status = domain.SourceStatusPending
	source.ErrorMessage = ""
	source.UpdatedAt = time.Now()
	return nil
}

func (m *MockSourceStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.sources, id)
	return nil
}

// Helper methods for testing

func (m *MockSourceStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = make(map[string]*domain.Source)
}

func (m *MockSourceStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sources)
}
