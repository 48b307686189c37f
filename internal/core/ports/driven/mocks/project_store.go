package mocks

import (
	"context"
	"sync"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Ensure MockProjectStore implements ProjectStore
var _ driven.ProjectStore = (*MockProjectStore)(nil)

// MockProjectStore is a mock implementation of ProjectStore for testing
type MockProjectStore struct {
	mu       sync.RWMutex
	projects map[string]*domain.Project
	orgs     map[string]*domain.Organization
}

// NewMockProjectStore creates a new MockProjectStore
func NewMockProjectStore() *MockProjectStore {
	return &MockProjectStore{
		projects: make(map[string]*domain.Project),
		orgs:     make(map[string]*domain.Organization),
	}
}

func (m *MockProjectStore) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	project, ok := m.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *project
	return &cp, nil
}

func (m *MockProjectStore) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	org, ok := m.orgs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *org
	return &cp, nil
}

// Helper methods for testing

func (m *MockProjectStore) AddProject(p *domain.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.projects[p.ID] = &cp
}

func (m *MockProjectStore) AddOrganization(o *domain.Organization) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orgs[o.ID] = &cp
}
