package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Ensure MockAPIKeyStore implements APIKeyStore
var _ driven.APIKeyStore = (*MockAPIKeyStore)(nil)

// MockAPIKeyStore is a mock implementation of APIKeyStore for testing
type MockAPIKeyStore struct {
	mu   sync.RWMutex
	keys map[string]*domain.APIKey

	// TouchCount tracks calls to TouchLastUsed
	TouchCount int
}

// NewMockAPIKeyStore creates a new MockAPIKeyStore
func NewMockAPIKeyStore() *MockAPIKeyStore {
	return &MockAPIKeyStore{
		keys: make(map[string]*domain.APIKey),
	}
}

func (m *MockAPIKeyStore) Save(ctx context.Context, key *domain.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *key
	m.keys[key.ID] = &cp
	return nil
}

func (m *MockAPIKeyStore) GetByHash(ctx context.Context, hash, prefix string) (*domain.APIKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, key := range m.keys {
		if key.KeyHash == hash && key.KeyPrefix == prefix {
			cp := *key
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockAPIKeyStore) ListByProject(ctx context.Context, projectID string) ([]*domain.APIKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.APIKey
	for _, key := range m.keys {
		if key.ProjectID == projectID {
			cp := *key
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *MockAPIKeyStore) TouchLastUsed(ctx context.Context, id string, usedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.keys[id]
	if !ok {
		return domain.ErrNotFound
	}
	t := usedAt
	key.LastUsedAt = &t
	m.TouchCount++
	return nil
}

func (m *MockAPIKeyStore) Revoke(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.keys[id]
	if !ok {
		return domain.ErrNotFound
	}
	key.Active = false
	return nil
}

// Helper methods for testing

func (m *MockAPIKeyStore) Get(id string) *domain.APIKey {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key, ok := m.keys[id]
	if !ok {
		return nil
	}
	cp := *key
	return &cp
}

// Touches returns how many times TouchLastUsed was called.
func (m *MockAPIKeyStore) Touches() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.TouchCount
}

func (m *MockAPIKeyStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = make(map[string]*domain.APIKey)
	m.TouchCount = 0
}
