package mocks

import (
	"context"
	"sync"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Ensure MockCredentialStore implements the interface.
var _ driven.CredentialStore = (*MockCredentialStore)(nil)

// MockCredentialStore is an in-memory credential store for testing.
type MockCredentialStore struct {
	mu      sync.Mutex
	secrets map[string]string

	// Err, when set, is returned by every operation
	Err error
}

// NewMockCredentialStore creates a mock credential store.
func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{
		secrets: make(map[string]string),
	}
}

func (m *MockCredentialStore) SaveCredential(_ context.Context, id, _, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.secrets[id] = secret
	return nil
}

func (m *MockCredentialStore) GetCredential(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	secret, ok := m.secrets[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return secret, nil
}

func (m *MockCredentialStore) DeleteCredential(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.secrets[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.secrets, id)
	return nil
}
