package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Ensure MockDistributedLock implements DistributedLock
var _ driven.DistributedLock = (*MockDistributedLock)(nil)

// MockDistributedLock is an in-process DistributedLock for testing.
// TTLs are recorded but never expire.
type MockDistributedLock struct {
	mu   sync.Mutex
	held map[string]bool
	ttls map[string]time.Duration

	// Deny forces Acquire to report the lock as held elsewhere
	Deny bool
}

// NewMockDistributedLock creates a new MockDistributedLock
func NewMockDistributedLock() *MockDistributedLock {
	return &MockDistributedLock{
		held: make(map[string]bool),
		ttls: make(map[string]time.Duration),
	}
}

func (m *MockDistributedLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Deny || m.held[name] {
		return false, nil
	}
	m.held[name] = true
	m.ttls[name] = ttl
	return true, nil
}

func (m *MockDistributedLock) Release(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, name)
	delete(m.ttls, name)
	return nil
}

func (m *MockDistributedLock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ttls[name] = ttl
	return nil
}

// IsHeld reports whether a named lock is currently held
func (m *MockDistributedLock) IsHeld(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held[name]
}
