package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Ensure MockRateLimiter implements RateLimiter
var _ driven.RateLimiter = (*MockRateLimiter)(nil)

// MockRateLimiter is a configurable RateLimiter for testing
type MockRateLimiter struct {
	mu     sync.Mutex
	counts map[string]int

	// Reject forces every check to deny
	Reject bool

	// Err forces Check to fail
	Err error
}

// NewMockRateLimiter creates a limiter that allows everything
func NewMockRateLimiter() *MockRateLimiter {
	return &MockRateLimiter{
		counts: make(map[string]int),
	}
}

func (m *MockRateLimiter) Check(ctx context.Context, identity string) (*driven.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Reject {
		return &driven.Decision{
			Allowed: false,
			ResetAt: time.Now().Add(time.Minute),
		}, nil
	}
	m.counts[identity]++
	return &driven.Decision{
		Allowed:   true,
		Remaining: 59,
		ResetAt:   time.Now().Add(time.Minute),
	}, nil
}

// Checks returns how many times the identity was checked
func (m *MockRateLimiter) Checks(identity string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[identity]
}
