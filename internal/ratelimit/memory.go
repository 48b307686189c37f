// Package ratelimit bounds request throughput per caller identity using
// fixed windows.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Config holds rate limiter settings
type Config struct {
	// Limit is the maximum number of requests per window
	Limit int

	// Window is the fixed window length
	Window time.Duration

	// CleanupInterval is how often stale entries are purged. Cleanup is
	// best-effort memory hygiene; the check path self-heals on access.
	CleanupInterval time.Duration
}

// DefaultConfig returns the default limiter settings
func DefaultConfig() Config {
	return Config{
		Limit:           60,
		Window:          time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// Ensure MemoryLimiter implements RateLimiter
var _ driven.RateLimiter = (*MemoryLimiter)(nil)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is an in-process fixed-window rate limiter. Entries are
// created lazily per identity and reclaimed by a background janitor once
// their window has elapsed.
type MemoryLimiter struct {
	cfg Config

	mu      sync.Mutex
	windows map[string]*window

	stopOnce sync.Once
	stop     chan struct{}
}

// NewMemoryLimiter creates a limiter and starts its cleanup loop
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	def := DefaultConfig()
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	l := &MemoryLimiter{
		cfg:     cfg,
		windows: make(map[string]*window),
		stop:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Check counts a request against the identity's current window
func (l *MemoryLimiter) Check(ctx context.Context, identity string) (*driven.Decision, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[identity]
	if !ok || now.After(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(l.cfg.Window)}
		l.windows[identity] = w
		return &driven.Decision{
			Allowed:   true,
			Remaining: l.cfg.Limit - 1,
			ResetAt:   w.resetAt,
		}, nil
	}

	if w.count >= l.cfg.Limit {
		// The window's original reset time is the retry-after hint
		return &driven.Decision{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   w.resetAt,
		}, nil
	}

	w.count++
	return &driven.Decision{
		Allowed:   true,
		Remaining: l.cfg.Limit - w.count,
		ResetAt:   w.resetAt,
	}, nil
}

// Close stops the cleanup loop
func (l *MemoryLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.purgeStale()
		}
	}
}

func (l *MemoryLimiter) purgeStale() {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for identity, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, identity)
		}
	}
}
