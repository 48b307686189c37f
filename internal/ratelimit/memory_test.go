package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryLimiter_AllowsUpToLimit(t *testing.T) {
	l := NewMemoryLimiter(DefaultConfig())
	defer l.Close()
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		d, err := l.Check(ctx, "query:proj-1")
		if err != nil {
			t.Fatalf("check %d: unexpected error: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("check %d: expected allowed", i)
		}
		if d.Remaining != 60-i-1 {
			t.Errorf("check %d: expected remaining %d, got %d", i, 60-i-1, d.Remaining)
		}
	}

	d, err := l.Check(ctx, "query:proj-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Allowed {
		t.Error("61st request should be rejected")
	}
	if d.Remaining != 0 {
		t.Errorf("expected remaining 0, got %d", d.Remaining)
	}
	if d.ResetAt.IsZero() {
		t.Error("rejection should carry the window reset time")
	}
}

func TestMemoryLimiter_RejectionKeepsResetTime(t *testing.T) {
	l := NewMemoryLimiter(Config{Limit: 2, Window: time.Minute})
	defer l.Close()
	ctx := context.Background()

	first, _ := l.Check(ctx, "id")
	l.Check(ctx, "id")

	rejected, _ := l.Check(ctx, "id")
	if rejected.Allowed {
		t.Fatal("expected rejection")
	}
	if !rejected.ResetAt.Equal(first.ResetAt) {
		t.Errorf("reset time changed on rejection: %v != %v", rejected.ResetAt, first.ResetAt)
	}
}

func TestMemoryLimiter_WindowResets(t *testing.T) {
	l := NewMemoryLimiter(Config{Limit: 2, Window: 50 * time.Millisecond})
	defer l.Close()
	ctx := context.Background()

	l.Check(ctx, "id")
	l.Check(ctx, "id")
	if d, _ := l.Check(ctx, "id"); d.Allowed {
		t.Fatal("expected rejection inside window")
	}

	time.Sleep(60 * time.Millisecond)

	d, _ := l.Check(ctx, "id")
	if !d.Allowed {
		t.Fatal("expected fresh window after expiry")
	}
	if d.Remaining != 1 {
		t.Errorf("fresh window should count from 1, remaining %d", d.Remaining)
	}
}

func TestMemoryLimiter_IdentitiesIndependent(t *testing.T) {
	l := NewMemoryLimiter(Config{Limit: 1, Window: time.Minute})
	defer l.Close()
	ctx := context.Background()

	l.Check(ctx, "query:proj-1")
	if d, _ := l.Check(ctx, "query:proj-1"); d.Allowed {
		t.Error("proj-1 should be limited")
	}
	if d, _ := l.Check(ctx, "query:proj-2"); !d.Allowed {
		t.Error("proj-2 should be unaffected")
	}
}

func TestMemoryLimiter_ConcurrentChecks(t *testing.T) {
	l := NewMemoryLimiter(Config{Limit: 100, Window: time.Minute})
	defer l.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	allowed := make(chan bool, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.Check(ctx, "id")
			if err != nil {
				t.Error(err)
				return
			}
			allowed <- d.Allowed
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}
	if count != 100 {
		t.Errorf("expected exactly 100 allowed, got %d", count)
	}
}

func TestMemoryLimiter_PurgeStale(t *testing.T) {
	l := NewMemoryLimiter(Config{Limit: 5, Window: 10 * time.Millisecond, CleanupInterval: time.Hour})
	defer l.Close()
	ctx := context.Background()

	l.Check(ctx, "a")
	l.Check(ctx, "b")
	time.Sleep(20 * time.Millisecond)
	l.purgeStale()

	l.mu.Lock()
	n := len(l.windows)
	l.mu.Unlock()
	if n != 0 {
		t.Errorf("expected stale entries purged, %d left", n)
	}
}
