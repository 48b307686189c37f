package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return mr, client, func() {
		client.Close()
		mr.Close()
	}
}

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	_, client, cleanup := setupMiniredis(t)
	defer cleanup()

	limiter := NewRateLimiter(client, 5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d, err := limiter.Check(ctx, "query:proj-1")
		if err != nil {
			t.Fatalf("check %d: unexpected error: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("check %d: expected allowed", i)
		}
		if d.Remaining != 5-i-1 {
			t.Errorf("check %d: expected remaining %d, got %d", i, 5-i-1, d.Remaining)
		}
	}

	d, err := limiter.Check(ctx, "query:proj-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Allowed {
		t.Error("expected rejection over the limit")
	}
	if d.Remaining != 0 {
		t.Errorf("expected remaining 0, got %d", d.Remaining)
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	mr, client, cleanup := setupMiniredis(t)
	defer cleanup()

	limiter := NewRateLimiter(client, 2, time.Minute)
	ctx := context.Background()

	limiter.Check(ctx, "id")
	limiter.Check(ctx, "id")
	if d, _ := limiter.Check(ctx, "id"); d.Allowed {
		t.Fatal("expected rejection inside window")
	}

	// miniredis advances TTLs manually
	mr.FastForward(61 * time.Second)

	d, err := limiter.Check(ctx, "id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Allowed {
		t.Fatal("expected fresh window after expiry")
	}
	if d.Remaining != 1 {
		t.Errorf("fresh window should count from 1, remaining %d", d.Remaining)
	}
}

func TestRateLimiter_IdentitiesIndependent(t *testing.T) {
	_, client, cleanup := setupMiniredis(t)
	defer cleanup()

	limiter := NewRateLimiter(client, 1, time.Minute)
	ctx := context.Background()

	limiter.Check(ctx, "query:proj-1")
	if d, _ := limiter.Check(ctx, "query:proj-1"); d.Allowed {
		t.Error("proj-1 should be limited")
	}
	if d, _ := limiter.Check(ctx, "query:proj-2"); !d.Allowed {
		t.Error("proj-2 should be unaffected")
	}
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	_, client, cleanup := setupMiniredis(t)
	defer cleanup()

	limiter := NewRateLimiter(client, 0, 0)
	if limiter.limit != 60 {
		t.Errorf("expected default limit 60, got %d", limiter.limit)
	}
	if limiter.window != time.Minute {
		t.Errorf("expected default window 1m, got %v", limiter.window)
	}
}
