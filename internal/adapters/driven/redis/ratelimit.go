package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.RateLimiter = (*RateLimiter)(nil)

const rateLimitPrefix = "docbase:ratelimit:"

// rateLimitScript counts a request within the identity's fixed window.
// INCR creates the key at 1; the expiry is set only on creation so the
// window keeps its original reset time. Returns {count, ttl_ms}.
var rateLimitScript = redis.NewScript(`
	local count = redis.call("incr", KEYS[1])
	if count == 1 then
		redis.call("pexpire", KEYS[1], ARGV[1])
	end
	local ttl = redis.call("pttl", KEYS[1])
	return {count, ttl}
`)

// RateLimiter is a fixed-window rate limiter backed by Redis, shared by
// all instances serving the public query path.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRateLimiter creates a shared fixed-window limiter
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, limit: limit, window: window}
}

// Check counts a request against the identity's current window
func (r *RateLimiter) Check(ctx context.Context, identity string) (*driven.Decision, error) {
	key := rateLimitPrefix + identity

	result, err := rateLimitScript.Run(ctx, r.client, []string{key}, r.window.Milliseconds()).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit check %s: %w", identity, err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return nil, fmt.Errorf("rate limit check %s: unexpected script result %v", identity, result)
	}
	count := values[0].(int64)
	ttlMillis := values[1].(int64)

	resetAt := time.Now().Add(time.Duration(ttlMillis) * time.Millisecond)
	if count > int64(r.limit) {
		return &driven.Decision{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   resetAt,
		}, nil
	}

	return &driven.Decision{
		Allowed:   true,
		Remaining: r.limit - int(count),
		ResetAt:   resetAt,
	}, nil
}
