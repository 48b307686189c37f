package driven

import (
	"context"
	"time"
)

// Decision is the outcome of a rate-limit check
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimiter bounds request throughput per caller identity using a
// fixed window. Implementations must be safe for concurrent use.
type RateLimiter interface {
	// Check counts a request against the identity's current window.
	// A rejected call reports Remaining=0 and the window's original
	// ResetAt as a retry-after hint.
	Check(ctx context.Context, identity string) (*Decision, error)
}
