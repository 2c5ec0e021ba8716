package driven

import "context"

// RateLimiter paces outbound calls.
type RateLimiter interface {
	// Wait blocks until a call may proceed or ctx is done.
	Wait(ctx context.Context) error
}
