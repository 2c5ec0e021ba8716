// Package llm holds the chat-completion adapters and the retry policy
// they share.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/logger"
)

// DefaultRetryDelay is the first backoff between attempts; it doubles each retry.
const DefaultRetryDelay = 500 * time.Millisecond

// StatusError is a non-200 answer from a provider.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Code, e.Message)
}

// Unwrap maps auth and throttling statuses onto domain errors.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrPermissionDenied
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	default:
		return nil
	}
}

// Retryable reports whether another attempt might succeed.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// Retry calls fn up to maxRetries+1 times, retrying throttled and server
// errors with exponential backoff. Other errors return immediately.
func Retry(ctx context.Context, maxRetries int, delay time.Duration, fn func(context.Context) (string, error)) (string, error) {
	if delay <= 0 {
		delay = DefaultRetryDelay
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("llm: retry %d/%d after %v: %v", attempt, maxRetries, delay, lastErr)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
			}
			delay *= 2
		}

		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		var statusErr *StatusError
		if !errors.As(err, &statusErr) || !statusErr.Retryable() {
			return "", err
		}
	}
	return "", lastErr
}
