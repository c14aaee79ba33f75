package genai

import (
	"context"
	"log/slog"
	"time"
)

// RetryPolicy is a bounded-retry policy: a maximum attempt count, a linearly
// increasing delay between attempts, and a predicate deciding which errors
// are worth retrying.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int
	// BaseDelay is the delay before the second attempt; attempt n waits
	// BaseDelay * n after failing.
	BaseDelay time.Duration
	// Retryable reports whether the given error may succeed on retry.
	Retryable func(error) bool
}

// DefaultRetryPolicy mirrors the generation API contract: three attempts with
// a 5s/10s linear backoff, retrying only transient failures.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   5 * time.Second,
		Retryable:   IsRetryable,
	}
}

// Do runs fn until it succeeds, the retry budget is exhausted, a
// non-retryable error occurs, or the context is cancelled. The last error is
// returned unwrapped so callers can classify it.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			slog.Debug("RetryPolicy non-retryable error, failing fast", "error", lastErr, "attempt", attempt)
			return lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}

		delay := p.BaseDelay * time.Duration(attempt)
		slog.Warn("RetryPolicy attempt failed, backing off", "error", lastErr, "attempt", attempt, "max_attempts", p.MaxAttempts, "delay", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
