package embedder

import (
	"context"
	"time"
)

// Retry policy for provider calls. Embedding servers shed requests
// transiently under load; a short exponential backoff rides that out
// without stalling an index build for long.
const (
	MaxRetries     = 3
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// withRetry calls fn up to MaxRetries times, doubling the wait between
// attempts. Context cancellation stops the attempts immediately; once
// attempts are exhausted the last provider error is returned.
func withRetry[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	wait := initialBackoff
	for attempt := 0; attempt < MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if attempt == MaxRetries-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}
		wait = min(wait*2, maxBackoff)
	}

	return zero, lastErr
}
