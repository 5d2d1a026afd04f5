package extract

import (
	"context"
	"time"
)

// RetryBackoffs are the fixed exponential backoff delays for LSP client
// creation retries: up to 3 retries (4 attempts in all) with 100, 200,
// then 400ms between attempts. Store operations and Cache misses do not retry and have no
// equivalent here.
var RetryBackoffs = []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}

// WithRetry calls fn up to len(RetryBackoffs)+1 times, sleeping the
// corresponding backoff between attempts, stopping early on success or
// on context cancellation.
func WithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt >= len(RetryBackoffs) {
			return lastErr
		}
		select {
		case <-time.After(RetryBackoffs[attempt]):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
