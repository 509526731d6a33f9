package battery

import (
	"context"
	"time"

	"github.com/hoabrief/hoabrief"
)

// AskFunc is the signature for a single question attempt.
type AskFunc func(ctx context.Context, question string) (*hoabrief.AskResult, error)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the delays between ask attempts: 5s, 5s.
// Backend answering is slow; a fixed delay beats exponential backoff here.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{5 * time.Second, 5 * time.Second}
}

// RetryDelays builds a delay table for a total attempt budget. attempts is
// the total number of tries, floor 1; delay separates consecutive tries.
func RetryDelays(attempts int, delay time.Duration) []time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	delays := make([]time.Duration, attempts-1)
	for i := range delays {
		delays[i] = delay
	}
	return delays
}

// AskWithRetry attempts a question with retry on failure. It retries up to
// 2 times (3 total attempts) with 5s between attempts. The logger function,
// if provided, is called for each retry attempt.
func AskWithRetry(ctx context.Context, question string, ask AskFunc, logger LogFunc) (*hoabrief.AskResult, int, error) {
	return AskWithRetryDelays(ctx, question, ask, logger, DefaultRetryDelays())
}

// AskWithRetryDelays is like AskWithRetry but allows configurable delays.
// This is useful for testing without waiting for real delays. It returns
// the answer, the number of attempts used, and the last error.
func AskWithRetryDelays(ctx context.Context, question string, ask AskFunc, logger LogFunc, delays []time.Duration) (*hoabrief.AskResult, int, error) {
	maxAttempts := len(delays) + 1 // 1 initial + N retries

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, err := ask(ctx, question)
		if err == nil {
			return result, attempt + 1, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, attempt + 1, ctx.Err()
		default:
		}

		if logger != nil {
			logger("  retry question (attempt %d): %v", attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return nil, attempt + 1, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return nil, maxAttempts, lastErr
}
