package evaluator

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// rateLimiter implements a simple token bucket keyed to requests per minute.
// All evaluator workers share one limiter so the configured RPM bounds the
// whole run, not each worker.
type rateLimiter struct {
	stopCh     chan struct{}
	tokens     int
	capacity   int
	refillRate int
	mu         sync.Mutex
}

// newRateLimiter creates a new rate limiter with the specified requests per minute.
func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}

	rl := &rateLimiter{
		tokens:     requestsPerMinute,
		capacity:   requestsPerMinute,
		refillRate: requestsPerMinute,
		stopCh:     make(chan struct{}),
	}

	go rl.refill()

	return rl
}

// wait blocks until a token is available or the context is canceled.
func (rl *rateLimiter) wait(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if rl.tryAcquire() {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// tryAcquire attempts to acquire a token without blocking.
func (rl *rateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}

// refill periodically adds tokens to the bucket.
func (rl *rateLimiter) refill() {
	ticker := time.NewTicker(time.Minute / time.Duration(rl.refillRate))
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.mu.Lock()
			if rl.tokens < rl.capacity {
				rl.tokens++
			}
			rl.mu.Unlock()
		}
	}
}

// Close stops the refill goroutine.
func (rl *rateLimiter) Close() {
	close(rl.stopCh)
}
