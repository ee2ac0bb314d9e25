// Package retrylimit provides an adaptive rate limiter and a retry helper for
// clients of throttled APIs. The limiter speeds up while calls succeed and
// backs off when the remote side pushes back.
//
// Example:
//
//	lim := retrylimit.NewAdaptiveLimiter(10, 1, 40, 1, 0.5)
//	err := retrylimit.WithRetryMax(ctx, doCall, lim, 3, isThrottled)
package retrylimit

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AdaptiveLimiter manages a rate limit that adjusts automatically based on the
// outcome of requests: up on success, down on throttling. Safe for concurrent use.
type AdaptiveLimiter struct {
	mu        sync.RWMutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
}

// NewAdaptiveLimiter creates a limiter starting at initial requests per second,
// bounded by [min, max], raised by stepUp on success and multiplied by stepDown
// (e.g. 0.5) on throttling.
func NewAdaptiveLimiter(initial, min, max rate.Limit, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if initial < 1 {
		initial = 1
	}
	if min < 1 {
		min = 1
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, maxInt(1, int(initial))),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until a token is available or the context is canceled.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return a.limiter.Wait(ctx)
}

// Success raises the rate after a quiet period without errors.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > 10*time.Second {
		a.adjustLimit(a.limiter.Limit() + a.stepUp)
	}
}

// RateLimited lowers the rate after the remote side throttled a request.
func (a *AdaptiveLimiter) RateLimited() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.adjustLimit(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// CurrentLimit returns the current requests per second.
func (a *AdaptiveLimiter) CurrentLimit() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) adjustLimit(newLimit rate.Limit) {
	if newLimit > a.maxLimit {
		newLimit = a.maxLimit
	} else if newLimit < a.minLimit {
		newLimit = a.minLimit
	}
	if newLimit != a.limiter.Limit() {
		a.limiter.SetLimit(newLimit)
		a.limiter.SetBurst(maxInt(1, int(newLimit)))
	}
}

// Retryable reports whether an error is worth another attempt.
type Retryable func(error) bool

// WithRetryMax executes fn up to maxAttempts times with exponential backoff and
// jitter. The limiter may be nil. Errors the classifier rejects stop the loop
// immediately; errors it accepts additionally lower the limiter's rate.
func WithRetryMax(ctx context.Context, fn func() error, lim *AdaptiveLimiter, maxAttempts int, retryable Retryable) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	delay := 500 * time.Millisecond
	const maxDelay = 10 * time.Second

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if lim != nil {
			if werr := lim.Wait(ctx); werr != nil {
				return werr
			}
		}

		err = fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}
		if retryable == nil || !retryable(err) {
			return err
		}
		if lim != nil {
			lim.RateLimited()
		}
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(addJitter(delay)):
		}
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}

	return fmt.Errorf("max attempts (%d) exceeded: %w", maxAttempts, err)
}

// addJitter adds 0-25% random jitter to prevent synchronized retries.
func addJitter(delay time.Duration) time.Duration {
	if delay <= 0 {
		return delay
	}
	return delay + time.Duration(rand.Int63n(int64(delay/4)))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
