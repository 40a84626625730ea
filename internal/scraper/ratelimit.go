package scraper

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a minimum delay between outbound requests and backs
// off further after consecutive failures.
type RateLimiter struct {
	mu           sync.Mutex
	minDelay     time.Duration
	multiplier   float64
	maxDelay     time.Duration
	currentDelay time.Duration
	lastRequest  time.Time
	sleep        func(context.Context, time.Duration) error
}

// NewRateLimiter builds a limiter allowing requestsPerMinute requests under
// normal operation. After each failure the delay grows by multiplier, capped
// at maxDelay, until a success resets it.
func NewRateLimiter(requestsPerMinute int, multiplier float64, maxDelay time.Duration) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 2
	}
	if multiplier < 1 {
		multiplier = 2
	}
	minDelay := time.Minute / time.Duration(requestsPerMinute)
	if maxDelay < minDelay {
		maxDelay = 10 * minDelay
	}
	return &RateLimiter{
		minDelay:     minDelay,
		multiplier:   multiplier,
		maxDelay:     maxDelay,
		currentDelay: minDelay,
		sleep:        sleepCtx,
	}
}

// Wait blocks until the next request is allowed or the context is done.
func (l *RateLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := time.Now()
	var wait time.Duration
	if !l.lastRequest.IsZero() {
		elapsed := now.Sub(l.lastRequest)
		if elapsed < l.currentDelay {
			wait = l.currentDelay - elapsed
		}
	}
	l.lastRequest = now.Add(wait)
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	return l.sleep(ctx, wait)
}

// RecordFailure grows the delay before the next request.
func (l *RateLimiter) RecordFailure() {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := time.Duration(float64(l.currentDelay) * l.multiplier)
	if next > l.maxDelay {
		next = l.maxDelay
	}
	l.currentDelay = next
}

// RecordSuccess resets the delay to the configured minimum.
func (l *RateLimiter) RecordSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.currentDelay = l.minDelay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
