package qec

import (
	"context"
	"sync"
	"time"
)

/*
RateLimiter is a token bucket. Each backend submission consumes a token and
tokens come back one per refillRate, up to maxTokens, so short bursts pass
while the long-run rate stays bounded. Remote execution services usually
enforce a submission quota; this keeps a sweep under it.
*/
type RateLimiter struct {
	tokens     int           // Current number of available tokens
	maxTokens  int           // Maximum token capacity
	refillRate time.Duration // Time between token replenishments
	lastRefill time.Time     // Last time tokens were added
	mu         sync.Mutex
}

/*
NewRateLimiter creates a bucket that starts full.

Example:

	limiter := NewRateLimiter(10, 100*time.Millisecond) // 10 submissions/second, burst 10
*/
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Limit consumes a token if one is available and reports whether the caller must hold off.
func (rl *RateLimiter) Limit() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens > 0 {
		rl.tokens--
		return false
	}
	return true
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for rl.Limit() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rl.refillRate):
		}
	}
	return nil
}

// refill adds tokens for whole elapsed periods. The caller holds mu.
func (rl *RateLimiter) refill() {
	elapsed := time.Since(rl.lastRefill)
	if rl.refillRate <= 0 {
		rl.tokens = rl.maxTokens
		return
	}

	periods := int(elapsed / rl.refillRate)
	if periods > 0 {
		rl.tokens = min(rl.maxTokens, rl.tokens+periods)
		rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.refillRate)
	}
}

// ThrottledBackend gates every submission to Backend through a RateLimiter.
type ThrottledBackend struct {
	Backend Backend
	Limiter *RateLimiter
}

/*
NewThrottledBackend allows perSecond submissions per second with a burst of
the same size. A non-positive rate returns b unchanged.
*/
func NewThrottledBackend(b Backend, perSecond int) Backend {
	if perSecond <= 0 {
		return b
	}
	return &ThrottledBackend{
		Backend: b,
		Limiter: NewRateLimiter(perSecond, time.Second/time.Duration(perSecond)),
	}
}

func (t *ThrottledBackend) Execute(ctx context.Context, c *Circuit, shots int) (Counts, error) {
	if err := t.Limiter.Wait(ctx); err != nil {
		return nil, &BackendError{Err: err}
	}
	return t.Backend.Execute(ctx, c, shots)
}
