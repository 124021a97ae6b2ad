package qec

import (
	"math"
	"time"
)

/*
RetryPolicy defines how the driver re-runs a failed trial. The core never
retries on its own; only failures IsRetryable accepts get another attempt.
*/
type RetryPolicy struct {
	MaxAttempts int
	Strategy    RetryStrategy
}

// RetryStrategy defines the interface for retry behavior
type RetryStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff implements RetryStrategy
type ExponentialBackoff struct {
	Initial time.Duration
}

func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	return eb.Initial * time.Duration(math.Pow(2, float64(attempt-1)))
}

// allows reports whether err may be retried under this policy.
func (rp *RetryPolicy) allows(err error) bool {
	return IsRetryable(err)
}

// WithCircuitBreaker routes a job through the named breaker.
func WithCircuitBreaker(id string, maxFailures int, resetTimeout time.Duration) JobOption {
	return func(j *Job) {
		j.CircuitID = id
		j.Breaker = &CircuitBreakerConfig{
			MaxFailures:  maxFailures,
			ResetTimeout: resetTimeout,
			HalfOpenMax:  1,
		}
	}
}

// WithRetry configures retry behavior for a job
func WithRetry(attempts int, strategy RetryStrategy) JobOption {
	return func(j *Job) {
		j.RetryPolicy = &RetryPolicy{
			MaxAttempts: attempts,
			Strategy:    strategy,
		}
	}
}
