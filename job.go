package qec

import (
	"context"
	"time"
)

// Job is one unit of work on the pool, normally a single trial.
type Job struct {
	ID          string
	Fn          func(ctx context.Context) (any, error)
	RetryPolicy *RetryPolicy
	CircuitID   string
	Breaker     *CircuitBreakerConfig
	TTL         time.Duration
	Attempt     int
	LastError   error
	StartTime   time.Time
}

// JobOption is a function type for configuring jobs
type JobOption func(*Job)

// CircuitBreakerConfig struct
type CircuitBreakerConfig struct {
	MaxFailures  int
	ResetTimeout time.Duration
	HalfOpenMax  int
}

// WithTTL configures how long a job's result stays in the result space.
func WithTTL(ttl time.Duration) JobOption {
	return func(j *Job) {
		j.TTL = ttl
	}
}
