package qec

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/theapemachine/errnie"
)

// Worker processes jobs
type Worker struct {
	id   int
	pool *Q
}

func (w *Worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.pool.jobs:
			result, err := w.processJob(ctx, job)
			w.pool.space.Store(job.ID, result, err, job.TTL)
		}
	}
}

func (w *Worker) processJob(ctx context.Context, job Job) (any, error) {
	breaker := w.pool.getCircuitBreaker(job)
	if breaker != nil && !breaker.Allow() {
		w.pool.metrics.recordJobExecution(job.StartTime, false)
		return nil, errors.Wrapf(ErrBackend, "circuit breaker %s is open", job.CircuitID)
	}

	result, err := w.executeWithRetries(ctx, &job, breaker)
	w.pool.metrics.recordJobExecution(job.StartTime, err == nil)

	if err != nil {
		return nil, err
	}

	if breaker != nil {
		breaker.RecordSuccess()
		w.pool.metrics.recordBreaker(job.CircuitID, breaker.State())
	}

	return result, nil
}

/*
executeWithRetries runs the job until it succeeds, the policy refuses the
error, or the attempts run out. Only backend failures count against the
breaker; a configuration error says nothing about backend health.
*/
func (w *Worker) executeWithRetries(ctx context.Context, job *Job, breaker *CircuitBreaker) (any, error) {
	policy := job.RetryPolicy
	attempts := 0

	for job.Attempt = 0; job.Attempt < policy.MaxAttempts; job.Attempt++ {
		if job.Attempt > 0 {
			delay := policy.Strategy.NextDelay(job.Attempt)
			errnie.Info("job %s retrying attempt %d after %v", job.ID, job.Attempt+1, delay)
			w.pool.metrics.recordRetry()

			select {
			case <-ctx.Done():
				return nil, errors.Wrapf(ctx.Err(), "job %s", job.ID)
			case <-time.After(delay):
			}
		}

		attempts++
		result, err := job.Fn(ctx)
		if err == nil {
			return result, nil
		}

		job.LastError = err
		errnie.Info("job %s attempt %d failed: %v", job.ID, job.Attempt+1, err)

		if breaker != nil && IsRetryable(err) {
			breaker.RecordFailure()
			w.pool.metrics.recordBreaker(job.CircuitID, breaker.State())
		}

		if !policy.allows(err) {
			break
		}

		if breaker != nil && !breaker.Allow() {
			break
		}
	}

	return nil, errors.Wrapf(job.LastError, "job %s failed after %d attempts", job.ID, attempts)
}
