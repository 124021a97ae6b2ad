package qec

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/theapemachine/errnie"
)

/*
Q is the worker pool the driver runs trials on. Jobs go in through Schedule,
results come back through the QuantumSpace keyed by job ID, so callers can
collect them in any order regardless of which worker finished first.
*/
type Q struct {
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	jobs       chan Job
	space      *QuantumSpace
	metrics    *Metrics
	breakers   map[string]*CircuitBreaker
	breakersMu sync.Mutex
	config     *Config
	closeOnce  sync.Once
}

// NewQ starts a pool of workers. A nil config uses NewConfig defaults and a
// nil metrics gets a fresh private registry.
func NewQ(ctx context.Context, workers int, config *Config, metrics *Metrics) *Q {
	if config == nil {
		config = NewConfig()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	q := &Q{
		ctx:      ctx,
		cancel:   cancel,
		jobs:     make(chan Job, workers*10),
		space:    newQuantumSpace(time.Second),
		metrics:  metrics,
		breakers: make(map[string]*CircuitBreaker),
		config:   config,
	}

	for i := 0; i < workers; i++ {
		q.startWorker(i)
	}

	errnie.Info("started pool with %d workers", workers)
	return q
}

/*
Schedule queues fn under id and returns the channel its result will arrive
on. The channel always yields exactly one value: the result, or the reason
the job never ran.
*/
func (q *Q) Schedule(id string, fn func(ctx context.Context) (any, error), opts ...JobOption) chan QuantumValue {
	job := Job{
		ID:          id,
		Fn:          fn,
		RetryPolicy: q.defaultRetryPolicy(),
		StartTime:   time.Now(),
	}

	for _, opt := range opts {
		opt(&job)
	}

	if err := q.ctx.Err(); err != nil {
		return failed(errors.Wrapf(err, "scheduling job %s", id))
	}

	if job.RetryPolicy == nil || job.RetryPolicy.MaxAttempts < 1 {
		return failed(errors.Wrapf(ErrConfig, "job %s needs at least one attempt", id))
	}
	if job.RetryPolicy.Strategy == nil {
		job.RetryPolicy.Strategy = &ExponentialBackoff{Initial: q.config.RetryBackoff}
	}

	if breaker := q.getCircuitBreaker(job); breaker != nil && !breaker.Allow() {
		return failed(errors.Wrapf(ErrBackend, "circuit breaker %s is open", job.CircuitID))
	}

	ctx, cancel := context.WithTimeout(q.ctx, q.getSchedulingTimeout())
	defer cancel()

	select {
	case q.jobs <- job:
		return q.space.Await(id)
	case <-ctx.Done():
		return failed(errors.Wrapf(ctx.Err(), "scheduling job %s", id))
	}
}

// Metrics exposes the pool's counters.
func (q *Q) Metrics() *Metrics {
	return q.metrics
}

// Close stops the workers and fails whatever was still queued.
func (q *Q) Close() {
	if q == nil {
		return
	}

	q.closeOnce.Do(func() {
		q.cancel()
		q.wg.Wait()

		for drained := false; !drained; {
			select {
			case job := <-q.jobs:
				q.space.Store(job.ID, nil, errors.Wrapf(context.Canceled, "job %s", job.ID), job.TTL)
			default:
				drained = true
			}
		}

		q.space.Close()
		errnie.Info("pool closed")
	})
}

func (q *Q) startWorker(id int) {
	worker := &Worker{id: id, pool: q}
	q.metrics.recordWorker()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		worker.run(q.ctx)
	}()
}

func (q *Q) defaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: q.config.RetryAttempts,
		Strategy:    &ExponentialBackoff{Initial: q.config.RetryBackoff},
	}
}

func (q *Q) getCircuitBreaker(job Job) *CircuitBreaker {
	if job.CircuitID == "" || job.Breaker == nil {
		return nil
	}

	q.breakersMu.Lock()
	defer q.breakersMu.Unlock()

	breaker, exists := q.breakers[job.CircuitID]
	if !exists {
		breaker = NewCircuitBreaker(job.Breaker.MaxFailures, job.Breaker.ResetTimeout, job.Breaker.HalfOpenMax)
		q.breakers[job.CircuitID] = breaker
	}

	return breaker
}

func (q *Q) getSchedulingTimeout() time.Duration {
	if q.config.SchedulingTimeout > 0 {
		return q.config.SchedulingTimeout
	}
	return 5 * time.Second
}

func failed(err error) chan QuantumValue {
	ch := make(chan QuantumValue, 1)
	ch <- QuantumValue{Error: err, CreatedAt: time.Now()}
	close(ch)
	return ch
}
