package qec

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

/*
Metrics tracks the pool and the trials it runs. The plain fields feed
ExportMetrics for reports; the collectors live on a private registry so
several pools (and tests) never collide on registration.
*/
type Metrics struct {
	mu                sync.RWMutex
	WorkerCount       int
	JobCount          int64
	FailedJobs        int64
	Retries           int64
	TotalJobTime      time.Duration
	AverageJobLatency time.Duration

	registry     *prometheus.Registry
	jobsTotal    *prometheus.CounterVec
	jobDuration  prometheus.Histogram
	retriesTotal prometheus.Counter
	trialsTotal  *prometheus.CounterVec
	breakerState *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		jobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qec",
			Name:      "jobs_total",
			Help:      "Jobs completed by the worker pool, by status.",
		}, []string{"status"}),
		jobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qec",
			Name:      "job_duration_seconds",
			Help:      "Wall time from scheduling to completion of a job.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		retriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "qec",
			Name:      "job_retries_total",
			Help:      "Backend failures that were retried.",
		}),
		trialsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qec",
			Name:      "trials_total",
			Help:      "Decoded trials, by whether the logical bit survived.",
		}, []string{"result"}),
		breakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "qec",
			Name:      "circuit_breaker_state",
			Help:      "0 closed, 1 open, 2 half-open.",
		}, []string{"circuit"}),
	}
}

// Registry exposes the collectors, e.g. for an HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) recordJobExecution(startTime time.Time, success bool) {
	duration := time.Since(startTime)

	m.mu.Lock()
	m.TotalJobTime += duration
	m.JobCount++
	if !success {
		m.FailedJobs++
	}
	m.AverageJobLatency = m.TotalJobTime / time.Duration(m.JobCount)
	m.mu.Unlock()

	status := "ok"
	if !success {
		status = "error"
	}
	m.jobsTotal.WithLabelValues(status).Inc()
	m.jobDuration.Observe(duration.Seconds())
}

func (m *Metrics) recordRetry() {
	m.mu.Lock()
	m.Retries++
	m.mu.Unlock()
	m.retriesTotal.Inc()
}

func (m *Metrics) recordWorker() {
	m.mu.Lock()
	m.WorkerCount++
	m.mu.Unlock()
}

func (m *Metrics) recordBreaker(circuitID string, state CircuitState) {
	m.breakerState.WithLabelValues(circuitID).Set(float64(state))
}

// RecordTrial counts a decoded trial as matching or not.
func (m *Metrics) RecordTrial(matched bool) {
	result := "match"
	if !matched {
		result = "mismatch"
	}
	m.trialsTotal.WithLabelValues(result).Inc()
}

// ExportMetrics returns a snapshot suitable for structured output.
func (m *Metrics) ExportMetrics() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]any{
		"worker_count": m.WorkerCount,
		"job_count":    m.JobCount,
		"failed_jobs":  m.FailedJobs,
		"retries":      m.Retries,
		"avg_latency":  m.AverageJobLatency.Milliseconds(),
	}
}
