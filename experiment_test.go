package qec

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestRunner(workers int, cfg *Config) (*Runner, *Q) {
	q := NewQ(context.Background(), workers, cfg, nil)
	return NewRunner(q, cfg, SimulatorFactory(cfg.Seed)), q
}

func TestRunnerSweep(t *testing.T) {
	Convey("Given a runner over the simulator", t, func() {
		cfg := testConfig()
		r, q := newTestRunner(4, cfg)
		ctx := context.Background()

		Reset(func() {
			q.Close()
		})

		Convey("The sequential sweep corrects all 27 single faults", func() {
			summary, err := r.Sweep(ctx, SequentialSweep{}, SingleErrorCount)
			So(err, ShouldBeNil)
			So(summary.AllMatched(), ShouldBeTrue)
			So(summary.Trials, ShouldEqual, SingleErrorCount)
			So(summary.Histogram.Shots(), ShouldEqual, SingleErrorCount)
			So(testutil.ToFloat64(q.Metrics().trialsTotal.WithLabelValues("match")), ShouldEqual, SingleErrorCount)
		})

		Convey("The sweep wraps around past 27 trials", func() {
			cfg.InputState = 1
			summary, err := r.Sweep(ctx, SequentialSweep{}, 60)
			So(err, ShouldBeNil)
			So(summary.AllMatched(), ShouldBeTrue)

			for key := range summary.Histogram {
				So(key[0], ShouldEqual, byte('1'))
			}
		})

		Convey("Explicit faults are corrected too", func() {
			summary, err := r.Sweep(ctx, Explicit{Kind: AnyPauli, Target: AnyQubit}, 50)
			So(err, ShouldBeNil)
			So(summary.AllMatched(), ShouldBeTrue)
		})

		Convey("Invalid explicit faults fail as configuration errors", func() {
			_, err := r.Sweep(ctx, Explicit{Kind: PauliX, Target: 12}, 3)
			So(errors.Is(err, ErrConfig), ShouldBeTrue)
		})

		Convey("A non-positive trial count is rejected", func() {
			_, err := r.Sweep(ctx, SequentialSweep{}, 0)
			So(errors.Is(err, ErrConfig), ShouldBeTrue)
		})

		Convey("Circuit rebuilds a trial exactly", func() {
			cfg.InputState = 0
			c := r.Circuit(SequentialSweep{}, 4)
			counts, err := Execute(ctx, NewSeededSimulator(cfg.Seed, 4), c, 1)
			So(err, ShouldBeNil)
			So(counts, ShouldResemble, Counts{"0 00 00 11 00": 1})
		})
	})
}

func TestRunnerDeterminism(t *testing.T) {
	Convey("Given the same seed and different worker counts", t, func() {
		ctx := context.Background()

		run := func(workers int) *SweepSummary {
			r, q := newTestRunner(workers, testConfig())
			defer q.Close()

			summary, err := r.Sweep(ctx, Explicit{Kind: AnyPauli, Target: AnyQubit}, 40)
			So(err, ShouldBeNil)
			return summary
		}

		Convey("Sweeps produce identical histograms", func() {
			So(run(1).Histogram, ShouldResemble, run(8).Histogram)
		})
	})
}

func TestRunnerPairSweep(t *testing.T) {
	Convey("Given every ordered pair of faults", t, func() {
		cfg := testConfig()
		cfg.InputState = 0
		r, q := newTestRunner(8, cfg)
		defer q.Close()

		summary, err := r.PairSweep(context.Background())
		So(err, ShouldBeNil)

		Convey("Mismatches are reported, not raised", func() {
			So(summary.Trials, ShouldEqual, PairErrorCount)
			So(summary.AllMatched(), ShouldBeFalse)
			So(summary.Mismatches, ShouldHaveLength, 216)
			So(summary.Histogram.Shots(), ShouldEqual, PairErrorCount)

			for _, res := range summary.Mismatches {
				So(res.Faults, ShouldHaveLength, 2)
				So(res.Matched, ShouldBeFalse)
			}
		})
	})
}

func TestRunnerPhaseIsolation(t *testing.T) {
	Convey("Given Z faults without correction", t, func() {
		r, q := newTestRunner(3, testConfig())
		defer q.Close()

		results, err := r.PhaseIsolation(context.Background())
		So(err, ShouldBeNil)
		So(results, ShouldHaveLength, NumDataQubits)

		Convey("No bit-flip check ever fires", func() {
			for i, res := range results {
				So(res.Qubit, ShouldEqual, Qubit(i))
				So(res.Detected, ShouldBeFalse)
				So(res.Input, ShouldEqual, results[0].Input)
			}
		})
	})
}

func TestRunnerCompareMethods(t *testing.T) {
	Convey("Given the noise comparison", t, func() {
		r, q := newTestRunner(4, testConfig())
		ctx := context.Background()

		Reset(func() {
			q.Close()
		})

		Convey("Without readout noise both methods are perfect", func() {
			report, err := r.CompareMethods(ctx, 0, 3, 100)
			So(err, ShouldBeNil)
			So(report, ShouldResemble, NoiseReport{NumTrials: 100, P: 0, Rounds: 3, SingleRate: 1, MultiRate: 1})
		})

		Convey("Under noise the majority does at least as well", func() {
			report, err := r.CompareMethods(ctx, 0.3, 5, 500)
			So(err, ShouldBeNil)

			// A 1 is never misread, so a single round succeeds with 1 - p/2.
			So(report.SingleRate, ShouldAlmostEqual, 0.85, 0.06)
			So(report.MultiRate, ShouldBeGreaterThanOrEqualTo, report.SingleRate)
		})

		Convey("With three rounds the majority is no worse within sampling tolerance", func() {
			report, err := r.CompareMethods(ctx, 0.3, 3, 500)
			So(err, ShouldBeNil)
			So(report.Rounds, ShouldEqual, 3)

			// Expected rates are 0.85 and 0.892; 0.03 is about 1.5 standard errors.
			So(report.SingleRate, ShouldAlmostEqual, 0.85, 0.06)
			So(report.MultiRate, ShouldBeGreaterThanOrEqualTo, report.SingleRate-0.03)
		})

		Convey("Invalid parameters are configuration errors", func() {
			_, err := r.CompareMethods(ctx, 1.5, 3, 10)
			So(errors.Is(err, ErrConfig), ShouldBeTrue)

			_, err = r.CompareMethods(ctx, 0.1, 0, 10)
			So(errors.Is(err, ErrConfig), ShouldBeTrue)

			_, err = r.CompareMethods(ctx, 0.1, 3, 0)
			So(errors.Is(err, ErrConfig), ShouldBeTrue)
		})

		Convey("A plan runs both sweeps", func() {
			plan := &Plan{
				Trials: 20,
				Noise:  NoiseSweep{Rounds: 3, Probabilities: []float64{0, 0.5}},
				Rounds: RoundSweep{Probability: 0, Counts: []int{1, 3}},
			}

			noise, rounds, err := r.RunPlan(ctx, plan)
			So(err, ShouldBeNil)
			So(noise, ShouldHaveLength, 2)
			So(rounds, ShouldHaveLength, 2)
			So(noise[0].SingleRate, ShouldEqual, 1)
			So(rounds[1].Rounds, ShouldEqual, 3)
			So(rounds[1].MultiRate, ShouldEqual, 1)
		})
	})
}

type flakyBackend struct {
	Backend
	failures int
}

func (f *flakyBackend) Execute(ctx context.Context, c *Circuit, shots int) (Counts, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("transient")
	}
	return f.Backend.Execute(ctx, c, shots)
}

func TestRunnerRetriesBackendFailures(t *testing.T) {
	Convey("Given a backend that fails once per trial", t, func() {
		cfg := testConfig()
		q := NewQ(context.Background(), 2, cfg, nil)
		defer q.Close()

		// The factory is called once per attempt, so each attempt needs
		// its own view of how many failures remain for the trial.
		remaining := make([]int, SingleErrorCount)
		for i := range remaining {
			remaining[i] = 1
		}
		var mu sync.Mutex

		r := NewRunner(q, cfg, func(trial int) Backend {
			mu.Lock()
			fail := remaining[trial]
			remaining[trial] = 0
			mu.Unlock()
			return &flakyBackend{Backend: NewSeededSimulator(cfg.Seed, trial), failures: fail}
		})

		summary, err := r.Sweep(context.Background(), SequentialSweep{}, SingleErrorCount)

		Convey("The pool retries and every trial still succeeds", func() {
			So(err, ShouldBeNil)
			So(summary.AllMatched(), ShouldBeTrue)
			So(testutil.ToFloat64(q.Metrics().retriesTotal), ShouldEqual, SingleErrorCount)
		})
	})
}

// blockingBackend holds every submission until its context ends.
type blockingBackend struct {
	started chan struct{}
	active  *atomic.Int32
}

func (b blockingBackend) Execute(ctx context.Context, _ *Circuit, _ int) (Counts, error) {
	b.active.Add(1)
	defer b.active.Add(-1)

	select {
	case b.started <- struct{}{}:
	default:
	}

	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRunnerCancellation(t *testing.T) {
	Convey("Given trials stuck in the backend", t, func() {
		cfg := testConfig()
		q := NewQ(context.Background(), 2, cfg, nil)
		defer q.Close()

		var active atomic.Int32
		started := make(chan struct{}, 1)
		r := NewRunner(q, cfg, func(int) Backend {
			return blockingBackend{started: started, active: &active}
		})

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-started
			cancel()
		}()

		_, err := r.Sweep(ctx, SequentialSweep{}, 6)

		Convey("Cancelling the caller stops the running trials", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)

			deadline := time.Now().Add(2 * time.Second)
			for active.Load() > 0 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			So(active.Load(), ShouldEqual, 0)
		})
	})
}
