package qec

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/theapemachine/errnie"
)

// BackendFactory hands out the backend a single trial runs on.
type BackendFactory func(trial int) Backend

// SimulatorFactory gives every trial its own seeded simulator.
func SimulatorFactory(seed uint64) BackendFactory {
	return func(trial int) Backend {
		return NewSeededSimulator(seed, trial)
	}
}

const (
	backendCircuit = "backend"
	resultTTL      = time.Minute

	// trialStream keeps the per-trial generator apart from the simulator's.
	trialStream = 0x9e3779b97f4a7c15
)

/*
Runner drives experiments over the worker pool. Every trial is an
independent job with its own generator derived from the run seed and the
trial index, so a sweep produces the same results for any worker count.
*/
type Runner struct {
	pool     *Q
	config   *Config
	backends BackendFactory
}

/*
NewRunner wires a pool, a configuration and a backend source together. A
positive Config.RateLimit puts every trial's backend behind one shared token
bucket.
*/
func NewRunner(pool *Q, config *Config, backends BackendFactory) *Runner {
	if config.RateLimit > 0 {
		limiter := NewRateLimiter(config.RateLimit, time.Second/time.Duration(config.RateLimit))
		inner := backends
		backends = func(trial int) Backend {
			return &ThrottledBackend{Backend: inner(trial), Limiter: limiter}
		}
	}

	return &Runner{pool: pool, config: config, backends: backends}
}

// TrialResult is one executed trial.
type TrialResult struct {
	Index   int
	Input   LogicalState
	Faults  []PauliError
	Counts  Counts
	Matched bool
}

// SweepSummary aggregates a sweep. Only mismatching trials are kept.
type SweepSummary struct {
	Kind       string
	Trials     int
	Mismatches []TrialResult
	Histogram  Counts
}

func (s *SweepSummary) AllMatched() bool {
	return len(s.Mismatches) == 0
}

// IsolationResult is one phase-flip isolation trial.
type IsolationResult struct {
	Qubit    Qubit
	Input    LogicalState
	Counts   Counts
	Detected bool
}

// NoiseReport compares single-round and majority decisions at one noise level.
type NoiseReport struct {
	NumTrials  int     `json:"num_trials"`
	P          float64 `json:"measurement_error_probability"`
	Rounds     int     `json:"num_rounds"`
	SingleRate float64 `json:"single_round_success_rate"`
	MultiRate  float64 `json:"multi_round_success_rate"`
}

// Sweep runs trials under model and reports which ones lost the logical bit.
func (r *Runner) Sweep(ctx context.Context, model ErrorModel, trials int) (*SweepSummary, error) {
	return r.sweep(ctx, "sweep", model, trials)
}

// PairSweep injects every ordered pair of single faults. Mismatches are expected here.
func (r *Runner) PairSweep(ctx context.Context) (*SweepSummary, error) {
	return r.sweep(ctx, "pairs", PairedSweep{}, PairErrorCount)
}

func (r *Runner) sweep(ctx context.Context, kind string, model ErrorModel, trials int) (*SweepSummary, error) {
	if trials <= 0 {
		return nil, errors.Wrapf(ErrConfig, "trial count must be positive, got %d", trials)
	}

	values, err := r.scatter(ctx, kind, trials, func(ctx context.Context, trial int) (any, error) {
		input, faults := r.draw(model, trial)

		for _, fault := range faults {
			if err := fault.Validate(); err != nil {
				return nil, err
			}
		}

		counts, err := Execute(ctx, r.backends(trial), Build(input, faults, r.config.BuildOptions()...), r.config.Shots)
		if err != nil {
			return nil, err
		}

		matched, err := allDecodeTo(counts, input)
		if err != nil {
			return nil, err
		}

		return TrialResult{
			Index:   trial,
			Input:   input,
			Faults:  faults,
			Counts:  counts,
			Matched: matched,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	summary := &SweepSummary{Kind: kind, Trials: trials, Histogram: make(Counts)}
	for i, v := range values {
		res, ok := v.(TrialResult)
		if !ok {
			return nil, unexpectedResult(kind, i, v)
		}
		summary.Histogram.Merge(res.Counts)
		r.pool.Metrics().RecordTrial(res.Matched)

		if !res.Matched {
			summary.Mismatches = append(summary.Mismatches, res)
		}
	}

	errnie.Info("%s finished: %d of %d trials mismatched", kind, len(summary.Mismatches), trials)
	return summary, nil
}

/*
PhaseIsolation injects Z on each data qubit in turn, extracts syndromes
without correcting, and records whether any bit-flip check fired. All nine
trials share one input, drawn once when none is configured.
*/
func (r *Runner) PhaseIsolation(ctx context.Context) ([]IsolationResult, error) {
	input := r.config.Input(r.trialRNG(-1))

	values, err := r.scatter(ctx, "zcheck", NumDataQubits, func(ctx context.Context, trial int) (any, error) {
		q := Qubit(trial)
		c := Build(input, []PauliError{{Kind: PauliZ, Target: q}}, WithoutCorrection())

		counts, err := Execute(ctx, r.backends(trial), c, r.config.Shots)
		if err != nil {
			return nil, err
		}

		res := IsolationResult{Qubit: q, Input: input, Counts: counts}
		for _, key := range counts.Keys() {
			out, err := ParseOutcome(key)
			if err != nil {
				return nil, &BackendError{Err: err}
			}
			res.Detected = res.Detected || out.BitFlipsDetected()
		}

		return res, nil
	})
	if err != nil {
		return nil, err
	}

	results := make([]IsolationResult, len(values))
	for i, v := range values {
		res, ok := v.(IsolationResult)
		if !ok {
			return nil, unexpectedResult("zcheck", i, v)
		}
		results[i] = res
	}
	return results, nil
}

/*
CompareMethods evaluates the single-round and the majority decision on the
same trials. Each trial draws its input and one of the 27 single faults at
random.
*/
func (r *Runner) CompareMethods(ctx context.Context, p float64, rounds, trials int) (NoiseReport, error) {
	noise := ReadoutNoise{P: p}
	if err := noise.Validate(); err != nil {
		return NoiseReport{}, err
	}
	if rounds < 1 {
		return NoiseReport{}, errors.Wrapf(ErrConfig, "rounds must be positive, got %d", rounds)
	}
	if trials <= 0 {
		return NoiseReport{}, errors.Wrapf(ErrConfig, "trial count must be positive, got %d", trials)
	}

	values, err := r.scatter(ctx, "noisy", trials, func(ctx context.Context, trial int) (any, error) {
		rng := r.trialRNG(trial)
		t := Trial{
			Input:  r.config.Input(rng),
			Faults: []PauliError{SweepError(rng.IntN(SingleErrorCount))},
		}

		d := &Decider{
			Backend: r.backends(trial),
			Noise:   noise,
			Shots:   r.config.Shots,
			Options: r.config.BuildOptions(),
		}

		single, err := d.SingleRound(ctx, t, rng)
		if err != nil {
			return nil, err
		}
		multi, err := d.MultiRound(ctx, t, rounds, rng)
		if err != nil {
			return nil, err
		}

		return [2]bool{Succeeded(single, t), Succeeded(multi, t)}, nil
	})
	if err != nil {
		return NoiseReport{}, err
	}

	var singleOK, multiOK int
	for i, v := range values {
		ok, valid := v.([2]bool)
		if !valid {
			return NoiseReport{}, unexpectedResult("noisy", i, v)
		}
		if ok[0] {
			singleOK++
		}
		if ok[1] {
			multiOK++
		}
		r.pool.Metrics().RecordTrial(ok[1])
	}

	return NoiseReport{
		NumTrials:  trials,
		P:          p,
		Rounds:     rounds,
		SingleRate: float64(singleOK) / float64(trials),
		MultiRate:  float64(multiOK) / float64(trials),
	}, nil
}

// SweepNoise runs CompareMethods at each probability with a fixed round count.
func (r *Runner) SweepNoise(ctx context.Context, trials, rounds int, probabilities []float64) ([]NoiseReport, error) {
	reports := make([]NoiseReport, 0, len(probabilities))
	for _, p := range probabilities {
		report, err := r.CompareMethods(ctx, p, rounds, trials)
		if err != nil {
			return nil, errors.Wrapf(err, "p=%.2f", p)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// SweepRounds runs CompareMethods at each round count with a fixed probability.
func (r *Runner) SweepRounds(ctx context.Context, trials int, p float64, counts []int) ([]NoiseReport, error) {
	reports := make([]NoiseReport, 0, len(counts))
	for _, rounds := range counts {
		report, err := r.CompareMethods(ctx, p, rounds, trials)
		if err != nil {
			return nil, errors.Wrapf(err, "rounds=%d", rounds)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// RunPlan runs both sweeps of a plan.
func (r *Runner) RunPlan(ctx context.Context, plan *Plan) (noise, rounds []NoiseReport, err error) {
	if err = plan.Validate(); err != nil {
		return nil, nil, err
	}

	if noise, err = r.SweepNoise(ctx, plan.Trials, plan.Noise.Rounds, plan.Noise.Probabilities); err != nil {
		return nil, nil, err
	}
	if rounds, err = r.SweepRounds(ctx, plan.Trials, plan.Rounds.Probability, plan.Rounds.Counts); err != nil {
		return nil, nil, err
	}

	return noise, rounds, nil
}

type trialFunc func(ctx context.Context, trial int) (any, error)

/*
scatter schedules one job per trial and gathers the results in trial order.
The first failed trial aborts the gather; results of jobs still running
expire from the result space on their own.
*/
func (r *Runner) scatter(ctx context.Context, kind string, trials int, fn trialFunc) ([]any, error) {
	runID, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "generating run id")
	}

	errnie.Info("%s run %s: scheduling %d trials", kind, runID, trials)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pending := make(chan chan QuantumValue, trials)
	go func() {
		defer close(pending)

		for i := 0; i < trials; i++ {
			if ctx.Err() != nil {
				return
			}

			trial := i
			pending <- r.pool.Schedule(
				fmt.Sprintf("%s/%s/%d", kind, runID, trial),
				func(jobCtx context.Context) (any, error) {
					// Abandoned runs stop their trials, queued or running.
					if err := ctx.Err(); err != nil {
						return nil, errors.Wrapf(err, "%s run %s trial %d", kind, runID, trial)
					}

					trialCtx, cancelTrial := context.WithCancel(jobCtx)
					defer cancelTrial()
					stop := context.AfterFunc(ctx, cancelTrial)
					defer stop()

					return fn(trialCtx, trial)
				},
				WithCircuitBreaker(backendCircuit, 5, 30*time.Second),
				WithTTL(resultTTL),
			)
		}
	}()

	results := make([]any, 0, trials)
	for ch := range pending {
		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "%s run %s", kind, runID)
		case qv := <-ch:
			if qv.Error != nil {
				return nil, qv.Error
			}
			results = append(results, qv.Value)
		}
	}

	if len(results) != trials {
		return nil, errors.Wrapf(context.Canceled, "%s run %s stopped after %d of %d trials", kind, runID, len(results), trials)
	}

	return results, nil
}

/*
Circuit rebuilds the circuit a sweep under model runs for trial, with the
same input and faults.
*/
func (r *Runner) Circuit(model ErrorModel, trial int) *Circuit {
	input, faults := r.draw(model, trial)
	return Build(input, faults, r.config.BuildOptions()...)
}

func (r *Runner) draw(model ErrorModel, trial int) (LogicalState, []PauliError) {
	rng := r.trialRNG(trial)
	return r.config.Input(rng), model.Errors(trial, rng)
}

func (r *Runner) trialRNG(trial int) *rand.Rand {
	return rand.New(rand.NewPCG(r.config.Seed^trialStream, uint64(trial)))
}

func unexpectedResult(kind string, trial int, v any) error {
	return errors.Errorf("%s trial %d returned %T", kind, trial, v)
}

// allDecodeTo reports whether every observed shot decoded to input.
func allDecodeTo(counts Counts, input LogicalState) (bool, error) {
	for key := range counts {
		bit, err := ResultBit(key)
		if err != nil {
			return false, &BackendError{Err: err}
		}
		if bit != input {
			return false, nil
		}
	}
	return true, nil
}
