package qec

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
)

/*
ReadoutNoise models a faulty classical readout of the final logical bit.

The model is asymmetric: a 0 is reported as 1 with probability P, a 1 is
always reported faithfully. That is the behaviour the success-rate figures
were produced with, so it is kept as is.

TODO: a symmetric variant (1 -> 0 with the same P) would be the textbook
measurement-error model; add it as a separate policy rather than changing
this one.
*/
type ReadoutNoise struct {
	P float64
}

func (n ReadoutNoise) Validate() error {
	if math.IsNaN(n.P) || n.P < 0 || n.P > 1 {
		return errors.Wrapf(ErrConfig, "noise probability %v outside [0,1]", n.P)
	}
	return nil
}

// Flip applies one independent noise draw to a single reported bit.
func (n ReadoutNoise) Flip(bit LogicalState, rng *rand.Rand) LogicalState {
	if bit == Zero && rng.Float64() < n.P {
		return One
	}
	return bit
}

/*
ApplyCounts draws noise once per shot and returns counts keyed by the noisy
logical bit alone ("0" or "1").
*/
func (n ReadoutNoise) ApplyCounts(counts Counts, rng *rand.Rand) (Counts, error) {
	noisy := make(Counts, 2)
	for _, key := range counts.Keys() {
		bit, err := ResultBit(key)
		if err != nil {
			return nil, err
		}
		for i := 0; i < counts[key]; i++ {
			noisy[n.Flip(bit, rng).String()]++
		}
	}
	return noisy, nil
}

// Trial is one encoded bit plus the faults injected into it.
type Trial struct {
	Input  LogicalState
	Faults []PauliError
}

// Succeeded reports whether a decision recovered the trial's input.
func Succeeded(decision LogicalState, trial Trial) bool {
	return decision == trial.Input
}

/*
Decider sits above the builder and the backend. It never changes the circuit;
it only samples it repeatedly and combines noisy readouts.
*/
type Decider struct {
	Backend Backend
	Noise   ReadoutNoise
	Shots   int
	Options []BuildOption
}

// SingleRound runs the trial once and reports the noisy bit.
func (d *Decider) SingleRound(ctx context.Context, trial Trial, rng *rand.Rand) (LogicalState, error) {
	return d.round(ctx, trial, rng)
}

/*
MultiRound runs the same trial rounds times, each with a fresh circuit and a
fresh noise draw, and returns the majority bit.
*/
func (d *Decider) MultiRound(ctx context.Context, trial Trial, rounds int, rng *rand.Rand) (LogicalState, error) {
	if rounds < 1 {
		return Zero, errors.Wrapf(ErrConfig, "rounds must be positive, got %d", rounds)
	}

	bits := make([]LogicalState, 0, rounds)
	for r := 0; r < rounds; r++ {
		bit, err := d.round(ctx, trial, rng)
		if err != nil {
			return Zero, errors.Wrapf(err, "round %d", r)
		}
		bits = append(bits, bit)
	}

	return Majority(bits), nil
}

func (d *Decider) round(ctx context.Context, trial Trial, rng *rand.Rand) (LogicalState, error) {
	shots := d.Shots
	if shots == 0 {
		shots = 1
	}

	counts, err := Execute(ctx, d.Backend, Build(trial.Input, trial.Faults, d.Options...), shots)
	if err != nil {
		return Zero, err
	}

	noisy, err := d.Noise.ApplyCounts(counts, rng)
	if err != nil {
		return Zero, err
	}

	key, _ := noisy.MostFrequent()
	return ParseLogicalState(key)
}

/*
Majority returns the most frequent bit. On a tie the bit seen in the earliest
round wins. An empty slice yields Zero.
*/
func Majority(bits []LogicalState) LogicalState {
	if len(bits) == 0 {
		return Zero
	}

	ones := 0
	for _, b := range bits {
		if b == One {
			ones++
		}
	}

	switch zeros := len(bits) - ones; {
	case ones > zeros:
		return One
	case zeros > ones:
		return Zero
	default:
		return bits[0]
	}
}
