package qec

import "math/rand/v2"

/*
ErrorModel chooses the faults injected into one trial. It never touches the
circuit; the builder receives the returned slice. The generator is always
passed in so trials stay reproducible when run in parallel.
*/
type ErrorModel interface {
	Errors(trial int, rng *rand.Rand) []PauliError
}

// NoErrors injects nothing.
type NoErrors struct{}

func (NoErrors) Errors(int, *rand.Rand) []PauliError {
	return nil
}

// SequentialSweep walks the 27 single faults by trial index.
type SequentialSweep struct{}

func (SequentialSweep) Errors(trial int, _ *rand.Rand) []PauliError {
	return []PauliError{SweepError(trial)}
}

/*
Explicit injects a caller-chosen fault. AnyPauli draws X, Z or Y with
probability 1/3 each and AnyQubit draws one of the nine data qubits.
*/
type Explicit struct {
	Kind   Pauli
	Target Qubit
}

func (e Explicit) Errors(_ int, rng *rand.Rand) []PauliError {
	fault := PauliError{Kind: e.Kind, Target: e.Target}

	if fault.Kind == AnyPauli {
		fault.Kind = sweepOrder[rng.IntN(len(sweepOrder))]
	}
	if fault.Target == AnyQubit {
		fault.Target = Qubit(rng.IntN(NumDataQubits))
	}

	return []PauliError{fault}
}

/*
PairedSweep extends the sequential sweep with a second fault decoded from
(trial / 27) mod 27, covering all 729 ordered pairs over trials 0..728.
*/
type PairedSweep struct{}

func (PairedSweep) Errors(trial int, rng *rand.Rand) []PauliError {
	_, second := DecodePair(trial)
	return append(SequentialSweep{}.Errors(trial, rng), second)
}
