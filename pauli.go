package qec

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Pauli is the kind of a single-qubit fault.
type Pauli int

const (
	// AnyPauli asks the error model to draw a kind uniformly at random.
	AnyPauli Pauli = iota
	PauliX
	PauliZ
	PauliY
)

const (
	// SingleErrorCount is the number of distinct single-qubit single-kind faults.
	SingleErrorCount = NumDataQubits * 3

	// PairErrorCount is the number of ordered pairs of single faults.
	PairErrorCount = SingleErrorCount * SingleErrorCount
)

// sweepOrder is the kind order used by the sequential sweep: X on 0-8, Z on 0-8, then Y.
var sweepOrder = [3]Pauli{PauliX, PauliZ, PauliY}

func (p Pauli) String() string {
	switch p {
	case PauliX:
		return "X"
	case PauliZ:
		return "Z"
	case PauliY:
		return "Y"
	default:
		return "?"
	}
}

/*
ParsePauli accepts x, y or z in either case. An empty string yields AnyPauli
so callers can leave the kind unspecified.
*/
func ParsePauli(s string) (Pauli, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return AnyPauli, nil
	case "x":
		return PauliX, nil
	case "z":
		return PauliZ, nil
	case "y":
		return PauliY, nil
	}

	return AnyPauli, errors.Wrapf(ErrConfig, "unrecognized error kind %q", s)
}

// PauliError is one injected fault.
type PauliError struct {
	Kind   Pauli
	Target Qubit
}

func (e PauliError) String() string {
	return fmt.Sprintf("%s%d", e.Kind, e.Target)
}

// Validate rejects faults the builder cannot place.
func (e PauliError) Validate() error {
	if e.Kind < PauliX || e.Kind > PauliY {
		return errors.Wrapf(ErrConfig, "pauli kind %d", int(e.Kind))
	}
	if !e.Target.IsData() {
		return errors.Wrapf(ErrConfig, "error target %d is not a data qubit", int(e.Target))
	}
	return nil
}

/*
SweepError maps an index to one of the 27 single faults: 0-8 are X on that
qubit, 9-17 are Z and 18-26 are Y. Indices wrap modulo 27.
*/
func SweepError(index int) PauliError {
	i := index % SingleErrorCount
	if i < 0 {
		i += SingleErrorCount
	}

	return PauliError{
		Kind:   sweepOrder[i/NumDataQubits],
		Target: Qubit(i % NumDataQubits),
	}
}

// DecodePair splits a paired-sweep index into its two faults.
func DecodePair(index int) (first, second PauliError) {
	return SweepError(index), SweepError(index / SingleErrorCount)
}
