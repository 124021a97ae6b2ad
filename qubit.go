package qec

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

/*
Qubit identifies one of the 17 physical qubits of the Shor circuit.
The role of every index is fixed for the lifetime of a circuit: 0-8 hold data,
9-14 collect the bit-flip parities (two per block) and 15-16 collect the two
phase-flip parities.
*/
type Qubit int

const (
	NumQubits     = 17
	NumDataQubits = 9

	// AnyQubit asks the error model to pick a data qubit at random.
	AnyQubit Qubit = -1
)

var (
	// Blocks partitions the data qubits into three ordered triples.
	Blocks = [3][3]Qubit{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}}

	// BlockLeaders are the first member of each block, the only qubits that
	// carry the logical state between encoding levels.
	BlockLeaders = [3]Qubit{0, 3, 6}

	ZAncillas = [3][2]Qubit{{9, 10}, {11, 12}, {13, 14}}
	XAncillas = [2]Qubit{15, 16}
)

// IsData reports whether q is one of the nine code qubits.
func (q Qubit) IsData() bool {
	return q >= 0 && q < NumDataQubits
}

/*
ParseQubit parses a data qubit index, rejecting anything outside [0,8].
Values are never clamped.
*/
func ParseQubit(s string) (Qubit, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(ErrConfig, "qubit %q is not an integer", s)
	}

	q := Qubit(n)
	if !q.IsData() {
		return 0, errors.Wrapf(ErrConfig, "qubit %d outside [0,%d]", n, NumDataQubits-1)
	}

	return q, nil
}
