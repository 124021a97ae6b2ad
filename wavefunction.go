// wavefunction.go
package qec

import (
	"math"
	"math/rand/v2"
)

const (
	// amplitudes below this squared magnitude are treated as zero.
	pruneThreshold = 1e-12

	// outcome probabilities this close to 0 or 1 are taken as certain.
	certainty = 1e-9
)

/*
WaveFunction is a sparse state vector over up to 32 qubits. Only non-zero
basis amplitudes are stored, which keeps stabilizer-like states such as the
Shor codeword small even though the register spans 17 qubits.
*/
type WaveFunction struct {
	numQubits  int
	amplitudes map[uint32]complex128
}

// NewWaveFunction returns |0...0> over numQubits qubits.
func NewWaveFunction(numQubits int) *WaveFunction {
	return &WaveFunction{
		numQubits:  numQubits,
		amplitudes: map[uint32]complex128{0: 1},
	}
}

// Support is the number of basis states with non-zero amplitude.
func (wf *WaveFunction) Support() int {
	return len(wf.amplitudes)
}

// Amplitude returns the amplitude of a basis state.
func (wf *WaveFunction) Amplitude(basis uint32) complex128 {
	return wf.amplitudes[basis]
}

// permute maps every basis state through f, which must be a bijection.
func (wf *WaveFunction) permute(f func(uint32) uint32) {
	next := make(map[uint32]complex128, len(wf.amplitudes))
	for basis, amp := range wf.amplitudes {
		next[f(basis)] = amp
	}
	wf.amplitudes = next
}

func (wf *WaveFunction) ApplyX(q Qubit) {
	bit := uint32(1) << q
	wf.permute(func(b uint32) uint32 { return b ^ bit })
}

// ApplyY uses Y|0> = i|1> and Y|1> = -i|0>.
func (wf *WaveFunction) ApplyY(q Qubit) {
	bit := uint32(1) << q
	next := make(map[uint32]complex128, len(wf.amplitudes))
	for basis, amp := range wf.amplitudes {
		if basis&bit == 0 {
			next[basis|bit] = amp * 1i
		} else {
			next[basis&^bit] = amp * -1i
		}
	}
	wf.amplitudes = next
}

func (wf *WaveFunction) ApplyZ(q Qubit) {
	bit := uint32(1) << q
	for basis, amp := range wf.amplitudes {
		if basis&bit != 0 {
			wf.amplitudes[basis] = -amp
		}
	}
}

/*
ApplyHadamard maps each basis state onto both branches of q and drops the
branches that cancel.
*/
func (wf *WaveFunction) ApplyHadamard(q Qubit) {
	bit := uint32(1) << q
	s := complex(1/math.Sqrt2, 0)

	next := make(map[uint32]complex128, 2*len(wf.amplitudes))
	for basis, amp := range wf.amplitudes {
		lo, hi := basis&^bit, basis|bit
		next[lo] += amp * s
		if basis&bit == 0 {
			next[hi] += amp * s
		} else {
			next[hi] -= amp * s
		}
	}

	wf.amplitudes = next
	wf.prune()
}

func (wf *WaveFunction) ApplyCX(ctrl, target Qubit) {
	c, t := uint32(1)<<ctrl, uint32(1)<<target
	wf.permute(func(b uint32) uint32 {
		if b&c != 0 {
			return b ^ t
		}
		return b
	})
}

func (wf *WaveFunction) ApplyCCX(c1, c2, target Qubit) {
	mask, t := uint32(1)<<c1|uint32(1)<<c2, uint32(1)<<target
	wf.permute(func(b uint32) uint32 {
		if b&mask == mask {
			return b ^ t
		}
		return b
	})
}

// Probability returns the chance that measuring q yields 1.
func (wf *WaveFunction) Probability(q Qubit) float64 {
	bit := uint32(1) << q

	var p1, total float64
	for basis, amp := range wf.amplitudes {
		p := real(amp)*real(amp) + imag(amp)*imag(amp)
		total += p
		if basis&bit != 0 {
			p1 += p
		}
	}

	if total == 0 {
		return 0
	}
	return p1 / total
}

/*
Collapse measures q in the computational basis, projects the state onto the
observed branch and renormalises it. The generator is supplied by the caller.
*/
func (wf *WaveFunction) Collapse(q Qubit, rng *rand.Rand) uint8 {
	p1 := wf.Probability(q)

	var outcome uint8
	switch {
	case p1 < certainty:
	case p1 > 1-certainty:
		outcome = 1
	case rng.Float64() < p1:
		outcome = 1
	}

	bit := uint32(1) << q
	var norm float64
	for basis, amp := range wf.amplitudes {
		if (basis&bit != 0) != (outcome == 1) {
			delete(wf.amplitudes, basis)
			continue
		}
		norm += real(amp)*real(amp) + imag(amp)*imag(amp)
	}

	if norm > 0 {
		scale := complex(1/math.Sqrt(norm), 0)
		for basis, amp := range wf.amplitudes {
			wf.amplitudes[basis] = amp * scale
		}
	}

	return outcome
}

// Reset measures q and flips it back to |0> if needed.
func (wf *WaveFunction) Reset(q Qubit, rng *rand.Rand) {
	if wf.Collapse(q, rng) == 1 {
		wf.ApplyX(q)
	}
}

func (wf *WaveFunction) prune() {
	for basis, amp := range wf.amplitudes {
		if real(amp)*real(amp)+imag(amp)*imag(amp) < pruneThreshold {
			delete(wf.amplitudes, basis)
		}
	}
}
