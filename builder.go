package qec

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Register names, in declaration order.
const (
	RegisterZPrefix = "cr_z"
	RegisterX       = "cr_x"
	RegisterResult  = "logical_result"
)

// LogicalState is the value of the encoded bit.
type LogicalState uint8

const (
	Zero LogicalState = 0
	One  LogicalState = 1
)

func (s LogicalState) String() string {
	if s == One {
		return "1"
	}
	return "0"
}

// ParseLogicalState accepts "0" or "1".
func ParseLogicalState(s string) (LogicalState, error) {
	switch strings.TrimSpace(s) {
	case "0":
		return Zero, nil
	case "1":
		return One, nil
	}
	return Zero, errors.Wrapf(ErrConfig, "input state %q must be 0 or 1", s)
}

type buildConfig struct {
	syndrome     bool
	correction   bool
	ancillaReset bool
}

// BuildOption adjusts which stages Build emits.
type BuildOption func(*buildConfig)

// WithoutSyndrome drops extraction and correction, leaving encode then decode.
func WithoutSyndrome() BuildOption {
	return func(cfg *buildConfig) {
		cfg.syndrome = false
		cfg.correction = false
	}
}

// WithoutCorrection measures the syndromes but never acts on them.
func WithoutCorrection() BuildOption {
	return func(cfg *buildConfig) {
		cfg.correction = false
	}
}

// WithAncillaReset returns all eight ancillas to |0> after extraction.
func WithAncillaReset() BuildOption {
	return func(cfg *buildConfig) {
		cfg.ancillaReset = true
	}
}

type shorRegisters struct {
	z      [3]Register
	x      Register
	result Register
}

/*
Build assembles the full Shor pipeline for one trial: prepare, encode,
inject, extract both syndromes, correct, decode and measure. Faults are
applied in order, one injection step each, so the paired sweep is the single
sweep plus one more step. Faults are assumed valid; the error model and
configuration layer guarantee that.
*/
func Build(input LogicalState, faults []PauliError, opts ...BuildOption) *Circuit {
	cfg := buildConfig{syndrome: true, correction: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	c, regs := newShorCircuit()

	prepare(c, input)
	encode(c)

	for _, fault := range faults {
		inject(c, fault)
	}
	if len(faults) > 0 {
		c.barrier()
	}

	if cfg.syndrome {
		measureZSyndrome(c, regs.z)
		measureXSyndrome(c, regs.x)

		if cfg.ancillaReset {
			resetAncillas(c)
		}
	}

	if cfg.correction {
		correctBitFlips(c, regs.z)
		correctPhaseFlips(c, regs.x)
	}

	decode(c)
	measureResult(c, regs.result)

	return c
}

// newShorCircuit declares the 17 qubits and the five classical registers.
func newShorCircuit() (*Circuit, shorRegisters) {
	c := newCircuit(NumQubits)

	var regs shorRegisters
	for i := range regs.z {
		regs.z[i] = c.addRegister(fmt.Sprintf("%s%d", RegisterZPrefix, i), 2)
	}
	regs.x = c.addRegister(RegisterX, 2)
	regs.result = c.addRegister(RegisterResult, 1)

	return c, regs
}

func prepare(c *Circuit, input LogicalState) {
	if input == One {
		c.x(BlockLeaders[0])
	}
}

func encode(c *Circuit) {
	// Spread the logical bit onto the three block leaders.
	c.cx(BlockLeaders[0], BlockLeaders[1])
	c.cx(BlockLeaders[0], BlockLeaders[2])

	// Phase-flip code across blocks, bit-flip code inside each block.
	for _, block := range Blocks {
		c.h(block[0])
		c.cx(block[0], block[1])
		c.cx(block[0], block[2])
	}

	c.barrier()
}

func inject(c *Circuit, fault PauliError) {
	c.pauli(fault.Kind, fault.Target)
}

/*
measureZSyndrome collects Z_aZ_b into the first ancilla of a block and
Z_bZ_c into the second, so only parities are ever read out.
*/
func measureZSyndrome(c *Circuit, regs [3]Register) {
	for i, block := range Blocks {
		a1, a2 := ZAncillas[i][0], ZAncillas[i][1]

		c.cx(block[0], a1)
		c.cx(block[1], a1)
		c.measure(a1, regs[i], 0)

		c.cx(block[1], a2)
		c.cx(block[2], a2)
		c.measure(a2, regs[i], 1)
	}

	c.barrier()
}

/*
measureXSyndrome reads X0..X5 and X3..X8 by rotating every data qubit into
the Hadamard basis, collecting the two six-qubit parities, and rotating back.
*/
func measureXSyndrome(c *Circuit, reg Register) {
	for q := Qubit(0); q < NumDataQubits; q++ {
		c.h(q)
	}

	for q := Qubit(0); q < 6; q++ {
		c.cx(q, XAncillas[0])
	}
	c.measure(XAncillas[0], reg, 0)

	for q := Qubit(3); q < NumDataQubits; q++ {
		c.cx(q, XAncillas[1])
	}
	c.measure(XAncillas[1], reg, 1)

	for q := Qubit(0); q < NumDataQubits; q++ {
		c.h(q)
	}

	c.barrier()
}

func resetAncillas(c *Circuit) {
	for q := Qubit(NumDataQubits); q < NumQubits; q++ {
		c.reset(q)
	}
}

// correctBitFlips emits one conditioned X per active syndrome value per block.
func correctBitFlips(c *Circuit, regs [3]Register) {
	for i := range Blocks {
		for _, s := range ActiveSyndromes {
			q, _ := BitFlipCorrection(i, s)
			c.ifEqual(regs[i], int(s), OpX, q)
		}
	}

	c.barrier()
}

func correctPhaseFlips(c *Circuit, reg Register) {
	for _, s := range ActiveSyndromes {
		q, _ := PhaseFlipCorrection(s)
		c.ifEqual(reg, int(s), OpZ, q)
	}

	c.barrier()
}

// decode runs encode backwards, folding each block's majority onto its leader.
func decode(c *Circuit) {
	for _, block := range Blocks {
		c.cx(block[0], block[1])
		c.cx(block[0], block[2])
		c.ccx(block[1], block[2], block[0])
		c.h(block[0])
	}

	c.cx(BlockLeaders[0], BlockLeaders[1])
	c.cx(BlockLeaders[0], BlockLeaders[2])
	c.ccx(BlockLeaders[1], BlockLeaders[2], BlockLeaders[0])
}

func measureResult(c *Circuit, reg Register) {
	c.measure(BlockLeaders[0], reg, 0)
}
