package qec

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/pkg/errors"
)

/*
Backend executes a circuit and reports outcome statistics. Implementations
must run classically conditioned ops against the register values measured
earlier in the same shot, and must key their counts with the convention
documented on Counts.
*/
type Backend interface {
	Execute(ctx context.Context, c *Circuit, shots int) (Counts, error)
}

/*
Execute is the boundary between the core and a backend. It submits one
circuit, wraps any backend failure as ErrBackend and rejects counts that do
not fit the circuit. It never retries.
*/
func Execute(ctx context.Context, b Backend, c *Circuit, shots int) (Counts, error) {
	if shots < 1 {
		return nil, errors.Wrapf(ErrConfig, "shots must be positive, got %d", shots)
	}

	counts, err := b.Execute(ctx, c, shots)
	if err != nil {
		if errors.Is(err, ErrBackend) {
			return nil, err
		}
		return nil, &BackendError{Err: err}
	}

	if err := validateCounts(c, counts, shots); err != nil {
		return nil, &BackendError{Err: err}
	}

	return counts, nil
}

/*
Simulator is the reference backend: a sparse state-vector simulation with
mid-circuit measurement, reset and register-conditioned gates. Its generator
is owned by the simulator and guarded, so one Simulator may be shared, but
trials that must be reproducible should each get their own.
*/
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulator(rng *rand.Rand) *Simulator {
	return &Simulator{rng: rng}
}

// NewSeededSimulator derives a simulator for one trial from a run seed.
func NewSeededSimulator(seed uint64, trial int) *Simulator {
	return NewSimulator(rand.New(rand.NewPCG(seed, uint64(trial))))
}

func (s *Simulator) Execute(ctx context.Context, c *Circuit, shots int) (Counts, error) {
	if c.NumQubits() > 32 {
		return nil, errors.Errorf("simulator supports at most 32 qubits, circuit has %d", c.NumQubits())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(Counts)
	for shot := 0; shot < shots; shot++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "shot %d", shot)
		}

		key, err := s.run(c)
		if err != nil {
			return nil, err
		}
		counts[key]++
	}

	return counts, nil
}

func (s *Simulator) run(c *Circuit) (string, error) {
	wf := NewWaveFunction(c.NumQubits())
	clbits := make([]uint8, c.NumClbits())
	regs := c.Registers()

	for i, op := range c.ops {
		if op.Kind == OpBarrier {
			continue
		}

		for _, q := range op.Qubits {
			if q < 0 || int(q) >= c.NumQubits() {
				return "", errors.Errorf("op %d (%s) addresses qubit %d", i, op.Kind, q)
			}
		}

		if op.Cond != nil {
			r, ok := c.Register(op.Cond.Register)
			if !ok {
				return "", errors.Errorf("op %d conditioned on unknown register %q", i, op.Cond.Register)
			}
			if registerValue(r, clbits) != op.Cond.Value {
				continue
			}
		}

		switch op.Kind {
		case OpX:
			wf.ApplyX(op.Target())
		case OpY:
			wf.ApplyY(op.Target())
		case OpZ:
			wf.ApplyZ(op.Target())
		case OpH:
			wf.ApplyHadamard(op.Target())
		case OpCX:
			wf.ApplyCX(op.Qubits[0], op.Qubits[1])
		case OpCCX:
			wf.ApplyCCX(op.Qubits[0], op.Qubits[1], op.Qubits[2])
		case OpMeasure:
			if op.Clbit < 0 || op.Clbit >= len(clbits) {
				return "", errors.Errorf("op %d writes classical bit %d", i, op.Clbit)
			}
			clbits[op.Clbit] = wf.Collapse(op.Target(), s.rng)
		case OpReset:
			wf.Reset(op.Target(), s.rng)
		default:
			return "", errors.Errorf("op %d has unsupported kind %s", i, op.Kind)
		}
	}

	return formatKey(regs, clbits), nil
}

func registerValue(r Register, clbits []uint8) int {
	v := 0
	for b := 0; b < r.Size; b++ {
		v |= int(clbits[r.Offset+b]) << b
	}
	return v
}
