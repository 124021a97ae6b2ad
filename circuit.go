package qec

// OpKind enumerates the operations a circuit may contain.
type OpKind int

const (
	OpX OpKind = iota
	OpY
	OpZ
	OpH
	OpCX
	OpCCX
	OpMeasure
	OpReset
	OpBarrier
)

var opNames = [...]string{"x", "y", "z", "h", "cx", "ccx", "measure", "reset", "barrier"}

func (k OpKind) String() string {
	if k < 0 || int(k) >= len(opNames) {
		return "unknown"
	}
	return opNames[k]
}

/*
Condition gates an operation on the live value of a classical register.
The register is read as an unsigned integer with bit 0 least significant.
*/
type Condition struct {
	Register string
	Value    int
}

/*
Op is a single circuit instruction. Qubits lists controls first and the
target last. Clbit is the absolute classical bit written by a measurement
and -1 for every other kind.
*/
type Op struct {
	Kind   OpKind
	Qubits []Qubit
	Clbit  int
	Cond   *Condition
}

// Target returns the qubit an op acts on.
func (o Op) Target() Qubit {
	return o.Qubits[len(o.Qubits)-1]
}

// Register is a named, contiguous bundle of classical bits.
type Register struct {
	Name   string
	Size   int
	Offset int
}

/*
Circuit is the assembled artifact of one trial: declared registers plus the
ordered operation list. It is only mutated while being built; once returned
by Build it is read-only and may be handed to any backend.
*/
type Circuit struct {
	numQubits int
	numClbits int
	registers []Register
	ops       []Op
}

func newCircuit(numQubits int) *Circuit {
	return &Circuit{numQubits: numQubits}
}

func (c *Circuit) NumQubits() int { return c.numQubits }
func (c *Circuit) NumClbits() int { return c.numClbits }
func (c *Circuit) Len() int       { return len(c.ops) }

// Registers returns the registers in declaration order.
func (c *Circuit) Registers() []Register {
	out := make([]Register, len(c.registers))
	copy(out, c.registers)
	return out
}

// Ops returns a copy of the operation sequence.
func (c *Circuit) Ops() []Op {
	out := make([]Op, len(c.ops))
	copy(out, c.ops)
	return out
}

// Register looks up a register by name.
func (c *Circuit) Register(name string) (Register, bool) {
	for _, r := range c.registers {
		if r.Name == name {
			return r, true
		}
	}
	return Register{}, false
}

/*
CountOps tallies operations by name. Classically conditioned operations are
counted separately under "if_" plus the op name, so an unconditional "x"
count is never inflated by correction branches.
*/
func (c *Circuit) CountOps() map[string]int {
	counts := make(map[string]int)
	for _, op := range c.ops {
		name := op.Kind.String()
		if op.Cond != nil {
			name = "if_" + name
		}
		counts[name]++
	}
	return counts
}

func (c *Circuit) addRegister(name string, size int) Register {
	r := Register{Name: name, Size: size, Offset: c.numClbits}
	c.registers = append(c.registers, r)
	c.numClbits += size
	return r
}

func (c *Circuit) append(kind OpKind, qubits ...Qubit) {
	c.ops = append(c.ops, Op{Kind: kind, Qubits: qubits, Clbit: -1})
}

func (c *Circuit) x(q Qubit)                { c.append(OpX, q) }
func (c *Circuit) y(q Qubit)                { c.append(OpY, q) }
func (c *Circuit) z(q Qubit)                { c.append(OpZ, q) }
func (c *Circuit) h(q Qubit)                { c.append(OpH, q) }
func (c *Circuit) cx(ctrl, target Qubit)    { c.append(OpCX, ctrl, target) }
func (c *Circuit) ccx(c1, c2, target Qubit) { c.append(OpCCX, c1, c2, target) }
func (c *Circuit) reset(q Qubit)            { c.append(OpReset, q) }
func (c *Circuit) barrier()                 { c.ops = append(c.ops, Op{Kind: OpBarrier, Clbit: -1}) }

func (c *Circuit) measure(q Qubit, reg Register, bit int) {
	c.ops = append(c.ops, Op{
		Kind:   OpMeasure,
		Qubits: []Qubit{q},
		Clbit:  reg.Offset + bit,
	})
}

// ifEqual appends a single-qubit op that only runs when reg holds value.
func (c *Circuit) ifEqual(reg Register, value int, kind OpKind, q Qubit) {
	c.ops = append(c.ops, Op{
		Kind:   kind,
		Qubits: []Qubit{q},
		Clbit:  -1,
		Cond:   &Condition{Register: reg.Name, Value: value},
	})
}

// pauli emits the gate matching a fault kind.
func (c *Circuit) pauli(kind Pauli, q Qubit) {
	switch kind {
	case PauliX:
		c.x(q)
	case PauliZ:
		c.z(q)
	case PauliY:
		c.y(q)
	}
}
