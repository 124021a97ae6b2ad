package qec

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// QASM renders the circuit as OpenQASM 3 source.
func (c *Circuit) QASM() string {
	var sb strings.Builder

	sb.WriteString("OPENQASM 3.0;\n")
	sb.WriteString("include \"stdgates.inc\";\n")
	fmt.Fprintf(&sb, "qubit[%d] q;\n", c.numQubits)
	for _, r := range c.registers {
		fmt.Fprintf(&sb, "bit[%d] %s;\n", r.Size, r.Name)
	}

	for _, op := range c.ops {
		stmt := c.qasmStatement(op)
		if op.Cond == nil {
			sb.WriteString(stmt + "\n")
			continue
		}
		fmt.Fprintf(&sb, "if (%s == %d) {\n  %s\n}\n", op.Cond.Register, op.Cond.Value, stmt)
	}

	return sb.String()
}

// WriteQASM writes the OpenQASM 3 rendering of c to w.
func WriteQASM(w io.Writer, c *Circuit) error {
	_, err := io.WriteString(w, c.QASM())
	return errors.Wrap(err, "writing qasm")
}

func (c *Circuit) qasmStatement(op Op) string {
	switch op.Kind {
	case OpBarrier:
		return "barrier q;"
	case OpMeasure:
		return fmt.Sprintf("%s = measure q[%d];", c.clbitName(op.Clbit), op.Target())
	}

	args := make([]string, len(op.Qubits))
	for i, q := range op.Qubits {
		args[i] = fmt.Sprintf("q[%d]", q)
	}
	return fmt.Sprintf("%s %s;", op.Kind, strings.Join(args, ", "))
}

// clbitName maps an absolute classical bit back to "register[bit]".
func (c *Circuit) clbitName(clbit int) string {
	for _, r := range c.registers {
		if clbit >= r.Offset && clbit < r.Offset+r.Size {
			return fmt.Sprintf("%s[%d]", r.Name, clbit-r.Offset)
		}
	}
	return fmt.Sprintf("c[%d]", clbit)
}
