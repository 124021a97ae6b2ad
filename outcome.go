package qec

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

/*
Counts maps an observed classical bit pattern to how many shots produced it.

Keys list registers in reverse declaration order separated by single spaces,
each register written most significant bit first. For the Shor circuit that
is "<logical_result> <cr_x> <cr_z2> <cr_z1> <cr_z0>", so the logical bit is
always the first character.
*/
type Counts map[string]int

// Shots returns the total number of samples.
func (c Counts) Shots() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Keys returns the observed patterns in lexical order.
func (c Counts) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

/*
MostFrequent returns the pattern seen most often. Ties go to the lexically
smallest pattern so the choice never depends on map iteration order.
*/
func (c Counts) MostFrequent() (string, bool) {
	best, bestCount := "", -1
	for _, k := range c.Keys() {
		if c[k] > bestCount {
			best, bestCount = k, c[k]
		}
	}
	return best, bestCount >= 0
}

// Merge adds other into c.
func (c Counts) Merge(other Counts) {
	for k, n := range other {
		c[k] += n
	}
}

func (c Counts) String() string {
	return "[" + strings.Join(c.Keys(), " ") + "]"
}

// ResultBit reads the logical bit from a Shor outcome pattern.
func ResultBit(key string) (LogicalState, error) {
	if key == "" || (key[0] != '0' && key[0] != '1') {
		return Zero, errors.Wrapf(ErrMalformedOutcome, "outcome %q has no logical bit", key)
	}
	return LogicalState(key[0] - '0'), nil
}

// Outcome is a parsed Shor register readout.
type Outcome struct {
	Result LogicalState
	X      Syndrome
	Z      [3]Syndrome
}

// ParseOutcome splits a five-register Shor pattern into its parts.
func ParseOutcome(key string) (Outcome, error) {
	fields := strings.Fields(key)
	if len(fields) != 5 {
		return Outcome{}, errors.Wrapf(ErrMalformedOutcome, "outcome %q has %d registers", key, len(fields))
	}

	var (
		out Outcome
		err error
	)

	if len(fields[0]) != 1 {
		return Outcome{}, errors.Wrapf(ErrMalformedOutcome, "result register %q", fields[0])
	}
	if out.Result, err = ParseLogicalState(fields[0]); err != nil {
		return Outcome{}, errors.Wrapf(ErrMalformedOutcome, "result register %q", fields[0])
	}
	if out.X, err = parseSyndrome(fields[1]); err != nil {
		return Outcome{}, err
	}
	for i := range out.Z {
		// cr_z2 is printed first.
		if out.Z[i], err = parseSyndrome(fields[4-i]); err != nil {
			return Outcome{}, err
		}
	}

	return out, nil
}

// BitFlipsDetected reports whether any block saw a non-zero Z syndrome.
func (o Outcome) BitFlipsDetected() bool {
	for _, s := range o.Z {
		if s != SyndromeNone {
			return true
		}
	}
	return false
}

func parseSyndrome(field string) (Syndrome, error) {
	if len(field) != 2 || !isBinary(field) {
		return 0, errors.Wrapf(ErrMalformedOutcome, "syndrome register %q", field)
	}
	return Syndrome((field[0]-'0')<<1 | (field[1] - '0')), nil
}

func isBinary(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return true
}

// formatKey renders a classical memory snapshot with the key convention above.
func formatKey(regs []Register, clbits []uint8) string {
	var sb strings.Builder
	for i := len(regs) - 1; i >= 0; i-- {
		r := regs[i]
		for b := r.Size - 1; b >= 0; b-- {
			sb.WriteByte('0' + clbits[r.Offset+b])
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// validateCounts checks that counts could have come from c after shots runs.
func validateCounts(c *Circuit, counts Counts, shots int) error {
	if len(counts) == 0 {
		return errors.Wrap(ErrMalformedOutcome, "no outcomes returned")
	}
	if total := counts.Shots(); total != shots {
		return errors.Wrapf(ErrMalformedOutcome, "got %d samples for %d shots", total, shots)
	}

	regs := c.Registers()
	for key, n := range counts {
		if n < 0 {
			return errors.Wrapf(ErrMalformedOutcome, "negative count for %q", key)
		}

		fields := strings.Split(key, " ")
		if len(fields) != len(regs) {
			return errors.Wrapf(ErrMalformedOutcome, "outcome %q has %d registers, want %d", key, len(fields), len(regs))
		}
		for i, field := range fields {
			r := regs[len(regs)-1-i]
			if len(field) != r.Size || !isBinary(field) {
				return errors.Wrapf(ErrMalformedOutcome, "outcome %q: bad %s field %q", key, r.Name, field)
			}
		}
	}

	return nil
}
