package qec

/*
Syndrome is the 2-bit value of a pair of overlapping parity checks over a
length-3 repetition code. Bit 0 holds the first check and bit 1 the second.
*/
type Syndrome uint8

const (
	SyndromeNone   Syndrome = 0b00
	SyndromeFirst  Syndrome = 0b01
	SyndromeSecond Syndrome = 0b10
	SyndromeBoth   Syndrome = 0b11
)

// ActiveSyndromes are the values that trigger a correction, in emission order.
var ActiveSyndromes = [3]Syndrome{SyndromeFirst, SyndromeSecond, SyndromeBoth}

func (s Syndrome) String() string {
	return string([]byte{'0' + byte(s>>1&1), '0' + byte(s&1)})
}

/*
Position names the faulty element of the repetition code. The middle element
is the only one covered by both checks, so it owns 11 and the last element
owns 10. ok is false for 00.
*/
func (s Syndrome) Position() (position int, ok bool) {
	switch s {
	case SyndromeFirst:
		return 0, true
	case SyndromeBoth:
		return 1, true
	case SyndromeSecond:
		return 2, true
	default:
		return -1, false
	}
}

// BitFlipCorrection is the intra-block table: the member of block to flip.
func BitFlipCorrection(block int, s Syndrome) (Qubit, bool) {
	pos, ok := s.Position()
	if !ok {
		return 0, false
	}
	return Blocks[block][pos], true
}

/*
PhaseFlipCorrection is the cross-block table. The X checks span qubits 0-5
and 3-8, so the blocks themselves form the repetition code and the leader of
the faulty block takes the phase correction.
*/
func PhaseFlipCorrection(s Syndrome) (Qubit, bool) {
	pos, ok := s.Position()
	if !ok {
		return 0, false
	}
	return BlockLeaders[pos], true
}
