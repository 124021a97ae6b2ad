package qec

import (
	"math/rand/v2"
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSweepError(t *testing.T) {
	Convey("Given the sequential sweep index", t, func() {
		Convey("0-8 are X, 9-17 are Z and 18-26 are Y", func() {
			So(SweepError(0), ShouldResemble, PauliError{Kind: PauliX, Target: 0})
			So(SweepError(4), ShouldResemble, PauliError{Kind: PauliX, Target: 4})
			So(SweepError(9), ShouldResemble, PauliError{Kind: PauliZ, Target: 0})
			So(SweepError(17), ShouldResemble, PauliError{Kind: PauliZ, Target: 8})
			So(SweepError(26), ShouldResemble, PauliError{Kind: PauliY, Target: 8})
		})

		Convey("Indices wrap modulo 27", func() {
			So(SweepError(27), ShouldResemble, SweepError(0))
			So(SweepError(31), ShouldResemble, SweepError(4))
		})

		Convey("All 27 faults are distinct", func() {
			seen := map[PauliError]bool{}
			for i := 0; i < SingleErrorCount; i++ {
				seen[SweepError(i)] = true
			}
			So(seen, ShouldHaveLength, SingleErrorCount)
		})
	})

	Convey("Given a paired index", t, func() {
		first, second := DecodePair(27*13 + 5)
		So(first, ShouldResemble, SweepError(5))
		So(second, ShouldResemble, SweepError(13))

		Convey("The 729 indices cover every ordered pair once", func() {
			seen := map[[2]PauliError]bool{}
			for i := 0; i < PairErrorCount; i++ {
				a, b := DecodePair(i)
				seen[[2]PauliError{a, b}] = true
			}
			So(seen, ShouldHaveLength, PairErrorCount)
		})
	})
}

func TestParsing(t *testing.T) {
	Convey("Given user supplied kinds and qubits", t, func() {
		Convey("Kinds parse case-insensitively and empty means any", func() {
			for in, want := range map[string]Pauli{"x": PauliX, "Y": PauliY, "z": PauliZ, "": AnyPauli} {
				got, err := ParsePauli(in)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
		})

		Convey("Unknown kinds are configuration errors", func() {
			_, err := ParsePauli("w")
			So(errors.Is(err, ErrConfig), ShouldBeTrue)
		})

		Convey("Qubits outside 0-8 are rejected, never clamped", func() {
			q, err := ParseQubit("8")
			So(err, ShouldBeNil)
			So(q, ShouldEqual, Qubit(8))

			for _, bad := range []string{"9", "-1", "one"} {
				_, err := ParseQubit(bad)
				So(errors.Is(err, ErrConfig), ShouldBeTrue)
			}
		})

		Convey("Faults render as kind and qubit", func() {
			So(PauliError{Kind: PauliY, Target: 7}.String(), ShouldEqual, "Y7")
			So(PauliError{Kind: PauliX, Target: 9}.Validate(), ShouldNotBeNil)
			So(PauliError{Kind: AnyPauli, Target: 0}.Validate(), ShouldNotBeNil)
		})
	})
}

func TestErrorModels(t *testing.T) {
	Convey("Given the error models", t, func() {
		rng := rand.New(rand.NewPCG(1, 2))

		Convey("NoErrors injects nothing", func() {
			So(NoErrors{}.Errors(3, rng), ShouldBeEmpty)
		})

		Convey("SequentialSweep follows the trial index", func() {
			So(SequentialSweep{}.Errors(13, rng), ShouldResemble, []PauliError{{Kind: PauliZ, Target: 4}})
		})

		Convey("Explicit keeps what was given and draws the rest", func() {
			for i := 0; i < 50; i++ {
				faults := Explicit{Kind: PauliY, Target: AnyQubit}.Errors(i, rng)
				So(faults, ShouldHaveLength, 1)
				So(faults[0].Kind, ShouldEqual, PauliY)
				So(faults[0].Target.IsData(), ShouldBeTrue)

				faults = Explicit{Kind: AnyPauli, Target: 2}.Errors(i, rng)
				So(faults[0].Target, ShouldEqual, Qubit(2))
				So(faults[0].Validate(), ShouldBeNil)
			}
		})

		Convey("PairedSweep is the single sweep plus a second fault", func() {
			faults := PairedSweep{}.Errors(27*2+1, rng)
			So(faults, ShouldResemble, []PauliError{SweepError(1), SweepError(2)})
		})
	})
}
