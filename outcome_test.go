package qec

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseOutcome(t *testing.T) {
	Convey("Given a well formed outcome", t, func() {
		out, err := ParseOutcome("1 11 10 01 00")
		So(err, ShouldBeNil)

		Convey("Registers are read in reverse declaration order", func() {
			So(out.Result, ShouldEqual, One)
			So(out.X, ShouldEqual, SyndromeBoth)
			So(out.Z, ShouldResemble, [3]Syndrome{SyndromeNone, SyndromeFirst, SyndromeSecond})
			So(out.BitFlipsDetected(), ShouldBeTrue)
		})
	})

	Convey("Given malformed outcomes", t, func() {
		for _, key := range []string{"", "1 11 10 01", "2 00 00 00 00", "1 0 00 00 00", "1 00 00 00 0x", "10 00 00 00 00"} {
			_, err := ParseOutcome(key)
			So(errors.Is(err, ErrMalformedOutcome), ShouldBeTrue)
		}
	})
}

func TestCounts(t *testing.T) {
	Convey("Given some counts", t, func() {
		counts := Counts{"1 00 00 00 00": 3, "0 00 00 00 00": 3, "0 01 00 00 00": 1}

		Convey("Shots sums the samples", func() {
			So(counts.Shots(), ShouldEqual, 7)
		})

		Convey("MostFrequent breaks ties toward the smallest key", func() {
			key, ok := counts.MostFrequent()
			So(ok, ShouldBeTrue)
			So(key, ShouldEqual, "0 00 00 00 00")
		})

		Convey("MostFrequent on nothing reports false", func() {
			_, ok := Counts{}.MostFrequent()
			So(ok, ShouldBeFalse)
		})

		Convey("Merge adds counts key by key", func() {
			counts.Merge(Counts{"1 00 00 00 00": 2, "1 01 00 00 00": 1})
			So(counts["1 00 00 00 00"], ShouldEqual, 5)
			So(counts["1 01 00 00 00"], ShouldEqual, 1)
			So(counts.Shots(), ShouldEqual, 10)
		})

		Convey("String lists keys in order", func() {
			So(Counts{"1 00 00 00 00": 1}.String(), ShouldEqual, "[1 00 00 00 00]")
		})
	})
}

func TestFormatKey(t *testing.T) {
	Convey("Given a classical memory snapshot", t, func() {
		c, _ := newShorCircuit()
		clbits := make([]uint8, c.NumClbits())

		// cr_z1 bit 0, cr_x bit 1 and the result.
		clbits[2] = 1
		clbits[7] = 1
		clbits[8] = 1

		Convey("Each register prints most significant bit first", func() {
			So(formatKey(c.Registers(), clbits), ShouldEqual, "1 10 00 01 00")
		})

		Convey("The rendered key validates against the circuit", func() {
			So(validateCounts(c, Counts{formatKey(c.Registers(), clbits): 1}, 1), ShouldBeNil)
		})
	})
}

func TestResultBit(t *testing.T) {
	Convey("Given outcome keys", t, func() {
		bit, err := ResultBit("1 00 00 00 00")
		So(err, ShouldBeNil)
		So(bit, ShouldEqual, One)

		for _, key := range []string{"", "x 00 00 00 00", " 1"} {
			_, err := ResultBit(key)
			So(errors.Is(err, ErrMalformedOutcome), ShouldBeTrue)
		}
	})
}
