package qec

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBitFlipTable(t *testing.T) {
	Convey("Given the within-block table", t, func() {
		Convey("00 means no correction", func() {
			for block := range Blocks {
				_, ok := BitFlipCorrection(block, SyndromeNone)
				So(ok, ShouldBeFalse)
			}
		})

		Convey("01, 11 and 10 select the first, middle and last qubit", func() {
			cases := []struct {
				s    Syndrome
				want [3]Qubit
			}{
				{SyndromeFirst, [3]Qubit{0, 3, 6}},
				{SyndromeBoth, [3]Qubit{1, 4, 7}},
				{SyndromeSecond, [3]Qubit{2, 5, 8}},
			}

			for _, tc := range cases {
				for block := range Blocks {
					q, ok := BitFlipCorrection(block, tc.s)
					So(ok, ShouldBeTrue)
					So(q, ShouldEqual, tc.want[block])
				}
			}
		})
	})
}

func TestPhaseFlipTable(t *testing.T) {
	Convey("Given the cross-block table", t, func() {
		Convey("11 selects the middle leader and 10 the last", func() {
			q, ok := PhaseFlipCorrection(SyndromeFirst)
			So(ok, ShouldBeTrue)
			So(q, ShouldEqual, Qubit(0))

			q, _ = PhaseFlipCorrection(SyndromeBoth)
			So(q, ShouldEqual, Qubit(3))

			q, _ = PhaseFlipCorrection(SyndromeSecond)
			So(q, ShouldEqual, Qubit(6))
		})

		Convey("00 means no correction", func() {
			_, ok := PhaseFlipCorrection(SyndromeNone)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestSyndromeString(t *testing.T) {
	Convey("Syndromes print most significant bit first", t, func() {
		So(SyndromeNone.String(), ShouldEqual, "00")
		So(SyndromeFirst.String(), ShouldEqual, "01")
		So(SyndromeSecond.String(), ShouldEqual, "10")
		So(SyndromeBoth.String(), ShouldEqual, "11")
	})
}
