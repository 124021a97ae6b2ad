package qec

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantumSpace(t *testing.T) {
	Convey("Given a result space", t, func() {
		qs := newQuantumSpace(10 * time.Millisecond)

		Reset(func() {
			qs.Close()
		})

		Convey("A value stored before anyone waits is delivered once", func() {
			qs.Store("trial-1", "result", nil, time.Minute)
			So(qs.Pending(), ShouldEqual, 1)

			value := <-qs.Await("trial-1")
			So(value.Value, ShouldEqual, "result")
			So(value.Error, ShouldBeNil)
			So(qs.Pending(), ShouldEqual, 0)
		})

		Convey("A waiter is woken by a later store", func() {
			ch := qs.Await("trial-2")
			qs.Store("trial-2", 42, nil, time.Minute)

			select {
			case value := <-ch:
				So(value.Value, ShouldEqual, 42)
			case <-time.After(time.Second):
				So("timed out", ShouldBeEmpty)
			}
			So(qs.Pending(), ShouldEqual, 0)
		})

		Convey("Uncollected values expire after their TTL", func() {
			qs.Store("trial-3", "stale", nil, 20*time.Millisecond)
			time.Sleep(100 * time.Millisecond)
			So(qs.Pending(), ShouldEqual, 0)
		})
	})
}
