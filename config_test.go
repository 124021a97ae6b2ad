package qec

import (
	"math/rand/v2"
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestConfig(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := NewConfig()

		Convey("It is valid and runs the sequential sweep", func() {
			So(cfg.Validate(), ShouldBeNil)
			So(cfg.Trials, ShouldEqual, SingleErrorCount)

			model, err := cfg.ErrorModel()
			So(err, ShouldBeNil)
			So(model, ShouldResemble, SequentialSweep{})
			So(cfg.BuildOptions(), ShouldBeEmpty)
		})

		Convey("A kind or a qubit switches to explicit injection", func() {
			cfg.ErrorKind = "Z"
			model, err := cfg.ErrorModel()
			So(err, ShouldBeNil)
			So(model, ShouldResemble, Explicit{Kind: PauliZ, Target: AnyQubit})

			cfg.ErrorKind = ""
			cfg.Qubit = 7
			model, err = cfg.ErrorModel()
			So(err, ShouldBeNil)
			So(model, ShouldResemble, Explicit{Kind: AnyPauli, Target: 7})
		})

		Convey("An unset input is drawn, a set one is fixed", func() {
			rng := rand.New(rand.NewPCG(1, 2))
			seen := map[LogicalState]bool{}
			for i := 0; i < 64; i++ {
				seen[cfg.Input(rng)] = true
			}
			So(seen, ShouldHaveLength, 2)

			cfg.InputState = 1
			So(cfg.Input(rng), ShouldEqual, One)
		})

		Convey("Ancilla reset becomes a build option", func() {
			cfg.AncillaReset = true
			So(cfg.BuildOptions(), ShouldHaveLength, 1)
		})

		Convey("Out of range values are configuration errors", func() {
			for _, mutate := range []func(*Config){
				func(c *Config) { c.Trials = 0 },
				func(c *Config) { c.Workers = -2 },
				func(c *Config) { c.Shots = 0 },
				func(c *Config) { c.InputState = 2 },
				func(c *Config) { c.Qubit = 9 },
				func(c *Config) { c.Rounds = 0 },
				func(c *Config) { c.RetryAttempts = 0 },
				func(c *Config) { c.RateLimit = -1 },
				func(c *Config) { c.ErrorKind = "w" },
				func(c *Config) { c.NoiseProbability = 1.01 },
			} {
				c := NewConfig()
				mutate(c)
				So(errors.Is(c.Validate(), ErrConfig), ShouldBeTrue)
			}
		})
	})
}
