package qec

import (
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/pkg/errors"
)

/*
Config carries everything a run needs. Sentinels mean "unspecified":
InputState -1 draws a random input per trial, ErrorKind "" and Qubit -1 hand
the choice to the error model.
*/
type Config struct {
	Trials            int
	Workers           int
	Seed              uint64
	Shots             int
	InputState        int
	ErrorKind         string
	Qubit             int
	NoiseProbability  float64
	Rounds            int
	AncillaReset      bool
	SchedulingTimeout time.Duration
	RetryAttempts     int
	RetryBackoff      time.Duration
	RateLimit         int
	DatabasePath      string
	QASMPath          string
}

func NewConfig() *Config {
	return &Config{
		Trials:            SingleErrorCount,
		Workers:           runtime.GOMAXPROCS(0),
		Seed:              1,
		Shots:             1,
		InputState:        -1,
		Qubit:             int(AnyQubit),
		NoiseProbability:  0.1,
		Rounds:            3,
		SchedulingTimeout: 10 * time.Second,
		RetryAttempts:     3,
		RetryBackoff:      100 * time.Millisecond,
	}
}

// Validate rejects bad values before any circuit is built. Nothing is clamped.
func (c *Config) Validate() error {
	switch {
	case c.Trials <= 0:
		return errors.Wrapf(ErrConfig, "trial count must be positive, got %d", c.Trials)
	case c.Workers <= 0:
		return errors.Wrapf(ErrConfig, "worker count must be positive, got %d", c.Workers)
	case c.Shots <= 0:
		return errors.Wrapf(ErrConfig, "shots must be positive, got %d", c.Shots)
	case c.InputState < -1 || c.InputState > 1:
		return errors.Wrapf(ErrConfig, "input state must be 0 or 1, got %d", c.InputState)
	case c.Qubit != int(AnyQubit) && !Qubit(c.Qubit).IsData():
		return errors.Wrapf(ErrConfig, "qubit %d outside [0,%d]", c.Qubit, NumDataQubits-1)
	case c.Rounds < 1:
		return errors.Wrapf(ErrConfig, "rounds must be positive, got %d", c.Rounds)
	case c.RetryAttempts < 1:
		return errors.Wrapf(ErrConfig, "retry attempts must be positive, got %d", c.RetryAttempts)
	case c.RateLimit < 0:
		return errors.Wrapf(ErrConfig, "rate limit must not be negative, got %d", c.RateLimit)
	}

	if _, err := ParsePauli(c.ErrorKind); err != nil {
		return err
	}

	return ReadoutNoise{P: c.NoiseProbability}.Validate()
}

/*
ErrorModel picks the injection policy: the sequential sweep unless the caller
named a kind or a qubit, in which case the explicit policy fills in whatever
was left out at random.
*/
func (c *Config) ErrorModel() (ErrorModel, error) {
	kind, err := ParsePauli(c.ErrorKind)
	if err != nil {
		return nil, err
	}

	if kind == AnyPauli && Qubit(c.Qubit) == AnyQubit {
		return SequentialSweep{}, nil
	}

	return Explicit{Kind: kind, Target: Qubit(c.Qubit)}, nil
}

// Input returns the fixed input state or draws one.
func (c *Config) Input(rng *rand.Rand) LogicalState {
	if c.InputState < 0 {
		return LogicalState(rng.IntN(2))
	}
	return LogicalState(c.InputState)
}

// BuildOptions translates config toggles into builder options.
func (c *Config) BuildOptions() []BuildOption {
	if c.AncillaReset {
		return []BuildOption{WithAncillaReset()}
	}
	return nil
}
