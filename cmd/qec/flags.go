package main

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/theapemachine/qec"
)

// positiveInt parses a strictly positive integer argument.
func positiveInt(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(qec.ErrConfig, "%s %q is not an integer", name, s)
	}
	if n <= 0 {
		return 0, errors.Wrapf(qec.ErrConfig, "%s must be positive, got %d", name, n)
	}
	return n, nil
}

// intRange rejects n outside [lo, hi]. Values are never clamped.
func intRange(name string, n, lo, hi int) error {
	if n < lo || n > hi {
		return errors.Wrapf(qec.ErrConfig, "%s %d outside [%d,%d]", name, n, lo, hi)
	}
	return nil
}

// qubit parses a target qubit. Only an empty value means "any qubit".
func qubit(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return int(qec.AnyQubit), nil
	}

	q, err := qec.ParseQubit(s)
	if err != nil {
		return 0, err
	}
	return int(q), nil
}

// rate parses the submission rate; 0 disables throttling.
func rate(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(qec.ErrConfig, "rate %q is not an integer", s)
	}
	if err := intRange("rate", n, 0, math.MaxInt32); err != nil {
		return 0, err
	}
	return n, nil
}

// seed parses the run seed as an unsigned 64-bit integer.
func seed(s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(qec.ErrConfig, "seed %q is not an unsigned integer", s)
	}
	return n, nil
}

// probability parses a float argument in [0, 1].
func probability(name, s string) (float64, error) {
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(qec.ErrConfig, "%s %q is not a number", name, s)
	}
	if err := (qec.ReadoutNoise{P: p}).Validate(); err != nil {
		return 0, err
	}
	return p, nil
}

// inputState maps the --input flag to the config sentinel: "" is random.
func inputState(s string) (int, error) {
	if s == "" {
		return -1, nil
	}
	state, err := qec.ParseLogicalState(s)
	if err != nil {
		return 0, err
	}
	return int(state), nil
}
