package main

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theapemachine/qec"
)

func TestPositiveInt(t *testing.T) {
	n, err := positiveInt("trials", "12")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	for _, s := range []string{"0", "-3", "ten", "1.5"} {
		_, err := positiveInt("trials", s)
		assert.True(t, errors.Is(err, qec.ErrConfig), s)
	}
}

func TestIntRange(t *testing.T) {
	assert.NoError(t, intRange("rate", 0, 0, 10))
	assert.NoError(t, intRange("rate", 10, 0, 10))
	assert.True(t, errors.Is(intRange("rate", -1, 0, 10), qec.ErrConfig))
	assert.True(t, errors.Is(intRange("rate", 11, 0, 10), qec.ErrConfig))
}

func TestQubit(t *testing.T) {
	cases := map[string]int{"": int(qec.AnyQubit), "  ": int(qec.AnyQubit), "0": 0, " 8 ": 8}
	for s, want := range cases {
		got, err := qubit(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	for _, s := range []string{"-1", "9", "abc", "nine", "4.0"} {
		_, err := qubit(s)
		assert.True(t, errors.Is(err, qec.ErrConfig), s)
	}
}

func TestSeed(t *testing.T) {
	n, err := seed("18446744073709551615")
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), n)

	for _, s := range []string{"-3", "", "0x10", "seed"} {
		_, err := seed(s)
		assert.True(t, errors.Is(err, qec.ErrConfig), s)
	}
}

func TestProbability(t *testing.T) {
	p, err := probability("p", "0.25")
	require.NoError(t, err)
	assert.Equal(t, 0.25, p)

	for _, s := range []string{"-0.1", "1.01", "NaN", "half"} {
		_, err := probability("p", s)
		assert.True(t, errors.Is(err, qec.ErrConfig), s)
	}
}

func TestInputState(t *testing.T) {
	cases := map[string]int{"": -1, "0": 0, "1": 1}
	for s, want := range cases {
		got, err := inputState(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := inputState("2")
	assert.True(t, errors.Is(err, qec.ErrConfig))
}

func TestNoisyArgs(t *testing.T) {
	trials, p, rounds, err := noisyArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, 200, trials)
	assert.Equal(t, 0.1, p)
	assert.Equal(t, 3, rounds)

	trials, p, rounds, err = noisyArgs([]string{"50", "0.3", "7"})
	require.NoError(t, err)
	assert.Equal(t, 50, trials)
	assert.Equal(t, 0.3, p)
	assert.Equal(t, 7, rounds)
}
