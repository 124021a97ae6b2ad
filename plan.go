package qec

import (
	"io"
	"math"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

/*
Plan describes the two noise sweeps: success rate against readout error
probability at a fixed round count, and against round count at a fixed
probability. Every point runs Trials trials.
*/
type Plan struct {
	// Trials is the trial count at every point of both sweeps.
	Trials int `yaml:"trials"`

	// Noise varies the readout error probability.
	Noise NoiseSweep `yaml:"noise"`

	// Rounds varies the number of majority-vote rounds.
	Rounds RoundSweep `yaml:"rounds"`
}

type NoiseSweep struct {
	Rounds        int       `yaml:"rounds"`
	Probabilities []float64 `yaml:"probabilities"`
}

type RoundSweep struct {
	Probability float64 `yaml:"probability"`
	Counts      []int   `yaml:"counts"`
}

// DefaultPlan sweeps p over 0.00..0.50 in steps of 0.05 at 3 rounds, and
// rounds 1, 3, 5 and 7 at p = 0.2, with 500 trials per point.
func DefaultPlan() *Plan {
	probabilities := make([]float64, 0, 11)
	for i := 0; i <= 10; i++ {
		probabilities = append(probabilities, math.Round(float64(i)*5)/100)
	}

	return &Plan{
		Trials: 500,
		Noise:  NoiseSweep{Rounds: 3, Probabilities: probabilities},
		Rounds: RoundSweep{Probability: 0.2, Counts: []int{1, 3, 5, 7}},
	}
}

/*
LoadPlan reads a YAML plan. Fields left out keep their DefaultPlan values;
unknown fields are rejected.
*/
func LoadPlan(r io.Reader) (*Plan, error) {
	plan := DefaultPlan()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(plan); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(ErrConfig, "parsing plan: %v", err)
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

func (p *Plan) Validate() error {
	if p.Trials <= 0 {
		return errors.Wrapf(ErrConfig, "plan trials must be positive, got %d", p.Trials)
	}
	if p.Noise.Rounds < 1 {
		return errors.Wrapf(ErrConfig, "noise sweep rounds must be positive, got %d", p.Noise.Rounds)
	}
	for _, prob := range p.Noise.Probabilities {
		if err := (ReadoutNoise{P: prob}).Validate(); err != nil {
			return err
		}
	}
	if err := (ReadoutNoise{P: p.Rounds.Probability}).Validate(); err != nil {
		return err
	}
	for _, n := range p.Rounds.Counts {
		if n < 1 {
			return errors.Wrapf(ErrConfig, "round count must be positive, got %d", n)
		}
	}
	return nil
}
