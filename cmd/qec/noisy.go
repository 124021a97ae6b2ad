package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/theapemachine/errnie"

	"github.com/theapemachine/qec"
)

const (
	defaultNoisyTrials = 200
	defaultNoisyP      = 0.1
	defaultNoisyRounds = 3
)

// NewNoisyCommand creates the noisy command.
func NewNoisyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "noisy [TRIALS [P [ROUNDS]]]",
		Short: "Compare single-round and majority decoding under readout noise",
		Long: `Each trial draws a random input and one of the 27 single faults, then
decides the logical bit once and by majority over ROUNDS fresh runs. Readout
noise reports a 0 as 1 with probability P.

Defaults: 200 trials, P = 0.1, 3 rounds. The last line of output is always
the JSON record.`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			trials, p, rounds, err := noisyArgs(args)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid arguments", err)
			}

			s, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			report, err := s.runner.CompareMethods(cmd.Context(), p, rounds, trials)
			if err != nil {
				return WrapExitError(ExitCommandError, "running noise comparison", err)
			}

			if s.store != nil {
				runID, err := s.store.SaveNoise(cmd.Context(), "noisy", s.cfg.Seed, []qec.NoiseReport{report})
				if err != nil {
					return WrapExitError(ExitCommandError, "saving results", err)
				}
				errnie.Info("stored noisy run %s", runID)
			}

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			return qec.WriteNoiseReport(cmd.OutOrStdout(), report)
		},
	}

	return cmd
}

func noisyArgs(args []string) (trials int, p float64, rounds int, err error) {
	trials, p, rounds = defaultNoisyTrials, defaultNoisyP, defaultNoisyRounds

	if len(args) > 0 {
		if trials, err = positiveInt("trials", args[0]); err != nil {
			return
		}
	}
	if len(args) > 1 {
		if p, err = probability("p", args[1]); err != nil {
			return
		}
	}
	if len(args) > 2 {
		if rounds, err = positiveInt("rounds", args[2]); err != nil {
			return
		}
	}
	return
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	var planPath string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Sweep success rates over noise probability and round count",
		Long: `Run the two noise sweeps of a plan: success against P at a fixed
round count, and against round count at a fixed P.

Without --plan the default plan runs P = 0.00..0.50 in steps of 0.05 at 3
rounds and rounds 1, 3, 5, 7 at P = 0.2, with 500 trials per point.

Example plan:
  trials: 200
  noise:
    rounds: 3
    probabilities: [0.0, 0.1, 0.2]
  rounds:
    probability: 0.2
    counts: [1, 3, 5]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(planPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "loading plan", err)
			}

			s, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			noise, rounds, err := s.runner.RunPlan(cmd.Context(), plan)
			if err != nil {
				return WrapExitError(ExitCommandError, "running sweep", err)
			}

			if s.store != nil {
				for kind, reports := range map[string][]qec.NoiseReport{"noise-sweep": noise, "round-sweep": rounds} {
					runID, err := s.store.SaveNoise(cmd.Context(), kind, s.cfg.Seed, reports)
					if err != nil {
						return WrapExitError(ExitCommandError, "saving results", err)
					}
					errnie.Info("stored %s run %s", kind, runID)
				}
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				return writeJSON(out, planJSON{Noise: noise, Rounds: rounds})
			}

			if err := qec.WriteNoiseTable(out, noise); err != nil {
				return err
			}
			if _, err := out.Write([]byte("\n")); err != nil {
				return err
			}
			return qec.WriteNoiseTable(out, rounds)
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "YAML sweep plan")

	return cmd
}

func loadPlan(path string) (*qec.Plan, error) {
	if path == "" {
		return qec.DefaultPlan(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return qec.LoadPlan(f)
}
