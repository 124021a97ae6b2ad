package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/theapemachine/errnie"

	"github.com/theapemachine/qec"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Histogram bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}
	defaults := qec.NewConfig()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run single-fault trials through the full correction pipeline",
		Long: `Run trials of encode, inject, extract, correct, decode and measure.

Without --error or --qubit, trial i injects the i-th of the 27 single faults
(X on qubits 0-8, then Z, then Y). With either flag, every trial injects the
named fault and draws whatever was left out at random.

Example:
  qec run --trials 27 --input 0
  qec run --trials 100 --error y --qubit 4 --draw shor.qasm`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrials(cmd, opts)
		},
	}

	cmd.Flags().Int("trials", defaults.Trials, "number of trials")
	cmd.Flags().String("error", "", "fault kind to inject (x|y|z)")
	cmd.Flags().Int("qubit", int(qec.AnyQubit), "data qubit to inject into (0-8)")
	cmd.Flags().String("input", "", "logical input state (0|1, random when empty)")
	cmd.Flags().String("draw", "", "write the first trial's circuit as OpenQASM 3")
	cmd.Flags().BoolVar(&opts.Histogram, "histogram", false, "print the merged outcome histogram")

	return cmd
}

func runTrials(cmd *cobra.Command, opts *RunOptions) error {
	s, err := opts.open(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()

	model, err := s.cfg.ErrorModel()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	if s.cfg.QASMPath != "" {
		if err := writeCircuit(s.cfg.QASMPath, s.runner.Circuit(model, 0)); err != nil {
			return WrapExitError(ExitCommandError, "exporting circuit", err)
		}
	}

	summary, err := s.runner.Sweep(cmd.Context(), model, s.cfg.Trials)
	if err != nil {
		return WrapExitError(ExitCommandError, "running trials", err)
	}

	if err := reportSweep(cmd, opts.RootOptions, s, summary, opts.Histogram); err != nil {
		return err
	}

	if !summary.AllMatched() {
		return NewExitError(ExitFailure, "logical mismatches found")
	}
	return nil
}

// NewPairsCommand creates the pairs command.
func NewPairsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "Inject every ordered pair of single faults",
		Long: `Run the 729 trials of the paired sweep. Two faults exceed what the code
corrects, so mismatches are expected and reported, not treated as failure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			summary, err := s.runner.PairSweep(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "running paired sweep", err)
			}
			return reportSweep(cmd, opts.RootOptions, s, summary, opts.Histogram)
		},
	}

	cmd.Flags().String("input", "", "logical input state (0|1, random when empty)")
	cmd.Flags().BoolVar(&opts.Histogram, "histogram", false, "print the merged outcome histogram")

	return cmd
}

// NewZCheckCommand creates the zcheck command.
func NewZCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zcheck",
		Short: "Check that phase flips never trip the bit-flip syndromes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			results, err := s.runner.PhaseIsolation(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "running isolation check", err)
			}

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			return qec.WriteIsolation(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().String("input", "", "logical input state (0|1, random when empty)")

	return cmd
}

func reportSweep(cmd *cobra.Command, opts *RootOptions, s *session, summary *qec.SweepSummary, histogram bool) error {
	if s.store != nil {
		runID, err := s.store.SaveSweep(cmd.Context(), s.cfg.Seed, summary)
		if err != nil {
			return WrapExitError(ExitCommandError, "saving results", err)
		}
		errnie.Info("stored %s run %s", summary.Kind, runID)
	}

	out := cmd.OutOrStdout()

	if opts.Format == "json" {
		return writeJSON(out, newSweepJSON(summary, histogram))
	}

	if err := qec.WriteSweep(out, summary); err != nil {
		return err
	}
	if histogram {
		return qec.WriteHistogram(out, summary.Histogram)
	}
	return nil
}

func writeCircuit(path string, c *qec.Circuit) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := qec.WriteQASM(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
