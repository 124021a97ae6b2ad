package qec

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
)

// AllCorrect is printed when a sweep lost no logical bit.
const AllCorrect = "All simulations correct!"

// IsolationClean is printed when no Z fault tripped a bit-flip check.
const IsolationClean = "Only X-type errors detected as expected"

// MismatchLine renders a failed trial as "trial 4 X4: 0 -> [1 00 01 00 00]".
func MismatchLine(res TrialResult) string {
	faults := make([]string, len(res.Faults))
	for i, f := range res.Faults {
		faults[i] = f.String()
	}

	line := fmt.Sprintf("trial %d", res.Index)
	if len(faults) > 0 {
		line += " " + strings.Join(faults, " ")
	}
	return fmt.Sprintf("%s: %s -> %s", line, res.Input, res.Counts)
}

// WriteSweep prints one line per mismatch followed by the aggregate line.
func WriteSweep(w io.Writer, s *SweepSummary) error {
	for _, res := range s.Mismatches {
		if _, err := fmt.Fprintln(w, MismatchLine(res)); err != nil {
			return errors.Wrap(err, "writing sweep")
		}
	}

	var err error
	if s.AllMatched() {
		_, err = fmt.Fprintln(w, AllCorrect)
	} else {
		_, err = fmt.Fprintf(w, "%d of %d simulations incorrect\n", len(s.Mismatches), s.Trials)
	}
	return errors.Wrap(err, "writing sweep")
}

// WriteHistogram prints the merged outcome counts sorted by key.
func WriteHistogram(w io.Writer, counts Counts) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, key := range counts.Keys() {
		fmt.Fprintf(tw, "%s\t%d\n", key, counts[key])
	}
	return errors.Wrap(tw.Flush(), "writing histogram")
}

// WriteIsolation prints each Z trial and the verdict line when nothing fired.
func WriteIsolation(w io.Writer, results []IsolationResult) error {
	clean := true
	for _, res := range results {
		if _, err := fmt.Fprintf(w, "%d: %s -> %s\n", res.Qubit, res.Input, res.Counts); err != nil {
			return errors.Wrap(err, "writing isolation check")
		}
		clean = clean && !res.Detected
	}

	if clean {
		_, err := fmt.Fprintln(w, IsolationClean)
		return errors.Wrap(err, "writing isolation check")
	}
	return nil
}

// WriteNoiseReport prints the human summary and then the record as one JSON line.
func WriteNoiseReport(w io.Writer, r NoiseReport) error {
	if _, err := fmt.Fprintf(w,
		"Out of %d trials with %.1f measurement error probability and %d rounds\n"+
			"Single round success: %.1f%%\n"+
			"Multi-round success: %.1f%%\n",
		r.NumTrials, r.P, r.Rounds, r.SingleRate*100, r.MultiRate*100,
	); err != nil {
		return errors.Wrap(err, "writing noise report")
	}

	return errors.Wrap(json.NewEncoder(w).Encode(r), "writing noise report")
}

// WriteNoiseTable prints one row per sweep point.
func WriteNoiseTable(w io.Writer, reports []NoiseReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "p\trounds\ttrials\tsingle\tmulti")
	for _, r := range reports {
		fmt.Fprintf(tw, "%.2f\t%d\t%d\t%.3f\t%.3f\n", r.P, r.Rounds, r.NumTrials, r.SingleRate, r.MultiRate)
	}
	return errors.Wrap(tw.Flush(), "writing noise table")
}
