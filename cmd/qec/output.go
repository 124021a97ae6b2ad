package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/theapemachine/qec"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Logical mismatches found
	ExitCommandError = 2 // Bad flags, bad configuration, backend or storage failure
)

// ExitError carries the process exit code alongside the error.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Anything that is not an
// ExitError is a command error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

type sweepJSON struct {
	Kind       string         `json:"kind"`
	Trials     int            `json:"trials"`
	AllMatched bool           `json:"all_matched"`
	Mismatches []string       `json:"mismatches"`
	Histogram  map[string]int `json:"histogram,omitempty"`
}

func newSweepJSON(s *qec.SweepSummary, histogram bool) sweepJSON {
	out := sweepJSON{
		Kind:       s.Kind,
		Trials:     s.Trials,
		AllMatched: s.AllMatched(),
		Mismatches: make([]string, 0, len(s.Mismatches)),
	}
	for _, res := range s.Mismatches {
		out.Mismatches = append(out.Mismatches, qec.MismatchLine(res))
	}
	if histogram {
		out.Histogram = s.Histogram
	}
	return out
}

type planJSON struct {
	Noise  []qec.NoiseReport `json:"noise"`
	Rounds []qec.NoiseReport `json:"rounds"`
}

func writeJSON(w io.Writer, v any) error {
	return errors.Wrap(json.NewEncoder(w).Encode(v), "encoding json")
}
