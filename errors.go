package qec

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrConfig marks invalid caller configuration. It is raised before any
	// circuit is built.
	ErrConfig = errors.New("invalid configuration")

	// ErrBackend marks a failed or unavailable execution backend.
	ErrBackend = errors.New("backend execution failed")

	// ErrMalformedOutcome marks counts that do not fit the circuit they came from.
	ErrMalformedOutcome = errors.New("malformed backend outcome")
)

// IsRetryable reports whether a failure belongs to the backend and may be
// retried by the driver. Configuration errors and cancellation never are.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrConfig) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, ErrBackend) || errors.Is(err, ErrMalformedOutcome)
}

/*
BackendError wraps whatever an execution backend returned so callers can
match it with errors.Is(err, ErrBackend) without losing the original cause.
*/
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string {
	return ErrBackend.Error() + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}
