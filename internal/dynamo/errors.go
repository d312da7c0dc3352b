package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for rollout operations.
var (
	// ErrInvalidArgument indicates bad input detected before any step runs.
	ErrInvalidArgument = errors.New("dynamo: invalid argument")

	// ErrNonConvergence indicates an implicit step whose root-find hit the iteration cap.
	ErrNonConvergence = errors.New("dynamo: implicit solve did not converge")

	// ErrDomain indicates the dynamics produced NaN or Inf.
	ErrDomain = errors.New("dynamo: dynamics left the valid domain (NaN or Inf detected)")

	// ErrDimensionMismatch indicates mismatched state/control dimensions.
	ErrDimensionMismatch = fmt.Errorf("%w: dimension mismatch between state and system", ErrInvalidArgument)

	// ErrNonPositiveStep indicates dt <= 0.
	ErrNonPositiveStep = fmt.Errorf("%w: timestep must be positive", ErrInvalidArgument)

	// ErrEmptyControls indicates a rollout with no controls.
	ErrEmptyControls = fmt.Errorf("%w: control sequence is empty", ErrInvalidArgument)
)

// NonConvergenceError reports the last residual norm of a failed root-find.
type NonConvergenceError struct {
	Iterations int
	Residual   float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("%s after %d iterations (residual %.3e)", ErrNonConvergence.Error(), e.Iterations, e.Residual)
}

func (e *NonConvergenceError) Unwrap() error {
	return ErrNonConvergence
}

// StepError wraps an error with the rollout step it happened at.
type StepError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

// CheckDims returns ErrDimensionMismatch unless got == want.
func CheckDims(what string, got, want int) error {
	if got != want {
		return fmt.Errorf("%w: %s has length %d, want %d", ErrDimensionMismatch, what, got, want)
	}
	return nil
}
