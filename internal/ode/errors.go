package ode

import (
	"errors"
	"fmt"
)

// Domain errors for integration operations.
var (
	// ErrInvalidState indicates an empty state vector or one holding NaN or Inf.
	ErrInvalidState = errors.New("ode: invalid state (empty, NaN or Inf)")

	// ErrStateUnset indicates a step was requested before SetState.
	ErrStateUnset = errors.New("ode: state not set")

	// ErrFuncUnset indicates a step was requested without a callback installed.
	ErrFuncUnset = errors.New("ode: function not set")

	// ErrStepSize indicates a step size that is zero, negative or not finite.
	ErrStepSize = errors.New("ode: step size must be finite and positive")

	// ErrInvalidTime indicates a target time that is NaN or +Inf.
	ErrInvalidTime = errors.New("ode: invalid target time")

	// ErrDimensionMismatch indicates a callback result whose shape does not
	// match the state dimension.
	ErrDimensionMismatch = errors.New("ode: dimension mismatch between state and system")

	// ErrSingular indicates a per-sample stage system with no unique solution.
	ErrSingular = errors.New("ode: singular stage system")

	// ErrCanceled indicates the integration was interrupted by its context.
	ErrCanceled = errors.New("ode: integration canceled by context")
)

// StepError wraps a stepper failure with the step it happened on.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
