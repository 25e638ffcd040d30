package md

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrConfiguration indicates an unknown element label or a non-positive
	// sigma, epsilon, dt, particle count or sampling interval.
	ErrConfiguration = errors.New("md: invalid configuration")

	// ErrShapeMismatch indicates coordinate, force, mass or label arrays of
	// different lengths.
	ErrShapeMismatch = errors.New("md: shape mismatch")

	// ErrFormat indicates a malformed persisted trajectory.
	ErrFormat = errors.New("md: malformed trajectory file")

	// ErrUninitializedState indicates integrator history that does not fit
	// the call it is used in.
	ErrUninitializedState = errors.New("md: inconsistent integrator state")

	// ErrUnstable indicates the simulation produced NaN or Inf coordinates.
	ErrUnstable = errors.New("md: simulation unstable (coordinates diverged)")
)

// SimulationError wraps an error with the step at which it happened.
type SimulationError struct {
	Step    int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// Configf returns an error wrapping ErrConfiguration.
func Configf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// ShapeErrorf returns an error wrapping ErrShapeMismatch.
func ShapeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrShapeMismatch, fmt.Sprintf(format, args...))
}
