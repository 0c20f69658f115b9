package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration and rendering.
var (
	// ErrInvalidHorizon indicates End < Start, a non-positive Dt, a non-finite
	// bound, or more than MaxSteps samples.
	ErrInvalidHorizon = errors.New("dynamo: invalid horizon")

	// ErrNonFiniteInput indicates a NaN or Inf system parameter or initial coordinate.
	ErrNonFiniteInput = errors.New("dynamo: non-finite input (NaN or Inf detected)")

	// ErrDimensionMismatch indicates an initial state that is not three-dimensional.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrLengthMismatch indicates two trajectories sampled on different grids.
	ErrLengthMismatch = errors.New("dynamo: trajectories have different lengths")

	// ErrEmptyTrajectory indicates an operation that needs at least one sample.
	ErrEmptyTrajectory = errors.New("dynamo: empty trajectory")
)

// SimulationError wraps an error with the step and time it happened at.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
