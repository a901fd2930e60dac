package dynamo

import (
	"errors"
	"fmt"
)

// Validation errors. All are reported before any simulation state is
// allocated.
var (
	// ErrTimeStep indicates a non-positive time step.
	ErrTimeStep = errors.New("dynamo: time-step must be positive")

	// ErrTotalTime indicates a non-positive total time.
	ErrTotalTime = errors.New("dynamo: total-time must be positive")

	// ErrTotalBelowStep indicates a total time shorter than one step.
	ErrTotalBelowStep = errors.New("dynamo: total-time must not be less than time-step")

	// ErrOutputs indicates a non-positive number of requested outputs.
	ErrOutputs = errors.New("dynamo: outputs-per-body must be positive")

	// ErrNoBodies indicates an empty body state.
	ErrNoBodies = errors.New("dynamo: at least 1 body is required")
)

// Runtime errors.
var (
	// ErrInvalidState indicates a position became NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with simulation context.
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
