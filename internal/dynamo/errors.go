package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownParam indicates a parameter name no handle exists for.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")

	// ErrEmptyBatch indicates a batch configured with no instances.
	ErrEmptyBatch = errors.New("dynamo: batch must hold at least one pendulum")

	// ErrBatchTooSmall indicates a metric that needs two instances was
	// evaluated on a smaller batch.
	ErrBatchTooSmall = errors.New("dynamo: divergence needs at least two pendulums")
)

// StepError wraps an error with the frame and the pendulum it was observed
// on.
type StepError struct {
	Frame   uint64
	Index   int
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("frame %d, pendulum %d: %v", e.Frame, e.Index, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
