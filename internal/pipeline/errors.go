package pipeline

import "fmt"

// StageError reports which stage of a run failed.
type StageError struct {
	Stage string
	Cause error
}

// Error implements the error interface
func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Cause)
}

// Unwrap returns the underlying error
func (e *StageError) Unwrap() error {
	return e.Cause
}
