package solver

import (
	"errors"
	"fmt"
)

// ErrNoFeasibleSolution is returned by Solution.Err when no phase of the search
// produced an assignment satisfying every capacity and time constraint.
var ErrNoFeasibleSolution = errors.New("solver: no feasible solution found")

// ModelConfigurationError reports malformed or mismatched solve inputs.
// It is always a caller bug and is never retried.
type ModelConfigurationError struct {
	Field  string
	Reason string
}

func (e *ModelConfigurationError) Error() string {
	return fmt.Sprintf("solver: invalid model configuration: %s: %s", e.Field, e.Reason)
}

func configErrorf(field string, format string, args ...any) error {
	return &ModelConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
