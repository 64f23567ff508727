package engine

import "fmt"

// ValidationError reports an input rejected before any computation ran.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("engine: invalid %s: %s (got %v)", e.Field, e.Reason, e.Value)
}

// ComputationError reports a valid input for which a stage found no physical
// solution. It names the stage and the quantity so callers can report the
// failure precisely instead of propagating NaN.
type ComputationError struct {
	Stage    string
	Quantity string
	Reason   string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("engine: %s stage: %s: %s", e.Stage, e.Quantity, e.Reason)
}

func invalid(field string, value any, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}
