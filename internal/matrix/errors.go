package matrix

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned when operand shapes are incompatible.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// DimensionError provides the shapes involved in a failed operation.
type DimensionError struct {
	Op       string // Operation that failed (e.g., "multiply", "unshift")
	Expected Shape  // Shape the operation required
	Actual   Shape  // Shape it got
	Details  string // Additional details
}

// Error implements the error interface.
func (e *DimensionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: expected %v, got %v: %s", e.Op, ErrDimensionMismatch, e.Expected, e.Actual, e.Details)
	}
	return fmt.Sprintf("%s: %s: expected %v, got %v", e.Op, ErrDimensionMismatch, e.Expected, e.Actual)
}

// Is makes DimensionError match ErrDimensionMismatch with errors.Is.
func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch
}
