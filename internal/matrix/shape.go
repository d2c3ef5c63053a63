package matrix

import "fmt"

// Shape represents the dimensions of a matrix.
type Shape struct {
	Rows int
	Cols int
}

// NumElements returns the number of cells in a matrix of this shape.
func (s Shape) NumElements() int {
	return s.Rows * s.Cols
}

// Validate checks that both dimensions are positive.
func (s Shape) Validate() error {
	if s.Rows <= 0 || s.Cols <= 0 {
		return fmt.Errorf("invalid shape %v: dimensions must be > 0", s)
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	return s.Rows == other.Rows && s.Cols == other.Cols
}

// IsColumn reports whether the shape describes a column vector.
func (s Shape) IsColumn() bool {
	return s.Cols == 1
}

// String formats the shape as "RxC".
func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}
