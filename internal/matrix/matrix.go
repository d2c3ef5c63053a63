// Package matrix implements the dense float64 matrices used by the training engine.
//
// A Matrix is a row-major rows×cols grid backed by a single flat slice.
// Shapes never change implicitly: operations either return a new matrix
// or, for the *InPlace variants, overwrite the receiver's buffer without
// allocating.
//
// Column vectors (cols == 1) are the currency of the network: inputs,
// neuron sums, activations and deltas are all column vectors.
//
// Example:
//
//	w, _ := matrix.FromRows([][]float64{{0.5, 0.5, 0.5}, {-0.5, -0.5, -0.5}})
//	x, _ := matrix.Vector([]float64{1, 0}).Unshift(1)
//	sum, err := matrix.Multiply(w, x) // 2x1
package matrix

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a dense rows×cols matrix of float64 values.
type Matrix struct {
	rows int
	cols int
	data []float64
}

// New creates a zero-filled matrix.
func New(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("matrix.New: negative dimensions %dx%d", rows, cols))
	}
	return &Matrix{
		rows: rows,
		cols: cols,
		data: make([]float64, rows*cols),
	}
}

// Zeros creates a zero-filled matrix with the given shape.
func Zeros(shape Shape) *Matrix {
	return New(shape.Rows, shape.Cols)
}

// FromSlice creates a matrix that takes ownership of data (row-major).
func FromSlice(data []float64, rows, cols int) (*Matrix, error) {
	if len(data) != rows*cols {
		return nil, &DimensionError{
			Op:       "from slice",
			Expected: Shape{Rows: rows, Cols: cols},
			Actual:   Shape{Rows: len(data), Cols: 1},
			Details:  fmt.Sprintf("need %d values, got %d", rows*cols, len(data)),
		}
	}
	return &Matrix{rows: rows, cols: cols, data: data}, nil
}

// FromRows copies a slice of equally long rows into a new matrix.
func FromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 {
		return New(0, 0), nil
	}
	cols := len(rows[0])
	m := New(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, &DimensionError{
				Op:       "from rows",
				Expected: Shape{Rows: len(rows), Cols: cols},
				Actual:   Shape{Rows: len(rows), Cols: len(row)},
				Details:  fmt.Sprintf("row %d has %d columns", i, len(row)),
			}
		}
		copy(m.data[i*cols:(i+1)*cols], row)
	}
	return m, nil
}

// Vector copies values into a new column vector.
func Vector(values []float64) *Matrix {
	m := New(len(values), 1)
	copy(m.data, values)
	return m
}

// FromDense copies a gonum matrix.
func FromDense(d mat.Matrix) *Matrix {
	r, c := d.Dims()
	m := New(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.data[i*c+j] = d.At(i, j)
		}
	}
	return m
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Shape returns the matrix dimensions.
func (m *Matrix) Shape() Shape {
	return Shape{Rows: m.rows, Cols: m.cols}
}

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[m.index(i, j)]
}

// Set stores v at row i, column j.
func (m *Matrix) Set(i, j int, v float64) {
	m.data[m.index(i, j)] = v
}

// Data returns the backing row-major slice. Writes go straight to the matrix.
func (m *Matrix) Data() []float64 {
	return m.data
}

// Values returns a copy of the backing buffer.
func (m *Matrix) Values() []float64 {
	out := make([]float64, len(m.data))
	copy(out, m.data)
	return out
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{rows: m.rows, cols: m.cols, data: m.Values()}
}

// ToRows copies the matrix into a slice of rows.
func (m *Matrix) ToRows() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = make([]float64, m.cols)
		copy(out[i], m.data[i*m.cols:(i+1)*m.cols])
	}
	return out
}

// Dense copies the matrix into a gonum *mat.Dense.
func (m *Matrix) Dense() *mat.Dense {
	if m.rows == 0 || m.cols == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(m.rows, m.cols, m.Values())
}

// Multiply computes the matrix product a·b.
//
// Requires a.Cols() == b.Rows(); the result has shape a.Rows() × b.Cols().
func Multiply(a, b *Matrix) (*Matrix, error) {
	if a.cols != b.rows {
		return nil, &DimensionError{
			Op:       "multiply",
			Expected: Shape{Rows: a.cols, Cols: b.cols},
			Actual:   b.Shape(),
			Details:  fmt.Sprintf("cannot multiply %v by %v", a.Shape(), b.Shape()),
		}
	}

	result := New(a.rows, b.cols)
	for i := 0; i < a.rows; i++ {
		dst := result.data[i*b.cols : (i+1)*b.cols]
		for k := 0; k < a.cols; k++ {
			// dst += a[i][k] * b[k][:]
			floats.AddScaled(dst, a.data[i*a.cols+k], b.data[k*b.cols:(k+1)*b.cols])
		}
	}
	return result, nil
}

// Transpose returns a new matrix with rows and columns swapped.
func (m *Matrix) Transpose() *Matrix {
	result := New(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			result.data[j*m.rows+i] = m.data[i*m.cols+j]
		}
	}
	return result
}

// Omit returns a copy of the matrix without column col.
func (m *Matrix) Omit(col int) *Matrix {
	if col < 0 || col >= m.cols {
		panic(fmt.Sprintf("matrix.Omit: column %d out of range for %v", col, m.Shape()))
	}
	result := New(m.rows, m.cols-1)
	k := 0
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if j == col {
				continue
			}
			result.data[k] = m.data[i*m.cols+j]
			k++
		}
	}
	return result
}

// Unshift returns a column vector with value prepended, one row longer than m.
func (m *Matrix) Unshift(value float64) (*Matrix, error) {
	if m.cols != 1 {
		return nil, &DimensionError{
			Op:       "unshift",
			Expected: Shape{Rows: m.rows, Cols: 1},
			Actual:   m.Shape(),
			Details:  "can only unshift column vectors",
		}
	}
	result := New(m.rows+1, 1)
	result.data[0] = value
	copy(result.data[1:], m.data)
	return result, nil
}

// Iterate calls f for every element of a column vector, top to bottom.
func (m *Matrix) Iterate(f func(value float64, row int)) {
	for i := 0; i < m.rows; i++ {
		f(m.data[i*m.cols], i)
	}
}

// MaxIndex returns the flat index of the largest element.
// The first index wins on ties.
func (m *Matrix) MaxIndex() int {
	if len(m.data) == 0 {
		return -1
	}
	return floats.MaxIdx(m.data)
}

// Equal reports whether both matrices have the same shape and values.
func (m *Matrix) Equal(other *Matrix) bool {
	return m.Shape().Equal(other.Shape()) && floats.Equal(m.data, other.data)
}

// EqualApprox reports whether both matrices have the same shape and all
// values are within tol of each other.
func (m *Matrix) EqualApprox(other *Matrix, tol float64) bool {
	return m.Shape().Equal(other.Shape()) && floats.EqualApprox(m.data, other.data, tol)
}

// String formats the matrix with its shape and rows.
func (m *Matrix) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Matrix(%v)[", m.Shape())
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v", m.data[i*m.cols:(i+1)*m.cols])
	}
	sb.WriteString("]")
	return sb.String()
}

func (m *Matrix) index(i, j int) int {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("matrix: index (%d, %d) out of range for %v", i, j, m.Shape()))
	}
	return i*m.cols + j
}
