package matrix

import "gonum.org/v1/gonum/floats"

// Sum returns m + other.
func (m *Matrix) Sum(other *Matrix) *Matrix {
	m.mustMatch("sum", other)
	result := New(m.rows, m.cols)
	floats.AddTo(result.data, m.data, other.data)
	return result
}

// SumInPlace adds other to m and returns m.
func (m *Matrix) SumInPlace(other *Matrix) *Matrix {
	m.mustMatch("sum", other)
	floats.Add(m.data, other.data)
	return m
}

// Subtract returns m - other.
func (m *Matrix) Subtract(other *Matrix) *Matrix {
	m.mustMatch("subtract", other)
	result := New(m.rows, m.cols)
	floats.SubTo(result.data, m.data, other.data)
	return result
}

// SubtractInPlace subtracts other from m and returns m.
func (m *Matrix) SubtractInPlace(other *Matrix) *Matrix {
	m.mustMatch("subtract", other)
	floats.Sub(m.data, other.data)
	return m
}

// Hadamard returns the element-wise product m ⊙ other.
func (m *Matrix) Hadamard(other *Matrix) *Matrix {
	m.mustMatch("hadamard", other)
	result := New(m.rows, m.cols)
	floats.MulTo(result.data, m.data, other.data)
	return result
}

// HadamardInPlace multiplies m element-wise by other and returns m.
func (m *Matrix) HadamardInPlace(other *Matrix) *Matrix {
	m.mustMatch("hadamard", other)
	floats.Mul(m.data, other.data)
	return m
}

// Scale returns value * m.
func (m *Matrix) Scale(value float64) *Matrix {
	result := New(m.rows, m.cols)
	floats.ScaleTo(result.data, value, m.data)
	return result
}

// ScaleInPlace multiplies every element of m by value and returns m.
func (m *Matrix) ScaleInPlace(value float64) *Matrix {
	floats.Scale(value, m.data)
	return m
}

// AddScaledInPlace computes m += alpha * other and returns m.
func (m *Matrix) AddScaledInPlace(alpha float64, other *Matrix) *Matrix {
	m.mustMatch("add scaled", other)
	floats.AddScaled(m.data, alpha, other.data)
	return m
}

// Map returns a new matrix with f applied to every element.
func (m *Matrix) Map(f func(value float64, row, col int) float64) *Matrix {
	result := New(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			k := i*m.cols + j
			result.data[k] = f(m.data[k], i, j)
		}
	}
	return result
}

// MapInPlace applies f to every element of m and returns m.
func (m *Matrix) MapInPlace(f func(value float64, row, col int) float64) *Matrix {
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			k := i*m.cols + j
			m.data[k] = f(m.data[k], i, j)
		}
	}
	return m
}

// Fill sets every element to value and returns m.
func (m *Matrix) Fill(value float64) *Matrix {
	for i := range m.data {
		m.data[i] = value
	}
	return m
}

// mustMatch panics with a *DimensionError when shapes differ.
// Element-wise ops are only called on shapes the engine derived itself.
func (m *Matrix) mustMatch(op string, other *Matrix) {
	if !m.Shape().Equal(other.Shape()) {
		panic(&DimensionError{Op: op, Expected: m.Shape(), Actual: other.Shape()})
	}
}
