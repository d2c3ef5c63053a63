// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package matrix provides the dense float64 matrices used by the training engine.
//
// Matrices are row-major and never change shape implicitly. Column vectors
// carry inputs, activations and deltas; weight matrices are
// neurons × (inputs+1) with the bias in column 0.
//
// Example:
//
//	w, _ := matrix.FromRows([][]float64{{0.5, 0.5, 0.5}})
//	x, _ := matrix.Vector([]float64{1, 0}).Unshift(1)
//	y, err := matrix.Multiply(w, x)
package matrix

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/dense/internal/matrix"
)

// Matrix is a dense rows×cols matrix of float64 values.
type Matrix = matrix.Matrix

// Shape is a matrix dimension.
type Shape = matrix.Shape

// DimensionError reports incompatible operand shapes.
type DimensionError = matrix.DimensionError

// ErrDimensionMismatch matches every DimensionError with errors.Is.
var ErrDimensionMismatch = matrix.ErrDimensionMismatch

// New creates a zero-filled matrix.
func New(rows, cols int) *Matrix { return matrix.New(rows, cols) }

// Zeros creates a zero-filled matrix with the given shape.
func Zeros(shape Shape) *Matrix { return matrix.Zeros(shape) }

// FromSlice creates a matrix that takes ownership of data (row-major).
func FromSlice(data []float64, rows, cols int) (*Matrix, error) {
	return matrix.FromSlice(data, rows, cols)
}

// FromRows copies equally long rows into a new matrix.
func FromRows(rows [][]float64) (*Matrix, error) { return matrix.FromRows(rows) }

// Vector copies values into a new column vector.
func Vector(values []float64) *Matrix { return matrix.Vector(values) }

// FromDense copies a gonum matrix.
func FromDense(d mat.Matrix) *Matrix { return matrix.FromDense(d) }

// Multiply computes the matrix product a·b.
func Multiply(a, b *Matrix) (*Matrix, error) { return matrix.Multiply(a, b) }
