package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dense/internal/matrix"
)

func mustActivation(t *testing.T, kind ActivationKind) Activation {
	t.Helper()
	a, err := NewActivation(kind)
	require.NoError(t, err)
	return a
}

func TestActivation_HiddenOutputGetsBiasRow(t *testing.T) {
	sum := matrix.Vector([]float64{-2, 0.5, 3})

	for _, kind := range []ActivationKind{Identity, ReLU, TanH, Sigmoid, Softmax} {
		t.Run(kind.String(), func(t *testing.T) {
			a := mustActivation(t, kind)

			hidden, err := a.Forward(sum, false)
			require.NoError(t, err)
			assert.Equal(t, 4, hidden.Rows())
			assert.Equal(t, 1.0, hidden.At(0, 0))

			output, err := a.Forward(sum, true)
			require.NoError(t, err)
			assert.Equal(t, 3, output.Rows())
			assert.Equal(t, output.Data(), hidden.Data()[1:])
		})
	}
}

func TestActivation_Scalars(t *testing.T) {
	tests := []struct {
		kind       ActivationKind
		x          float64
		value      float64
		derivative float64
	}{
		{Identity, -3, -3, 1},
		{ReLU, -1, 0, 0},
		{ReLU, 0, 0, 0},
		{ReLU, 2.5, 2.5, 1},
		{TanH, 0, 0, 1},
		{TanH, 1, math.Tanh(1), 1 - math.Tanh(1)*math.Tanh(1)},
		{Sigmoid, 0, 0.5, 0.25},
		{Sigmoid, 2, 1 / (1 + math.Exp(-2)), math.Exp(-2) / ((1 + math.Exp(-2)) * (1 + math.Exp(-2)))},
	}

	for _, tt := range tests {
		a := mustActivation(t, tt.kind)
		sum := matrix.Vector([]float64{tt.x})

		out, err := a.Forward(sum, true)
		require.NoError(t, err)
		assert.InDelta(t, tt.value, out.At(0, 0), 1e-12, "%v(%v)", tt.kind, tt.x)

		d, err := a.Backward(sum)
		require.NoError(t, err)
		assert.InDelta(t, tt.derivative, d.At(0, 0), 1e-12, "%v'(%v)", tt.kind, tt.x)
	}
}

func TestActivation_ClampedExponent(t *testing.T) {
	sum := matrix.Vector([]float64{-1e6, -1000, 1000, 1e6})

	for _, kind := range []ActivationKind{TanH, Sigmoid} {
		a := mustActivation(t, kind)

		out, err := a.Forward(sum, true)
		require.NoError(t, err)
		d, err := a.Backward(sum)
		require.NoError(t, err)

		for i := range out.Data() {
			assert.False(t, math.IsNaN(out.Data()[i]) || math.IsInf(out.Data()[i], 0), "%v forward[%d]", kind, i)
			assert.False(t, math.IsNaN(d.Data()[i]) || math.IsInf(d.Data()[i], 0), "%v backward[%d]", kind, i)
		}
	}

	assert.InDelta(t, 1.0, sigmoid(1000), 1e-15)
	assert.Greater(t, sigmoid(-1000), 0.0)
	assert.Equal(t, 1.0, tanh(1000))
	assert.Equal(t, -1.0, tanh(-1000))
}

func TestSoftmax_SumsToOne(t *testing.T) {
	a := mustActivation(t, Softmax)

	inputs := [][]float64{
		{1, 2, 3},
		{0, 0, 0, 0},
		{1000, -1000, 999},
		{-1000, -1000},
		{1e6, -1e6},
	}
	for _, in := range inputs {
		out, err := a.Forward(matrix.Vector(in), true)
		require.NoError(t, err)

		var total float64
		for _, v := range out.Data() {
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "input %v", in)
			assert.GreaterOrEqual(t, v, 0.0)
			total += v
		}
		assert.InDelta(t, 1.0, total, 1e-9, "input %v", in)
	}
}

func TestSoftmax_ShiftInvariant(t *testing.T) {
	a := mustActivation(t, Softmax)
	base := []float64{0.3, -1.2, 2.5, 0}

	want, err := a.Forward(matrix.Vector(base), true)
	require.NoError(t, err)

	for _, c := range []float64{-1000, -7.5, 3, 1000} {
		shifted := make([]float64, len(base))
		for i, v := range base {
			shifted[i] = v + c
		}
		got, err := a.Forward(matrix.Vector(shifted), true)
		require.NoError(t, err)
		assert.True(t, got.EqualApprox(want, 1e-9), "shift %v: got %v want %v", c, got, want)
	}
}

func TestSoftmax_BackwardUnsupported(t *testing.T) {
	a := mustActivation(t, Softmax)

	_, err := a.Backward(matrix.Vector([]float64{1, 2}))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestSoftmax_FusedOutput(t *testing.T) {
	a := mustActivation(t, Softmax)

	delta, err := a.Output(matrix.Vector([]float64{0.7, 0.2, 0.1}), matrix.Vector([]float64{0, 1, 0}))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.7, -0.8, 0.1}, delta.Data(), 1e-12)

	_, err = a.Output(matrix.Vector([]float64{0.5, 0.5}), matrix.Vector([]float64{1}))
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestActivation_NoFusedOutput(t *testing.T) {
	a := mustActivation(t, Sigmoid)

	_, err := a.Output(matrix.Vector([]float64{0.5}), matrix.Vector([]float64{1}))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestParseActivation(t *testing.T) {
	for _, kind := range []ActivationKind{Identity, ReLU, TanH, Sigmoid, Softmax} {
		got, err := ParseActivation(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, got)
	}

	got, err := ParseActivation(" TanH ")
	require.NoError(t, err)
	assert.Equal(t, TanH, got)

	_, err = ParseActivation("gelu")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewActivation(ActivationKind(42))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Equal(t, "ActivationKind(42)", ActivationKind(42).String())
}
