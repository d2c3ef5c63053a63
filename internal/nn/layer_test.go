package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dense/internal/matrix"
)

func mustLayer(t *testing.T, kind ActivationKind, neurons int, loss LossKind, rows [][]float64, isOutput bool) *Layer {
	t.Helper()
	layer, err := NewLayer(kind, neurons, loss)
	require.NoError(t, err)
	w, err := matrix.FromRows(rows)
	require.NoError(t, err)
	require.NoError(t, layer.Initialize(w, isOutput))
	return layer
}

func TestLayer_HiddenForwardPass(t *testing.T) {
	layer := mustLayer(t, TanH, 2, LogLoss, [][]float64{
		{0.5, 0.5, 0.5},
		{-0.5, -0.5, -0.5},
	}, false)

	result, err := layer.ForwardPass(matrix.Vector([]float64{1, 1, 1}), matrix.Vector([]float64{0}))
	require.NoError(t, err)

	assert.Equal(t, []float64{1.5, -1.5}, result.Sum.Data())
	assert.InDeltaSlice(t, []float64{1, math.Tanh(1.5), -math.Tanh(1.5)}, result.Activated.Data(), 1e-12)
	assert.Equal(t, NoLoss, result.Loss)
}

func TestLayer_OutputForwardPass(t *testing.T) {
	layer := mustLayer(t, Sigmoid, 1, LogLoss, [][]float64{{0, 1, 0}}, true)

	result, err := layer.ForwardPass(matrix.Vector([]float64{1, 0, 5}), matrix.Vector([]float64{1}))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Activated.Rows())
	assert.InDelta(t, 0.5, result.Activated.At(0, 0), 1e-12)
	assert.InDelta(t, math.Ln2, result.Loss, 1e-12)

	result, err = layer.ForwardPass(matrix.Vector([]float64{1, 0, 5}), nil)
	require.NoError(t, err)
	assert.Equal(t, NoLoss, result.Loss)
}

func TestLayer_ForwardPassInputMismatch(t *testing.T) {
	layer := mustLayer(t, ReLU, 2, MeanSquaredError, [][]float64{{0, 1}, {0, 1}}, false)

	_, err := layer.ForwardPass(matrix.Vector([]float64{1, 2, 3}), nil)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestLayer_BackwardPassUsesCachedTranspose(t *testing.T) {
	hidden := mustLayer(t, Identity, 2, MeanSquaredError, [][]float64{{0, 1}, {0, 1}}, false)
	next := mustLayer(t, Identity, 1, MeanSquaredError, [][]float64{{9, 2, 3}}, true)

	result := LayerResult{Sum: matrix.Vector([]float64{0.1, 0.2})}
	delta, err := hidden.BackwardPass(result, matrix.Vector([]float64{1}), next)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, delta.Data(), "bias weight 9 must not propagate")

	w := next.Weights()
	w.Set(0, 1, 4)
	w.Set(0, 2, 5)
	require.NoError(t, next.UpdateWeights(w))

	delta, err = hidden.BackwardPass(result, matrix.Vector([]float64{2}), next)
	require.NoError(t, err)
	assert.Equal(t, []float64{8, 10}, delta.Data())
}

func TestLayer_BackwardPassAppliesDerivative(t *testing.T) {
	hidden := mustLayer(t, ReLU, 2, MeanSquaredError, [][]float64{{0, 1}, {0, 1}}, false)
	next := mustLayer(t, Identity, 1, MeanSquaredError, [][]float64{{0, 2, 3}}, true)

	result := LayerResult{Sum: matrix.Vector([]float64{-1, 1})}
	delta, err := hidden.BackwardPass(result, matrix.Vector([]float64{1}), next)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 3}, delta.Data())
}

func TestLayer_OutputPass(t *testing.T) {
	layer := mustLayer(t, Sigmoid, 1, MeanSquaredError, [][]float64{{0, 1}}, true)

	result := LayerResult{
		Sum:       matrix.Vector([]float64{0}),
		Activated: matrix.Vector([]float64{0.5}),
	}
	delta, err := layer.OutputPass(result, matrix.Vector([]float64{1}))
	require.NoError(t, err)
	// (0.5 - 1) · σ′(0)
	assert.InDelta(t, -0.125, delta.At(0, 0), 1e-12)
}

func TestLayer_SoftmaxOutputPass(t *testing.T) {
	activated := matrix.Vector([]float64{0.6, 0.4})
	expected := matrix.Vector([]float64{1, 0})
	result := LayerResult{Sum: matrix.Vector([]float64{1, 0.6}), Activated: activated}

	ce := mustLayer(t, Softmax, 2, CrossEntropy, [][]float64{{0, 1}, {0, 1}}, true)
	delta, err := ce.OutputPass(result, expected)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-0.4, 0.4}, delta.Data(), 1e-12)

	mse := mustLayer(t, Softmax, 2, MeanSquaredError, [][]float64{{0, 1}, {0, 1}}, true)
	_, err = mse.OutputPass(result, expected)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestLayer_UpdateWeightsShape(t *testing.T) {
	layer := mustLayer(t, TanH, 2, MeanSquaredError, [][]float64{{0, 1}, {0, 1}}, false)

	err := layer.UpdateWeights(matrix.New(2, 3))
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	uninitialized, err := NewLayer(TanH, 2, MeanSquaredError)
	require.NoError(t, err)
	assert.ErrorIs(t, uninitialized.UpdateWeights(matrix.New(2, 2)), ErrNotInitialized)

	_, err = uninitialized.ForwardPass(matrix.Vector([]float64{1, 1}), nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestNewLayer_Invalid(t *testing.T) {
	_, err := NewLayer(TanH, 0, MeanSquaredError)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewLayer(ActivationKind(-1), 2, MeanSquaredError)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewLayer(TanH, 2, LossKind(0))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
