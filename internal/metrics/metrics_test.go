package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dense/internal/nn"
)

func binary(pairs ...[2]float64) []Prediction {
	points := make([]Prediction, len(pairs))
	for i, p := range pairs {
		points[i] = Prediction{Estimate: []float64{p[0]}, Expected: []float64{p[1]}}
	}
	return points
}

func TestBinaryAccuracy(t *testing.T) {
	points := binary([2]float64{0.9, 1}, [2]float64{0.4, 0}, [2]float64{0.6, 0}, [2]float64{0.2, 1})

	acc, err := BinaryAccuracy(points, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, acc, 1e-12)

	acc, err = BinaryAccuracy(points, 0.7)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, acc, 1e-12)

	_, err = BinaryAccuracy(nil, 0.5)
	assert.ErrorIs(t, err, ErrNoPoints)
}

func TestCategoricalAccuracy(t *testing.T) {
	points := []Prediction{
		{Estimate: []float64{0.1, 0.7, 0.2}, Expected: []float64{0, 1, 0}},
		{Estimate: []float64{0.5, 0.3, 0.2}, Expected: []float64{0, 0, 1}},
	}

	acc, err := CategoricalAccuracy(points)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, acc, 1e-12)
}

func TestAUC(t *testing.T) {
	tests := []struct {
		name   string
		points []Prediction
		want   float64
	}{
		{"separable", binary([2]float64{0.9, 1}, [2]float64{0.8, 1}, [2]float64{0.3, 0}, [2]float64{0.1, 0}), 1},
		{"inverted", binary([2]float64{0.1, 1}, [2]float64{0.2, 1}, [2]float64{0.8, 0}, [2]float64{0.9, 0}), 0},
		{"constant", binary([2]float64{0.5, 1}, [2]float64{0.5, 0}, [2]float64{0.5, 1}, [2]float64{0.5, 0}), 0.5},
		{"one swap", binary([2]float64{0.9, 1}, [2]float64{0.6, 0}, [2]float64{0.4, 1}, [2]float64{0.1, 0}), 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auc, err := AUC(tt.points)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, auc, 1e-12)
		})
	}
}

func TestAUC_SingleClass(t *testing.T) {
	_, err := AUC(binary([2]float64{0.9, 1}, [2]float64{0.2, 1}))
	assert.Error(t, err)
}

func TestPredictions(t *testing.T) {
	samples := []nn.Sample{{Input: []float64{1}, Expected: []float64{1}}}

	points, err := Predictions(samples, [][]float64{{0.8}})
	require.NoError(t, err)
	assert.Equal(t, []Prediction{{Estimate: []float64{0.8}, Expected: []float64{1}}}, points)

	_, err = Predictions(samples, nil)
	assert.Error(t, err)
}
