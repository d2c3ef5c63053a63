// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dense/nn"
)

// TestNetwork verifies the public API builds and evaluates a network.
func TestNetwork(t *testing.T) {
	net, err := nn.NewNetwork(nn.Config{Loss: nn.MeanSquaredError, InputSize: 2})
	require.NoError(t, err)
	require.NoError(t, net.Add(nn.ReLU, 2))
	require.NoError(t, net.Add(nn.Identity, 1))
	require.NoError(t, net.Initialize([][][]float64{
		{{0, 1, 0}, {0, 0, 1}},
		{{0.5, 1, 1}},
	}))

	out, err := net.Predict([]float64{2, 3})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{5.5}, out, 1e-12)

	result, err := net.ForwardPass([]float64{2, 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, nn.NoLoss, result.Loss)
}

// TestParse verifies names round-trip through the public parsers.
func TestParse(t *testing.T) {
	for _, kind := range []nn.ActivationKind{nn.Identity, nn.ReLU, nn.TanH, nn.Sigmoid, nn.Softmax} {
		parsed, err := nn.ParseActivation(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}
	for _, kind := range []nn.LossKind{nn.LogLoss, nn.CrossEntropy, nn.MeanSquaredError} {
		parsed, err := nn.ParseLoss(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}
}

func TestErrors(t *testing.T) {
	_, err := nn.NewNetwork(nn.Config{})
	assert.ErrorIs(t, err, nn.ErrInvalidConfiguration)
}
