// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dense/nn"
	"github.com/born-ml/dense/optim"
)

// TestOptimizerInterface verifies every registered optimizer satisfies Optimizer.
func TestOptimizerInterface(t *testing.T) {
	var _ optim.Optimizer = optim.NewSGD(optim.SGDConfig{})
	var _ optim.Optimizer = optim.NewAdaGrad(optim.AdaGradConfig{})
	var _ optim.Optimizer = optim.NewAdaDelta(optim.AdaDeltaConfig{})
	var _ optim.Optimizer = optim.NewRMSProp(optim.RMSPropConfig{})
	var _ optim.Optimizer = optim.NewAdam(optim.AdamConfig{})
	var _ optim.Lookahead = optim.NewSGD(optim.SGDConfig{Nesterov: true})

	for _, name := range optim.Names() {
		opt, err := optim.New(name, optim.Options{})
		require.NoError(t, err)
		assert.Equal(t, name, opt.Name())
	}
}

// TestLoop verifies a public loop reduces the loss of a linear model.
func TestLoop(t *testing.T) {
	net, err := nn.NewNetwork(nn.Config{Loss: nn.MeanSquaredError, InputSize: 1})
	require.NoError(t, err)
	require.NoError(t, net.Add(nn.Identity, 1))
	require.NoError(t, net.Initialize([][][]float64{{{0, 0}}}))
	net.SetBatch([]nn.Sample{
		{Input: []float64{0}, Expected: []float64{1}},
		{Input: []float64{1}, Expected: []float64{3}},
	})

	loop := optim.NewLoop(optim.NewSGD(optim.SGDConfig{Momentum: 0.5}), optim.LoopConfig{
		LearningRate:  optim.Constant(0.1),
		MaxIterations: 500,
		StopCondition: optim.StopBelow(1e-8),
	})
	report, err := loop.Run(net)
	require.NoError(t, err)
	assert.Less(t, report.Loss, 1e-6)

	out, err := net.Predict([]float64{2})
	require.NoError(t, err)
	assert.InDelta(t, 5, out[0], 1e-2)
}
