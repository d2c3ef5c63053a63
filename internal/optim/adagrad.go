package optim

import (
	"math"

	"github.com/born-ml/dense/internal/matrix"
	"github.com/born-ml/dense/internal/nn"
)

// AdaGrad scales every weight's step by its accumulated squared gradient.
//
// Update rule:
//
//	s = s + g²
//	weights = weights - lr / (ε + √s) * g
//
// The accumulator never decays, so the effective learning rate only shrinks.
type AdaGrad struct {
	epsilon float64
	squared slot
}

// AdaGradConfig holds configuration for AdaGrad.
type AdaGradConfig struct {
	Eps float64 // Term for numerical stability (default: 1e-7)
}

// NewAdaGrad creates a new AdaGrad optimizer.
func NewAdaGrad(config AdaGradConfig) *AdaGrad {
	if config.Eps == 0 {
		config.Eps = 1e-7
	}
	return &AdaGrad{epsilon: config.Eps}
}

// Name returns "adagrad".
func (a *AdaGrad) Name() string { return "adagrad" }

// Step accumulates g² and updates the weights.
func (a *AdaGrad) Step(net *nn.Network, lr float64, grad *nn.GradientResult, _ int) error {
	if err := checkLayers(net, grad); err != nil {
		return err
	}
	if err := a.squared.ensure("squared", grad.Gradients); err != nil {
		return err
	}

	for l, g := range grad.Gradients {
		layer := net.Layers()[l]
		w := layer.Weights()
		wd, gd, sd := w.Data(), g.Data(), a.squared[l].Data()
		for k, gk := range gd {
			sd[k] += gk * gk
			wd[k] -= lr / (a.epsilon + math.Sqrt(sd[k])) * gk
		}
		if err := layer.UpdateWeights(w); err != nil {
			return err
		}
	}
	return nil
}

// State returns the accumulators as "squared.<layer>".
func (a *AdaGrad) State() map[string]*matrix.Matrix {
	state := make(map[string]*matrix.Matrix)
	a.squared.export("squared", state)
	return state
}

// LoadState restores the accumulators.
func (a *AdaGrad) LoadState(state map[string]*matrix.Matrix) error {
	squared, err := importSlot("squared", state)
	if err != nil {
		return err
	}
	a.squared = squared
	return nil
}
