package optim

import (
	"math"

	"github.com/born-ml/dense/internal/matrix"
	"github.com/born-ml/dense/internal/nn"
)

// RMSProp divides the learning rate by a moving average of squared gradients.
//
// Update rule:
//
//	E[g²] = ρ * E[g²] + (1-ρ) * g²
//	weights = weights - lr / √(E[g²] + ε) * g
type RMSProp struct {
	rho     float64
	epsilon float64
	squared slot
}

// RMSPropConfig holds configuration for RMSProp.
type RMSPropConfig struct {
	Rho float64 // Decay of the moving average (default: 0.9)
	Eps float64 // Term for numerical stability (default: 1e-7)
}

// NewRMSProp creates a new RMSProp optimizer.
func NewRMSProp(config RMSPropConfig) *RMSProp {
	if config.Rho == 0 {
		config.Rho = 0.9
	}
	if config.Eps == 0 {
		config.Eps = 1e-7
	}
	return &RMSProp{rho: config.Rho, epsilon: config.Eps}
}

// Name returns "rmsprop".
func (r *RMSProp) Name() string { return "rmsprop" }

// Step updates the moving average and the weights.
func (r *RMSProp) Step(net *nn.Network, lr float64, grad *nn.GradientResult, _ int) error {
	if err := checkLayers(net, grad); err != nil {
		return err
	}
	if err := r.squared.ensure("squared", grad.Gradients); err != nil {
		return err
	}

	for l, g := range grad.Gradients {
		layer := net.Layers()[l]
		w := layer.Weights()
		wd, gd, sd := w.Data(), g.Data(), r.squared[l].Data()
		for k, gk := range gd {
			sd[k] = r.rho*sd[k] + (1-r.rho)*gk*gk
			wd[k] -= lr / math.Sqrt(sd[k]+r.epsilon) * gk
		}
		if err := layer.UpdateWeights(w); err != nil {
			return err
		}
	}
	return nil
}

// State returns the moving averages as "squared.<layer>".
func (r *RMSProp) State() map[string]*matrix.Matrix {
	state := make(map[string]*matrix.Matrix)
	r.squared.export("squared", state)
	return state
}

// LoadState restores the moving averages.
func (r *RMSProp) LoadState(state map[string]*matrix.Matrix) error {
	squared, err := importSlot("squared", state)
	if err != nil {
		return err
	}
	r.squared = squared
	return nil
}
