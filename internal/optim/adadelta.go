package optim

import (
	"math"

	"github.com/born-ml/dense/internal/matrix"
	"github.com/born-ml/dense/internal/nn"
)

// AdaDelta adapts the step size from moving averages of squared gradients
// and squared updates. It ignores the learning rate.
//
// Update rule:
//
//	E[g²]  = ρ * E[g²] + (1-ρ) * g²
//	Δw     = -√(E[Δw²] + ε) / √(E[g²] + ε) * g
//	E[Δw²] = ρ * E[Δw²] + (1-ρ) * Δw²
//	weights = weights + Δw
type AdaDelta struct {
	rho     float64
	epsilon float64

	gradients slot // E[g²]
	deltas    slot // E[Δw²]
}

// AdaDeltaConfig holds configuration for AdaDelta.
type AdaDeltaConfig struct {
	Rho float64 // Decay of the moving averages (default: 0.9)
	Eps float64 // Term for numerical stability (default: 1e-7)
}

// NewAdaDelta creates a new AdaDelta optimizer.
func NewAdaDelta(config AdaDeltaConfig) *AdaDelta {
	if config.Rho == 0 {
		config.Rho = 0.9
	}
	if config.Eps == 0 {
		config.Eps = 1e-7
	}
	return &AdaDelta{rho: config.Rho, epsilon: config.Eps}
}

// Name returns "adadelta".
func (a *AdaDelta) Name() string { return "adadelta" }

// Step updates both moving averages and the weights. lr is unused.
func (a *AdaDelta) Step(net *nn.Network, _ float64, grad *nn.GradientResult, _ int) error {
	if err := checkLayers(net, grad); err != nil {
		return err
	}
	if err := a.gradients.ensure("gradients", grad.Gradients); err != nil {
		return err
	}
	if err := a.deltas.ensure("deltas", grad.Gradients); err != nil {
		return err
	}

	for l, g := range grad.Gradients {
		layer := net.Layers()[l]
		w := layer.Weights()
		wd, gd := w.Data(), g.Data()
		eg, ed := a.gradients[l].Data(), a.deltas[l].Data()
		for k, gk := range gd {
			eg[k] = a.rho*eg[k] + (1-a.rho)*gk*gk
			delta := -math.Sqrt(ed[k]+a.epsilon) / math.Sqrt(eg[k]+a.epsilon) * gk
			ed[k] = a.rho*ed[k] + (1-a.rho)*delta*delta
			wd[k] += delta
		}
		if err := layer.UpdateWeights(w); err != nil {
			return err
		}
	}
	return nil
}

// State returns "gradients.<layer>" (E[g²]) and "deltas.<layer>" (E[Δw²]).
func (a *AdaDelta) State() map[string]*matrix.Matrix {
	state := make(map[string]*matrix.Matrix)
	a.gradients.export("gradients", state)
	a.deltas.export("deltas", state)
	return state
}

// LoadState restores both moving averages.
func (a *AdaDelta) LoadState(state map[string]*matrix.Matrix) error {
	gradients, err := importSlot("gradients", state)
	if err != nil {
		return err
	}
	deltas, err := importSlot("deltas", state)
	if err != nil {
		return err
	}
	a.gradients, a.deltas = gradients, deltas
	return nil
}
