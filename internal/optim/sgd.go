package optim

import (
	"fmt"

	"github.com/born-ml/dense/internal/matrix"
	"github.com/born-ml/dense/internal/nn"
)

// DefaultMomentum is used by the "momentum" and "nesterov" optimizers when
// no momentum is configured.
const DefaultMomentum = 0.5

// SGD implements gradient descent with optional momentum.
//
// Update rule:
//
//	velocity = momentum * velocity - lr * gradient
//	weights  = weights + velocity
//
// With momentum 0 this is plain gradient descent.
//
// With Nesterov enabled the loop calls Lookahead before the gradient is
// computed: the weights are snapshotted and moved to
// snapshot + momentum * velocity. Step then sets the weights to
// snapshot + velocity, so the lookahead only decides where the gradient
// is evaluated.
//
// Example:
//
//	sgd := optim.NewSGD(optim.SGDConfig{
//	    Momentum: 0.9,
//	    Nesterov: true,
//	})
type SGD struct {
	momentum float64
	nesterov bool
	velocity slot
	snapshot []*matrix.Matrix
}

// SGDConfig holds configuration for SGD.
type SGDConfig struct {
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
	Nesterov bool    // Evaluate the gradient at the momentum lookahead point
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	return &SGD{
		momentum: config.Momentum,
		nesterov: config.Nesterov,
	}
}

// Name returns "sgd", "momentum" or "nesterov".
func (s *SGD) Name() string {
	switch {
	case s.nesterov:
		return "nesterov"
	case s.momentum != 0:
		return "momentum"
	default:
		return "sgd"
	}
}

// Lookahead moves the weights to snapshot + momentum * velocity.
// It is a no-op without Nesterov or before the first Step.
func (s *SGD) Lookahead(net *nn.Network) error {
	if !s.nesterov {
		return nil
	}
	s.snapshot = net.Weights()
	if s.velocity == nil {
		return nil
	}
	if len(s.velocity) != len(s.snapshot) {
		return fmt.Errorf("%w: velocity has %d layers, network has %d", ErrInvalidState, len(s.velocity), len(s.snapshot))
	}

	for l, layer := range net.Layers() {
		w := layer.Weights()
		w.AddScaledInPlace(s.momentum, s.velocity[l])
		if err := layer.UpdateWeights(w); err != nil {
			return err
		}
	}
	return nil
}

// Restore puts back the weights saved by the last Lookahead.
func (s *SGD) Restore(net *nn.Network) error {
	if s.snapshot == nil {
		return nil
	}
	for l, w := range s.snapshot {
		if err := net.SetWeights(l, w); err != nil {
			return err
		}
	}
	s.snapshot = nil
	return nil
}

// Step updates the velocity and the weights.
func (s *SGD) Step(net *nn.Network, lr float64, grad *nn.GradientResult, _ int) error {
	if err := checkLayers(net, grad); err != nil {
		return err
	}
	if err := s.velocity.ensure("velocity", grad.Gradients); err != nil {
		return err
	}

	for l, g := range grad.Gradients {
		v := s.velocity[l]
		v.ScaleInPlace(s.momentum).AddScaledInPlace(-lr, g)

		if s.snapshot != nil {
			if err := net.SetWeights(l, s.snapshot[l].SumInPlace(v)); err != nil {
				return err
			}
			continue
		}
		if err := apply(net, l, v); err != nil {
			return err
		}
	}
	s.snapshot = nil
	return nil
}

// State returns the velocities as "velocity.<layer>".
func (s *SGD) State() map[string]*matrix.Matrix {
	state := make(map[string]*matrix.Matrix)
	s.velocity.export("velocity", state)
	return state
}

// LoadState restores the velocities.
func (s *SGD) LoadState(state map[string]*matrix.Matrix) error {
	velocity, err := importSlot("velocity", state)
	if err != nil {
		return err
	}
	s.velocity = velocity
	s.snapshot = nil
	return nil
}
