// Package optim implements gradient-based optimizers for dense networks.
//
// This package provides:
//   - Optimizer interface: one update rule advanced by Step
//   - SGD: gradient descent with optional momentum and Nesterov lookahead
//   - AdaGrad, AdaDelta, RMSProp, Adam: adaptive per-weight learning rates
//   - Loop: the iteration contract shared by every optimizer
//   - Schedule: constant or per-iteration learning rates
//
// Example usage:
//
//	opt := optim.NewAdam(optim.AdamConfig{})
//	loop := optim.NewLoop(opt, optim.LoopConfig{
//	    LearningRate:  optim.Constant(0.001),
//	    MaxIterations: 1000,
//	    StopCondition: optim.StopOnNaN,
//	})
//
//	net.SetBatch(batch)
//	report, err := loop.Run(net)
package optim

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/born-ml/dense/internal/matrix"
	"github.com/born-ml/dense/internal/nn"
)

// Common errors.
var (
	ErrNegativeLearningRate = errors.New("negative learning rate")
	ErrUnknownOptimizer     = errors.New("unknown optimizer")
	ErrInvalidState         = errors.New("invalid optimizer state")
)

// Optimizer updates the weights of a network from its batch gradient.
//
// An optimizer owns its state (velocities, moving averages). State is
// zero-initialized on the first Step, shaped like the weights, and must
// not be shared between networks.
type Optimizer interface {
	// Name identifies the update rule, e.g. "adam".
	Name() string

	// Step applies one update with learning rate lr to every layer.
	// iteration is the zero-based loop iteration.
	Step(net *nn.Network, lr float64, grad *nn.GradientResult, iteration int) error

	// State returns a copy of the internal state.
	// Keys are "<slot>.<layer>", e.g. "velocity.0".
	State() map[string]*matrix.Matrix

	// LoadState replaces the internal state with a copy of state.
	// Shapes are validated against the gradients on the next Step.
	LoadState(state map[string]*matrix.Matrix) error
}

// Lookahead is implemented by optimizers that evaluate the gradient at
// speculatively advanced weights.
type Lookahead interface {
	// Lookahead snapshots the weights and moves them to the point where
	// the next gradient is evaluated.
	Lookahead(net *nn.Network) error

	// Restore puts the snapshot back when the loop stops before Step.
	Restore(net *nn.Network) error
}

// Options carries the hyperparameters New understands. Zero values select
// each optimizer's defaults.
type Options struct {
	Momentum float64    // sgd, momentum, nesterov
	Rho      float64    // adadelta, rmsprop
	Betas    [2]float64 // adam
	Eps      float64    // adagrad, adadelta, rmsprop, adam
}

var constructors = map[string]func(Options) Optimizer{
	"sgd": func(o Options) Optimizer {
		return NewSGD(SGDConfig{Momentum: o.Momentum})
	},
	"momentum": func(o Options) Optimizer {
		if o.Momentum == 0 {
			o.Momentum = DefaultMomentum
		}
		return NewSGD(SGDConfig{Momentum: o.Momentum})
	},
	"nesterov": func(o Options) Optimizer {
		if o.Momentum == 0 {
			o.Momentum = DefaultMomentum
		}
		return NewSGD(SGDConfig{Momentum: o.Momentum, Nesterov: true})
	},
	"adagrad": func(o Options) Optimizer {
		return NewAdaGrad(AdaGradConfig{Eps: o.Eps})
	},
	"adadelta": func(o Options) Optimizer {
		return NewAdaDelta(AdaDeltaConfig{Rho: o.Rho, Eps: o.Eps})
	},
	"rmsprop": func(o Options) Optimizer {
		return NewRMSProp(RMSPropConfig{Rho: o.Rho, Eps: o.Eps})
	},
	"adam": func(o Options) Optimizer {
		return NewAdam(AdamConfig{Betas: o.Betas, Eps: o.Eps})
	},
}

// New returns the optimizer registered under name.
func New(name string, opts Options) (Optimizer, error) {
	ctor, ok := constructors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownOptimizer, name, strings.Join(Names(), ", "))
	}
	return ctor(opts), nil
}

// Names lists the registered optimizer names in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
