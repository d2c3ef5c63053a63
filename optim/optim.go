// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/dense/internal/nn"
	"github.com/born-ml/dense/internal/optim"
)

// Optimizer updates the weights of a network from its batch gradient.
type Optimizer = optim.Optimizer

// Lookahead is implemented by optimizers that evaluate the gradient at
// speculatively advanced weights.
type Lookahead = optim.Lookahead

// Options carries the hyperparameters New understands.
type Options = optim.Options

// New returns the optimizer registered under name: "sgd", "momentum",
// "nesterov", "adagrad", "adadelta", "rmsprop" or "adam".
func New(name string, opts Options) (Optimizer, error) {
	return optim.New(name, opts)
}

// Names lists the registered optimizer names.
func Names() []string { return optim.Names() }

// SGD (Stochastic Gradient Descent)

// SGD represents gradient descent with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD.
type SGDConfig = optim.SGDConfig

// DefaultMomentum is the momentum of the "momentum" and "nesterov" optimizers.
const DefaultMomentum = optim.DefaultMomentum

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(optim.SGDConfig{Momentum: 0.9, Nesterov: true})
func NewSGD(config SGDConfig) *SGD { return optim.NewSGD(config) }

// Adaptive methods

// AdaGrad represents the AdaGrad optimizer.
type AdaGrad = optim.AdaGrad

// AdaGradConfig contains configuration for AdaGrad.
type AdaGradConfig = optim.AdaGradConfig

// NewAdaGrad creates a new AdaGrad optimizer.
func NewAdaGrad(config AdaGradConfig) *AdaGrad { return optim.NewAdaGrad(config) }

// AdaDelta represents the AdaDelta optimizer.
type AdaDelta = optim.AdaDelta

// AdaDeltaConfig contains configuration for AdaDelta.
type AdaDeltaConfig = optim.AdaDeltaConfig

// NewAdaDelta creates a new AdaDelta optimizer.
func NewAdaDelta(config AdaDeltaConfig) *AdaDelta { return optim.NewAdaDelta(config) }

// RMSProp represents the RMSProp optimizer.
type RMSProp = optim.RMSProp

// RMSPropConfig contains configuration for RMSProp.
type RMSPropConfig = optim.RMSPropConfig

// NewRMSProp creates a new RMSProp optimizer.
func NewRMSProp(config RMSPropConfig) *RMSProp { return optim.NewRMSProp(config) }

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
//
// Example:
//
//	optimizer := optim.NewAdam(optim.AdamConfig{
//	    Betas: [2]float64{0.9, 0.999},
//	    Eps:   1e-8,
//	})
func NewAdam(config AdamConfig) *Adam { return optim.NewAdam(config) }

// Loop

// Loop drives an optimizer over a network.
type Loop = optim.Loop

// LoopConfig configures a Loop.
type LoopConfig = optim.LoopConfig

// Report summarizes a finished Run.
type Report = optim.Report

// NewLoop creates a loop for opt.
func NewLoop(opt Optimizer, cfg LoopConfig) *Loop { return optim.NewLoop(opt, cfg) }

// StopOnNaN stops the loop once the batch loss is NaN or infinite.
func StopOnNaN(net *nn.Network, grad *nn.GradientResult, iteration int) bool {
	return optim.StopOnNaN(net, grad, iteration)
}

// StopBelow returns a StopCondition that ends the loop once the batch loss
// drops below threshold.
func StopBelow(threshold float64) func(*nn.Network, *nn.GradientResult, int) bool {
	return optim.StopBelow(threshold)
}

// Schedules

// Schedule yields the learning rate of an iteration.
type Schedule = optim.Schedule

// Constant is a fixed learning rate.
type Constant = optim.Constant

// ScheduleFunc adapts a function to Schedule.
type ScheduleFunc = optim.ScheduleFunc

// InverseTimeDecay is max(Min, Initial/(1+Decay·i)).
type InverseTimeDecay = optim.InverseTimeDecay

// ExponentialDecay is max(Min, Initial·Rate^⌊i/Steps⌋).
type ExponentialDecay = optim.ExponentialDecay

// Errors.
var (
	ErrNegativeLearningRate = optim.ErrNegativeLearningRate
	ErrUnknownOptimizer     = optim.ErrUnknownOptimizer
	ErrInvalidState         = optim.ErrInvalidState
)
