// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/dense/internal/nn"
)

// Network is a feedforward neural network.
type Network = nn.Network

// Config describes a network before any layer is added.
type Config = nn.Config

// Sample is one (input, expected output) pair.
type Sample = nn.Sample

// Layer is a fully connected layer.
type Layer = nn.Layer

// Results

// ForwardResult holds the intermediate values of one forward pass.
type ForwardResult = nn.ForwardResult

// LayerResult is the output of one layer in a forward pass.
type LayerResult = nn.LayerResult

// SampleResult is a forward pass plus its per-layer deltas.
type SampleResult = nn.SampleResult

// GradientResult is the mean gradient and loss over a batch.
type GradientResult = nn.GradientResult

// SetResult summarizes a network over a set of samples.
type SetResult = nn.SetResult

// GradientCheck compares analytic and numeric gradients.
type GradientCheck = nn.GradientCheck

// NewNetwork creates an empty network.
//
// Example:
//
//	net, err := nn.NewNetwork(nn.Config{Loss: nn.CrossEntropy, InputSize: 784})
func NewNetwork(cfg Config) (*Network, error) {
	return nn.NewNetwork(cfg)
}

// Activations

// ActivationKind selects a neuron activation function.
type ActivationKind = nn.ActivationKind

// Activation kinds.
const (
	Identity = nn.Identity
	ReLU     = nn.ReLU
	TanH     = nn.TanH
	Sigmoid  = nn.Sigmoid
	Softmax  = nn.Softmax
)

// ParseActivation maps a name such as "relu" to its kind.
func ParseActivation(name string) (ActivationKind, error) {
	return nn.ParseActivation(name)
}

// Losses

// LossKind selects the error function of a network.
type LossKind = nn.LossKind

// Loss kinds.
const (
	LogLoss          = nn.LogLoss
	CrossEntropy     = nn.CrossEntropy
	MeanSquaredError = nn.MeanSquaredError
)

// ParseLoss maps a name such as "mse" to its kind.
func ParseLoss(name string) (LossKind, error) {
	return nn.ParseLoss(name)
}

// NoLoss is the loss reported by a forward pass without expected output.
const NoLoss = nn.NoLoss

// DefaultGradientStep is the finite-difference step of CheckGradient.
const DefaultGradientStep = nn.DefaultGradientStep

// Errors.
var (
	ErrInvalidConfiguration = nn.ErrInvalidConfiguration
	ErrNotInitialized       = nn.ErrNotInitialized
	ErrEmptyBatch           = nn.ErrEmptyBatch
)
