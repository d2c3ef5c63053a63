// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training dense networks.
//
// # Overview
//
// This package contains:
//   - SGD: gradient descent with optional momentum and Nesterov lookahead
//   - AdaGrad, AdaDelta, RMSProp, Adam: adaptive per-weight learning rates
//   - Loop: the iteration contract shared by every optimizer
//   - Schedules: constant, inverse-time decay, exponential decay
//
// # Basic Usage
//
//	opt, err := optim.New("adam", optim.Options{})
//	loop := optim.NewLoop(opt, optim.LoopConfig{
//	    LearningRate:  optim.InverseTimeDecay{Initial: 0.01, Decay: 1e-3},
//	    MaxIterations: 5000,
//	    StopCondition: optim.StopBelow(1e-3),
//	})
//
//	net.SetBatch(batch)
//	report, err := loop.Run(net)
//
// # Loop
//
// Each iteration runs, in order: BeforeIteration, the optimizer lookahead
// (Nesterov only), gradient computation on the network's batch,
// StopCondition, the update and AfterIteration. BeforeIteration may swap
// the batch for mini-batch training. AfterAll runs once at the end.
//
// # Optimizers
//
// SGD (Stochastic Gradient Descent):
//   - velocity = momentum * velocity - lr * gradient
//   - weights += velocity
//
// AdaGrad:
//   - accumulates squared gradients, scales each step by 1/sqrt(sum)
//
// AdaDelta:
//   - needs no learning rate; ratio of running RMS of updates and gradients
//
// RMSProp:
//   - running average of squared gradients with decay rho
//
// Adam:
//   - bias-corrected first and second moment estimates
package optim
