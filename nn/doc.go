// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides feedforward networks of fully connected layers.
//
// # Overview
//
// This package contains:
//   - Network: ordered dense layers sharing one loss
//   - Activations: Identity, ReLU, TanH, Sigmoid, Softmax
//   - Loss functions: LogLoss, CrossEntropy, MeanSquaredError
//   - Gradient checking against central finite differences
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/dense/nn"
//	    "github.com/born-ml/dense/optim"
//	)
//
//	func main() {
//	    net, _ := nn.NewNetwork(nn.Config{Loss: nn.LogLoss, InputSize: 2})
//	    net.Add(nn.TanH, 2)
//	    net.Add(nn.Sigmoid, 1)
//	    if err := net.Initialize(nil); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    net.SetBatch(samples)
//	    loop := optim.NewLoop(optim.NewAdam(optim.AdamConfig{}), optim.LoopConfig{
//	        LearningRate:  optim.Constant(0.01),
//	        MaxIterations: 1000,
//	    })
//	    report, err := loop.Run(net)
//	}
//
// # Layers
//
// Every layer is fully connected. Its weight matrix has one row per neuron
// and one column per input plus a leading bias column. A constant 1 is
// prepended to the activations passed between layers.
//
// # Softmax
//
// Softmax is supported on the output layer only and requires the
// CrossEntropy loss; the two are differentiated together.
package nn
