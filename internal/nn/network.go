// Package nn implements feedforward networks for the dense training engine.
//
// A Network is an ordered list of fully connected layers sharing one loss.
// It performs forward propagation, backpropagation and mini-batch gradient
// aggregation; weight updates are left to the optim package.
package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/dense/internal/matrix"
	"github.com/born-ml/dense/internal/parallel"
)

// Sample is one (input, expected output) pair.
type Sample struct {
	Input    []float64
	Expected []float64
}

// Config describes a network before any layer is added.
type Config struct {
	Loss       LossKind        // Error function shared by all layers.
	InputSize  int             // Input dimension; 0 takes it from the first batch sample.
	RandomBias bool            // Randomize bias weights at Initialize instead of zeroing them.
	Seed       uint64          // Seed for random weights; 0 picks a random seed.
	Parallel   parallel.Config // Per-sample fan-out inside ComputeGradient.
}

// ForwardResult holds every intermediate value of one forward pass.
type ForwardResult struct {
	Input  *matrix.Matrix // network input with the leading bias 1
	Layers []LayerResult
	Output *matrix.Matrix // activated output of the last layer
	Loss   float64        // loss of Output, or NoLoss without an expected vector
}

// SampleResult is a forward pass plus the per-layer deltas of its backward pass.
type SampleResult struct {
	*ForwardResult
	Deltas []*matrix.Matrix
}

// GradientResult is the mean gradient and loss over a batch.
type GradientResult struct {
	Gradients []*matrix.Matrix // one per layer, shaped like its weights
	Loss      float64
}

// SetResult summarizes a network over a set of samples.
type SetResult struct {
	Loss      float64 // mean loss
	Accuracy  float64 // Correct / Total
	Correct   int
	Total     int
	Estimates [][]float64 // network output per sample, in input order
}

// Network is a feedforward neural network.
//
// Example:
//
//	net, _ := nn.NewNetwork(nn.Config{Loss: nn.LogLoss, InputSize: 2})
//	net.Add(nn.TanH, 2)
//	net.Add(nn.Sigmoid, 1)
//	if err := net.Initialize(nil); err != nil { ... }
//	grad, err := net.ComputeGradient(batch)
type Network struct {
	cfg       Config
	layers    []*Layer
	batch     []Sample
	inputSize int
	ready     bool
}

// NewNetwork creates an empty network.
func NewNetwork(cfg Config) (*Network, error) {
	if _, err := NewLoss(cfg.Loss); err != nil {
		return nil, err
	}
	if cfg.InputSize < 0 {
		return nil, fmt.Errorf("%w: negative input size %d", ErrInvalidConfiguration, cfg.InputSize)
	}
	return &Network{cfg: cfg, inputSize: cfg.InputSize}, nil
}

// Add appends a layer of neurons units. Layers added after Initialize
// require another call to Initialize.
func (n *Network) Add(kind ActivationKind, neurons int) error {
	layer, err := NewLayer(kind, neurons, n.cfg.Loss)
	if err != nil {
		return fmt.Errorf("layer %d: %w", len(n.layers), err)
	}
	n.layers = append(n.layers, layer)
	n.ready = false
	return nil
}

// Initialize assigns weights to every layer and marks the last one as output.
//
// With nil weights every layer is randomized uniformly in [-0.5, 0.5] (bias
// column zero unless Config.RandomBias). Otherwise weights must hold one
// neurons × (previous+1) matrix per layer, given as rows.
func (n *Network) Initialize(weights [][][]float64) error {
	if len(n.layers) == 0 {
		return fmt.Errorf("%w: network has no layers", ErrInvalidConfiguration)
	}
	inputSize := n.inputSize
	if inputSize == 0 {
		switch {
		case len(weights) > 0 && len(weights[0]) > 0:
			inputSize = len(weights[0][0]) - 1
		case len(n.batch) > 0:
			inputSize = len(n.batch[0].Input)
		default:
			return fmt.Errorf("%w: input size unknown, set Config.InputSize or a batch", ErrInvalidConfiguration)
		}
		if inputSize < 1 {
			return fmt.Errorf("%w: input size %d", ErrInvalidConfiguration, inputSize)
		}
	}
	if err := n.validateTopology(); err != nil {
		return err
	}
	if weights != nil && len(weights) != len(n.layers) {
		return fmt.Errorf("%w: got weights for %d layers, network has %d",
			ErrInvalidConfiguration, len(weights), len(n.layers))
	}

	// Every matrix is built and checked before any layer is touched.
	src := newSource(n.cfg.Seed)
	initial := make([]*matrix.Matrix, len(n.layers))
	previous := inputSize
	for l, layer := range n.layers {
		expected := matrix.Shape{Rows: layer.Neurons(), Cols: previous + 1}
		if weights == nil {
			initial[l] = Uniform(layer.Neurons(), previous, n.cfg.RandomBias, src)
		} else {
			m, err := matrix.FromRows(weights[l])
			if err != nil {
				return fmt.Errorf("layer %d: %w", l, err)
			}
			if !m.Shape().Equal(expected) {
				return &matrix.DimensionError{
					Op:       "initialize",
					Expected: expected,
					Actual:   m.Shape(),
					Details:  fmt.Sprintf("layer %d", l),
				}
			}
			initial[l] = m
		}
		previous = layer.Neurons()
	}

	last := len(n.layers) - 1
	for l, layer := range n.layers {
		if err := layer.Initialize(initial[l], l == last); err != nil {
			n.ready = false
			return fmt.Errorf("layer %d: %w", l, err)
		}
	}
	n.inputSize = inputSize
	n.ready = true
	return nil
}

func (n *Network) validateTopology() error {
	last := len(n.layers) - 1
	for l, layer := range n.layers[:last] {
		if layer.Activation() == Softmax {
			return fmt.Errorf("%w: layer %d: softmax is only supported on the output layer",
				ErrInvalidConfiguration, l)
		}
	}
	out := n.layers[last]
	if out.Activation() == Softmax && n.cfg.Loss != CrossEntropy {
		return fmt.Errorf("%w: softmax output requires crossentropy loss, got %v",
			ErrInvalidConfiguration, n.cfg.Loss)
	}
	if n.cfg.Loss == LogLoss && out.Neurons() != 1 {
		return fmt.Errorf("%w: logloss requires a single output neuron, got %d",
			ErrInvalidConfiguration, out.Neurons())
	}
	return nil
}

// SetBatch replaces the samples ComputeGradient is driven with by the optimizer loop.
func (n *Network) SetBatch(batch []Sample) { n.batch = batch }

// Batch returns the current batch.
func (n *Network) Batch() []Sample { return n.batch }

// ForwardPass feeds input through every layer. expected may be nil, in
// which case no loss is computed.
func (n *Network) ForwardPass(input, expected []float64) (*ForwardResult, error) {
	if !n.ready {
		return nil, ErrNotInitialized
	}
	if len(input) != n.inputSize {
		return nil, &matrix.DimensionError{
			Op:       "forward",
			Expected: matrix.Shape{Rows: n.inputSize, Cols: 1},
			Actual:   matrix.Shape{Rows: len(input), Cols: 1},
		}
	}

	var exp *matrix.Matrix
	if expected != nil {
		exp = matrix.Vector(expected)
	}

	// Identity's hidden-layer path prepends the first layer's bias input.
	augmented, err := identityActivation.Forward(matrix.Vector(input), false)
	if err != nil {
		return nil, err
	}

	result := &ForwardResult{Input: augmented, Layers: make([]LayerResult, len(n.layers))}
	current := augmented
	for l, layer := range n.layers {
		lr, err := layer.ForwardPass(current, exp)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", l, err)
		}
		result.Layers[l] = lr
		current = lr.Activated
	}
	result.Output = current
	result.Loss = result.Layers[len(n.layers)-1].Loss
	return result, nil
}

var identityActivation = scalarActivation{kind: Identity, forward: identity, backward: identityDerivative}

// BackwardPass returns the delta of every layer, first layer first.
func (n *Network) BackwardPass(expected []float64, results []LayerResult) ([]*matrix.Matrix, error) {
	if !n.ready {
		return nil, ErrNotInitialized
	}
	if len(results) != len(n.layers) {
		return nil, fmt.Errorf("%w: got %d layer results for %d layers",
			ErrInvalidConfiguration, len(results), len(n.layers))
	}

	last := len(n.layers) - 1
	deltas := make([]*matrix.Matrix, len(n.layers))

	var err error
	if deltas[last], err = n.layers[last].OutputPass(results[last], matrix.Vector(expected)); err != nil {
		return nil, fmt.Errorf("layer %d: %w", last, err)
	}
	for l := last - 1; l >= 0; l-- {
		if deltas[l], err = n.layers[l].BackwardPass(results[l], deltas[l+1], n.layers[l+1]); err != nil {
			return nil, fmt.Errorf("layer %d: %w", l, err)
		}
	}
	return deltas, nil
}

// ComputeResult runs the forward and backward pass for one sample.
func (n *Network) ComputeResult(input, expected []float64) (*SampleResult, error) {
	if expected == nil {
		return nil, fmt.Errorf("%w: expected output is required", ErrInvalidConfiguration)
	}
	forward, err := n.ForwardPass(input, expected)
	if err != nil {
		return nil, err
	}
	deltas, err := n.BackwardPass(expected, forward.Layers)
	if err != nil {
		return nil, err
	}
	return &SampleResult{ForwardResult: forward, Deltas: deltas}, nil
}

// ComputeGradient returns the mean gradient and mean loss over batch:
//
//	grad[l][i][j] = Σ δ_l[i] · a_{l-1}[j] / len(batch)
//
// where a_{-1} is the augmented network input. Samples may be evaluated in
// parallel; they are always accumulated in batch order.
func (n *Network) ComputeGradient(batch []Sample) (*GradientResult, error) {
	if !n.ready {
		return nil, ErrNotInitialized
	}
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	results, err := parallel.Map(len(batch), func(i int) (*SampleResult, error) {
		r, err := n.ComputeResult(batch[i].Input, batch[i].Expected)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		return r, nil
	}, n.cfg.Parallel)
	if err != nil {
		return nil, err
	}

	size := float64(len(batch))
	grads := make([]*matrix.Matrix, len(n.layers))
	for l, layer := range n.layers {
		grads[l] = matrix.Zeros(layer.Weights().Shape())
	}

	var loss float64
	for _, r := range results {
		previous := r.Input
		for l, delta := range r.Deltas {
			accumulate(grads[l], delta, previous, size)
			previous = r.Layers[l].Activated
		}
		loss += r.Loss / size
	}
	return &GradientResult{Gradients: grads, Loss: loss}, nil
}

// accumulate adds delta · inputᵀ / size to grad without allocating.
func accumulate(grad, delta, input *matrix.Matrix, size float64) {
	cols := grad.Cols()
	data := grad.Data()
	in := input.Data()
	for i, d := range delta.Data() {
		floats.AddScaled(data[i*cols:(i+1)*cols], d/size, in)
	}
}

// ValidateOnSet runs a forward pass over samples and reports the mean loss
// and accuracy. A single-output network counts a sample as correct when
// its rounded output equals the expected value; otherwise the arg-max of
// output and expected must agree.
func (n *Network) ValidateOnSet(samples []Sample) (SetResult, error) {
	if len(samples) == 0 {
		return SetResult{}, ErrEmptyBatch
	}

	result := SetResult{Total: len(samples), Estimates: make([][]float64, len(samples))}
	for i, s := range samples {
		if len(s.Expected) == 0 {
			return SetResult{}, fmt.Errorf("%w: sample %d: expected output is required", ErrInvalidConfiguration, i)
		}
		forward, err := n.ForwardPass(s.Input, s.Expected)
		if err != nil {
			return SetResult{}, fmt.Errorf("sample %d: %w", i, err)
		}
		result.Loss += forward.Loss / float64(len(samples))
		result.Estimates[i] = forward.Output.Values()
		if isCorrect(forward.Output.Data(), s.Expected) {
			result.Correct++
		}
	}
	result.Accuracy = float64(result.Correct) / float64(result.Total)
	return result, nil
}

func isCorrect(estimate, expected []float64) bool {
	if len(estimate) == 1 {
		return math.Round(estimate[0]) == expected[0]
	}
	return floats.MaxIdx(estimate) == floats.MaxIdx(expected)
}

// Predict returns the network output for input.
func (n *Network) Predict(input []float64) ([]float64, error) {
	forward, err := n.ForwardPass(input, nil)
	if err != nil {
		return nil, err
	}
	return forward.Output.Values(), nil
}

// SetWeights replaces the weights of layer l with a copy of w.
func (n *Network) SetWeights(l int, w *matrix.Matrix) error {
	if !n.ready {
		return ErrNotInitialized
	}
	if l < 0 || l >= len(n.layers) {
		return fmt.Errorf("%w: layer %d out of range [0, %d)", ErrInvalidConfiguration, l, len(n.layers))
	}
	return n.layers[l].UpdateWeights(w.Clone())
}

// Weights returns a copy of every layer's weights.
func (n *Network) Weights() []*matrix.Matrix {
	out := make([]*matrix.Matrix, len(n.layers))
	for l, layer := range n.layers {
		if w := layer.Weights(); w != nil {
			out[l] = w.Clone()
		}
	}
	return out
}

// Layers returns the layers in order. The optimizer updates weights through them.
func (n *Network) Layers() []*Layer { return n.layers }

// LossKind returns the network's error function.
func (n *Network) LossKind() LossKind { return n.cfg.Loss }

// InputSize returns the input dimension, known after Initialize.
func (n *Network) InputSize() int { return n.inputSize }

// Initialized reports whether Initialize has succeeded since the last Add.
func (n *Network) Initialized() bool { return n.ready }
