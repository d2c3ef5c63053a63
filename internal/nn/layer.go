package nn

import (
	"fmt"

	"github.com/born-ml/dense/internal/matrix"
)

// NoLoss marks the loss of a hidden layer, which has nothing to compare against.
const NoLoss = -1.0

// LayerResult records what a layer produced for one sample.
type LayerResult struct {
	Sum       *matrix.Matrix // weights · input, one row per neuron
	Activated *matrix.Matrix // activation(Sum), with a leading 1 unless output layer
	Loss      float64        // loss of Activated, or NoLoss
}

// Layer is a fully connected layer: a weight matrix followed by an activation.
//
// Weights have shape neurons × (inputs+1). Column 0 multiplies the constant 1
// that the previous layer prepends to its output, so it holds the biases.
//
// Example:
//
//	layer, _ := nn.NewLayer(nn.Sigmoid, 10, nn.CrossEntropy)
//	layer.Initialize(weights, true)
//	result, err := layer.ForwardPass(input, expected)
type Layer struct {
	kind       ActivationKind
	neurons    int
	activation Activation
	loss       Loss

	weights  *matrix.Matrix
	backward *matrix.Matrix // omit(weights, 0)ᵀ, used by the previous layer
	isOutput bool
}

// NewLayer creates a layer of neurons units with the given activation.
//
// Parameters:
//   - kind: Activation applied to the weighted sums
//   - neurons: Number of units (rows of the weight matrix)
//   - loss: Error function of the owning network
//
// The layer is unusable until Initialize supplies its weights.
func NewLayer(kind ActivationKind, neurons int, loss LossKind) (*Layer, error) {
	if neurons <= 0 {
		return nil, fmt.Errorf("%w: layer needs at least one neuron, got %d", ErrInvalidConfiguration, neurons)
	}
	activation, err := NewActivation(kind)
	if err != nil {
		return nil, err
	}
	lossFn, err := NewLoss(loss)
	if err != nil {
		return nil, err
	}
	return &Layer{
		kind:       kind,
		neurons:    neurons,
		activation: activation,
		loss:       lossFn,
	}, nil
}

// Initialize sets the weights and whether this is the network's last layer.
func (l *Layer) Initialize(weights *matrix.Matrix, isOutput bool) error {
	if weights.Rows() != l.neurons || weights.Cols() < 1 {
		return &matrix.DimensionError{
			Op:       "layer initialize",
			Expected: matrix.Shape{Rows: l.neurons, Cols: weights.Cols()},
			Actual:   weights.Shape(),
		}
	}
	l.isOutput = isOutput
	l.setWeights(weights)
	return nil
}

// UpdateWeights replaces the weights and refreshes the cached transpose.
// The new matrix must have the shape of the current one; passing the
// current matrix after mutating it in place is allowed.
func (l *Layer) UpdateWeights(weights *matrix.Matrix) error {
	if l.weights == nil {
		return ErrNotInitialized
	}
	if !weights.Shape().Equal(l.weights.Shape()) {
		return &matrix.DimensionError{Op: "update weights", Expected: l.weights.Shape(), Actual: weights.Shape()}
	}
	l.setWeights(weights)
	return nil
}

func (l *Layer) setWeights(weights *matrix.Matrix) {
	l.weights = weights
	if weights.Cols() > 1 {
		l.backward = weights.Omit(0).Transpose()
	} else {
		l.backward = matrix.New(0, weights.Rows())
	}
}

// ForwardPass computes the sums and activations for input, a column vector
// whose first element is the bias input 1. The loss is evaluated only for
// the output layer and only when expected is not nil.
func (l *Layer) ForwardPass(input, expected *matrix.Matrix) (LayerResult, error) {
	if l.weights == nil {
		return LayerResult{}, ErrNotInitialized
	}
	sum, err := matrix.Multiply(l.weights, input)
	if err != nil {
		return LayerResult{}, err
	}
	activated, err := l.activation.Forward(sum, l.isOutput)
	if err != nil {
		return LayerResult{}, err
	}

	result := LayerResult{Sum: sum, Activated: activated, Loss: NoLoss}
	if l.isOutput && expected != nil {
		if result.Loss, err = l.loss.Loss(activated, expected); err != nil {
			return LayerResult{}, err
		}
	}
	return result, nil
}

// BackwardPass returns this layer's delta given the delta of the next layer:
//
//	δ = (W_nextᵀ · δ_next) ⊙ f′(sum)
//
// where W_next excludes the bias column.
func (l *Layer) BackwardPass(result LayerResult, deltaNext *matrix.Matrix, next *Layer) (*matrix.Matrix, error) {
	propagated, err := matrix.Multiply(next.backward, deltaNext)
	if err != nil {
		return nil, err
	}
	derivative, err := l.activation.Backward(result.Sum)
	if err != nil {
		return nil, err
	}
	return propagated.HadamardInPlace(derivative), nil
}

// OutputPass returns the delta of the output layer.
//
// Softmax is only valid with cross-entropy and uses the fused gradient
// activated - expected; every other activation applies the chain rule
// loss′(activated) ⊙ f′(sum).
func (l *Layer) OutputPass(result LayerResult, expected *matrix.Matrix) (*matrix.Matrix, error) {
	if l.kind == Softmax {
		if l.loss.Kind() != CrossEntropy {
			return nil, fmt.Errorf("%w: softmax output requires crossentropy loss, got %v",
				ErrInvalidConfiguration, l.loss.Kind())
		}
		return l.activation.Output(result.Activated, expected)
	}

	grad, err := l.loss.Grad(result.Activated, expected)
	if err != nil {
		return nil, err
	}
	derivative, err := l.activation.Backward(result.Sum)
	if err != nil {
		return nil, err
	}
	return grad.HadamardInPlace(derivative), nil
}

// Weights returns the live weight matrix. Callers that modify it must call
// UpdateWeights afterwards.
func (l *Layer) Weights() *matrix.Matrix { return l.weights }

// Activation returns the layer's activation kind.
func (l *Layer) Activation() ActivationKind { return l.kind }

// Neurons returns the number of units.
func (l *Layer) Neurons() int { return l.neurons }

// IsOutput reports whether this is the network's last layer.
func (l *Layer) IsOutput() bool { return l.isOutput }
