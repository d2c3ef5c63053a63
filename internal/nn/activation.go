package nn

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/dense/internal/matrix"
)

// ExpClamp bounds every exponent argument to [-ExpClamp, ExpClamp].
//
// math.Exp overflows to +Inf a little above 709; clamping keeps sigmoid,
// tanh and softmax finite for arbitrarily large neuron sums.
const ExpClamp = 500.0

// ActivationKind selects an activation function.
type ActivationKind int

// Supported activations.
const (
	Identity ActivationKind = iota
	ReLU
	TanH
	Sigmoid
	Softmax
)

var activationNames = [...]string{
	Identity: "identity",
	ReLU:     "relu",
	TanH:     "tanh",
	Sigmoid:  "sigmoid",
	Softmax:  "softmax",
}

// String returns the lower-case name of the activation.
func (k ActivationKind) String() string {
	if k < 0 || int(k) >= len(activationNames) {
		return fmt.Sprintf("ActivationKind(%d)", int(k))
	}
	return activationNames[k]
}

// ParseActivation resolves a name such as "tanh" to its ActivationKind.
func ParseActivation(name string) (ActivationKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range activationNames {
		if n == name {
			return ActivationKind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown activation %q", ErrInvalidConfiguration, name)
}

// Activation is a neuron nonlinearity together with its derivative.
//
// All methods operate on column vectors.
type Activation interface {
	// Kind identifies the variant.
	Kind() ActivationKind

	// Forward applies the nonlinearity to the neuron sums. Unless the layer
	// is the output layer, a constant 1 is prepended to the result so the
	// next layer's bias column has an input to multiply.
	Forward(sum *matrix.Matrix, isOutput bool) (*matrix.Matrix, error)

	// Backward returns the element-wise derivative evaluated at the sums.
	Backward(sum *matrix.Matrix) (*matrix.Matrix, error)

	// Output returns the fused output-layer delta for activations that
	// have one (softmax paired with cross-entropy).
	Output(activated, expected *matrix.Matrix) (*matrix.Matrix, error)
}

// NewActivation returns the activation for kind.
func NewActivation(kind ActivationKind) (Activation, error) {
	switch kind {
	case Identity:
		return scalarActivation{kind: Identity, forward: identity, backward: identityDerivative}, nil
	case ReLU:
		return scalarActivation{kind: ReLU, forward: relu, backward: reluDerivative}, nil
	case TanH:
		return scalarActivation{kind: TanH, forward: tanh, backward: tanhDerivative}, nil
	case Sigmoid:
		return scalarActivation{kind: Sigmoid, forward: sigmoid, backward: sigmoidDerivative}, nil
	case Softmax:
		return softmaxActivation{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown activation %v", ErrInvalidConfiguration, kind)
	}
}

// scalarActivation lifts an R -> R function to column vectors.
type scalarActivation struct {
	kind     ActivationKind
	forward  func(float64) float64
	backward func(float64) float64
}

func (a scalarActivation) Kind() ActivationKind { return a.kind }

func (a scalarActivation) Forward(sum *matrix.Matrix, isOutput bool) (*matrix.Matrix, error) {
	out := sum.Map(func(x float64, _, _ int) float64 { return a.forward(x) })
	if isOutput {
		return out, nil
	}
	return out.Unshift(1)
}

func (a scalarActivation) Backward(sum *matrix.Matrix) (*matrix.Matrix, error) {
	return sum.Map(func(x float64, _, _ int) float64 { return a.backward(x) }), nil
}

func (a scalarActivation) Output(_, _ *matrix.Matrix) (*matrix.Matrix, error) {
	return nil, fmt.Errorf("%w: %v has no fused output gradient", ErrInvalidConfiguration, a.kind)
}

// softmaxActivation normalizes the sums into a probability distribution.
//
// Only the fused softmax + cross-entropy output gradient is supported;
// the general Jacobian path is rejected.
type softmaxActivation struct{}

func (softmaxActivation) Kind() ActivationKind { return Softmax }

func (softmaxActivation) Forward(sum *matrix.Matrix, isOutput bool) (*matrix.Matrix, error) {
	if !sum.Shape().IsColumn() {
		return nil, &matrix.DimensionError{
			Op:       "softmax",
			Expected: matrix.Shape{Rows: sum.Rows(), Cols: 1},
			Actual:   sum.Shape(),
		}
	}
	out := softmax(sum)
	if isOutput {
		return out, nil
	}
	return out.Unshift(1)
}

func (softmaxActivation) Backward(_ *matrix.Matrix) (*matrix.Matrix, error) {
	return nil, fmt.Errorf("%w: softmax can only be used on the output layer", ErrInvalidConfiguration)
}

// Output returns activated - expected, the delta of softmax under cross-entropy.
func (softmaxActivation) Output(activated, expected *matrix.Matrix) (*matrix.Matrix, error) {
	if !activated.Shape().Equal(expected.Shape()) {
		return nil, &matrix.DimensionError{Op: "softmax output", Expected: activated.Shape(), Actual: expected.Shape()}
	}
	return activated.Subtract(expected), nil
}

// softmax is the max-shifted variant: exp(x - max) / Σ exp(x - max).
func softmax(v *matrix.Matrix) *matrix.Matrix {
	maxValue := floats.Max(v.Data())

	var total float64
	out := v.Map(func(x float64, _, _ int) float64 {
		e := clampedExp(x - maxValue)
		total += e
		return e
	})
	return out.ScaleInPlace(1 / total)
}

func clampedExp(x float64) float64 {
	return math.Exp(math.Max(-ExpClamp, math.Min(ExpClamp, x)))
}

func identity(x float64) float64 { return x }

func identityDerivative(float64) float64 { return 1 }

func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func reluDerivative(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

func tanh(x float64) float64 {
	ep, en := clampedExp(x), clampedExp(-x)
	return (ep - en) / (ep + en)
}

func tanhDerivative(x float64) float64 {
	t := tanh(x)
	return 1 - t*t
}

func sigmoid(x float64) float64 {
	return 1 / (1 + clampedExp(-x))
}

func sigmoidDerivative(x float64) float64 {
	s := sigmoid(x)
	return s * (1 - s)
}
