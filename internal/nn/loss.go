package nn

import (
	"fmt"
	"math"
	"strings"

	"github.com/born-ml/dense/internal/matrix"
)

// LossKind selects the error function shared by every layer of a network.
//
// The zero value is not a valid kind, so a Config without an explicit
// loss is rejected instead of silently training against LogLoss.
type LossKind int

// Supported losses.
const (
	LogLoss LossKind = iota + 1
	CrossEntropy
	MeanSquaredError
)

var lossNames = map[LossKind]string{
	LogLoss:          "logloss",
	CrossEntropy:     "crossentropy",
	MeanSquaredError: "mse",
}

// String returns the short name of the loss.
func (k LossKind) String() string {
	if n, ok := lossNames[k]; ok {
		return n
	}
	return fmt.Sprintf("LossKind(%d)", int(k))
}

// ParseLoss resolves a name such as "crossentropy" to its LossKind.
// "cross-entropy", "cross_entropy" and "log-loss" are accepted as well.
func ParseLoss(name string) (LossKind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer("-", "", "_", "").Replace(n)
	if n == "meansquarederror" {
		n = "mse"
	}
	for k, v := range lossNames {
		if v == n {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown loss %q", ErrInvalidConfiguration, name)
}

// Loss is an error function comparing the network estimate t with the
// expected vector y.
type Loss interface {
	// Kind identifies the variant.
	Kind() LossKind

	// Loss returns the scalar error of output against expected.
	Loss(output, expected *matrix.Matrix) (float64, error)

	// Grad returns the output gradient that starts backpropagation,
	// shaped like output.
	Grad(output, expected *matrix.Matrix) (*matrix.Matrix, error)
}

// NewLoss returns the loss for kind.
func NewLoss(kind LossKind) (Loss, error) {
	switch kind {
	case LogLoss:
		return logLoss{}, nil
	case CrossEntropy:
		return crossEntropy{}, nil
	case MeanSquaredError:
		return meanSquaredError{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown loss %v", ErrInvalidConfiguration, kind)
	}
}

func checkShapes(op string, output, expected *matrix.Matrix) error {
	if !output.Shape().Equal(expected.Shape()) {
		return &matrix.DimensionError{Op: op, Expected: output.Shape(), Actual: expected.Shape()}
	}
	return nil
}

// logLoss is binary cross-entropy over a single probability.
type logLoss struct{}

func (logLoss) Kind() LossKind { return LogLoss }

func (logLoss) check(output, expected *matrix.Matrix) error {
	if err := checkShapes("logloss", output, expected); err != nil {
		return err
	}
	if output.Shape().NumElements() != 1 {
		return &matrix.DimensionError{
			Op:       "logloss",
			Expected: matrix.Shape{Rows: 1, Cols: 1},
			Actual:   output.Shape(),
			Details:  "log loss is defined for a single output",
		}
	}
	return nil
}

func (l logLoss) Loss(output, expected *matrix.Matrix) (float64, error) {
	if err := l.check(output, expected); err != nil {
		return 0, err
	}
	t, y := output.At(0, 0), expected.At(0, 0)
	return -(y*math.Log(t) + (1-y)*math.Log(1-t)), nil
}

func (l logLoss) Grad(output, expected *matrix.Matrix) (*matrix.Matrix, error) {
	if err := l.check(output, expected); err != nil {
		return nil, err
	}
	t, y := output.At(0, 0), expected.At(0, 0)
	return matrix.Vector([]float64{(t - y) / (t - t*t)}), nil
}

type crossEntropy struct{}

func (crossEntropy) Kind() LossKind { return CrossEntropy }

func (crossEntropy) Loss(output, expected *matrix.Matrix) (float64, error) {
	if err := checkShapes("crossentropy", output, expected); err != nil {
		return 0, err
	}
	y := expected.Data()
	var sum float64
	for i, t := range output.Data() {
		if y[i] == 0 {
			continue // 0·ln(0) contributes nothing
		}
		sum += y[i] * math.Log(t)
	}
	return -sum, nil
}

func (crossEntropy) Grad(output, expected *matrix.Matrix) (*matrix.Matrix, error) {
	if err := checkShapes("crossentropy", output, expected); err != nil {
		return nil, err
	}
	y := expected.Data()
	grad := output.Clone()
	for i, t := range grad.Data() {
		grad.Data()[i] = -y[i] / t
	}
	return grad, nil
}

// meanSquaredError sums the squared differences. Its Grad is t - y, the
// derivative of half that sum; the factor 2 is left to the learning rate.
type meanSquaredError struct{}

func (meanSquaredError) Kind() LossKind { return MeanSquaredError }

func (meanSquaredError) Loss(output, expected *matrix.Matrix) (float64, error) {
	if err := checkShapes("mse", output, expected); err != nil {
		return 0, err
	}
	y := expected.Data()
	var sum float64
	for i, t := range output.Data() {
		d := t - y[i]
		sum += d * d
	}
	return sum, nil
}

func (meanSquaredError) Grad(output, expected *matrix.Matrix) (*matrix.Matrix, error) {
	if err := checkShapes("mse", output, expected); err != nil {
		return nil, err
	}
	return output.Subtract(expected), nil
}
