package nn

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/dense/internal/matrix"
)

// DefaultGradientStep is the finite-difference step used when CheckGradient gets 0.
const DefaultGradientStep = 1e-6

// GradientCheck compares backpropagation with central finite differences.
type GradientCheck struct {
	Analytic []*matrix.Matrix
	Numeric  []*matrix.Matrix

	// MaxRelativeError is the largest |a-n| / max(|a|, |n|, 1e-3) over all
	// weights. Below 1e-3 the comparison is effectively absolute.
	MaxRelativeError float64
	Layer, Row, Col  int // position of MaxRelativeError
}

// CheckGradient differentiates the mean batch loss numerically with respect
// to every weight and compares it with ComputeGradient.
//
// The weights are restored before returning. MeanSquaredError is checked
// against half its loss, whose derivative its Grad returns.
func (n *Network) CheckGradient(batch []Sample, step float64) (GradientCheck, error) {
	if step == 0 {
		step = DefaultGradientStep
	}
	analytic, err := n.ComputeGradient(batch)
	if err != nil {
		return GradientCheck{}, err
	}

	scale := 1.0
	if n.cfg.Loss == MeanSquaredError {
		scale = 0.5
	}

	check := GradientCheck{Analytic: analytic.Gradients, Numeric: make([]*matrix.Matrix, len(n.layers))}
	for l, layer := range n.layers {
		original := layer.Weights().Clone()
		live := layer.Weights()

		var evalErr error
		objective := func(x []float64) float64 {
			copy(live.Data(), x)
			if err := layer.UpdateWeights(live); err != nil && evalErr == nil {
				evalErr = err
			}
			loss, err := n.meanLoss(batch)
			if err != nil && evalErr == nil {
				evalErr = err
			}
			return scale * loss
		}

		grad := fd.Gradient(nil, objective, original.Values(), &fd.Settings{
			Formula: fd.Central,
			Step:    step,
		})

		copy(live.Data(), original.Data())
		if err := layer.UpdateWeights(live); err != nil {
			return GradientCheck{}, err
		}
		if evalErr != nil {
			return GradientCheck{}, evalErr
		}

		numeric, err := matrix.FromSlice(grad, original.Rows(), original.Cols())
		if err != nil {
			return GradientCheck{}, err
		}
		check.Numeric[l] = numeric

		a := analytic.Gradients[l]
		for i := 0; i < a.Rows(); i++ {
			for j := 0; j < a.Cols(); j++ {
				if rel := relativeError(a.At(i, j), numeric.At(i, j)); rel > check.MaxRelativeError {
					check.MaxRelativeError = rel
					check.Layer, check.Row, check.Col = l, i, j
				}
			}
		}
	}
	return check, nil
}

func (n *Network) meanLoss(batch []Sample) (float64, error) {
	var loss float64
	for _, s := range batch {
		forward, err := n.ForwardPass(s.Input, s.Expected)
		if err != nil {
			return 0, err
		}
		loss += forward.Loss
	}
	return loss / float64(len(batch)), nil
}

func relativeError(a, b float64) float64 {
	return math.Abs(a-b) / math.Max(math.Max(math.Abs(a), math.Abs(b)), 1e-3)
}
