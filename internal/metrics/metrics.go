// Package metrics scores network predictions: accuracy for binary and
// categorical outputs and the area under the ROC curve.
package metrics

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/dense/internal/nn"
)

// ErrNoPoints is returned for an empty prediction set.
var ErrNoPoints = errors.New("no predictions")

// Prediction pairs a network estimate with the expected output.
type Prediction struct {
	Estimate []float64
	Expected []float64
}

// Predictions pairs samples with the estimates of nn.Network.ValidateOnSet.
func Predictions(samples []nn.Sample, estimates [][]float64) ([]Prediction, error) {
	if len(samples) != len(estimates) {
		return nil, fmt.Errorf("%d samples but %d estimates", len(samples), len(estimates))
	}
	points := make([]Prediction, len(samples))
	for i, s := range samples {
		points[i] = Prediction{Estimate: estimates[i], Expected: s.Expected}
	}
	return points, nil
}

// BinaryAccuracy is the fraction of points whose first output, thresholded
// at cutoff, equals the expected 0/1 label.
func BinaryAccuracy(points []Prediction, cutoff float64) (float64, error) {
	if len(points) == 0 {
		return 0, ErrNoPoints
	}
	var correct int
	for _, p := range points {
		predicted := 0.0
		if p.Estimate[0] > cutoff {
			predicted = 1
		}
		if predicted == p.Expected[0] {
			correct++
		}
	}
	return float64(correct) / float64(len(points)), nil
}

// CategoricalAccuracy is the fraction of points whose arg-max matches the
// arg-max of the one-hot expected vector.
func CategoricalAccuracy(points []Prediction) (float64, error) {
	if len(points) == 0 {
		return 0, ErrNoPoints
	}
	var correct int
	for _, p := range points {
		if len(p.Estimate) == len(p.Expected) && floats.MaxIdx(p.Estimate) == floats.MaxIdx(p.Expected) {
			correct++
		}
	}
	return float64(correct) / float64(len(points)), nil
}

// AUC returns the area under the ROC curve of a binary classifier, using
// the first output as score and an expected value of 1 as the positive class.
func AUC(points []Prediction) (float64, error) {
	if len(points) == 0 {
		return 0, ErrNoPoints
	}

	scores := make([]float64, len(points))
	classes := make([]bool, len(points))
	var positives int
	for i, p := range points {
		scores[i] = p.Estimate[0]
		classes[i] = p.Expected[0] == 1
		if classes[i] {
			positives++
		}
	}
	if positives == 0 || positives == len(points) {
		return 0, errors.New("AUC needs both positive and negative points")
	}

	stat.SortWeightedLabeled(scores, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, scores, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}
