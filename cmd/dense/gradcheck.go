package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/pkg/errors"

	"github.com/born-ml/dense/internal/dataset"
	"github.com/born-ml/dense/internal/nn"
)

func runGradCheck(args []string, stdout io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("gradcheck", flag.ContinueOnError)
	hidden := fs.String("hidden", "tanh:4,sigmoid:3", "hidden layers as kind:neurons")
	output := fs.String("output", "softmax", "output activation")
	lossName := fs.String("loss", "crossentropy", "loss function")
	inputs := fs.Int("inputs", 3, "input size")
	outputs := fs.Int("outputs", 3, "output neurons")
	samples := fs.Int("samples", 5, "batch size")
	step := fs.Float64("step", nn.DefaultGradientStep, "finite difference step")
	tolerance := fs.Float64("tolerance", 1e-4, "max accepted relative error")
	seed := fs.Uint64("seed", 1, "random seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	layers, err := parseLayers(*hidden)
	if err != nil {
		return err
	}
	out, err := nn.ParseActivation(*output)
	if err != nil {
		return err
	}
	loss, err := nn.ParseLoss(*lossName)
	if err != nil {
		return err
	}

	net, err := nn.NewNetwork(nn.Config{Loss: loss, InputSize: *inputs, RandomBias: true, Seed: *seed})
	if err != nil {
		return err
	}
	for _, l := range append(layers, layerSpec{kind: out, neurons: *outputs}) {
		if err := net.Add(l.kind, l.neurons); err != nil {
			return err
		}
	}
	if err := net.Initialize(nil); err != nil {
		return err
	}

	batch, err := randomBatch(rand.New(rand.NewPCG(*seed, *seed)), *samples, *inputs, *outputs, loss)
	if err != nil {
		return err
	}
	check, err := net.CheckGradient(batch, *step)
	if err != nil {
		return err
	}

	logger.Info("gradient check", "layer", check.Layer, "row", check.Row, "col", check.Col,
		"analytic", check.Analytic, "numeric", check.Numeric)
	fmt.Fprintf(stdout, "max relative error %.3g\n", check.MaxRelativeError)
	if check.MaxRelativeError > *tolerance {
		return errors.Errorf("relative error %.3g above tolerance %.3g", check.MaxRelativeError, *tolerance)
	}
	return nil
}

// randomBatch draws inputs in [-1, 1) and targets valid for loss: one-hot
// classes for cross-entropy, 0/1 for log loss, reals otherwise.
func randomBatch(rng *rand.Rand, n, inputs, outputs int, loss nn.LossKind) ([]nn.Sample, error) {
	batch := make([]nn.Sample, n)
	for i := range batch {
		in := make([]float64, inputs)
		for j := range in {
			in[j] = 2*rng.Float64() - 1
		}
		var expected []float64
		switch loss {
		case nn.CrossEntropy:
			var err error
			if expected, err = dataset.OneHot(rng.IntN(outputs), outputs); err != nil {
				return nil, err
			}
		case nn.LogLoss:
			expected = []float64{float64(rng.IntN(2))}
		default:
			expected = make([]float64, outputs)
			for j := range expected {
				expected[j] = rng.Float64()
			}
		}
		batch[i] = nn.Sample{Input: in, Expected: expected}
	}
	return batch, nil
}
