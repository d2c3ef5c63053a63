package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/born-ml/dense/internal/nn"
	"github.com/born-ml/dense/internal/optim"
)

var xorSamples = []nn.Sample{
	{Input: []float64{1, 1}, Expected: []float64{0}},
	{Input: []float64{1, 0}, Expected: []float64{1}},
	{Input: []float64{0, 1}, Expected: []float64{1}},
	{Input: []float64{0, 0}, Expected: []float64{0}},
}

// xorWeights is the fixed 2-2-1 starting point; random weights use -seed.
var xorWeights = [][][]float64{
	{{0.5, 0.5, 0.5}, {-0.5, -0.5, -0.5}},
	{{-0.5, 0.5, 0.5}},
}

func runXOR(args []string, stdout io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("xor", flag.ContinueOnError)
	name := fs.String("optimizer", "sgd", "optimizer name")
	lr := fs.Float64("lr", 1, "learning rate")
	iterations := fs.Int("iterations", 500, "max iterations")
	target := fs.Float64("target", 0.01, "stop once the loss drops below")
	random := fs.Bool("random", false, "start from random weights")
	seed := fs.Uint64("seed", 0, "seed for -random (0 = random)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	net, err := nn.NewNetwork(nn.Config{Loss: nn.LogLoss, InputSize: 2, Seed: *seed})
	if err != nil {
		return err
	}
	if err := net.Add(nn.TanH, 2); err != nil {
		return err
	}
	if err := net.Add(nn.Sigmoid, 1); err != nil {
		return err
	}
	weights := xorWeights
	if *random {
		weights = nil
	}
	if err := net.Initialize(weights); err != nil {
		return err
	}
	net.SetBatch(xorSamples)

	opt, err := optim.New(*name, optim.Options{})
	if err != nil {
		return err
	}
	loop := optim.NewLoop(opt, optim.LoopConfig{
		LearningRate:  optim.Constant(*lr),
		MaxIterations: *iterations,
		StopCondition: optim.StopBelow(*target),
		Logger:        logger,
		LogEvery:      20,
	})
	report, err := loop.Run(net)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s: %d iterations, loss %.6f, stopped %v\n", opt.Name(), report.Iterations, report.Loss, report.Stopped)
	for _, s := range xorSamples {
		out, err := net.Predict(s.Input)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "  %v -> %.4f (want %v)\n", s.Input, out[0], s.Expected[0])
	}
	for l, w := range net.Weights() {
		fmt.Fprintf(stdout, "layer %d weights:\n%v\n", l, w)
	}
	return nil
}
