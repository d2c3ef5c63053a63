package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/born-ml/dense/internal/checkpoint"
	"github.com/born-ml/dense/internal/dataset"
	"github.com/born-ml/dense/internal/metrics"
	"github.com/born-ml/dense/internal/nn"
	"github.com/born-ml/dense/internal/optim"
	"github.com/born-ml/dense/internal/parallel"
)

func runTrain(args []string, stdout io.Writer, logger *slog.Logger) error {
	cfg, err := parseTrainConfig(args)
	if err != nil {
		return err
	}
	samples, err := loadSamples(cfg)
	if err != nil {
		return err
	}

	rng := newRand(cfg.Seed)
	dataset.Shuffle(samples, rng)
	train, test, err := dataset.Split(samples, cfg.Split)
	if err != nil {
		return err
	}
	if len(train) == 0 {
		return errors.New("no training samples after split")
	}
	logger.Info("dataset loaded", "train", len(train), "test", len(test))

	var runs []run
	for _, name := range strings.Split(cfg.Optimizers, ",") {
		r, net, opt, err := trainOne(cfg, strings.TrimSpace(name), train, test, rng, logger)
		if err != nil {
			return errors.Wrap(err, name)
		}
		runs = append(runs, r)
		fmt.Fprintf(stdout, "%-9s test loss %.4f accuracy %.4f (%d iterations)\n",
			r.Optimizer, float64(r.final().Test.Loss), r.final().Test.Accuracy, r.Iterations)

		if cfg.Checkpoint != "" {
			path := cfg.Checkpoint
			if strings.Contains(cfg.Optimizers, ",") {
				ext := filepath.Ext(path)
				path = strings.TrimSuffix(path, ext) + "-" + r.Optimizer + ext
			}
			cp, err := checkpoint.Capture(net, opt, float64(r.final().Train.Loss))
			if err != nil {
				return err
			}
			if err := cp.SaveFile(path); err != nil {
				return err
			}
			logger.Info("checkpoint written", "path", path, "id", cp.ID)
		}
	}

	if cfg.Results != "" {
		if err := writeResults(cfg.Results, runs); err != nil {
			return err
		}
		logger.Info("results written", "path", cfg.Results)
	}
	return nil
}

func loadSamples(cfg trainConfig) ([]nn.Sample, error) {
	if cfg.Data == "" {
		return nil, errors.New("no -data file")
	}
	data, err := os.Open(cfg.Data)
	if err != nil {
		return nil, errors.Wrap(err, "open data")
	}
	defer data.Close()

	if cfg.Labels != "" {
		labels, err := os.Open(cfg.Labels)
		if err != nil {
			return nil, errors.Wrap(err, "open labels")
		}
		defer labels.Close()
		return dataset.LoadIDX(data, labels, cfg.Classes, cfg.MaxSamples)
	}
	return dataset.LoadCSV(data, dataset.Options{
		LabelColumn: cfg.Label,
		Header:      cfg.Header,
		Classes:     cfg.Classes,
		Normalize:   cfg.Normalize,
		MaxSamples:  cfg.MaxSamples,
	})
}

// buildNetwork adds the hidden layers and an output layer sized to the
// expected vectors. Without an explicit choice, multi-class data gets
// softmax with cross-entropy and single outputs sigmoid with log loss.
func buildNetwork(cfg trainConfig, inputs, outputs int) (*nn.Network, error) {
	output, loss := nn.Sigmoid, nn.LogLoss
	if outputs > 1 {
		output, loss = nn.Softmax, nn.CrossEntropy
	}
	var err error
	if cfg.Output != "" {
		if output, err = nn.ParseActivation(cfg.Output); err != nil {
			return nil, err
		}
	}
	if cfg.Loss != "" {
		if loss, err = nn.ParseLoss(cfg.Loss); err != nil {
			return nil, err
		}
	}
	hidden, err := parseLayers(cfg.Hidden)
	if err != nil {
		return nil, err
	}

	par := parallel.DefaultConfig()
	switch {
	case cfg.Workers == 1:
		par = parallel.Sequential()
	case cfg.Workers > 1:
		par.NumWorkers = cfg.Workers
	}

	net, err := nn.NewNetwork(nn.Config{Loss: loss, InputSize: inputs, Seed: cfg.Seed, Parallel: par})
	if err != nil {
		return nil, err
	}
	for _, h := range hidden {
		if err := net.Add(h.kind, h.neurons); err != nil {
			return nil, err
		}
	}
	if err := net.Add(output, outputs); err != nil {
		return nil, err
	}
	return net, net.Initialize(nil)
}

func schedule(cfg trainConfig) optim.Schedule {
	if cfg.Decay == 0 {
		return optim.Constant(cfg.LearningRate)
	}
	return optim.InverseTimeDecay{Initial: cfg.LearningRate, Decay: cfg.Decay, Min: cfg.MinRate}
}

func trainOne(cfg trainConfig, name string, train, test []nn.Sample, rng *rand.Rand, logger *slog.Logger) (run, *nn.Network, optim.Optimizer, error) {
	r := run{ID: uuid.New(), Optimizer: name}

	opt, err := optim.New(name, optim.Options{})
	if err != nil {
		return r, nil, nil, err
	}
	net, err := buildNetwork(cfg, len(train[0].Input), len(train[0].Expected))
	if err != nil {
		return r, nil, nil, err
	}

	ds := dataset.New(train, cfg.Batch)
	if cfg.Batch > len(train) {
		ds.BatchSize = 0
	}
	perEpoch := ds.BatchesPerEpoch()
	iterations := cfg.Iterations
	if iterations == 0 {
		iterations = cfg.Epochs * perEpoch
	}

	runLogger := logger.With("run", r.ID)
	log := runLogger.With("optimizer", name)
	record := func(iteration int) error {
		e, err := evaluate(net, train, test, iteration)
		if err != nil {
			return err
		}
		r.Epochs = append(r.Epochs, e)
		log.Info("epoch", "iteration", iteration,
			"train_loss", float64(e.Train.Loss), "train_accuracy", e.Train.Accuracy,
			"test_loss", float64(e.Test.Loss), "test_accuracy", e.Test.Accuracy)
		return nil
	}

	stop := optim.StopOnNaN
	if cfg.Target > 0 {
		stop = optim.StopBelow(cfg.Target)
	}
	loop := optim.NewLoop(opt, optim.LoopConfig{
		LearningRate:  schedule(cfg),
		MaxIterations: iterations,
		BeforeIteration: func(net *nn.Network, _ int) error {
			batch, err := ds.Batch(rng)
			if err != nil {
				return err
			}
			net.SetBatch(batch)
			return nil
		},
		StopCondition: stop,
		AfterIteration: func(_ *nn.Network, _ *nn.GradientResult, i int) error {
			if i > 0 && i%perEpoch == 0 {
				return record(i)
			}
			return nil
		},
		Logger:   runLogger,
		LogEvery: max(perEpoch/4, 1),
	})

	report, err := loop.Run(net)
	if err != nil {
		return r, nil, nil, err
	}
	r.Iterations = report.Iterations
	r.Stopped = report.Stopped
	if err := record(report.Iterations); err != nil {
		return r, nil, nil, err
	}

	if len(test) > 0 {
		if err := logMetrics(net, test, log); err != nil {
			return r, nil, nil, err
		}
	}
	return r, net, opt, nil
}

func evaluate(net *nn.Network, train, test []nn.Sample, iteration int) (epoch, error) {
	e := epoch{Iteration: iteration}
	res, err := net.ValidateOnSet(train)
	if err != nil {
		return e, err
	}
	e.Train = score{Loss: lossValue(res.Loss), Accuracy: res.Accuracy}
	if len(test) == 0 {
		return e, nil
	}
	res, err = net.ValidateOnSet(test)
	if err != nil {
		return e, err
	}
	e.Test = score{Loss: lossValue(res.Loss), Accuracy: res.Accuracy}
	return e, nil
}

func logMetrics(net *nn.Network, test []nn.Sample, log *slog.Logger) error {
	res, err := net.ValidateOnSet(test)
	if err != nil {
		return err
	}
	points, err := metrics.Predictions(test, res.Estimates)
	if err != nil {
		return err
	}

	if len(test[0].Expected) > 1 {
		acc, err := metrics.CategoricalAccuracy(points)
		if err != nil {
			return err
		}
		log.Info("test metrics", "categorical_accuracy", acc)
		return nil
	}

	acc, err := metrics.BinaryAccuracy(points, 0.5)
	if err != nil {
		return err
	}
	attrs := []any{"binary_accuracy", acc}
	if auc, err := metrics.AUC(points); err == nil {
		attrs = append(attrs, "auc", auc)
	}
	log.Info("test metrics", attrs...)
	return nil
}

// newRand seeds a PCG generator; seed 0 draws a random seed.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed))
}
