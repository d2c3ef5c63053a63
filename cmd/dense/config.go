package main

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/dense/internal/nn"
)

// trainConfig is the train command configuration. It can be read from a
// YAML file given with -config; flags set on the command line win.
type trainConfig struct {
	Data       string `yaml:"data"`
	Labels     string `yaml:"labels"` // IDX label file; selects the IDX format
	Label      int    `yaml:"label"`
	Header     bool   `yaml:"header"`
	Classes    int    `yaml:"classes"`
	Normalize  bool   `yaml:"normalize"`
	MaxSamples int    `yaml:"max_samples"`

	Hidden string `yaml:"hidden"` // e.g. "sigmoid:32,relu:16"
	Output string `yaml:"output"` // output activation (default: softmax or sigmoid)
	Loss   string `yaml:"loss"`   // default: crossentropy or logloss

	Optimizers   string  `yaml:"optimizer"` // comma separated, one run each
	LearningRate float64 `yaml:"learning_rate"`
	Decay        float64 `yaml:"decay"`
	MinRate      float64 `yaml:"min_rate"`
	Iterations   int     `yaml:"iterations"` // 0 runs Epochs epochs
	Epochs       int     `yaml:"epochs"`
	Batch        int     `yaml:"batch"`
	Split        float64 `yaml:"split"`
	Target       float64 `yaml:"target"` // stop once the batch loss is below
	Seed         uint64  `yaml:"seed"`
	Workers      int     `yaml:"workers"`

	Checkpoint string `yaml:"checkpoint"`
	Results    string `yaml:"results"`
}

func defaultTrainConfig() trainConfig {
	return trainConfig{
		Optimizers:   "adagrad",
		LearningRate: 0.01,
		Epochs:       10,
		Batch:        200,
		Split:        0.2,
	}
}

func (c *trainConfig) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Data, "data", c.Data, "CSV file, or IDX image file with -labels")
	fs.StringVar(&c.Labels, "labels", c.Labels, "IDX label file")
	fs.IntVar(&c.Label, "label", c.Label, "CSV label column")
	fs.BoolVar(&c.Header, "header", c.Header, "CSV has a header row")
	fs.IntVar(&c.Classes, "classes", c.Classes, "number of classes (>1 one-hot encodes labels)")
	fs.BoolVar(&c.Normalize, "normalize", c.Normalize, "scale CSV columns by their max absolute value")
	fs.IntVar(&c.MaxSamples, "samples", c.MaxSamples, "max samples to load (0 = all)")
	fs.StringVar(&c.Hidden, "hidden", c.Hidden, "hidden layers as kind:neurons, comma separated")
	fs.StringVar(&c.Output, "output", c.Output, "output activation")
	fs.StringVar(&c.Loss, "loss", c.Loss, "loss: logloss, crossentropy or mse")
	fs.StringVar(&c.Optimizers, "optimizer", c.Optimizers, "optimizers to compare, comma separated")
	fs.Float64Var(&c.LearningRate, "lr", c.LearningRate, "initial learning rate")
	fs.Float64Var(&c.Decay, "decay", c.Decay, "inverse-time learning rate decay (0 = constant)")
	fs.Float64Var(&c.MinRate, "min-lr", c.MinRate, "learning rate floor")
	fs.IntVar(&c.Iterations, "iterations", c.Iterations, "iterations (0 = epochs × batches per epoch)")
	fs.IntVar(&c.Epochs, "epochs", c.Epochs, "epochs when -iterations is 0")
	fs.IntVar(&c.Batch, "batch", c.Batch, "batch size (0 = whole training set)")
	fs.Float64Var(&c.Split, "split", c.Split, "fraction of samples held out for testing")
	fs.Float64Var(&c.Target, "target", c.Target, "stop once the batch loss drops below")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "random seed (0 = random)")
	fs.IntVar(&c.Workers, "workers", c.Workers, "gradient workers (0 = all CPUs, 1 = sequential)")
	fs.StringVar(&c.Checkpoint, "checkpoint", c.Checkpoint, "write the trained network to this file")
	fs.StringVar(&c.Results, "results", c.Results, "write per-epoch results as JSON to this file")
}

// parseTrainConfig applies defaults, then the -config file, then flags.
func parseTrainConfig(args []string) (trainConfig, error) {
	cfg := defaultTrainConfig()
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	path := fs.String("config", "", "YAML configuration file")
	cfg.bind(fs)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if *path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse %s", *path)
	}
	// Parsing again reapplies only the flags given explicitly.
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, nil
}

type layerSpec struct {
	kind    nn.ActivationKind
	neurons int
}

// parseLayers reads "kind:neurons[,kind:neurons...]".
func parseLayers(s string) ([]layerSpec, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var specs []layerSpec
	for _, part := range strings.Split(s, ",") {
		name, count, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, errors.Errorf("layer %q: want kind:neurons", part)
		}
		kind, err := nn.ParseActivation(name)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %q", part)
		}
		n, err := strconv.Atoi(count)
		if err != nil || n <= 0 {
			return nil, errors.Errorf("layer %q: invalid neuron count", part)
		}
		specs = append(specs, layerSpec{kind: kind, neurons: n})
	}
	return specs, nil
}
