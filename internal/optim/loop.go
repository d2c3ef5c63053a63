package optim

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/born-ml/dense/internal/nn"
)

// LoopConfig configures the iteration loop shared by every optimizer.
//
// All hooks are optional.
type LoopConfig struct {
	LearningRate  Schedule // Learning rate per iteration (required)
	MaxIterations int      // Number of iterations to run at most

	// BeforeIteration runs first in every iteration, before any lookahead.
	// Replacing the batch with net.SetBatch belongs here.
	BeforeIteration func(net *nn.Network, iteration int) error

	// StopCondition is checked after the gradient is computed. Returning
	// true ends the loop without applying that gradient.
	StopCondition func(net *nn.Network, grad *nn.GradientResult, iteration int) bool

	// AfterIteration runs after the weights were updated.
	AfterIteration func(net *nn.Network, grad *nn.GradientResult, iteration int) error

	// AfterAll runs once when the loop ends, whether it was stopped or not.
	// It does not run when an iteration fails.
	AfterAll func(net *nn.Network) error

	Logger   *slog.Logger // Progress logger (default: discard)
	LogEvery int          // Log every n-th iteration (default: 100)
}

// Report summarizes a finished Run.
type Report struct {
	Iterations int     // Number of updates applied
	Stopped    bool    // StopCondition ended the loop
	Loss       float64 // Mean batch loss of the last computed gradient
}

// Loop drives an optimizer over a network.
type Loop struct {
	opt Optimizer
	cfg LoopConfig
}

// NewLoop creates a loop for opt.
func NewLoop(opt Optimizer, cfg LoopConfig) *Loop {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 100
	}
	return &Loop{opt: opt, cfg: cfg}
}

// Optimizer returns the optimizer the loop advances.
func (lp *Loop) Optimizer() Optimizer { return lp.opt }

// Run trains net on its current batch (see nn.Network.SetBatch).
func (lp *Loop) Run(net *nn.Network) (Report, error) {
	if lp.cfg.LearningRate == nil {
		return Report{}, fmt.Errorf("%w: no learning rate", nn.ErrInvalidConfiguration)
	}
	lookahead, _ := lp.opt.(Lookahead)
	log := lp.cfg.Logger.With("optimizer", lp.opt.Name())

	var report Report
	for i := 0; i < lp.cfg.MaxIterations; i++ {
		if hook := lp.cfg.BeforeIteration; hook != nil {
			if err := hook(net, i); err != nil {
				return report, fmt.Errorf("iteration %d: before: %w", i, err)
			}
		}
		if lookahead != nil {
			if err := lookahead.Lookahead(net); err != nil {
				return report, restoreOnError(lookahead, net, fmt.Errorf("iteration %d: lookahead: %w", i, err))
			}
		}

		grad, err := net.ComputeGradient(net.Batch())
		if err != nil {
			return report, restoreOnError(lookahead, net, fmt.Errorf("iteration %d: %w", i, err))
		}
		report.Loss = grad.Loss

		if stop := lp.cfg.StopCondition; stop != nil && stop(net, grad, i) {
			if lookahead != nil {
				if err := lookahead.Restore(net); err != nil {
					return report, fmt.Errorf("iteration %d: restore: %w", i, err)
				}
			}
			report.Stopped = true
			log.Info("stopped", "iteration", i, "loss", grad.Loss)
			break
		}

		lr := lp.cfg.LearningRate.LR(i)
		if lr < 0 {
			return report, restoreOnError(lookahead, net, fmt.Errorf("%w: %g at iteration %d", ErrNegativeLearningRate, lr, i))
		}
		if err := lp.opt.Step(net, lr, grad, i); err != nil {
			return report, restoreOnError(lookahead, net, fmt.Errorf("iteration %d: %s step: %w", i, lp.opt.Name(), err))
		}
		report.Iterations++

		if i%lp.cfg.LogEvery == 0 {
			log.Info("iteration", "iteration", i, "loss", grad.Loss, "lr", lr)
		}

		if hook := lp.cfg.AfterIteration; hook != nil {
			if err := hook(net, grad, i); err != nil {
				return report, fmt.Errorf("iteration %d: after: %w", i, err)
			}
		}
	}

	if hook := lp.cfg.AfterAll; hook != nil {
		if err := hook(net); err != nil {
			return report, fmt.Errorf("after all: %w", err)
		}
	}
	return report, nil
}

// restoreOnError puts back the pre-lookahead weights before err is returned.
func restoreOnError(lookahead Lookahead, net *nn.Network, err error) error {
	if lookahead == nil {
		return err
	}
	if rerr := lookahead.Restore(net); rerr != nil {
		return fmt.Errorf("%w (restore: %v)", err, rerr)
	}
	return err
}

// StopOnNaN stops the loop once the batch loss is NaN or infinite.
func StopOnNaN(_ *nn.Network, grad *nn.GradientResult, _ int) bool {
	return math.IsNaN(grad.Loss) || math.IsInf(grad.Loss, 0)
}

// StopBelow returns a StopCondition that ends the loop once the batch loss
// drops below threshold, or becomes NaN or infinite.
func StopBelow(threshold float64) func(*nn.Network, *nn.GradientResult, int) bool {
	return func(net *nn.Network, grad *nn.GradientResult, i int) bool {
		return grad.Loss < threshold || StopOnNaN(net, grad, i)
	}
}
