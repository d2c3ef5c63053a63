package optim_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dense/internal/matrix"
	"github.com/born-ml/dense/internal/nn"
	"github.com/born-ml/dense/internal/optim"
)

var xorSamples = []nn.Sample{
	{Input: []float64{1, 1}, Expected: []float64{0}},
	{Input: []float64{1, 0}, Expected: []float64{1}},
	{Input: []float64{0, 1}, Expected: []float64{1}},
	{Input: []float64{0, 0}, Expected: []float64{0}},
}

func newXOR(t *testing.T) *nn.Network {
	t.Helper()
	net, err := nn.NewNetwork(nn.Config{Loss: nn.LogLoss, InputSize: 2})
	require.NoError(t, err)
	require.NoError(t, net.Add(nn.TanH, 2))
	require.NoError(t, net.Add(nn.Sigmoid, 1))
	require.NoError(t, net.Initialize([][][]float64{
		{{0.5, 0.5, 0.5}, {-0.5, -0.5, -0.5}},
		{{-0.5, 0.5, 0.5}},
	}))
	net.SetBatch(xorSamples)
	return net
}

func TestLoop_XOR(t *testing.T) {
	net := newXOR(t)

	loop := optim.NewLoop(optim.NewSGD(optim.SGDConfig{}), optim.LoopConfig{
		LearningRate:  optim.Constant(1),
		MaxIterations: 500,
	})
	report, err := loop.Run(net)
	require.NoError(t, err)
	assert.Equal(t, 500, report.Iterations)
	assert.False(t, report.Stopped)

	result, err := net.ValidateOnSet(xorSamples)
	require.NoError(t, err)
	assert.Less(t, result.Loss*4, 0.05, "total loss")
	assert.Equal(t, 4, result.Correct)
}

func TestLoop_HookOrder(t *testing.T) {
	net := linearNet(t, 0, 0)
	net.SetBatch([]nn.Sample{{Input: []float64{1}, Expected: []float64{1}}})

	var events []string
	loop := optim.NewLoop(optim.NewSGD(optim.SGDConfig{}), optim.LoopConfig{
		LearningRate:  optim.Constant(0.1),
		MaxIterations: 2,
		BeforeIteration: func(_ *nn.Network, i int) error {
			events = append(events, fmt.Sprintf("before %d", i))
			return nil
		},
		StopCondition: func(_ *nn.Network, _ *nn.GradientResult, i int) bool {
			events = append(events, fmt.Sprintf("stop? %d", i))
			return false
		},
		AfterIteration: func(_ *nn.Network, _ *nn.GradientResult, i int) error {
			events = append(events, fmt.Sprintf("after %d", i))
			return nil
		},
		AfterAll: func(*nn.Network) error {
			events = append(events, "all")
			return nil
		},
	})

	_, err := loop.Run(net)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"before 0", "stop? 0", "after 0",
		"before 1", "stop? 1", "after 1",
		"all",
	}, events)
}

func TestLoop_StopConditionSkipsUpdate(t *testing.T) {
	net := linearNet(t, 0, 0)
	net.SetBatch([]nn.Sample{{Input: []float64{1}, Expected: []float64{1}}})

	var afterAll int
	loop := optim.NewLoop(optim.NewSGD(optim.SGDConfig{}), optim.LoopConfig{
		LearningRate:  optim.Constant(0.1),
		MaxIterations: 10,
		StopCondition: func(_ *nn.Network, _ *nn.GradientResult, i int) bool { return i == 3 },
		AfterAll: func(*nn.Network) error {
			afterAll++
			return nil
		},
	})
	report, err := loop.Run(net)
	require.NoError(t, err)

	assert.True(t, report.Stopped)
	assert.Equal(t, 3, report.Iterations)
	assert.Equal(t, 1, afterAll)

	// Three steps of w += 0.1·(1 - (b+w)) on both weights.
	b := 0.0
	for range 3 {
		b += 0.1 * (1 - 2*b)
	}
	assert.InDeltaSlice(t, []float64{b, b}, weights(net), 1e-12)
}

func TestLoop_NegativeLearningRate(t *testing.T) {
	net := linearNet(t, 0.5, 0.5)
	net.SetBatch([]nn.Sample{{Input: []float64{1}, Expected: []float64{0}}})

	var afterAll bool
	loop := optim.NewLoop(optim.NewAdam(optim.AdamConfig{}), optim.LoopConfig{
		LearningRate: optim.ScheduleFunc(func(i int) float64 {
			return 0.1 - 0.1*float64(i)
		}),
		MaxIterations: 5,
		AfterAll: func(*nn.Network) error {
			afterAll = true
			return nil
		},
	})
	report, err := loop.Run(net)

	require.Error(t, err)
	assert.True(t, errors.Is(err, optim.ErrNegativeLearningRate))
	assert.Contains(t, err.Error(), "iteration 2")
	assert.Equal(t, 2, report.Iterations)
	assert.False(t, afterAll)
}

func TestLoop_NesterovEvaluatesGradientAtLookahead(t *testing.T) {
	net := linearNet(t, 0.2, -0.3)
	net.SetBatch([]nn.Sample{
		{Input: []float64{1}, Expected: []float64{2}},
		{Input: []float64{-1}, Expected: []float64{0}},
	})
	const momentum = 0.8
	sgd := optim.NewSGD(optim.SGDConfig{Momentum: momentum, Nesterov: true})

	var base, velocity *matrix.Matrix
	checked := 0
	loop := optim.NewLoop(sgd, optim.LoopConfig{
		LearningRate:  optim.Constant(0.1),
		MaxIterations: 6,
		StopCondition: func(n *nn.Network, grad *nn.GradientResult, i int) bool {
			current := n.Weights()[0]
			if base != nil {
				want := base.Clone().AddScaledInPlace(momentum, velocity)
				assert.True(t, current.EqualApprox(want, 1e-12), "iteration %d: evaluated at %v, want %v", i, current, want)

				g, err := n.ComputeGradient(n.Batch())
				require.NoError(t, err)
				assert.Equal(t, g.Gradients[0].Data(), grad.Gradients[0].Data())
				checked++
			}
			return false
		},
		AfterIteration: func(n *nn.Network, _ *nn.GradientResult, _ int) error {
			base = n.Weights()[0]
			velocity = sgd.State()["velocity.0"]
			return nil
		},
	})

	_, err := loop.Run(net)
	require.NoError(t, err)
	assert.Equal(t, 5, checked)
}

func TestLoop_NesterovRestoresOnStop(t *testing.T) {
	net := linearNet(t, 0.2, -0.3)
	net.SetBatch([]nn.Sample{{Input: []float64{1}, Expected: []float64{2}}})

	var last *matrix.Matrix
	loop := optim.NewLoop(optim.NewSGD(optim.SGDConfig{Momentum: 0.9, Nesterov: true}), optim.LoopConfig{
		LearningRate:  optim.Constant(0.1),
		MaxIterations: 10,
		StopCondition: func(_ *nn.Network, _ *nn.GradientResult, i int) bool { return i == 3 },
		AfterIteration: func(n *nn.Network, _ *nn.GradientResult, _ int) error {
			last = n.Weights()[0]
			return nil
		},
	})

	report, err := loop.Run(net)
	require.NoError(t, err)
	assert.True(t, report.Stopped)
	assert.True(t, net.Weights()[0].Equal(last), "weights %v, want %v", net.Weights()[0], last)
}

func TestLoop_NesterovRestoresOnNegativeLearningRate(t *testing.T) {
	net := newXOR(t)

	var last *matrix.Matrix
	loop := optim.NewLoop(optim.NewSGD(optim.SGDConfig{Momentum: 0.9, Nesterov: true}), optim.LoopConfig{
		LearningRate: optim.ScheduleFunc(func(i int) float64 {
			if i == 3 {
				return -1
			}
			return 1
		}),
		MaxIterations: 10,
		AfterIteration: func(n *nn.Network, _ *nn.GradientResult, _ int) error {
			last = n.Weights()[0]
			return nil
		},
	})

	report, err := loop.Run(net)
	require.ErrorIs(t, err, optim.ErrNegativeLearningRate)
	assert.Equal(t, 3, report.Iterations)
	assert.True(t, net.Weights()[0].Equal(last), "weights %v, want %v", net.Weights()[0], last)
}

func TestLoop_NesterovRestoresOnGradientError(t *testing.T) {
	net := newXOR(t)

	var last *matrix.Matrix
	loop := optim.NewLoop(optim.NewSGD(optim.SGDConfig{Momentum: 0.9, Nesterov: true}), optim.LoopConfig{
		LearningRate:  optim.Constant(1),
		MaxIterations: 10,
		BeforeIteration: func(n *nn.Network, i int) error {
			if i == 2 {
				n.SetBatch([]nn.Sample{{Input: []float64{1}, Expected: []float64{0}}})
			}
			return nil
		},
		AfterIteration: func(n *nn.Network, _ *nn.GradientResult, _ int) error {
			last = n.Weights()[0]
			return nil
		},
	})

	_, err := loop.Run(net)
	var dim *matrix.DimensionError
	require.ErrorAs(t, err, &dim)
	assert.True(t, net.Weights()[0].Equal(last), "weights %v, want %v", net.Weights()[0], last)
}

func TestLoop_HookErrors(t *testing.T) {
	errHook := errors.New("hook failed")
	net := linearNet(t, 0, 0)
	net.SetBatch([]nn.Sample{{Input: []float64{1}, Expected: []float64{1}}})

	loop := optim.NewLoop(optim.NewSGD(optim.SGDConfig{}), optim.LoopConfig{
		LearningRate:  optim.Constant(0.1),
		MaxIterations: 3,
		AfterIteration: func(_ *nn.Network, _ *nn.GradientResult, i int) error {
			if i == 1 {
				return errHook
			}
			return nil
		},
	})
	report, err := loop.Run(net)
	assert.ErrorIs(t, err, errHook)
	assert.Equal(t, 2, report.Iterations)

	_, err = optim.NewLoop(optim.NewSGD(optim.SGDConfig{}), optim.LoopConfig{MaxIterations: 1}).Run(net)
	assert.ErrorIs(t, err, nn.ErrInvalidConfiguration)

	net.SetBatch(nil)
	_, err = optim.NewLoop(optim.NewSGD(optim.SGDConfig{}), optim.LoopConfig{
		LearningRate:  optim.Constant(0.1),
		MaxIterations: 1,
	}).Run(net)
	assert.ErrorIs(t, err, nn.ErrEmptyBatch)
}

func TestLoop_BatchReplacement(t *testing.T) {
	net := linearNet(t, 0, 0)
	batches := [][]nn.Sample{
		{{Input: []float64{1}, Expected: []float64{1}}},
		{{Input: []float64{-1}, Expected: []float64{3}}},
	}

	var losses []float64
	loop := optim.NewLoop(optim.NewSGD(optim.SGDConfig{}), optim.LoopConfig{
		LearningRate:  optim.Constant(0),
		MaxIterations: 4,
		BeforeIteration: func(n *nn.Network, i int) error {
			n.SetBatch(batches[i%2])
			return nil
		},
		AfterIteration: func(_ *nn.Network, grad *nn.GradientResult, _ int) error {
			losses = append(losses, grad.Loss)
			return nil
		},
	})
	_, err := loop.Run(net)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 9, 1, 9}, losses)
}

func TestStopConditions(t *testing.T) {
	assert.True(t, optim.StopOnNaN(nil, &nn.GradientResult{Loss: math.NaN()}, 0))
	assert.True(t, optim.StopOnNaN(nil, &nn.GradientResult{Loss: math.Inf(1)}, 0))
	assert.False(t, optim.StopOnNaN(nil, &nn.GradientResult{Loss: 1}, 0))

	stop := optim.StopBelow(0.01)
	assert.True(t, stop(nil, &nn.GradientResult{Loss: 0.001}, 0))
	assert.True(t, stop(nil, &nn.GradientResult{Loss: math.NaN()}, 0))
	assert.False(t, stop(nil, &nn.GradientResult{Loss: 0.5}, 0))
}

func TestLoop_StopsOnDivergence(t *testing.T) {
	net := linearNet(t, 0, 0)
	net.SetBatch([]nn.Sample{{Input: []float64{10}, Expected: []float64{1}}})

	report, err := optim.NewLoop(optim.NewSGD(optim.SGDConfig{}), optim.LoopConfig{
		LearningRate:  optim.Constant(10),
		MaxIterations: 1000,
		StopCondition: optim.StopOnNaN,
	}).Run(net)
	require.NoError(t, err)
	assert.True(t, report.Stopped)
	assert.Less(t, report.Iterations, 1000)
}

func TestLoop_Logging(t *testing.T) {
	var buf bytes.Buffer
	net := newXOR(t)

	_, err := optim.NewLoop(optim.NewAdam(optim.AdamConfig{}), optim.LoopConfig{
		LearningRate:  optim.Constant(0.01),
		MaxIterations: 5,
		Logger:        slog.New(slog.NewTextHandler(&buf, nil)),
		LogEvery:      2,
	}).Run(net)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "optimizer=adam")
	assert.Contains(t, out, "iteration=0")
	assert.Contains(t, out, "iteration=4")
	assert.NotContains(t, out, "iteration=3")
}

func TestSchedules(t *testing.T) {
	assert.Equal(t, 0.3, optim.Constant(0.3).LR(1000))

	inv := optim.InverseTimeDecay{Initial: 1, Decay: 0.1, Min: 0.2}
	assert.InDelta(t, 1.0, inv.LR(0), 1e-12)
	assert.InDelta(t, 0.5, inv.LR(10), 1e-12)
	assert.InDelta(t, 0.2, inv.LR(1000), 1e-12)

	exp := optim.ExponentialDecay{Initial: 1, Rate: 0.5, Steps: 10}
	assert.InDelta(t, 1.0, exp.LR(9), 1e-12)
	assert.InDelta(t, 0.5, exp.LR(10), 1e-12)
	assert.InDelta(t, 0.25, exp.LR(25), 1e-12)

	assert.Equal(t, 4.0, optim.ScheduleFunc(func(i int) float64 { return float64(i * i) }).LR(2))
}
