package optim

import (
	"fmt"
	"math"
)

// Schedule returns the learning rate of an iteration.
type Schedule interface {
	LR(iteration int) float64
}

// Constant is a fixed learning rate.
type Constant float64

// LR returns the constant.
func (c Constant) LR(int) float64 { return float64(c) }

func (c Constant) String() string { return fmt.Sprintf("constant(%g)", float64(c)) }

// ScheduleFunc adapts a function to Schedule.
type ScheduleFunc func(iteration int) float64

// LR calls f.
func (f ScheduleFunc) LR(iteration int) float64 { return f(iteration) }

// InverseTimeDecay shrinks the learning rate hyperbolically down to a floor:
//
//	lr = max(Min, Initial / (1 + Decay * iteration))
type InverseTimeDecay struct {
	Initial float64
	Decay   float64
	Min     float64
}

// LR returns the decayed learning rate.
func (s InverseTimeDecay) LR(iteration int) float64 {
	return math.Max(s.Min, s.Initial/(1+s.Decay*float64(iteration)))
}

func (s InverseTimeDecay) String() string {
	return fmt.Sprintf("inverse-time(%g, decay=%g, min=%g)", s.Initial, s.Decay, s.Min)
}

// ExponentialDecay multiplies the learning rate by Rate every Steps iterations:
//
//	lr = max(Min, Initial * Rate^(iteration / Steps))
//
// Steps of 0 is treated as 1.
type ExponentialDecay struct {
	Initial float64
	Rate    float64
	Steps   int
	Min     float64
}

// LR returns the decayed learning rate.
func (s ExponentialDecay) LR(iteration int) float64 {
	steps := max(s.Steps, 1)
	return math.Max(s.Min, s.Initial*math.Pow(s.Rate, float64(iteration/steps)))
}

func (s ExponentialDecay) String() string {
	return fmt.Sprintf("exponential(%g, rate=%g, steps=%d, min=%g)", s.Initial, s.Rate, s.Steps, s.Min)
}
