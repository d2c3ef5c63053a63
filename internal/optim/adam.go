package optim

import (
	"math"

	"github.com/born-ml/dense/internal/matrix"
	"github.com/born-ml/dense/internal/nn"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Adam combines ideas from RMSProp and momentum:
//   - Maintains exponential moving averages of gradients (first moment)
//   - Maintains exponential moving averages of squared gradients (second moment)
//   - Applies bias correction to compensate for initialization at zero
//
// Update rule, with t = iteration + 1:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)   // Parameter update
//
// The loop iteration drives bias correction, so an Adam value reused for a
// second Run starts its correction over.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
//
// Example:
//
//	optimizer := optim.NewAdam(optim.AdamConfig{
//	    Betas: [2]float64{0.9, 0.999},
//	    Eps:   1e-8,
//	})
type Adam struct {
	beta1 float64
	beta2 float64
	eps   float64
	m     slot // First moment estimates
	v     slot // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	Betas [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer.
//
// Default hyperparameters:
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-8
func NewAdam(config AdamConfig) *Adam {
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		beta1: config.Betas[0],
		beta2: config.Betas[1],
		eps:   config.Eps,
	}
}

// Name returns "adam".
func (a *Adam) Name() string { return "adam" }

// Step updates both moments and the weights.
func (a *Adam) Step(net *nn.Network, lr float64, grad *nn.GradientResult, iteration int) error {
	if err := checkLayers(net, grad); err != nil {
		return err
	}
	if err := a.m.ensure("m", grad.Gradients); err != nil {
		return err
	}
	if err := a.v.ensure("v", grad.Gradients); err != nil {
		return err
	}

	t := float64(iteration + 1)
	correction1 := 1 - math.Pow(a.beta1, t)
	correction2 := 1 - math.Pow(a.beta2, t)

	for l, g := range grad.Gradients {
		layer := net.Layers()[l]
		w := layer.Weights()
		wd, gd := w.Data(), g.Data()
		md, vd := a.m[l].Data(), a.v[l].Data()
		for k, gk := range gd {
			md[k] = a.beta1*md[k] + (1-a.beta1)*gk
			vd[k] = a.beta2*vd[k] + (1-a.beta2)*gk*gk

			mHat := md[k] / correction1
			vHat := vd[k] / correction2
			wd[k] -= lr / (math.Sqrt(vHat) + a.eps) * mHat
		}
		if err := layer.UpdateWeights(w); err != nil {
			return err
		}
	}
	return nil
}

// State returns "m.<layer>" and "v.<layer>".
func (a *Adam) State() map[string]*matrix.Matrix {
	state := make(map[string]*matrix.Matrix)
	a.m.export("m", state)
	a.v.export("v", state)
	return state
}

// LoadState restores both moments.
func (a *Adam) LoadState(state map[string]*matrix.Matrix) error {
	m, err := importSlot("m", state)
	if err != nil {
		return err
	}
	v, err := importSlot("v", state)
	if err != nil {
		return err
	}
	a.m, a.v = m, v
	return nil
}
