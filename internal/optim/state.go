package optim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/dense/internal/matrix"
	"github.com/born-ml/dense/internal/nn"
)

// slot is one per-layer state buffer, e.g. a velocity or a moving average.
type slot []*matrix.Matrix

// ensure zero-initializes the slot on first use and checks that its shapes
// still match the gradients afterwards.
func (s *slot) ensure(name string, grads []*matrix.Matrix) error {
	if *s == nil {
		*s = make(slot, len(grads))
		for l, g := range grads {
			(*s)[l] = matrix.Zeros(g.Shape())
		}
		return nil
	}
	if len(*s) != len(grads) {
		return fmt.Errorf("%w: %s has %d layers, gradient has %d", ErrInvalidState, name, len(*s), len(grads))
	}
	for l, g := range grads {
		if !(*s)[l].Shape().Equal(g.Shape()) {
			return &matrix.DimensionError{
				Op:       "optimizer state",
				Expected: g.Shape(),
				Actual:   (*s)[l].Shape(),
				Details:  fmt.Sprintf("%s.%d", name, l),
			}
		}
	}
	return nil
}

// export copies the slot into state under "<name>.<layer>".
func (s slot) export(name string, state map[string]*matrix.Matrix) {
	for l, m := range s {
		state[name+"."+strconv.Itoa(l)] = m.Clone()
	}
}

// importSlot reads "<name>.0" .. "<name>.n-1" from state. A slot with no
// entries stays nil and is zero-initialized on the next Step.
func importSlot(name string, state map[string]*matrix.Matrix) (slot, error) {
	var indices []int
	for key := range state {
		prefix, index, ok := strings.Cut(key, ".")
		if !ok || prefix != name {
			continue
		}
		l, err := strconv.Atoi(index)
		if err != nil || l < 0 {
			return nil, fmt.Errorf("%w: bad key %q", ErrInvalidState, key)
		}
		indices = append(indices, l)
	}
	if len(indices) == 0 {
		return nil, nil
	}

	s := make(slot, len(indices))
	for l := range s {
		m, ok := state[name+"."+strconv.Itoa(l)]
		if !ok || m == nil {
			return nil, fmt.Errorf("%w: missing %s.%d", ErrInvalidState, name, l)
		}
		s[l] = m.Clone()
	}
	return s, nil
}

// apply adds delta to the weights of layer l in place.
func apply(net *nn.Network, l int, delta *matrix.Matrix) error {
	layer := net.Layers()[l]
	w := layer.Weights()
	w.SumInPlace(delta)
	return layer.UpdateWeights(w)
}

func checkLayers(net *nn.Network, grad *nn.GradientResult) error {
	if len(grad.Gradients) != len(net.Layers()) {
		return fmt.Errorf("%w: gradient has %d layers, network has %d",
			ErrInvalidState, len(grad.Gradients), len(net.Layers()))
	}
	return nil
}
