package nn

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/dense/internal/matrix"
)

// InitRange bounds the uniform distribution of random weights: [-InitRange, InitRange].
const InitRange = 0.5

// Uniform creates a neurons × (inputs+1) weight matrix with every element
// drawn from U(-InitRange, InitRange).
//
// Parameters:
//   - neurons: Number of units of the layer
//   - inputs: Size of the previous layer (without the bias input)
//   - randomBias: Whether column 0 is randomized too; otherwise it stays 0
//   - src: Random source, shared across layers so one seed fixes the network
//
// Returns the initialized weight matrix.
func Uniform(neurons, inputs int, randomBias bool, src rand.Source) *matrix.Matrix {
	dist := distuv.Uniform{Min: -InitRange, Max: InitRange, Src: src}

	w := matrix.New(neurons, inputs+1)
	for i := 0; i < neurons; i++ {
		for j := 0; j <= inputs; j++ {
			if j == 0 && !randomBias {
				continue
			}
			w.Set(i, j, dist.Rand())
		}
	}
	return w
}

// newSource returns the PCG source for seed; seed 0 picks a random one.
func newSource(seed uint64) rand.Source {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}
