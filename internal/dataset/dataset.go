// Package dataset feeds samples to a network: CSV loading, one-hot
// encoding, train/test splitting and random batch sampling.
package dataset

import (
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"

	"github.com/born-ml/dense/internal/nn"
)

// ErrBatchTooLarge is returned when a batch would need more samples than
// the dataset holds.
var ErrBatchTooLarge = errors.New("batch size exceeds dataset size")

// Dataset is a set of samples drawn from in batches.
type Dataset struct {
	Items     []nn.Sample
	BatchSize int // 0 means the whole dataset
}

// New creates a dataset. A batchSize of 0 uses every item in each batch.
func New(items []nn.Sample, batchSize int) *Dataset {
	return &Dataset{Items: items, BatchSize: batchSize}
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.Items) }

// Batch draws BatchSize distinct samples uniformly at random.
func (d *Dataset) Batch(rng *rand.Rand) ([]nn.Sample, error) {
	size := d.BatchSize
	if size == 0 {
		size = len(d.Items)
	}
	if size > len(d.Items) {
		return nil, errors.Wrapf(ErrBatchTooLarge, "batch of %d from %d samples", size, len(d.Items))
	}
	if size < 0 {
		return nil, errors.Errorf("negative batch size %d", size)
	}

	perm := rng.Perm(len(d.Items))
	batch := make([]nn.Sample, size)
	for i := range batch {
		batch[i] = d.Items[perm[i]]
	}
	return batch, nil
}

// BatchesPerEpoch returns how many batches cover the dataset once.
func (d *Dataset) BatchesPerEpoch() int {
	if d.BatchSize <= 0 || len(d.Items) == 0 {
		return 1
	}
	return int(math.Ceil(float64(len(d.Items)) / float64(d.BatchSize)))
}

// Split puts the first ceil(fraction·len(items)) samples in test and the
// rest in train. Shuffle first if the input is ordered.
func Split(items []nn.Sample, fraction float64) (train, test []nn.Sample, err error) {
	if fraction < 0 || fraction > 1 {
		return nil, nil, errors.Errorf("split fraction %g outside [0, 1]", fraction)
	}
	at := int(math.Ceil(fraction * float64(len(items))))
	return items[at:], items[:at], nil
}

// Shuffle permutes items in place.
func Shuffle(items []nn.Sample, rng *rand.Rand) {
	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// OneHot returns a vector of length n with a 1 at label.
func OneHot(label, n int) ([]float64, error) {
	if label < 0 || label >= n {
		return nil, errors.Errorf("label %d outside [0, %d)", label, n)
	}
	v := make([]float64, n)
	v[label] = 1
	return v, nil
}
