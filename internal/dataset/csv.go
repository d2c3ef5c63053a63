package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"

	"github.com/born-ml/dense/internal/nn"
)

// Options controls LoadCSV.
type Options struct {
	LabelColumn int  // Column holding the label (default: 0)
	Header      bool // Skip the first row
	Classes     int  // >1 one-hot encodes integer labels; otherwise the label is used as is
	Normalize   bool // Divide every feature column by its maximum absolute value
	MaxSamples  int  // Stop after this many rows (0 = all)
}

// LoadCSV reads one sample per row. The label column becomes the expected
// vector and every other column, in order, the input.
//
// CSV Format (Kaggle-style MNIST with Header and Classes: 10):
//
//	label,pixel0,pixel1,...,pixel783
//	5,0,0,12,...,0
func LoadCSV(r io.Reader, opts Options) ([]nn.Sample, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	var samples []nn.Sample
	for row := 0; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read CSV")
		}
		if row == 0 && opts.Header {
			continue
		}
		if opts.MaxSamples > 0 && len(samples) == opts.MaxSamples {
			break
		}

		sample, err := parseRecord(record, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", row+1)
		}
		if len(samples) > 0 && len(sample.Input) != len(samples[0].Input) {
			return nil, errors.Errorf("row %d: got %d features, want %d", row+1, len(sample.Input), len(samples[0].Input))
		}
		samples = append(samples, sample)
	}

	if len(samples) == 0 {
		return nil, errors.New("CSV file has no samples")
	}
	if opts.Normalize {
		normalize(samples)
	}
	return samples, nil
}

func parseRecord(record []string, opts Options) (nn.Sample, error) {
	if opts.LabelColumn < 0 || opts.LabelColumn >= len(record) {
		return nn.Sample{}, errors.Errorf("label column %d outside %d columns", opts.LabelColumn, len(record))
	}

	input := make([]float64, 0, len(record)-1)
	for j, field := range record {
		if j == opts.LabelColumn {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nn.Sample{}, errors.Wrapf(err, "column %d", j+1)
		}
		input = append(input, v)
	}

	field := record[opts.LabelColumn]
	if opts.Classes > 1 {
		label, err := strconv.Atoi(field)
		if err != nil {
			return nn.Sample{}, errors.Wrap(err, "invalid label")
		}
		expected, err := OneHot(label, opts.Classes)
		if err != nil {
			return nn.Sample{}, err
		}
		return nn.Sample{Input: input, Expected: expected}, nil
	}

	label, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return nn.Sample{}, errors.Wrap(err, "invalid label")
	}
	return nn.Sample{Input: input, Expected: []float64{label}}, nil
}

// normalize scales each feature column into [-1, 1]. Constant-zero
// columns are left alone.
func normalize(samples []nn.Sample) {
	scale := make([]float64, len(samples[0].Input))
	for _, s := range samples {
		for j, v := range s.Input {
			scale[j] = math.Max(scale[j], math.Abs(v))
		}
	}
	for _, s := range samples {
		for j := range s.Input {
			if scale[j] != 0 {
				s.Input[j] /= scale[j]
			}
		}
	}
}
