package dataset

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/born-ml/dense/internal/nn"
)

const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// LoadIDX reads an image file and a label file in IDX format (the
// official MNIST distribution). Pixels are scaled to [0, 1] and labels
// one-hot encoded over classes. maxSamples of 0 loads every image.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255)
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func LoadIDX(images, labels io.Reader, classes, maxSamples int) ([]nn.Sample, error) {
	var header [4]uint32
	if err := binary.Read(images, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(err, "read image header")
	}
	if header[0] != idxImagesMagic {
		return nil, errors.Errorf("invalid image magic number: got %d, want %d", header[0], idxImagesMagic)
	}
	count, size := int(header[1]), int(header[2]*header[3])

	var labelHeader [2]uint32
	if err := binary.Read(labels, binary.BigEndian, &labelHeader); err != nil {
		return nil, errors.Wrap(err, "read label header")
	}
	if labelHeader[0] != idxLabelsMagic {
		return nil, errors.Errorf("invalid label magic number: got %d, want %d", labelHeader[0], idxLabelsMagic)
	}
	if int(labelHeader[1]) != count {
		return nil, errors.Errorf("image count (%d) != label count (%d)", count, labelHeader[1])
	}

	if maxSamples > 0 && count > maxSamples {
		count = maxSamples
	}

	samples := make([]nn.Sample, count)
	pixels := make([]byte, size)
	var label [1]byte
	for i := range samples {
		if _, err := io.ReadFull(images, pixels); err != nil {
			return nil, errors.Wrapf(err, "read image %d", i)
		}
		if _, err := io.ReadFull(labels, label[:]); err != nil {
			return nil, errors.Wrapf(err, "read label %d", i)
		}

		input := make([]float64, size)
		for j, p := range pixels {
			input[j] = float64(p) / 255
		}
		expected, err := OneHot(int(label[0]), classes)
		if err != nil {
			return nil, errors.Wrapf(err, "image %d", i)
		}
		samples[i] = nn.Sample{Input: input, Expected: expected}
	}
	return samples, nil
}
