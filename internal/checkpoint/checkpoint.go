package checkpoint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/born-ml/dense/internal/matrix"
	"github.com/born-ml/dense/internal/nn"
	"github.com/born-ml/dense/internal/optim"
)

// Checkpoint is a snapshot of a network and, optionally, its optimizer.
type Checkpoint struct {
	ID          uuid.UUID       `json:"id"`
	Created     time.Time       `json:"created"`
	Loss        *float64        `json:"loss,omitempty"` // nil when the loss was not finite
	LossKind    string          `json:"loss_kind"`
	InputSize   int             `json:"input_size"`
	Activations []string        `json:"activations"`
	Neurons     []int           `json:"neurons"`
	Weights     [][][]float64   `json:"weights"`
	Checksum    string          `json:"checksum"`
	Optimizer   *OptimizerState `json:"optimizer,omitempty"`
}

// OptimizerState is the serialized form of optim.Optimizer.State.
type OptimizerState struct {
	Name  string            `json:"name"`
	State map[string]Tensor `json:"state"`
}

// Tensor is a serialized matrix.
type Tensor struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// Capture snapshots an initialized network. opt may be nil.
func Capture(net *nn.Network, opt optim.Optimizer, loss float64) (*Checkpoint, error) {
	if !net.Initialized() {
		return nil, ErrNotInitialized
	}

	cp := &Checkpoint{
		ID:        uuid.New(),
		Created:   time.Now().UTC(),
		LossKind:  net.LossKind().String(),
		InputSize: net.InputSize(),
	}
	if !math.IsNaN(loss) && !math.IsInf(loss, 0) {
		cp.Loss = &loss
	}
	for _, layer := range net.Layers() {
		cp.Activations = append(cp.Activations, layer.Activation().String())
		cp.Neurons = append(cp.Neurons, layer.Neurons())
	}
	for _, w := range net.Weights() {
		cp.Weights = append(cp.Weights, w.ToRows())
	}
	cp.Checksum = checksum(cp.Weights)

	if opt != nil {
		state := &OptimizerState{Name: opt.Name(), State: make(map[string]Tensor)}
		for key, m := range opt.State() {
			state.State[key] = Tensor{Rows: m.Rows(), Cols: m.Cols(), Data: m.Values()}
		}
		cp.Optimizer = state
	}
	return cp, nil
}

// Save writes the checkpoint as indented JSON.
func (c *Checkpoint) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(c), "encode checkpoint")
}

// SaveFile writes the checkpoint to path.
func (c *Checkpoint) SaveFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create checkpoint")
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "close checkpoint")
		}
	}()
	return c.Save(f)
}

// Load reads a checkpoint and verifies its structure and checksum.
func Load(r io.Reader) (*Checkpoint, error) {
	var cp Checkpoint
	if err := json.NewDecoder(r).Decode(&cp); err != nil {
		return nil, errors.Wrap(err, "decode checkpoint")
	}
	if err := cp.validate(); err != nil {
		return nil, err
	}
	if checksum(cp.Weights) != cp.Checksum {
		return nil, ErrChecksumMismatch
	}
	return &cp, nil
}

// LoadFile reads a checkpoint from path.
func LoadFile(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open checkpoint")
	}
	defer f.Close()

	cp, err := Load(f)
	return cp, errors.Wrapf(err, "load %s", path)
}

func (c *Checkpoint) validate() error {
	switch {
	case len(c.Activations) == 0:
		return &ValidationError{Field: "activations", Details: "no layers"}
	case len(c.Neurons) != len(c.Activations):
		return &ValidationError{Field: "neurons",
			Details: fmt.Sprintf("%d entries for %d layers", len(c.Neurons), len(c.Activations))}
	case len(c.Weights) != len(c.Activations):
		return &ValidationError{Field: "weights",
			Details: fmt.Sprintf("%d entries for %d layers", len(c.Weights), len(c.Activations))}
	case c.InputSize <= 0:
		return &ValidationError{Field: "input_size", Details: fmt.Sprintf("got %d", c.InputSize)}
	}
	if c.Optimizer != nil {
		for key, t := range c.Optimizer.State {
			if t.Rows*t.Cols != len(t.Data) {
				return &ValidationError{Field: "optimizer.state",
					Details: fmt.Sprintf("%s: %dx%d with %d values", key, t.Rows, t.Cols, len(t.Data))}
			}
		}
	}
	return nil
}

// Restore rebuilds the network and, when the checkpoint carries one, the
// optimizer. cfg supplies the runtime settings; its loss and input size
// are taken from the checkpoint. Weight shapes are checked against the
// topology by nn.Network.Initialize.
func (c *Checkpoint) Restore(cfg nn.Config, opts optim.Options) (*nn.Network, optim.Optimizer, error) {
	kind, err := nn.ParseLoss(c.LossKind)
	if err != nil {
		return nil, nil, &ValidationError{Field: "loss_kind", Details: err.Error()}
	}
	cfg.Loss = kind
	cfg.InputSize = c.InputSize

	net, err := nn.NewNetwork(cfg)
	if err != nil {
		return nil, nil, err
	}
	for l, name := range c.Activations {
		act, err := nn.ParseActivation(name)
		if err != nil {
			return nil, nil, &ValidationError{Field: "activations", Details: fmt.Sprintf("layer %d: %v", l, err)}
		}
		if err := net.Add(act, c.Neurons[l]); err != nil {
			return nil, nil, err
		}
	}
	if err := net.Initialize(c.Weights); err != nil {
		return nil, nil, err
	}

	if c.Optimizer == nil {
		return net, nil, nil
	}
	opt, err := optim.New(c.Optimizer.Name, opts)
	if err != nil {
		return nil, nil, err
	}
	state := make(map[string]*matrix.Matrix, len(c.Optimizer.State))
	for key, t := range c.Optimizer.State {
		m, err := matrix.FromSlice(append([]float64(nil), t.Data...), t.Rows, t.Cols)
		if err != nil {
			return nil, nil, errors.Wrap(err, key)
		}
		if err := checkStateShape(net, key, m); err != nil {
			return nil, nil, err
		}
		state[key] = m
	}
	if err := opt.LoadState(state); err != nil {
		return nil, nil, err
	}
	return net, opt, nil
}

// checkStateShape matches a "<slot>.<layer>" entry against the layer weights.
func checkStateShape(net *nn.Network, key string, m *matrix.Matrix) error {
	_, index, _ := strings.Cut(key, ".")
	l, err := strconv.Atoi(index)
	if err != nil || l < 0 || l >= len(net.Layers()) {
		return &ValidationError{Field: "optimizer.state", Details: fmt.Sprintf("%s: no such layer", key)}
	}
	if want := net.Layers()[l].Weights().Shape(); !m.Shape().Equal(want) {
		return &matrix.DimensionError{Op: "restore", Expected: want, Actual: m.Shape(), Details: key}
	}
	return nil
}

// checksum hashes the weights as little-endian float64 values.
func checksum(weights [][][]float64) string {
	h := sha256.New()
	var buf [8]byte
	for _, layer := range weights {
		for _, row := range layer {
			for _, v := range row {
				binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
				h.Write(buf[:])
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
