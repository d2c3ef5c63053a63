package main

import (
	"encoding/json"
	"math"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// run is the history of one optimizer in a train invocation.
type run struct {
	ID         uuid.UUID `json:"id"`
	Optimizer  string    `json:"optimizer"`
	Iterations int       `json:"iterations"`
	Stopped    bool      `json:"stopped"`
	Epochs     []epoch   `json:"results"`
}

type epoch struct {
	Iteration int   `json:"iteration"`
	Train     score `json:"train"`
	Test      score `json:"test"`
}

type score struct {
	Loss     lossValue `json:"loss"`
	Accuracy float64   `json:"percentage"`
}

// lossValue encodes a diverged (NaN or infinite) loss as null.
type lossValue float64

func (v lossValue) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

func (r run) final() epoch {
	if len(r.Epochs) == 0 {
		return epoch{}
	}
	return r.Epochs[len(r.Epochs)-1]
}

func writeResults(path string, runs []run) error {
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode results")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "write results")
}
