// Package checkpoint saves and restores trained dense networks.
//
// A checkpoint is a JSON document holding the network topology, its
// weights and optionally the optimizer state, so training can resume
// where it stopped:
//
//	{
//	  "id": "5f0c...",
//	  "created": "2025-01-02T15:04:05Z",
//	  "loss": 0.031,
//	  "loss_kind": "logloss",
//	  "input_size": 2,
//	  "activations": ["tanh", "sigmoid"],
//	  "neurons": [2, 1],
//	  "weights": [[[...]]],
//	  "checksum": "9f86d0...",
//	  "optimizer": {"name": "adam", "state": {"m.0": {...}}}
//	}
//
// The checksum is a SHA-256 over the weights and is verified by Load.
//
// Example usage:
//
//	cp, err := checkpoint.Capture(net, opt, report.Loss)
//	if err := cp.Save(w); err != nil { ... }
//
//	cp, err := checkpoint.Load(r)
//	net, opt, err := cp.Restore(nn.Config{}, optim.Options{})
package checkpoint
