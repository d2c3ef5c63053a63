// Package parallel fans independent per-sample work out over goroutines.
//
// The network uses it to run forward/backward passes of a batch
// concurrently. Callers always get results indexed by sample, so any
// reduction they do afterwards happens in a deterministic order.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 8, // A sample is a full forward+backward pass.
	}
}

// Sequential returns a config that never spawns goroutines.
func Sequential() Config {
	return Config{}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < 2*max(cfg.MinChunkSize, 1) {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// Map runs f for every index in [0, n) and collects the results by index.
//
// All items are processed even if some fail; the returned error is the one
// with the lowest index, so the outcome does not depend on scheduling.
func Map[T any](n int, f func(i int) (T, error), cfg Config) ([]T, error) {
	results := make([]T, n)
	errs := make([]error, n)

	For(n, func(i int) {
		results[i], errs[i] = f(i)
	}, cfg)

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
