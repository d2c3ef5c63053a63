package nn

import "errors"

// Common errors.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrNotInitialized       = errors.New("network not initialized")
	ErrEmptyBatch           = errors.New("empty batch")
)
