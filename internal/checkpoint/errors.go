package checkpoint

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch = errors.New("checksum mismatch: checkpoint may be corrupted")
	ErrNotInitialized   = errors.New("network is not initialized")
)

// ValidationError describes an inconsistent checkpoint document.
type ValidationError struct {
	Field   string // Document field at fault (e.g., "weights", "optimizer.state")
	Details string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid checkpoint: %s: %s", e.Field, e.Details)
}
