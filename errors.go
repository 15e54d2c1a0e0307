package gridfinity

import (
	"errors"
	"fmt"
)

// ErrInvalidSpec is matched by every ValidationError.
var ErrInvalidSpec = errors.New("invalid spec")

// ValidationError reports an input field rejected before any kernel call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("gridfinity: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidSpec }

// StageError reports the composer stage that aborted a generation.
type StageError struct {
	Composer string
	Stage    string
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("gridfinity: %s: stage %q: %v", e.Composer, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
