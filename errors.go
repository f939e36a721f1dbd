package toolhub

import (
	"errors"
	"fmt"
)

// Sentinel errors for toolhub. Use errors.Is to check.
var (
	ErrToolNotFound   = errors.New("tool not found")
	ErrDuplicateName  = errors.New("tool name already registered")
	ErrValidation     = errors.New("validation failed")
	ErrOutputContract = errors.New("tool output violates its declared schema")
	ErrImport         = errors.New("dynamic import failed")
	ErrTimeout        = errors.New("tool execution timeout")
)

// ValidationError reports a single field that failed input validation.
// It wraps ErrValidation for errors.Is. The message is safe to send back to
// the LLM for self-correction; it never carries internal details.
type ValidationError struct {
	Field    string
	Expected FieldType
	Received any
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid field %q: expected %s, got %v (%T)", e.Field, e.Expected, e.Received, e.Received)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// OutputContractError reports that a handler succeeded but returned a value
// that does not satisfy its declared output schema. Surfaced distinctly from
// ValidationError so callers can tell "your input was wrong" from "the tool
// violated its own contract".
type OutputContractError struct {
	Tool string
	Err  error
}

func (e *OutputContractError) Error() string {
	return fmt.Sprintf("tool %q output contract violation: %v", e.Tool, e.Err)
}

func (e *OutputContractError) Unwrap() error { return ErrOutputContract }

// ExecutionError wraps a fault raised by a handler during execution. The
// underlying error is retained for errors.As but never propagates past the
// Dispatcher on its own.
type ExecutionError struct {
	Tool string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %q execution failed: %v", e.Tool, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// ImportError reports a failure discovering or importing tools from an
// external server (unreachable, auth failure, unknown server). It wraps
// ErrImport for errors.Is.
type ImportError struct {
	Server string
	Err    error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import from server %q failed: %v", e.Server, e.Err)
}

func (e *ImportError) Unwrap() error { return ErrImport }

// IsValidationError returns true if err is or wraps a validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// panicError wraps a recovered panic value; used by the Dispatcher and the
// WithRecovery middleware.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
