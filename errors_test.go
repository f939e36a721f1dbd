package toolhub

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Unwrap(t *testing.T) {
	err := &ValidationError{Field: "count", Expected: TypeInteger, Received: "abc"}
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), `"count"`)
	assert.True(t, IsValidationError(err))
	assert.True(t, IsValidationError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsValidationError(errors.New("other")))
}

func TestValidationError_ReasonMessage(t *testing.T) {
	err := &ValidationError{Field: "limit", Reason: "must be positive"}
	assert.Equal(t, `invalid field "limit": must be positive`, err.Error())
}

func TestOutputContractError_Unwrap(t *testing.T) {
	err := &OutputContractError{Tool: "add", Err: errors.New("missing sum")}
	assert.ErrorIs(t, err, ErrOutputContract)
	assert.Contains(t, err.Error(), `"add"`)
}

func TestExecutionError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &ExecutionError{Tool: "fetch", Err: cause}
	assert.ErrorIs(t, err, cause)

	var execErr *ExecutionError
	require.ErrorAs(t, fmt.Errorf("outer: %w", err), &execErr)
	assert.Equal(t, "fetch", execErr.Tool)
}

func TestImportError_Unwrap(t *testing.T) {
	err := &ImportError{Server: "exa", Err: errors.New("401 unauthorized")}
	assert.ErrorIs(t, err, ErrImport)
	assert.Contains(t, err.Error(), `"exa"`)
}
