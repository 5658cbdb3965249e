package errors

import (
	"net/http"
	"testing"

	"dispatch/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestBaseError_WithDetails(t *testing.T) {
	detailed := ErrOrderNotTracked.WithDetails("order 42")

	assert.Equal(t, http.StatusNotFound, detailed.HTTPCode())
	assert.Equal(t, "ORDER_NOT_TRACKED", detailed.ErrorCode())
	assert.Equal(t, "order 42", detailed.Details())
	assert.Empty(t, ErrOrderNotTracked.Details(), "original must stay untouched")
}

func TestBaseError_WrapMessageKeepsAppError(t *testing.T) {
	wrapped := ErrDriverNotTracked.WrapMessage("lookup")

	var appErr AppError
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "DRIVER_NOT_TRACKED", appErr.ErrorCode())
}

func TestDatabaseExecuteError(t *testing.T) {
	err := NewDatabaseExecuteError(errors.New("boom"), "insert audit")

	assert.Equal(t, http.StatusInternalServerError, err.HTTPCode())
	assert.Equal(t, "DATABASE_EXECUTE_FAILED", err.ErrorCode())
	assert.Equal(t, "insert audit", err.Details())
	assert.Contains(t, err.Error(), "boom")
}
