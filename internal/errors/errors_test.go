package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_Creation(t *testing.T) {
	message := "order not found"
	err := NewNotFoundError(message)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
}

func TestNotFoundError_IsNotFoundError(t *testing.T) {
	err := NewNotFoundError("test not found")

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, notFoundErr)
	assert.Equal(t, "test not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_WithOtherError(t *testing.T) {
	err := errors.New("some other error")

	notFoundErr, ok := IsNotFoundError(err)
	assert.False(t, ok)
	assert.Nil(t, notFoundErr)
}

func TestIsHelpers_SeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("updating order: %w", NewConflictError("already shipped"))

	ce, ok := IsConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, "already shipped", ce.Message)

	_, ok = IsUnauthorizedError(err)
	assert.False(t, ok)
}

func TestValidationError_Creation(t *testing.T) {
	message := "validation failed"
	details := []ValidationDetail{
		{Field: "reason", Message: "reason is required"},
		{Field: "action", Message: "unknown action"},
	}

	err := NewValidationError(message, details...)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
	assert.Len(t, err.Details, 2)
}

func TestNetworkError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("GET /api/orders/transporter", cause)

	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, errors.Is(err, cause))
}

func TestServerError_Message(t *testing.T) {
	assert.Equal(t, "backend error (HTTP 500): boom", NewServerError(500, "boom").Error())
	assert.Equal(t, "backend error: nope", NewServerError(0, "nope").Error())
}

func TestInternalError_Creation(t *testing.T) {
	cause := errors.New("database error")
	err := NewInternalError("failed to query database", cause)

	assert.NotNil(t, err)
	assert.Equal(t, "failed to query database", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "failed to query database")
	assert.Contains(t, err.Error(), "database error")
}

func TestInternalError_NilCause(t *testing.T) {
	err := NewInternalError("no cause", nil)

	assert.Equal(t, "no cause", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{NewValidationError("x"), "VALIDATION_ERROR"},
		{NewNotFoundError("x"), "NOT_FOUND"},
		{NewConflictError("x"), "CONFLICT"},
		{NewForbiddenError("x"), "FORBIDDEN"},
		{NewUnauthorizedError("x"), "UNAUTHORIZED"},
		{fmt.Errorf("wrapped: %w", NewNetworkError("x", nil)), "NETWORK_ERROR"},
		{NewServerError(502, "x"), "SERVER_ERROR"},
		{errors.New("plain"), "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Code(tt.err))
	}
}
