package commons

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "mytrade/internal/errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"not found", apperrors.NewNotFoundError("order o-1 not found"), http.StatusNotFound, "NOT_FOUND", "order o-1 not found"},
		{"conflict", apperrors.NewConflictError("already accepted"), http.StatusConflict, "CONFLICT", "already accepted"},
		{"forbidden", apperrors.NewForbiddenError("not your view"), http.StatusForbidden, "FORBIDDEN", "not your view"},
		{"unauthorized", apperrors.NewUnauthorizedError("missing credentials"), http.StatusUnauthorized, "UNAUTHORIZED", "missing credentials"},
		{"network", apperrors.NewNetworkError("backend unreachable", nil), http.StatusBadGateway, "NETWORK_ERROR", "backend unreachable"},
		{"server", apperrors.NewServerError(500, "db down"), http.StatusBadGateway, "SERVER_ERROR", "backend error (HTTP 500): db down"},
		{"unexpected", errors.New("nil pointer somewhere"), http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, "trace-1", tt.err, zap.NewNop())

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.Equal(t, "trace-1", body.TraceID)
		})
	}
}

func TestWriteError_Validation(t *testing.T) {
	rec := httptest.NewRecorder()
	err := apperrors.NewValidationError("reason is required", apperrors.ValidationDetail{Field: "reason", Message: "required"})

	WriteError(rec, "trace-2", err, zap.NewNop())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Error)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "reason", body.Details[0].Field)
}

func TestWriteSessionExpired(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSessionExpired(rec, "trace-3", zap.NewNop())

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeSessionExpired, body.Error)
}
