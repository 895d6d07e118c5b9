package commons

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apperrors "mytrade/internal/errors"
)

// CodeSessionExpired is answered when the backend rejected the stored token.
const CodeSessionExpired = "SESSION_EXPIRED"

type ErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details,omitempty"`
	TraceID string                       `json:"traceId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func WriteValidationError(w http.ResponseWriter, traceID, message string, logger *zap.Logger, details ...apperrors.ValidationDetail) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
		TraceID: traceID,
	}, logger)
}

// StatusFor maps an application error to the HTTP status the gateway
// answers with.
func StatusFor(err error) int {
	switch apperrors.Code(err) {
	case "VALIDATION_ERROR":
		return http.StatusBadRequest
	case "NOT_FOUND":
		return http.StatusNotFound
	case "CONFLICT":
		return http.StatusConflict
	case "FORBIDDEN":
		return http.StatusForbidden
	case "UNAUTHORIZED":
		return http.StatusUnauthorized
	case "NETWORK_ERROR", "SERVER_ERROR":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteError answers with the JSON error body for err. Unexpected errors are
// logged and their message is not exposed.
func WriteError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		WriteValidationError(w, traceID, ve.Message, logger, ve.Details...)
		return
	}

	status := StatusFor(err)
	code := apperrors.Code(err)
	message := err.Error()

	switch status {
	case http.StatusInternalServerError:
		logger.Error("unexpected error", zap.String("traceId", traceID), zap.Error(err))
		message = "an unexpected error occurred"
	case http.StatusBadGateway:
		logger.Warn("backend failure", zap.String("traceId", traceID), zap.String("code", code), zap.Error(err))
	}

	WriteJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
		TraceID: traceID,
	}, logger)
}

func WriteSessionExpired(w http.ResponseWriter, traceID string, logger *zap.Logger) {
	WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error:   CodeSessionExpired,
		Message: "session expired, please sign in again",
		TraceID: traceID,
	}, logger)
}
