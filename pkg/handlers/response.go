package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/spectral-records/casekeeper/pkg/apperrors"
	"github.com/spectral-records/casekeeper/pkg/logging"
)

// ApiResponse is the envelope for every JSON body the API returns.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ScopeMiddleware wraps a handler with a request-scoped database handle.
type ScopeMiddleware func(http.HandlerFunc) http.HandlerFunc

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	return WriteJSON(w, statusCode, ApiResponse{
		Success: false,
		Error:   errorCode,
		Message: message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// writeServiceError maps a service error onto a status code:
// validation -> 400, not found -> 404, anything else -> 500.
// Internal error text is logged, never returned.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, errorCode string, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status, errorCode, message = http.StatusBadRequest, "validation_error", err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		status, errorCode, message = http.StatusNotFound, "not_found", "Resource not found"
	default:
		logger.Error("Request failed", zap.String("error_code", errorCode), logging.Error(err))
	}

	if err := ErrorResponse(w, status, errorCode, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
