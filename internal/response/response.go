// Package response writes JSON bodies and maps application errors to HTTP
// status codes for every controller.
package response

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storepulse/internal/dto"
	apperrors "storepulse/internal/errors"
)

// TraceID reuses the chi request id when present.
func TraceID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.New().String()
}

func JSON(w http.ResponseWriter, status int, data any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// Decode reads a JSON body into dst, reporting malformed input as a
// validation error.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
	}
	return nil
}

// Error maps err to a status code and writes the error envelope.
func Error(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	status, code, message := http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred"
	var details []apperrors.ValidationDetail

	if ve, ok := apperrors.IsValidationError(err); ok {
		status, code, message, details = http.StatusBadRequest, "VALIDATION_ERROR", ve.Message, ve.Details
	} else if _, ok := apperrors.IsNotFoundError(err); ok {
		status, code, message = http.StatusNotFound, "NOT_FOUND", err.Error()
	} else if _, ok := apperrors.IsInsufficientStockError(err); ok {
		status, code, message = http.StatusConflict, "INSUFFICIENT_STOCK", err.Error()
	} else if _, ok := apperrors.IsConflictError(err); ok {
		status, code, message = http.StatusConflict, "CONFLICT", err.Error()
	} else if _, ok := apperrors.IsUnavailableError(err); ok {
		status, code, message = http.StatusServiceUnavailable, "UNAVAILABLE", "service temporarily unavailable, retry later"
		logger.Warn("store unavailable", zap.String("traceId", traceID), zap.Error(err))
	} else {
		logger.Error("unexpected error", zap.String("traceId", traceID), zap.Error(err))
	}

	JSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}, logger)
}
