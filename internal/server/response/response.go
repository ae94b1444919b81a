// Package response writes the JSON bodies shared by every controller.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/server/middleware"
)

type validationErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

// TraceID returns the request's trace id, minting one when the Trace
// middleware did not run.
func TraceID(r *http.Request) string {
	if traceID := middleware.TraceID(r.Context()); traceID != "" {
		return traceID
	}
	return uuid.New().String()
}

func WriteJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// WriteError maps err to its status. Infrastructure details never reach
// the body; they are logged instead.
func WriteError(w http.ResponseWriter, logger *zap.Logger, traceID string, err error) {
	status, code, retryable := apperrors.HTTPStatus(err)

	if ve, ok := apperrors.IsValidationError(err); ok {
		WriteJSON(w, logger, status, validationErrorResponse{
			TraceID: traceID,
			Error:   ve.Code,
			Message: ve.Message,
			Details: ve.Details,
		})
		return
	}

	var message string
	switch {
	case retryable:
		logger.Error("storage unavailable", zap.Error(err))
		message = "service temporarily unavailable"
	case status >= http.StatusInternalServerError:
		logger.Error("unexpected error", zap.Error(err))
		message = "an unexpected error occurred"
	default:
		message = publicMessage(err)
	}

	WriteJSON(w, logger, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Retryable: retryable,
	})
}

// WriteBadJSON answers a body that failed to decode.
func WriteBadJSON(w http.ResponseWriter, logger *zap.Logger, traceID string, err error) {
	logger.Warn("invalid JSON body", zap.Error(err))
	WriteError(w, logger, traceID, apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
		Field:   "body",
		Message: "request body must be valid JSON",
	}))
}

func publicMessage(err error) string {
	if ue, ok := apperrors.IsUnauthenticatedError(err); ok {
		return ue.Message
	}
	return err.Error()
}
