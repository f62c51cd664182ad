package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/logger"
	"github.com/yashmitb/CleanPlate/internal/metrics"
	"github.com/yashmitb/CleanPlate/internal/models"
	"github.com/yashmitb/CleanPlate/internal/request"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage removes internal details from error messages
func sanitizeErrorMessage(message string) string {
	sanitized := message
	if len(sanitized) > 200 {
		sanitized = sanitized[:200] + "..."
	}
	return sanitized
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Sanitize error message to prevent information disclosure
	sanitizedMessage := sanitizeErrorMessage(message)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizedMessage,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// statusFor maps an error kind to its HTTP status, error type and client message.
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, "Bad Request", err.Error()
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "Not Found", "User not found"
	case errors.Is(err, models.ErrAlreadyExists):
		return http.StatusConflict, "Conflict", "User already exists"
	case errors.Is(err, models.ErrUpstreamAnalysis):
		return http.StatusBadGateway, "Bad Gateway", "Image analysis failed"
	case errors.Is(err, models.ErrStorage):
		return http.StatusServiceUnavailable, "Service Unavailable", "Storage is temporarily unavailable"
	default:
		return http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred"
	}
}

// writeError logs err and answers with the status of its kind.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, operation string, err error) {
	status, errorType, message := statusFor(err)

	fields := []zap.Field{
		zap.String("operation", operation),
		zap.Int("status", status),
		zap.String("error", logger.SanitizeError(err)),
		zap.String("request_id", request.RequestID(r.Context())),
	}
	if status >= http.StatusInternalServerError {
		log.Error("request_failed", fields...)
	} else {
		log.Info("request_rejected", fields...)
	}

	respondJSONError(w, status, errorType, message)
}

// degraded reports whether a read failure should be answered with an empty
// result, and records it when so.
func degraded(log *zap.Logger, operation, userID string, err error) bool {
	var reason string
	switch {
	case errors.Is(err, models.ErrNotFound):
		reason = "not_found"
	case errors.Is(err, models.ErrStorage):
		reason = "storage"
	default:
		return false
	}

	metrics.DegradedReads.WithLabelValues(operation, reason).Inc()
	log.Warn(operation+"_degraded",
		zap.String("user_id", logger.SanitizeUserID(userID)),
		zap.String("operation", operation),
		zap.String("reason", reason),
		zap.String("error", logger.SanitizeError(err)),
	)
	return true
}

// decodeJSON decodes a JSON body into dst, rejecting unknown fields. It
// writes the error response itself and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return false
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return false
	}
	return true
}

// queryInt parses a positive integer query parameter. A missing value
// returns zero so callers fall back to their defaults.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, models.NewValidationError(name, "must be a positive integer")
	}
	return n, nil
}
