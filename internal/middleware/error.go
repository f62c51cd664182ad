package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	logpkg "github.com/yashmitb/CleanPlate/internal/logger"
	"github.com/yashmitb/CleanPlate/internal/metrics"
	"github.com/yashmitb/CleanPlate/internal/request"
)

// ErrorResponse is the envelope middleware writes when it rejects a request
// before a handler runs. Handlers use the same success/error/message/timestamp keys.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler recovers handler panics and answers 500 with the error envelope.
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// net/http uses this sentinel to abort a response on purpose
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				metrics.PanicsRecovered.Inc()
				logger.Error("panic_recovered",
					zap.Any("error", rec),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("method", r.Method),
					zap.String("request_id", request.RequestID(r.Context())),
					zap.Stack("stack"),
				)
				if err := writeError(w, r, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred"); err != nil {
					logger.Error("failed_to_encode_error_response", zap.Error(err))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// writeError writes the error envelope with status.
func writeError(w http.ResponseWriter, r *http.Request, status int, errorType, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(ErrorResponse{
		Success:   false,
		Error:     errorType,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
		RequestID: request.RequestID(r.Context()),
	})
}
