package middleware

import (
	"context"
	"net/http"
	"time"
)

const (
	// DefaultRequestTimeout bounds profile, menu and report requests
	DefaultRequestTimeout = 30 * time.Second
	// AnalysisRequestTimeout covers a synchronous vision call plus the profile write
	AnalysisRequestTimeout = 90 * time.Second
)

const timeoutBody = `{"success":false,"error":"Request Timeout","message":"The request took too long to complete"}`

// Timeout cancels the request context after timeout and answers 503 with
// the error envelope if the handler has not written a response by then.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		th := http.TimeoutHandler(next, timeout, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			// Handler headers replace this on success
			w.Header().Set("Content-Type", "application/json")
			th.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
