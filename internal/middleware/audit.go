package middleware

import (
	"net/http"

	"go.uber.org/zap"

	logpkg "github.com/yashmitb/CleanPlate/internal/logger"
	"github.com/yashmitb/CleanPlate/internal/request"
)

// Audit logs security-related events for monitoring and compliance
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			statusCode := wrapped.statusCode
			switch statusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				logger.Warn("security_event",
					zap.Int("status_code", statusCode),
					zap.String("method", r.Method),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("ip", logpkg.SanitizeIP(request.ClientIP(r))),
					zap.String("request_id", request.RequestID(r.Context())),
				)
			case http.StatusTooManyRequests:
				logger.Warn("rate_limit_violation",
					zap.String("method", r.Method),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("ip", logpkg.SanitizeIP(request.ClientIP(r))),
					zap.String("request_id", request.RequestID(r.Context())),
				)
			}
		})
	}
}

// AuditAdmin records which admin read population-wide data. Mount it after
// AdminAuth.
func AuditAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			sub := "anonymous"
			if admin := request.AdminFromContext(r); admin != nil {
				sub = admin.Subject
			}
			logger.Info("admin_access",
				zap.String("sub", logpkg.SanitizeUserID(sub)),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.Int("status_code", wrapped.statusCode),
				zap.String("request_id", request.RequestID(r.Context())),
			)
		})
	}
}
