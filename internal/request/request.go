package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/yashmitb/CleanPlate/internal/models"
)

type contextKey string

const (
	adminContextKey     contextKey = "admin"
	requestIDContextKey contextKey = "request_id"
)

// RequestIDHeader carries the request ID in and out of the service.
const RequestIDHeader = "X-Request-ID"

// AdminContextKey returns the context key used for the admin principal. Exposed for tests that inject non-admin values.
func AdminContextKey() contextKey { return adminContextKey }

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithAdmin returns a context with the admin principal attached.
func WithAdmin(ctx context.Context, admin *models.AdminPrincipal) context.Context {
	return context.WithValue(ctx, adminContextKey, admin)
}

// AdminFromContext returns the admin principal from the request context, or nil if missing or wrong type.
func AdminFromContext(r *http.Request) *models.AdminPrincipal {
	a, _ := r.Context().Value(adminContextKey).(*models.AdminPrincipal)
	return a
}

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestID returns the request ID from ctx, or "" if none was set.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
