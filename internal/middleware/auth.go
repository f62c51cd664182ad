package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/yashmitb/CleanPlate/internal/logger"
	"github.com/yashmitb/CleanPlate/internal/models"
	"github.com/yashmitb/CleanPlate/internal/request"
	"github.com/yashmitb/CleanPlate/internal/services/adminauth"
)

// AdminVerifier validates an admin bearer token.
type AdminVerifier interface {
	Verify(ctx context.Context, token string) (*models.AdminPrincipal, error)
}

var _ AdminVerifier = (*adminauth.Verifier)(nil)

// AdminAuth requires a valid admin bearer token and attaches the principal
// to the request context.
func AdminAuth(verifier AdminVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, r, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				respondError(w, r, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			principal, err := verifier.Verify(r.Context(), tokenString)
			switch {
			case errors.Is(err, adminauth.ErrForbidden):
				logger.Warn("admin_forbidden",
					zap.String("sub", logpkg.SanitizeUserID(principal.Subject)),
					zap.String("request_id", request.RequestID(r.Context())),
				)
				respondError(w, r, http.StatusForbidden, "Admin role required")
				return
			case err != nil:
				logger.Warn("admin_token_rejected",
					zap.String("error", logpkg.SanitizeError(err)),
					zap.String("request_id", request.RequestID(r.Context())),
				)
				respondError(w, r, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithAdmin(r.Context(), principal)))
		})
	}
}

// respondError rejects the request with the error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	_ = writeError(w, r, status, http.StatusText(status), message)
}
