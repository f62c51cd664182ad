package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/rs/cors"
)

const defaultFrontendOrigin = "http://localhost:3000"

// AllowedOrigins parses a comma-separated origin list, dropping blanks and
// duplicates. The local frontend origin is always allowed.
func AllowedOrigins(frontendURL string) []string {
	origins := []string{defaultFrontendOrigin}
	for _, origin := range strings.Split(frontendURL, ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" && !slices.Contains(origins, trimmed) {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// CORSFromEnv creates rs/cors middleware for the origins in FRONTEND_URL.
func CORSFromEnv(frontendURL string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   AllowedOrigins(frontendURL),
		AllowCredentials: true,
		MaxAge:           86400,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
	})
	return c.Handler
}
