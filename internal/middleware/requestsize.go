package middleware

import (
	"fmt"
	"net/http"
)

const (
	// DefaultMaxRequestSize caps JSON request bodies (1MB)
	DefaultMaxRequestSize int64 = 1 << 20
	// MaxImageUploadSize caps multipart meal photo uploads (10MB)
	MaxImageUploadSize int64 = 10 << 20
)

// MaxRequestSize rejects bodies larger than maxBytes. A declared
// Content-Length over the cap is refused before the handler runs; other
// bodies are cut off by http.MaxBytesReader.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}
	message := fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytes)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				_ = writeError(w, r, http.StatusRequestEntityTooLarge, "Request Entity Too Large", message)
				return
			}
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
