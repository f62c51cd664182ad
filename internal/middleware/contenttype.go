package middleware

import (
	"mime"
	"net/http"
	"strings"
)

// ContentType validates Content-Type headers for requests with bodies.
// JSON is always accepted; multipart/form-data only on the routes listed in
// multipartPaths.
func ContentType(multipartPaths ...string) func(http.Handler) http.Handler {
	allowMultipart := make(map[string]bool, len(multipartPaths))
	for _, p := range multipartPaths {
		allowMultipart[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPatch && r.Method != http.MethodPut {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				http.Error(w, "Content-Type header is required", http.StatusBadRequest)
				return
			}

			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil {
				http.Error(w, "Malformed Content-Type header", http.StatusBadRequest)
				return
			}

			switch {
			case mediaType == "application/json":
			case mediaType == "multipart/form-data" && allowMultipart[strings.TrimSuffix(r.URL.Path, "/")]:
			default:
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
