package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yashmitb/CleanPlate/internal/request"
)

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		method        string
		path          string
		handlerStatus int
		wantRoute     string
	}{
		{name: "GET request", method: "GET", path: "/api/user/u1/summary", handlerStatus: http.StatusOK, wantRoute: "/api/user/{user_id}/summary"},
		{name: "POST request", method: "POST", path: "/api/user/create", handlerStatus: http.StatusCreated, wantRoute: "/api/user/create"},
		{name: "404 request", method: "GET", path: "/notfound", handlerStatus: http.StatusNotFound, wantRoute: "unmatched"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.InfoLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})

			router := mux.NewRouter()
			router.Use(Logging(zap.New(core)))
			router.Handle("/api/user/{user_id}/summary", handler).Methods(http.MethodGet)
			router.Handle("/api/user/create", handler).Methods(http.MethodPost)
			router.NotFoundHandler = Logging(zap.New(core))(handler)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.handlerStatus {
				t.Errorf("Expected status %d, got %d", tt.handlerStatus, w.Code)
			}

			entries := logs.FilterMessage("http_request").All()
			if len(entries) != 1 {
				t.Fatalf("Expected one http_request log, got %d", len(entries))
			}
			fields := entries[0].ContextMap()
			if fields["route"] != tt.wantRoute {
				t.Errorf("Expected route %q, got %v", tt.wantRoute, fields["route"])
			}
			if fields["status_code"] != int64(tt.handlerStatus) {
				t.Errorf("Expected logged status %d, got %v", tt.handlerStatus, fields["status_code"])
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = request.RequestID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if _, err := uuid.Parse(seen); err != nil {
			t.Errorf("Expected generated uuid, got %q", seen)
		}
		if w.Header().Get(request.RequestIDHeader) != seen {
			t.Error("Expected response header to echo the request id")
		}
	})

	t.Run("propagated", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(request.RequestIDHeader, id)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if seen != id {
			t.Errorf("Expected %q, got %q", id, seen)
		}
	})

	t.Run("malformed replaced", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(request.RequestIDHeader, "bad\nid")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if seen == "bad\nid" {
			t.Error("Expected malformed id to be replaced")
		}
	})
}
