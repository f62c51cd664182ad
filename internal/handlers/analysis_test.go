package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yashmitb/CleanPlate/internal/models"
	"github.com/yashmitb/CleanPlate/internal/queue"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func newUploadRequest(t *testing.T, field string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "tray.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, "/api/analyze/image", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestAnalyzeImage(t *testing.T) {
	t.Parallel()

	upstreamErr := fmt.Errorf("%w: model timed out", models.ErrUpstreamAnalysis)

	tests := []struct {
		name       string
		field      string
		content    []byte
		visionErr  error
		wantStatus int
		wantType   string
	}{
		{name: "png upload", field: "file", content: pngHeader, wantStatus: http.StatusOK, wantType: "image/png"},
		{name: "wrong field", field: "photo", content: pngHeader, wantStatus: http.StatusBadRequest},
		{name: "not an image", field: "file", content: []byte("just some text"), wantStatus: http.StatusBadRequest},
		{name: "empty file", field: "file", content: nil, wantStatus: http.StatusBadRequest},
		{name: "upstream failure", field: "file", content: pngHeader, visionErr: upstreamErr, wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotType string
			vision := &mockVision{
				analyzeBytesFn: func(ctx context.Context, data []byte, contentType string) (*models.WasteAnalysis, error) {
					gotType = contentType
					if tt.visionErr != nil {
						return nil, tt.visionErr
					}
					return sampleAnalysis(), nil
				},
			}
			env := newTestEnv(t, withVision(vision))

			w := env.do(newUploadRequest(t, tt.field, tt.content))
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantType != "" && gotType != tt.wantType {
				t.Errorf("content type = %q, want %q", gotType, tt.wantType)
			}
			if w.Code == http.StatusOK {
				data := decodeBody(t, w)["data"].(map[string]any)
				if _, ok := data["waste_summary"]; !ok {
					t.Error("expected the analysis in the response data")
				}
			}
		})
	}
}

func TestAnalyzeImageRequiresMultipart(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	w := env.do(newTestRequest(http.MethodPost, "/api/analyze/image", map[string]string{"image": "x"}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestAnalyzeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       any
		visionErr  error
		wantStatus int
	}{
		{name: "valid url", body: map[string]string{"image_url": "https://example.com/tray.jpg"}, wantStatus: http.StatusOK},
		{name: "missing url", body: map[string]string{}, wantStatus: http.StatusBadRequest},
		{name: "not a url", body: map[string]string{"image_url": "tray.jpg"}, wantStatus: http.StatusBadRequest},
		{name: "rejected by provider", body: map[string]string{"image_url": "https://example.com/tray.jpg"}, visionErr: models.NewValidationError("image_url", "unsupported"), wantStatus: http.StatusBadRequest},
		{name: "malformed model output", body: map[string]string{"image_url": "https://example.com/tray.jpg"}, visionErr: fmt.Errorf("%w: not json", models.ErrUpstreamAnalysis), wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls int
			vision := &mockVision{
				analyzeURLFn: func(ctx context.Context, imageURL string) (*models.WasteAnalysis, error) {
					calls++
					if tt.visionErr != nil {
						return nil, tt.visionErr
					}
					return sampleAnalysis(), nil
				},
			}
			env := newTestEnv(t, withVision(vision))

			w := env.do(newTestRequest(http.MethodPost, "/api/analyze/url", tt.body))
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == http.StatusBadRequest && tt.visionErr == nil && calls != 0 {
				t.Error("invalid request must not reach the vision service")
			}
		})
	}
}

func TestAnalyzeURLAsync(t *testing.T) {
	t.Parallel()

	t.Run("disabled without a queue", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		w := env.do(newTestRequest(http.MethodPost, "/api/analyze/url/async", map[string]string{"user_id": "u1", "image_url": "https://example.com/a.jpg"}))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})

	t.Run("queues a job", func(t *testing.T) {
		t.Parallel()

		jobs := make(chan *queue.Job, 1)
		env := newTestEnv(t, withJobs(&mockEnqueuer{
			enqueueFn: func(ctx context.Context, job *queue.Job) error {
				jobs <- job
				return nil
			},
		}))

		w := env.do(newTestRequest(http.MethodPost, "/api/analyze/url/async", map[string]string{"user_id": " u1 ", "image_url": "https://example.com/a.jpg"}))
		if w.Code != http.StatusAccepted {
			t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
		}

		job := <-jobs
		if job.Type != queue.JobTypeAnalyzeImage || job.UserID != "u1" || job.ImageURL != "https://example.com/a.jpg" {
			t.Errorf("unexpected job: %+v", job)
		}
		if err := job.Validate(); err != nil {
			t.Errorf("queued job should be valid: %v", err)
		}
		data := decodeBody(t, w)["data"].(map[string]any)
		if data["job_id"] != job.ID.String() || data["status"] != "queued" {
			t.Errorf("unexpected response data: %v", data)
		}
	})

	t.Run("enqueue failure", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, withJobs(&mockEnqueuer{
			enqueueFn: func(ctx context.Context, job *queue.Job) error { return errors.New("channel closed") },
		}))
		w := env.do(newTestRequest(http.MethodPost, "/api/analyze/url/async", map[string]string{"user_id": "u1", "image_url": "https://example.com/a.jpg"}))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, withJobs(&mockEnqueuer{}))
		w := env.do(newTestRequest(http.MethodPost, "/api/analyze/url/async", map[string]string{"image_url": "https://example.com/a.jpg"}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}
