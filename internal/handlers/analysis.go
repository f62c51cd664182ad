package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/logger"
	"github.com/yashmitb/CleanPlate/internal/metrics"
	"github.com/yashmitb/CleanPlate/internal/middleware"
	"github.com/yashmitb/CleanPlate/internal/models"
	"github.com/yashmitb/CleanPlate/internal/queue"
	"github.com/yashmitb/CleanPlate/internal/request"
	"github.com/yashmitb/CleanPlate/internal/services/ai"
	"github.com/yashmitb/CleanPlate/internal/validation"
)

// uploadField is the multipart field carrying the meal photo.
const uploadField = "file"

// JobEnqueuer is satisfied by queue.JobQueue.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, job *queue.Job) error
}

// AnalysisHandler serves meal photo analysis.
type AnalysisHandler struct {
	vision ai.VisionAnalyzer
	jobs   JobEnqueuer
	logger *zap.Logger
}

// NewAnalysisHandler creates an analysis handler. jobs may be nil, which
// disables asynchronous analysis.
func NewAnalysisHandler(vision ai.VisionAnalyzer, jobs JobEnqueuer, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{vision: vision, jobs: jobs, logger: logger}
}

// RegisterRoutes registers analysis routes
func (h *AnalysisHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/analyze/image", h.AnalyzeImage).Methods("POST")
	r.HandleFunc("/api/analyze/url", h.AnalyzeURL).Methods("POST")
	r.HandleFunc("/api/analyze/url/async", h.AnalyzeURLAsync).Methods("POST")
}

// AnalyzeURLRequest is the body of POST /api/analyze/url.
type AnalyzeURLRequest struct {
	ImageURL string `json:"image_url" validate:"required,http_url,max=2048"`
}

// AnalyzeURLAsyncRequest is the body of POST /api/analyze/url/async.
type AnalyzeURLAsyncRequest struct {
	UserID   string `json:"user_id" validate:"required,max=200"`
	ImageURL string `json:"image_url" validate:"required,http_url,max=2048"`
}

// AnalyzeURLAsyncResponse acknowledges a queued analysis.
type AnalyzeURLAsyncResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// AnalyzeImage analyses an uploaded meal photo.
func (h *AnalysisHandler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, middleware.MaxImageUploadSize)
	if err := r.ParseMultipartForm(middleware.MaxImageUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Image exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Expected a multipart form upload")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "No file provided")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Failed to read uploaded file")
		return
	}
	if len(data) == 0 {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Uploaded file is empty")
		return
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Uploaded file must be an image")
		return
	}

	h.logger.Debug("image_upload_received",
		zap.String("filename", logger.SanitizeString(header.Filename, 200)),
		zap.String("content_type", contentType),
		zap.Int("size", len(data)),
		zap.String("request_id", request.RequestID(r.Context())),
	)

	analysis, err := h.vision.AnalyzeImageBytes(r.Context(), data, contentType)
	h.finish(w, r, "upload", analysis, err)
}

// AnalyzeURL analyses a meal photo at a public URL.
func (h *AnalysisHandler) AnalyzeURL(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeURLRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	if err := validation.Struct(req); err != nil {
		writeError(w, r, h.logger, "analyze_url", err)
		return
	}

	analysis, err := h.vision.AnalyzeImageURL(r.Context(), req.ImageURL)
	h.finish(w, r, "url", analysis, err)
}

// AnalyzeURLAsync queues a photo for analysis and application to the user's
// profile by the worker.
func (h *AnalysisHandler) AnalyzeURLAsync(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Asynchronous analysis is not enabled")
		return
	}

	var req AnalyzeURLAsyncRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	if err := validation.Struct(req); err != nil {
		writeError(w, r, h.logger, "analyze_url_async", err)
		return
	}

	job := queue.NewAnalysisJob(req.UserID, req.ImageURL)
	job.RequestID = request.RequestID(r.Context())
	if err := h.jobs.Enqueue(r.Context(), job); err != nil {
		h.logger.Error("analysis_enqueue_failed",
			zap.String("user_id", logger.SanitizeUserID(req.UserID)),
			zap.String("error", logger.SanitizeError(err)),
			zap.String("request_id", job.RequestID),
		)
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to queue analysis")
		return
	}

	metrics.Analyses.WithLabelValues("async", "queued").Inc()
	h.logger.Info("analysis_enqueued",
		zap.String("user_id", logger.SanitizeUserID(req.UserID)),
		zap.String("job_id", job.ID.String()),
		zap.String("request_id", job.RequestID),
	)
	respondJSON(w, http.StatusAccepted, AnalyzeURLAsyncResponse{JobID: job.ID.String(), Status: "queued"})
}

func (h *AnalysisHandler) finish(w http.ResponseWriter, r *http.Request, source string, analysis *models.WasteAnalysis, err error) {
	if err != nil {
		metrics.Analyses.WithLabelValues(source, "failed").Inc()
		writeError(w, r, h.logger, "analyze_"+source, err)
		return
	}
	metrics.Analyses.WithLabelValues(source, "ok").Inc()
	respondJSON(w, http.StatusOK, analysis)
}
