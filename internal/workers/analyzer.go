package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/logger"
	"github.com/yashmitb/CleanPlate/internal/metrics"
	"github.com/yashmitb/CleanPlate/internal/models"
	"github.com/yashmitb/CleanPlate/internal/queue"
	"github.com/yashmitb/CleanPlate/internal/request"
	"github.com/yashmitb/CleanPlate/internal/services/ai"
)

// Job outcomes reported to metrics.
const (
	outcomeApplied      = "applied"
	outcomeRetried      = "retried"
	outcomeDeadLettered = "dead_lettered"
	outcomeDeferred     = "deferred"
)

// maxDeferWait bounds how long a worker holds an early job before handing it
// back to the broker.
const maxDeferWait = 30 * time.Second

// MealApplier merges an analysis into a user's profile.
type MealApplier interface {
	ApplyMeal(ctx context.Context, userID string, analysis *models.WasteAnalysis) (*models.UserProfile, error)
}

// Enqueuer re-publishes jobs scheduled for a later retry.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *queue.Job) error
}

// AnalysisWorker processes async analysis jobs: analyse the photo, then
// apply the result to the user's profile. A profile is only written after a
// complete, valid analysis.
type AnalysisWorker struct {
	vision   ai.VisionAnalyzer
	meals    MealApplier
	jobQueue Enqueuer
	logger   *zap.Logger
	after    func(time.Duration) <-chan time.Time
}

// NewAnalysisWorker creates a new analysis worker
func NewAnalysisWorker(vision ai.VisionAnalyzer, meals MealApplier, jobQueue Enqueuer, logger *zap.Logger) *AnalysisWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisWorker{
		vision:   vision,
		meals:    meals,
		jobQueue: jobQueue,
		logger:   logger,
		after:    time.After,
	}
}

// ProcessJob handles one message and settles it. The returned error is for
// logging only; the message has already been acked or nacked.
func (w *AnalysisWorker) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()
	if job.RequestID != "" {
		ctx = request.WithRequestID(ctx, job.RequestID)
	}

	if err := job.Validate(); err != nil {
		return w.deadLetter(msg, job, err)
	}

	if !job.ShouldProcess() {
		if job.IsExpired() {
			return w.deadLetter(msg, job, fmt.Errorf("job expired"))
		}
		return w.deferJob(ctx, msg, job)
	}

	analysis, err := w.vision.AnalyzeImageURL(ctx, job.ImageURL)
	if err != nil {
		metrics.Analyses.WithLabelValues("job", "failed").Inc()
		return w.handleJobError(ctx, msg, job, err)
	}
	metrics.Analyses.WithLabelValues("job", "ok").Inc()

	profile, err := w.meals.ApplyMeal(ctx, job.UserID, analysis)
	if err != nil {
		return w.handleJobError(ctx, msg, job, err)
	}

	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	metrics.JobsProcessed.WithLabelValues(outcomeApplied).Inc()
	w.logger.Info("analysis_job_applied",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", logger.SanitizeUserID(job.UserID)),
		zap.Int("meal_count", profile.MealCount),
		zap.Int("retry_count", job.RetryCount),
	)
	return nil
}

// handleJobError retries transient failures with a delay and dead-letters
// everything else.
func (w *AnalysisWorker) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	if !isTransient(err) || !job.CanRetry() {
		return w.deadLetter(msg, job, err)
	}

	delay := ai.GetRetryDelay(err, job.RetryCount)
	retry := *job
	retry.ScheduleRetry(err, delay)

	if w.jobQueue == nil {
		// No way to delay, let the broker redeliver
		if nackErr := msg.Nack(true); nackErr != nil {
			w.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		metrics.JobsProcessed.WithLabelValues(outcomeRetried).Inc()
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	if enqueueErr := w.jobQueue.Enqueue(ctx, &retry); enqueueErr != nil {
		w.logger.Warn("job_reenqueue_failed",
			zap.String("job_id", job.ID.String()),
			zap.Error(enqueueErr),
		)
		if nackErr := msg.Nack(true); nackErr != nil {
			w.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return fmt.Errorf("failed to re-enqueue job: %w", enqueueErr)
	}

	if ackErr := msg.Ack(); ackErr != nil {
		w.logger.Warn("job_ack_failed", zap.String("job_id", job.ID.String()), zap.Error(ackErr))
	}
	metrics.JobsProcessed.WithLabelValues(outcomeRetried).Inc()
	w.logger.Warn("analysis_job_retry_scheduled",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", logger.SanitizeUserID(job.UserID)),
		zap.Int("attempt", retry.RetryCount),
		zap.Int("max_retries", retry.MaxRetries),
		zap.Duration("delay", delay),
		zap.Bool("quota_exhausted", ai.IsQuotaError(err)),
		zap.Error(err),
	)
	return fmt.Errorf("job failed (retry scheduled): %w", err)
}

// deferJob hands back a job that is not due yet. It is re-published so the
// queue can hold it until NotBefore. Without a queue, or when publishing
// fails, the worker waits until the job is due (at most maxDeferWait) and
// then requeues it, so an early job never bounces straight back.
func (w *AnalysisWorker) deferJob(ctx context.Context, msg queue.MessageInterface, job *queue.Job) error {
	metrics.JobsProcessed.WithLabelValues(outcomeDeferred).Inc()

	if w.jobQueue != nil {
		err := w.jobQueue.Enqueue(ctx, job)
		if err == nil {
			if ackErr := msg.Ack(); ackErr != nil {
				w.logger.Warn("job_ack_failed", zap.String("job_id", job.ID.String()), zap.Error(ackErr))
			}
			return nil
		}
		w.logger.Warn("deferred_job_reenqueue_failed",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}

	wait := maxDeferWait
	if job.NotBefore != nil {
		wait = min(time.Until(*job.NotBefore), maxDeferWait)
	}

	var waitErr error
	if wait > 0 {
		select {
		case <-ctx.Done():
			waitErr = ctx.Err()
		case <-w.after(wait):
		}
	}

	if nackErr := msg.Nack(true); nackErr != nil {
		return fmt.Errorf("failed to requeue deferred job: %w", nackErr)
	}
	return waitErr
}

func (w *AnalysisWorker) deadLetter(msg queue.MessageInterface, job *queue.Job, cause error) error {
	if nackErr := msg.Nack(false); nackErr != nil {
		w.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
	}
	metrics.JobsProcessed.WithLabelValues(outcomeDeadLettered).Inc()
	w.logger.Error("analysis_job_dead_lettered",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", logger.SanitizeUserID(job.UserID)),
		zap.Int("retry_count", job.RetryCount),
		zap.String("error", logger.SanitizeError(cause)),
	)
	return fmt.Errorf("job sent to DLQ: %w", cause)
}

// isTransient reports failures worth retrying: provider throttling and
// outages, and storage errors. Rejected input and malformed model output
// would fail the same way again.
func isTransient(err error) bool {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, ai.ErrMalformedResponse):
		return false
	case ai.IsRetryable(err):
		return true
	case errors.Is(err, models.ErrStorage), errors.Is(err, models.ErrUpstreamAnalysis):
		return true
	}
	return false
}
