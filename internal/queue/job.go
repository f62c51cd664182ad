package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeAnalyzeImage analyses a meal photo and applies the result to a user profile
	JobTypeAnalyzeImage JobType = "analyze_image"
)

// DefaultMaxRetries bounds retries of a single job.
const DefaultMaxRetries = 3

// ErrInvalidJob is returned for jobs missing required fields.
var ErrInvalidJob = errors.New("invalid job")

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID  `json:"id"`
	Type       JobType    `json:"type"`
	UserID     string     `json:"user_id"`
	ImageURL   string     `json:"image_url"`
	RequestID  string     `json:"request_id,omitempty"`
	NotBefore  *time.Time `json:"not_before,omitempty"` // nil = immediate
	NotAfter   *time.Time `json:"not_after,omitempty"`  // nil = no expiration
	CreatedAt  time.Time  `json:"created_at"`
	RetryCount int        `json:"retry_count"`
	MaxRetries int        `json:"max_retries"`
	LastError  string     `json:"last_error,omitempty"`
}

// NewAnalysisJob creates a job that analyses imageURL for userID
func NewAnalysisJob(userID, imageURL string) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       JobTypeAnalyzeImage,
		UserID:     userID,
		ImageURL:   imageURL,
		CreatedAt:  time.Now().UTC(),
		MaxRetries: DefaultMaxRetries,
	}
}

// Validate checks that the job carries what its type needs.
func (j *Job) Validate() error {
	if j.Type != JobTypeAnalyzeImage {
		return fmt.Errorf("%w: unknown job type %q", ErrInvalidJob, j.Type)
	}
	if strings.TrimSpace(j.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidJob)
	}
	if strings.TrimSpace(j.ImageURL) == "" {
		return fmt.Errorf("%w: image_url is required", ErrInvalidJob)
	}
	return nil
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}

	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}

// ScheduleRetry records cause and delays the next attempt by delay.
func (j *Job) ScheduleRetry(cause error, delay time.Duration) {
	j.IncrementRetry()
	if cause != nil {
		j.LastError = cause.Error()
	}
	notBefore := time.Now().Add(delay)
	j.NotBefore = &notBefore
}
