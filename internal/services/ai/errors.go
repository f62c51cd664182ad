package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
)

// APIError represents an error from the vision provider API
type APIError struct {
	Message     string
	Type        string
	Code        string
	StatusCode  int
	RetryAfter  *time.Duration
	IsPermanent bool // true for quota errors, false for rate limits
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d, type %s): %s", e.StatusCode, e.Type, e.Message)
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests && !apiErr.IsPermanent
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

// IsQuotaError checks if an error is a quota exhaustion error
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsPermanent || apiErr.Code == "insufficient_quota"
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "insufficient_quota") ||
		strings.Contains(errStr, "billing")
}

// IsRetryable reports whether a failed analysis is worth retrying later:
// rate limits, quota exhaustion and 5xx responses.
func IsRetryable(err error) bool {
	if IsRateLimitError(err) || IsQuotaError(err) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}

// ExtractAPIError converts an OpenAI SDK error into an APIError.
// It returns nil when err carries no API status.
func ExtractAPIError(err error) *APIError {
	if err == nil {
		return nil
	}

	var sdkErr *openai.Error
	if !errors.As(err, &sdkErr) {
		return nil
	}

	apiErr := &APIError{
		Message:    sdkErr.Message,
		Type:       sdkErr.Type,
		Code:       sdkErr.Code,
		StatusCode: sdkErr.StatusCode,
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(sdkErr.StatusCode)
	}

	if sdkErr.StatusCode == http.StatusTooManyRequests {
		retryAfter := 60 * time.Second
		if sdkErr.Response != nil {
			if secs, convErr := strconv.Atoi(sdkErr.Response.Header.Get("Retry-After")); convErr == nil && secs > 0 {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		if apiErr.Code == "insufficient_quota" {
			apiErr.IsPermanent = true
			retryAfter = time.Hour
		}
		apiErr.RetryAfter = &retryAfter
	}

	return apiErr
}

// GetRetryDelay calculates the delay before retrying based on error type
func GetRetryDelay(err error, attempt int) time.Duration {
	// Clamp the shift so the multiplication cannot overflow.
	var shift uint
	switch {
	case attempt <= 0:
		shift = 0
	case attempt > 10:
		shift = 10
	default:
		shift = uint(attempt)
	}

	if IsQuotaError(err) {
		delay := time.Hour * time.Duration(1<<shift)
		if delay > 24*time.Hour {
			delay = 24 * time.Hour
		}
		return delay
	}

	if IsRateLimitError(err) {
		delay := 60 * time.Second * time.Duration(1<<shift)
		if delay > 15*time.Minute {
			delay = 15 * time.Minute
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.RetryAfter != nil && *apiErr.RetryAfter > delay {
			delay = *apiErr.RetryAfter
		}
		return delay
	}

	delay := 5 * time.Second * time.Duration(1<<shift)
	if delay > 5*time.Minute {
		delay = 5 * time.Minute
	}
	return delay
}
