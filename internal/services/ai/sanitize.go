package ai

import (
	"github.com/yashmitb/CleanPlate/internal/logger"
)

const (
	// MaxPreviewLength is the maximum length for preview strings in logs
	MaxPreviewLength = 200
	// RedactedValue is the value used to replace sensitive data
	RedactedValue = "[REDACTED]"
	// dataURLPrefix marks inline base64 images, which are never logged.
	dataURLPrefix = "data:"
)

// SanitizeAPIKey sanitizes an API key for logging
func SanitizeAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return RedactedValue
	}
	return apiKey[:4] + RedactedValue + apiKey[len(apiKey)-4:]
}

// SanitizeResponse creates a safe preview of a model response for logging.
// fullLog raises the length cap to the debug content limit.
func SanitizeResponse(response string, fullLog bool) string {
	maxLen := MaxPreviewLength
	if fullLog {
		maxLen = logger.MaxDebugContentLength
	}
	return logger.SanitizeString(response, maxLen)
}

// SanitizeImageRef returns a loggable form of an image reference. Inline
// data URLs are reduced to their media type.
func SanitizeImageRef(ref string) string {
	if len(ref) > len(dataURLPrefix) && ref[:len(dataURLPrefix)] == dataURLPrefix {
		end := len(ref)
		for i := len(dataURLPrefix); i < len(ref); i++ {
			if ref[i] == ';' || ref[i] == ',' {
				end = i
				break
			}
		}
		return ref[:end] + ";" + RedactedValue
	}
	return logger.SanitizePath(ref)
}
