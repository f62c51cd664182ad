package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength is the maximum length for URL paths in logs
	MaxPathLength = 500
	// MaxUserIDLength caps user IDs in logs. IDs are client-chosen, not UUIDs.
	MaxUserIDLength = 128
	// MaxIPLength fits a bracketed IPv6 address with zone
	MaxIPLength = 64
	// MaxErrorMessageLength is the maximum length for error messages in logs
	MaxErrorMessageLength = 1000
	// MaxGeneralStringLength is the maximum length for general strings in logs
	MaxGeneralStringLength = 2000
	// MaxDebugContentLength caps vision model responses logged in debug mode
	MaxDebugContentLength = 10000
)

// SanitizePath sanitizes a URL path for safe logging.
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeString makes s safe to log: invalid UTF-8 and control characters
// are dropped and the result is cut to maxLength bytes on a rune boundary.
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}
	s = sanitizeFilterRunes(s)
	if len(s) > maxLength {
		cut := maxLength
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}

// sanitizeFilterRunes validates UTF-8 and removes control characters (keeps printable, space, tab, newline, CR).
func sanitizeFilterRunes(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// SanitizeError sanitizes an error message for safe logging
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// SanitizeUserID sanitizes a user ID for safe logging
func SanitizeUserID(userID string) string {
	return SanitizeString(userID, MaxUserIDLength)
}

// SanitizeIP sanitizes a client address, which may come from a forwarded header.
func SanitizeIP(ip string) string {
	return SanitizeString(ip, MaxIPLength)
}
