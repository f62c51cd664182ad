package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yashmitb/CleanPlate/internal/models"
	"github.com/yashmitb/CleanPlate/internal/validation"
)

// ErrMalformedResponse marks a model answer that is not a valid analysis.
var ErrMalformedResponse = errors.New("malformed model response")

// ParseAnalysis decodes a model response into a validated waste analysis.
// Markdown code fences around the JSON are tolerated; anything else before
// the opening brace is not.
func ParseAnalysis(content string) (*models.WasteAnalysis, error) {
	raw := stripCodeFence(content)
	if raw == "" {
		return nil, fmt.Errorf("%w: %w: empty response", models.ErrUpstreamAnalysis, ErrMalformedResponse)
	}
	if !strings.HasPrefix(raw, "{") {
		return nil, fmt.Errorf("%w: %w: response is not a JSON object", models.ErrUpstreamAnalysis, ErrMalformedResponse)
	}

	var analysis models.WasteAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", models.ErrUpstreamAnalysis, ErrMalformedResponse, err)
	}
	// A schema violation here is the model's fault, not the caller's.
	if err := validation.ValidateWasteAnalysis(&analysis); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", models.ErrUpstreamAnalysis, ErrMalformedResponse, err)
	}
	return &analysis, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
