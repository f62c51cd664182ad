package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/metrics"
	"github.com/yashmitb/CleanPlate/internal/models"
	"github.com/yashmitb/CleanPlate/internal/request"
)

const (
	// DefaultOpenAIModel is the default vision model
	DefaultOpenAIModel = "gpt-4o"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 60 * time.Second
	// DefaultMaxTokens caps the model response
	DefaultMaxTokens = 1000

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIVisionProvider implements VisionAnalyzer with OpenAI chat completions
// carrying an image content part.
type OpenAIVisionProvider struct {
	client    openai.Client
	model     string
	maxTokens int
	logger    *zap.Logger
	debugMode bool
}

// OpenAIConfig configures an OpenAIVisionProvider.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Logger    *zap.Logger
	DebugMode bool
}

// NewOpenAIVisionProvider creates a new OpenAI vision provider.
func NewOpenAIVisionProvider(cfg OpenAIConfig) *OpenAIVisionProvider {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		// Retries are owned by the worker and the circuit breaker.
		option.WithMaxRetries(0),
	)

	return &OpenAIVisionProvider{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    cfg.Logger,
		debugMode: cfg.DebugMode,
	}
}

// AnalyzeImageURL analyses the image at imageURL.
func (p *OpenAIVisionProvider) AnalyzeImageURL(ctx context.Context, imageURL string) (*models.WasteAnalysis, error) {
	u, err := url.Parse(strings.TrimSpace(imageURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, models.NewValidationError("image_url", "must be an absolute http or https URL")
	}
	return p.analyze(ctx, "analyze_image_url", u.String())
}

// AnalyzeImageBytes analyses raw image bytes sent inline as a data URL.
func (p *OpenAIVisionProvider) AnalyzeImageBytes(ctx context.Context, data []byte, contentType string) (*models.WasteAnalysis, error) {
	if len(data) == 0 {
		return nil, models.NewValidationError("file", "is empty")
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, models.NewValidationError("file", "must be an image")
	}
	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	return p.analyze(ctx, "analyze_image_bytes", dataURL)
}

func (p *OpenAIVisionProvider) analyze(ctx context.Context, operation, imageRef string) (*models.WasteAnalysis, error) {
	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(VisionPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: imageRef}),
			}),
		},
		MaxTokens: openai.Int(int64(p.maxTokens)),
	}

	requestID := request.RequestID(ctx)
	if p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.String("image", SanitizeImageRef(imageRef)),
			zap.Int("max_tokens", p.maxTokens),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	metrics.AnalysisDuration.Observe(latency.Seconds())
	if err != nil {
		p.logger.Warn("llm_api_error",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.Duration("latency", latency),
		)
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return nil, fmt.Errorf("failed to analyze image: %w: %w", models.ErrUpstreamAnalysis, apiErr)
		}
		return nil, fmt.Errorf("failed to analyze image: %w: %w", models.ErrUpstreamAnalysis, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: %w: %s", models.ErrUpstreamAnalysis, ErrMalformedResponse, ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	analysis, err := ParseAnalysis(content)
	if err != nil {
		p.logger.Warn("llm_response_rejected",
			zap.String("operation", operation),
			zap.Error(err),
			zap.String("response_preview", SanitizeResponse(content, false)),
			zap.String("request_id", requestID),
		)
		return nil, err
	}
	return analysis, nil
}

// RegisterOpenAI registers the OpenAI vision provider with the registry.
// Recognised keys: api_key (required), base_url, model, max_tokens, debug.
func RegisterOpenAI(registry *ProviderRegistry, logger *zap.Logger) {
	registry.Register("openai", func(config map[string]string) (VisionAnalyzer, error) {
		apiKey := config["api_key"]
		if apiKey == "" {
			return nil, fmt.Errorf("openai api_key is required")
		}

		maxTokens, _ := strconv.Atoi(config["max_tokens"])
		return NewOpenAIVisionProvider(OpenAIConfig{
			APIKey:    apiKey,
			BaseURL:   config["base_url"],
			Model:     config["model"],
			MaxTokens: maxTokens,
			Logger:    logger,
			DebugMode: config["debug"] == "true",
		}), nil
	})
}
