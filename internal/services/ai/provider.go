package ai

import (
	"context"

	"github.com/yashmitb/CleanPlate/internal/models"
)

// VisionAnalyzer turns a photo of a finished meal into a waste analysis.
// Every failure wraps models.ErrUpstreamAnalysis unless the input itself was
// rejected, which wraps models.ErrValidation.
type VisionAnalyzer interface {
	// AnalyzeImageURL analyses the image at a public URL.
	AnalyzeImageURL(ctx context.Context, imageURL string) (*models.WasteAnalysis, error)

	// AnalyzeImageBytes analyses raw image bytes. An empty contentType is sniffed.
	AnalyzeImageBytes(ctx context.Context, data []byte, contentType string) (*models.WasteAnalysis, error)
}

// ProviderFactory creates a vision analyzer from string settings
type ProviderFactory func(config map[string]string) (VisionAnalyzer, error)

// ProviderRegistry stores available vision providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (VisionAnalyzer, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "vision provider not found: " + e.Name
}
