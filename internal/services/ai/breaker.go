package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/metrics"
	"github.com/yashmitb/CleanPlate/internal/models"
)

// BreakerConfig tunes the circuit breaker around a VisionAnalyzer.
type BreakerConfig struct {
	Name string
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenRequests is the number of probes allowed while half-open.
	HalfOpenRequests uint32
}

// BreakerAnalyzer fails fast while the wrapped analyzer keeps failing.
type BreakerAnalyzer struct {
	next VisionAnalyzer
	cb   *gobreaker.CircuitBreaker[*models.WasteAnalysis]
}

var _ VisionAnalyzer = (*BreakerAnalyzer)(nil)

// NewBreakerAnalyzer wraps next in a circuit breaker. Rejected input and
// unparsable model output do not count as failures.
func NewBreakerAnalyzer(next VisionAnalyzer, cfg BreakerConfig, logger *zap.Logger) *BreakerAnalyzer {
	if cfg.Name == "" {
		cfg.Name = "vision"
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.HalfOpenRequests == 0 {
		cfg.HalfOpenRequests = 1
	}

	metrics.BreakerState.WithLabelValues(cfg.Name).Set(float64(gobreaker.StateClosed))

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || countsAsSuccess(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("circuit_breaker_state_change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &BreakerAnalyzer{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*models.WasteAnalysis](settings),
	}
}

// AnalyzeImageURL implements VisionAnalyzer.
func (b *BreakerAnalyzer) AnalyzeImageURL(ctx context.Context, imageURL string) (*models.WasteAnalysis, error) {
	return b.execute(func() (*models.WasteAnalysis, error) {
		return b.next.AnalyzeImageURL(ctx, imageURL)
	})
}

// AnalyzeImageBytes implements VisionAnalyzer.
func (b *BreakerAnalyzer) AnalyzeImageBytes(ctx context.Context, data []byte, contentType string) (*models.WasteAnalysis, error) {
	return b.execute(func() (*models.WasteAnalysis, error) {
		return b.next.AnalyzeImageBytes(ctx, data, contentType)
	})
}

// State returns the current breaker state.
func (b *BreakerAnalyzer) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerAnalyzer) execute(fn func() (*models.WasteAnalysis, error)) (*models.WasteAnalysis, error) {
	res, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: vision service unavailable: %w", models.ErrUpstreamAnalysis, err)
	}
	return res, err
}

// countsAsSuccess reports errors that say nothing about the provider's health.
func countsAsSuccess(err error) bool {
	return errors.Is(err, models.ErrValidation) ||
		errors.Is(err, ErrMalformedResponse) ||
		errors.Is(err, context.Canceled)
}
