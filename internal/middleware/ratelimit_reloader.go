package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/database"
	"github.com/yashmitb/CleanPlate/internal/models"
	"github.com/yashmitb/CleanPlate/internal/request"
)

// RateLimitReloader wraps ulule/limiter and periodically reloads the API rate
// from the config store. Without a config store the default rate is fixed.
type RateLimitReloader struct {
	store       limiter.Store
	repo        database.RatelimitConfigStore
	defaultRate string
	log         *zap.Logger
	interval    time.Duration
	mu          sync.RWMutex
	current     *limiter.Limiter
	currentRate string
}

// NewRateLimitReloader creates a rate limit middleware that loads its rate
// from repo (may be nil) and hot-reloads it. The initial rate is loaded
// before it returns.
func NewRateLimitReloader(store limiter.Store, repo database.RatelimitConfigStore, defaultRate string, log *zap.Logger, reloadInterval time.Duration) (*RateLimitReloader, error) {
	if store == nil {
		return nil, errors.New("rate limiter store is required")
	}
	if defaultRate == "" {
		defaultRate = defaultRatelimitRate
	}
	if _, err := limiter.NewRateFromFormatted(defaultRate); err != nil {
		return nil, models.NewValidationError("rate", "invalid default rate "+defaultRate)
	}
	r := &RateLimitReloader{
		store:       store,
		repo:        repo,
		defaultRate: defaultRate,
		log:         log,
		interval:    reloadInterval,
	}
	r.load(context.Background())
	return r, nil
}

// Middleware returns a middleware that rate limits next with the rate
// currently loaded. It is safe to apply per request.
func (r *RateLimitReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.mu.RLock()
			instance := r.current
			r.mu.RUnlock()
			if instance == nil {
				next.ServeHTTP(w, req)
				return
			}

			mw := stdlibmw.NewMiddleware(instance,
				stdlibmw.WithKeyGetter(request.ClientIP),
				stdlibmw.WithErrorHandler(func(w http.ResponseWriter, req *http.Request, err error) {
					// Fail open: a broken limiter store must not take the API down
					r.log.Warn("rate_limiter_store_error", zap.Error(err))
					next.ServeHTTP(w, req)
				}),
			)
			mw.Handler(next).ServeHTTP(w, req)
		})
	}
}

// Start runs the reload loop until ctx is cancelled.
func (r *RateLimitReloader) Start(ctx context.Context) {
	if r.interval <= 0 || r.repo == nil {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.load(ctx)
		}
	}
}

// Rate returns the rate currently enforced.
func (r *RateLimitReloader) Rate() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentRate
}

func (r *RateLimitReloader) load(ctx context.Context) {
	rateStr := r.configuredRate(ctx)
	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		r.log.Error("failed_to_parse_rate_limit_using_default",
			zap.Error(err),
			zap.String("rate_str", rateStr),
			zap.String("default_rate", r.defaultRate),
		)
		rateStr = r.defaultRate
		// Validated in the constructor
		rate, _ = limiter.NewRateFromFormatted(rateStr)
	}

	if rateStr == r.Rate() {
		return
	}

	// Reuse the store, only the limiter instance carries the rate
	instance := limiter.New(r.store, rate)

	r.mu.Lock()
	r.current = instance
	r.currentRate = rateStr
	r.mu.Unlock()

	r.log.Info("rate_limit_loaded", zap.String("rate", rateStr))
}

func (r *RateLimitReloader) configuredRate(ctx context.Context) string {
	if r.repo == nil {
		return r.defaultRate
	}

	cfg, err := r.repo.Get(ctx)
	switch {
	case err != nil:
		r.log.Warn("failed_to_load_ratelimit_config_from_db_using_default",
			zap.Error(err),
			zap.String("default_rate", r.defaultRate),
		)
		return r.defaultRate
	case cfg != nil && cfg.Rate != "":
		return cfg.Rate
	}

	// Save default config if none exists
	if err := r.repo.Set(ctx, &models.RatelimitConfig{Rate: r.defaultRate}); err != nil {
		r.log.Error("failed_to_save_default_ratelimit_config",
			zap.Error(err),
			zap.String("default_rate", r.defaultRate),
		)
	}
	return r.defaultRate
}
