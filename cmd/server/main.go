package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/config"
	"github.com/yashmitb/CleanPlate/internal/database"
	"github.com/yashmitb/CleanPlate/internal/handlers"
	"github.com/yashmitb/CleanPlate/internal/logger"
	"github.com/yashmitb/CleanPlate/internal/metrics"
	"github.com/yashmitb/CleanPlate/internal/middleware"
	"github.com/yashmitb/CleanPlate/internal/queue"
	"github.com/yashmitb/CleanPlate/internal/services/adminauth"
	"github.com/yashmitb/CleanPlate/internal/services/ai"
	"github.com/yashmitb/CleanPlate/internal/services/insights"
	"github.com/yashmitb/CleanPlate/internal/services/matching"
	"github.com/yashmitb/CleanPlate/internal/services/preferences"
	"github.com/yashmitb/CleanPlate/internal/services/recommend"
	"github.com/yashmitb/CleanPlate/internal/telemetry"
)

const serviceName = "cleanplate-api"

// stores bundles the storage backends selected by STORE_BACKEND.
type stores struct {
	db        *database.DB
	profiles  database.ProfileStore
	menu      database.MenuStore
	ratelimit database.RatelimitConfigStore
}

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug logging, including vision model responses")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(serviceName, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("store_backend", cfg.StoreBackend),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
		zap.Bool("async_analysis_enabled", cfg.AsyncAnalysisEnabled()),
		zap.Bool("admin_auth_enabled", cfg.AdminAuthEnabled()),
	)

	// Initialize OpenTelemetry if enabled
	tracingEnabled := false
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracingEnabled = true
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	st, err := openStores(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_open_store", zap.Error(err))
	}
	if st.db != nil {
		defer func() {
			if err := st.db.Close(); err != nil {
				zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
			}
		}()
	}

	vision, err := newVisionAnalyzer(cfg, zapLogger, debugMode)
	if err != nil {
		zapLogger.Warn("vision_provider_unavailable_analysis_disabled", zap.Error(err))
	}

	// Redis is optional: without it each instance rate limits on its own
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = middleware.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_redis")
	}

	var jobQueue queue.JobQueue
	if cfg.AsyncAnalysisEnabled() {
		jobQueue, err = connectQueue(cfg.RabbitMQURL, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(err))
		}
		defer func() {
			if err := jobQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
	}

	// Core engines
	prefsEngine := preferences.NewEngine(st.profiles, zapLogger)
	prefsEngine.SetHistoryLimits(cfg.HistoryDefaultLimit, cfg.HistoryMaxLimit)
	recommender := recommend.NewEngine(st.profiles, zapLogger)
	matcher := matching.NewEngine(st.profiles, st.menu, zapLogger)
	aggregator := insights.NewAggregator(st.profiles, zapLogger)

	// Rate limiting, loaded from the config table when Postgres is in use
	limiterStore, err := middleware.NewLimiterStore(redisClient)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter_store", zap.Error(err))
	}
	rateLimitReloader, err := middleware.NewRateLimitReloader(limiterStore, st.ratelimit, cfg.RateLimit, zapLogger, 1*time.Minute)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_reloader", zap.Error(err))
	}
	rateLimitMW := rateLimitReloader.Middleware()

	// Health dependencies are only set when present so no typed nil reaches the checker
	healthDeps := handlers.HealthDependencies{}
	if st.db != nil {
		healthDeps.Database = st.db
	}
	if jobQueue != nil {
		healthDeps.Queue = jobQueue
	}
	if redisClient != nil {
		healthDeps.Redis = redisClient
	}
	if vision != nil {
		healthDeps.Breaker = vision
	}
	healthChecker := handlers.NewHealthChecker(healthDeps)

	// Setup router
	r := mux.NewRouter()

	// Middleware registered first wraps outermost
	if tracingEnabled {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORSFromEnv(cfg.FrontendURL))
	r.Use(middleware.ContentType("/api/analyze/image"))

	// Public routes (no rate limiting for probes)
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	if cfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler()).Methods("GET")
	}
	if openAPIHandler, err := handlers.LoadOpenAPIHandler(handlers.DefaultOpenAPIPath); err != nil {
		zapLogger.Warn("openapi_document_unavailable", zap.Error(err))
	} else {
		openAPIHandler.RegisterRoutes(r)
	}

	// Analysis calls the vision model and gets a longer deadline
	if vision != nil {
		var jobs handlers.JobEnqueuer
		if jobQueue != nil {
			jobs = jobQueue
		}
		analysisRouter := r.NewRoute().Subrouter()
		analysisRouter.Use(rateLimitMW)
		analysisRouter.Use(middleware.Timeout(middleware.AnalysisRequestTimeout))
		handlers.NewAnalysisHandler(vision, jobs, zapLogger).RegisterRoutes(analysisRouter)
	}

	// Admin reports
	adminRouter := r.PathPrefix("/api/admin").Subrouter()
	if cfg.AdminAuthEnabled() {
		verifier := adminauth.NewVerifier(adminauth.NewJWKSManager(0), cfg.AdminJWKSURL, cfg.AdminIssuer)
		adminRouter.Use(middleware.AdminAuth(verifier, zapLogger))
		adminRouter.Use(middleware.AuditAdmin(zapLogger))
	} else {
		zapLogger.Warn("admin_auth_disabled_admin_endpoints_are_public")
	}
	adminRouter.Use(rateLimitMW)
	adminRouter.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	handlers.NewAdminHandler(aggregator, zapLogger).RegisterRoutes(adminRouter)

	// User, recommendation and dining routes
	apiRouter := r.NewRoute().Subrouter()
	apiRouter.Use(rateLimitMW)
	apiRouter.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	apiRouter.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	handlers.NewUserHandler(prefsEngine, zapLogger).RegisterRoutes(apiRouter)
	handlers.NewRecommendationHandler(recommender, matcher, handlers.MenuDefaults{
		DiningHall: cfg.DefaultDiningHall,
		MealPeriod: cfg.DefaultMealPeriod,
	}, zapLogger).RegisterRoutes(apiRouter)
	handlers.NewDiningHandler(st.menu, zapLogger).RegisterRoutes(apiRouter)

	// Catch-all OPTIONS handler for preflight requests; CORS has already set the headers
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Setup server
	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   middleware.AnalysisRequestTimeout + 5*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	// Rate limit hot-reload and DLQ garbage collection
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	go rateLimitReloader.Start(bgCtx)

	// Run every hour, retain dead-lettered jobs for 24 hours
	if dlqPurger, ok := jobQueue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(dlqPurger, 1*time.Hour, 24*time.Hour, zapLogger)
		go func() {
			if err := dlqGC.Start(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("started_dlq_garbage_collector",
			zap.Duration("interval", 1*time.Hour),
			zap.Duration("retention", 24*time.Hour),
		)
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	bgCancel()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// openStores opens the storage backend named by cfg.StoreBackend. The
// memory backend is seeded from the menu file and has no rate limit config.
func openStores(cfg *config.Config, zapLogger *zap.Logger) (*stores, error) {
	if cfg.StoreBackend == config.StoreBackendMemory {
		items, err := database.LoadMenuFile(cfg.MenuSeedFile)
		if err != nil {
			return nil, err
		}
		zapLogger.Warn("using_in_memory_store_data_is_not_persisted",
			zap.Int("menu_items", len(items)),
			zap.String("menu_seed_file", cfg.MenuSeedFile),
		)
		return &stores{
			profiles: database.NewMemoryProfileStore(),
			menu:     database.NewMemoryMenuStore(items),
		}, nil
	}

	db, err := database.New(cfg.DatabaseURL, cfg.StoreTimeout)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	zapLogger.Info("connected_to_database")

	return &stores{
		db:        db,
		profiles:  database.NewProfileRepository(db),
		menu:      database.NewMenuRepository(db),
		ratelimit: database.NewRatelimitConfigRepository(db),
	}, nil
}

// newVisionAnalyzer builds the configured vision provider behind a circuit breaker.
func newVisionAnalyzer(cfg *config.Config, zapLogger *zap.Logger, debugMode bool) (*ai.BreakerAnalyzer, error) {
	registry := ai.NewProviderRegistry()
	ai.RegisterOpenAI(registry, zapLogger)

	provider, err := registry.GetProvider(cfg.AIProvider, map[string]string{
		"api_key":    cfg.OpenAIKey,
		"model":      cfg.AIModel,
		"base_url":   cfg.AIBaseURL,
		"max_tokens": strconv.Itoa(cfg.AIMaxTokens),
		"debug":      strconv.FormatBool(debugMode),
	})
	if err != nil {
		return nil, err
	}
	return ai.NewBreakerAnalyzer(provider, ai.BreakerConfig{Name: cfg.AIProvider}, zapLogger), nil
}

// connectQueue retries with exponential backoff to ride out RabbitMQ startup delays.
func connectQueue(amqpURL string, zapLogger *zap.Logger) (queue.JobQueue, error) {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		q, err := queue.NewRabbitMQQueue(amqpURL, zapLogger)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return q, nil
		}

		lastErr = err
		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}
	return nil, lastErr
}
