package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/config"
	"github.com/yashmitb/CleanPlate/internal/database"
	"github.com/yashmitb/CleanPlate/internal/logger"
	"github.com/yashmitb/CleanPlate/internal/queue"
	"github.com/yashmitb/CleanPlate/internal/services/ai"
	"github.com/yashmitb/CleanPlate/internal/services/preferences"
	"github.com/yashmitb/CleanPlate/internal/telemetry"
	"github.com/yashmitb/CleanPlate/internal/workers"
)

const serviceName = "cleanplate-worker"

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
	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(serviceName, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	// A worker writes profiles the API reads, so both must share Postgres
	if cfg.StoreBackend != config.StoreBackendPostgres {
		zapLogger.Fatal("worker_requires_postgres_store", zap.String("store_backend", cfg.StoreBackend))
	}
	if !cfg.AsyncAnalysisEnabled() {
		zapLogger.Fatal("worker_requires_rabbitmq_url")
	}

	if cfg.OTELEnabled && cfg.OTELEndpoint != "" {
		tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	db, err := database.New(cfg.DatabaseURL, cfg.StoreTimeout)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	if err := db.EnsureSchema(context.Background()); err != nil {
		zapLogger.Fatal("failed_to_apply_schema", zap.Error(err))
	}
	zapLogger.Info("connected_to_database")

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq")

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
		zapLogger.Fatal("failed_to_create_vision_provider", zap.Error(err))
	}
	vision := ai.NewBreakerAnalyzer(provider, ai.BreakerConfig{Name: cfg.AIProvider}, zapLogger)

	prefsEngine := preferences.NewEngine(database.NewProfileRepository(db), zapLogger)
	worker := workers.NewAnalysisWorker(vision, prefsEngine, jobQueue, zapLogger)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}

	// Run every hour, retain dead-lettered jobs for 24 hours
	dlqGC := queue.NewGarbageCollector(jobQueue, 1*time.Hour, 24*time.Hour, zapLogger)
	go func() {
		if err := dlqGC.Start(ctx); err != nil && err != context.Canceled {
			zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
		}
	}()

	zapLogger.Info("worker_started")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgChan:
				if !ok {
					zapLogger.Info("message_channel_closed")
					return
				}

				if err := worker.ProcessJob(ctx, msg); err != nil {
					zapLogger.Warn("analysis_job_not_applied",
						zap.Error(err),
						zap.String("job_id", msg.GetJob().ID.String()),
						zap.String("job_type", string(msg.GetJob().Type)),
					)
				}
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("queue_error", zap.Error(err))
			}
		}
	}()

	<-sigChan
	zapLogger.Info("worker_shutting_down")
	cancel()
	zapLogger.Info("worker_stopped")
}
