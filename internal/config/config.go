package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends
const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	StoreBackend string
	DatabaseURL  string
	StoreTimeout time.Duration
	ServerPort   string
	FrontendURL  string
	EnableHSTS   bool

	OpenAIKey   string
	AIProvider  string
	AIModel     string
	AIBaseURL   string
	AIMaxTokens int

	RedisURL  string
	RateLimit string

	RabbitMQURL      string
	RabbitMQPrefetch int

	HistoryDefaultLimit int
	HistoryMaxLimit     int

	AdminJWKSURL string
	AdminIssuer  string

	DefaultDiningHall string
	DefaultMealPeriod string
	MenuSeedFile      string

	WorkerDebugMode bool
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
	MetricsEnabled  bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom loads configuration through lookup, which returns "" for unset keys.
func LoadFrom(lookup func(string) string) (*Config, error) {
	cfg := &Config{
		StoreBackend:        strings.ToLower(getEnv(lookup, "STORE_BACKEND", StoreBackendPostgres)),
		DatabaseURL:         getEnv(lookup, "DATABASE_URL", ""),
		StoreTimeout:        getEnvDuration(lookup, "STORE_TIMEOUT", 5*time.Second),
		ServerPort:          getEnv(lookup, "SERVER_PORT", "8080"),
		FrontendURL:         getEnv(lookup, "FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:          getEnvBool(lookup, "ENABLE_HSTS", false),
		OpenAIKey:           getEnv(lookup, "OPENAI_API_KEY", ""),
		AIProvider:          getEnv(lookup, "AI_PROVIDER", "openai"),
		AIModel:             getEnv(lookup, "AI_MODEL", "gpt-4o"),
		AIBaseURL:           getEnv(lookup, "AI_BASE_URL", ""),
		AIMaxTokens:         getEnvInt(lookup, "AI_MAX_TOKENS", 1000),
		RedisURL:            getEnv(lookup, "REDIS_URL", ""),
		RateLimit:           getEnv(lookup, "RATE_LIMIT", "10-S"),
		RabbitMQURL:         getEnv(lookup, "RABBITMQ_URL", ""),
		RabbitMQPrefetch:    getEnvInt(lookup, "RABBITMQ_PREFETCH", 1),
		HistoryDefaultLimit: getEnvInt(lookup, "HISTORY_DEFAULT_LIMIT", 10),
		HistoryMaxLimit:     getEnvInt(lookup, "HISTORY_MAX_LIMIT", 100),
		AdminJWKSURL:        getEnv(lookup, "ADMIN_JWKS_URL", ""),
		AdminIssuer:         getEnv(lookup, "ADMIN_ISSUER", ""),
		DefaultDiningHall:   getEnv(lookup, "DEFAULT_DINING_HALL", "North Campus Dining"),
		DefaultMealPeriod:   getEnv(lookup, "DEFAULT_MEAL_PERIOD", "lunch"),
		MenuSeedFile:        getEnv(lookup, "MENU_SEED_FILE", "data/menu_seed.yaml"),
		WorkerDebugMode:     getEnvBool(lookup, "WORKER_DEBUG_MODE", false),
		ServerDebugMode:     getEnvBool(lookup, "SERVER_DEBUG_MODE", false),
		OTELEnabled:         getEnvBool(lookup, "OTEL_ENABLED", false),
		OTELEndpoint:        getEnv(lookup, "OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		MetricsEnabled:      getEnvBool(lookup, "METRICS_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration for contradictions.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND is %q", StoreBackendPostgres)
		}
	case StoreBackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreBackendPostgres, StoreBackendMemory, c.StoreBackend)
	}

	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.HistoryDefaultLimit <= 0 || c.HistoryMaxLimit <= 0 {
		return fmt.Errorf("HISTORY_DEFAULT_LIMIT and HISTORY_MAX_LIMIT must be positive")
	}
	if c.HistoryDefaultLimit > c.HistoryMaxLimit {
		return fmt.Errorf("HISTORY_DEFAULT_LIMIT (%d) exceeds HISTORY_MAX_LIMIT (%d)", c.HistoryDefaultLimit, c.HistoryMaxLimit)
	}
	if c.RabbitMQPrefetch <= 0 {
		return fmt.Errorf("RABBITMQ_PREFETCH must be positive")
	}
	if c.AdminIssuer != "" && c.AdminJWKSURL == "" {
		return fmt.Errorf("ADMIN_JWKS_URL is required when ADMIN_ISSUER is set")
	}
	return nil
}

// AsyncAnalysisEnabled reports whether a job queue is configured.
func (c *Config) AsyncAnalysisEnabled() bool {
	return c.RabbitMQURL != ""
}

// AdminAuthEnabled reports whether admin endpoints require a bearer token.
func (c *Config) AdminAuthEnabled() bool {
	return c.AdminJWKSURL != ""
}

func getEnv(lookup func(string) string, key, defaultValue string) string {
	if value := lookup(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(lookup func(string) string, key string, defaultValue bool) bool {
	if value := lookup(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(lookup func(string) string, key string, defaultValue int) int {
	if value := lookup(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(lookup func(string) string, key string, defaultValue time.Duration) time.Duration {
	if value := lookup(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
