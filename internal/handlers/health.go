package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

const healthCheckTimeout = 5 * time.Second

// Pinger is satisfied by *database.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// QueueChecker is satisfied by queue.JobQueue.
type QueueChecker interface {
	HealthCheck(ctx context.Context) error
}

// RedisPinger is satisfied by *redis.Client.
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// BreakerStateReader is satisfied by *ai.BreakerAnalyzer.
type BreakerStateReader interface {
	State() gobreaker.State
}

// HealthDependencies lists the optional collaborators reported by the
// extended health check. Nil members are skipped.
type HealthDependencies struct {
	Database Pinger
	Queue    QueueChecker
	Redis    RedisPinger
	Breaker  BreakerStateReader
}

// HealthChecker handles health check requests
type HealthChecker struct {
	deps HealthDependencies
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(deps HealthDependencies) *HealthChecker {
	return &HealthChecker{deps: deps}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	statusCode := http.StatusOK
	if r.URL.Query().Get("mode") == "extended" {
		response.Checks = h.runChecks(r.Context(), &response)
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// runChecks probes every configured dependency. A failed store, queue or
// cache marks the service unhealthy; an open breaker only degrades it.
func (h *HealthChecker) runChecks(ctx context.Context, response *HealthResponse) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	probe := func(name string, err error) {
		if err != nil {
			response.Status = "unhealthy"
			checks[name] = "unhealthy: " + sanitizeErrorMessage(err.Error())
			return
		}
		checks[name] = "healthy"
	}

	if h.deps.Database != nil {
		probe("database", h.deps.Database.PingContext(ctx))
	}
	if h.deps.Queue != nil {
		probe("rabbitmq", h.deps.Queue.HealthCheck(ctx))
	}
	if h.deps.Redis != nil {
		probe("redis", h.deps.Redis.Ping(ctx).Err())
	}
	if h.deps.Breaker != nil {
		state := h.deps.Breaker.State()
		checks["vision"] = state.String()
		if state != gobreaker.StateClosed && response.Status == "healthy" {
			response.Status = "degraded"
		}
	}

	return checks
}
