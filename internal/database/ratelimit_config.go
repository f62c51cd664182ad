package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yashmitb/CleanPlate/internal/models"
)

// RatelimitConfigRepository stores the API rate limit in Postgres.
type RatelimitConfigRepository struct {
	db *DB
}

// NewRatelimitConfigRepository creates a new ratelimit config repository.
func NewRatelimitConfigRepository(db *DB) *RatelimitConfigRepository {
	return &RatelimitConfigRepository{db: db}
}

// Get returns the stored API rate, or nil when none is stored.
func (r *RatelimitConfigRepository) Get(ctx context.Context) (*models.RatelimitConfig, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	c := &models.RatelimitConfig{}
	err := r.db.QueryRowContext(ctx, `
		SELECT config_key, rate, created_at, updated_at
		FROM ratelimit_config WHERE config_key = $1
	`, models.RatelimitKeyAPI).Scan(&c.ConfigKey, &c.Rate, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ratelimit config: %w: %w", models.ErrStorage, err)
	}
	return c, nil
}

// Set upserts the API rate. Rate format: e.g. "10-S", "300-M".
func (r *RatelimitConfigRepository) Set(ctx context.Context, c *models.RatelimitConfig) error {
	rate := strings.TrimSpace(c.Rate)
	if rate == "" {
		return models.NewValidationError("rate", "cannot be empty")
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratelimit_config (config_key, rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (config_key) DO UPDATE SET
			rate = EXCLUDED.rate,
			updated_at = EXCLUDED.updated_at
	`, models.RatelimitKeyAPI, rate, now, now)
	if err != nil {
		return fmt.Errorf("set ratelimit config: %w: %w", models.ErrStorage, err)
	}
	return nil
}
