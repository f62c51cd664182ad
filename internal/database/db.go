package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DefaultQueryTimeout bounds every statement when no timeout is configured.
const DefaultQueryTimeout = 5 * time.Second

// DB wraps a Postgres connection pool.
type DB struct {
	*sql.DB
	queryTimeout time.Duration
}

// New opens a Postgres pool and verifies it with a ping.
func New(databaseURL string, queryTimeout time.Duration) (*DB, error) {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}

	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: sqlDB, queryTimeout: queryTimeout}, nil
}

// withTimeout derives a context bounded by the configured query timeout.
func (db *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.queryTimeout)
}

const schema = `
CREATE TABLE IF NOT EXISTS user_profiles (
	user_id                TEXT PRIMARY KEY,
	user_name              TEXT NOT NULL DEFAULT '',
	liked_foods            JSONB NOT NULL DEFAULT '[]'::jsonb,
	disliked_foods         JSONB NOT NULL DEFAULT '[]'::jsonb,
	meal_count             INTEGER NOT NULL DEFAULT 0,
	total_waste_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
	meal_history           JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at             TIMESTAMPTZ NOT NULL,
	updated_at             TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS dining_hall_items (
	item_id        TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	dining_hall    TEXT NOT NULL,
	category       TEXT NOT NULL DEFAULT '',
	ingredients    JSONB NOT NULL DEFAULT '[]'::jsonb,
	tags           JSONB NOT NULL DEFAULT '[]'::jsonb,
	allergens      JSONB NOT NULL DEFAULT '[]'::jsonb,
	nutrition      JSONB NOT NULL DEFAULT '{}'::jsonb,
	available_days JSONB NOT NULL DEFAULT '[]'::jsonb,
	meal_period    TEXT NOT NULL DEFAULT '',
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_dining_hall_items_hall ON dining_hall_items (dining_hall);

CREATE TABLE IF NOT EXISTS ratelimit_config (
	config_key TEXT PRIMARY KEY,
	rate       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates the tables if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
