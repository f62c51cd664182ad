package commands

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/config"
	"github.com/yashmitb/CleanPlate/internal/database"
	"github.com/yashmitb/CleanPlate/internal/logger"
)

// Debug turns on debug logging for commands that run the engines.
var Debug bool

// openDB loads configuration and connects to Postgres. The caller closes the DB.
func openDB() (*config.Config, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.StoreBackend != config.StoreBackendPostgres {
		return nil, nil, fmt.Errorf("STORE_BACKEND must be %q for this command", config.StoreBackendPostgres)
	}

	db, err := database.New(cfg.DatabaseURL, cfg.StoreTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, db, nil
}

func closeDB(db *database.DB) {
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
}

// newLogger builds the console logger used by the engines in CLI commands.
func newLogger() *zap.Logger {
	l, err := logger.NewDevelopmentLogger(Debug)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
