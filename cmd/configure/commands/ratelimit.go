package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"

	"github.com/yashmitb/CleanPlate/internal/database"
	"github.com/yashmitb/CleanPlate/internal/models"
)

// NewRatelimitCmd creates the ratelimit configuration command with list and set subcommands.
func NewRatelimitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage rate limit configuration",
		Long:  "List or update rate limit (e.g. 5-S, 100-M). Stored in database.",
	}
	cmd.AddCommand(newRatelimitListCmd())
	cmd.AddCommand(newRatelimitSetCmd())
	return cmd
}

func newRatelimitListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current rate limit configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)
			repo := database.NewRatelimitConfigRepository(db)
			c, err := repo.Get(context.Background())
			if err != nil {
				return fmt.Errorf("get ratelimit config: %w", err)
			}
			fmt.Printf("Default from RATE_LIMIT: %s\n", cfg.RateLimit)
			if c == nil {
				fmt.Println("No rate limit stored; servers use the default and save it on start.")
				return nil
			}
			fmt.Printf("Stored rate: %s (updated %s)\n", c.Rate, c.UpdatedAt.Format(time.RFC3339))
			return nil
		},
	}
}

func newRatelimitSetCmd() *cobra.Command {
	var rate string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set rate limit configuration",
		Long:  "Update rate limit (e.g. 5-S, 100-M, 1000-H). Stored in database; running servers pick it up within a minute.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rate = strings.TrimSpace(rate)
			if rate == "" {
				return fmt.Errorf("--rate is required (e.g. 5-S, 100-M)")
			}
			if _, err := limiter.NewRateFromFormatted(rate); err != nil {
				return fmt.Errorf("invalid rate %q: %w", rate, err)
			}
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)
			repo := database.NewRatelimitConfigRepository(db)
			c := &models.RatelimitConfig{Rate: rate}
			if err := repo.Set(context.Background(), c); err != nil {
				return fmt.Errorf("set ratelimit config: %w", err)
			}
			fmt.Println("Rate limit configuration updated.")
			return nil
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "Rate (e.g. 5-S, 100-M, 1000-H) (required)")
	return cmd
}
