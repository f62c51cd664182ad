package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yashmitb/CleanPlate/internal/config"
	"github.com/yashmitb/CleanPlate/internal/services/adminauth"
)

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	var jwksURL string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test admin token configuration",
		Long:  "Fetch the admin JWKS and list its keys, to check ADMIN_JWKS_URL before starting the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jwksURL == "" {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				jwksURL = cfg.AdminJWKSURL
			}
			if jwksURL == "" {
				return fmt.Errorf("--jwks-url or ADMIN_JWKS_URL is required")
			}

			fmt.Printf("Testing JWKS endpoint: %s\n", jwksURL)

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			keys, err := adminauth.NewJWKSManager(0).GetJWKS(ctx, jwksURL)
			if err != nil {
				return err
			}
			if keys.Len() == 0 {
				return fmt.Errorf("JWKS endpoint returned no keys")
			}

			for i := 0; i < keys.Len(); i++ {
				key, ok := keys.Key(i)
				if !ok {
					continue
				}
				fmt.Printf("  - kid=%s alg=%s type=%s\n", key.KeyID(), key.Algorithm(), key.KeyType())
			}
			fmt.Println("\n✓ Admin JWKS is reachable")
			return nil
		},
	}

	cmd.Flags().StringVar(&jwksURL, "jwks-url", "", "JWKS URL to test (defaults to ADMIN_JWKS_URL)")

	return cmd
}
