package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewSchemaCmd creates the schema command
func NewSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "apply",
		Short: "Create missing tables and indexes",
		Long:  "Create the profile, menu and rate limit tables if they do not exist. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := db.EnsureSchema(context.Background()); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
			fmt.Println("Schema is up to date.")
			return nil
		},
	})
	return cmd
}
