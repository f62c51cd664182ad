package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yashmitb/CleanPlate/internal/database"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dining halls",
		Long:  "List every dining hall that has menu items, with its item count",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			repo := database.NewMenuRepository(db)
			ctx := context.Background()

			halls, err := repo.DiningHalls(ctx)
			if err != nil {
				return fmt.Errorf("failed to list dining halls: %w", err)
			}
			if len(halls) == 0 {
				fmt.Println("No dining halls configured. Use 'menu import' to load a menu.")
				return nil
			}

			items, err := repo.AllItems(ctx)
			if err != nil {
				return fmt.Errorf("failed to list menu items: %w", err)
			}
			counts := make(map[string]int, len(halls))
			for _, item := range items {
				counts[item.DiningHall]++
			}

			fmt.Println("Dining halls:")
			for _, hall := range halls {
				fmt.Printf("  - %s (%d items)\n", hall, counts[hall])
			}
			return nil
		},
	}

	return cmd
}
