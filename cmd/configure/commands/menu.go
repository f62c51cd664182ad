package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yashmitb/CleanPlate/internal/database"
	"github.com/yashmitb/CleanPlate/internal/models"
)

// NewMenuCmd creates the menu command with import and show subcommands.
func NewMenuCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Manage dining hall menus",
		Long:  "Import menu items from a YAML file or show what a dining hall serves.",
	}
	cmd.AddCommand(newMenuImportCmd())
	cmd.AddCommand(newMenuShowCmd())
	return cmd
}

func newMenuImportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import menu items from a YAML file",
		Long:  "Insert or replace menu items by item_id. Items not in the file are left untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := database.LoadMenuFile(file)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return fmt.Errorf("%s contains no menu items", file)
			}

			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			ctx := context.Background()
			if err := db.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
			if err := database.NewMenuRepository(db).UpsertItems(ctx, items); err != nil {
				return fmt.Errorf("failed to import menu: %w", err)
			}
			fmt.Printf("Imported %d menu items from %s\n", len(items), file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "data/menu_seed.yaml", "Menu YAML file")
	return cmd
}

func newMenuShowCmd() *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "show <dining-hall>",
		Short: "Show the items a dining hall serves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hall := args[0]

			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			repo := database.NewMenuRepository(db)
			ctx := context.Background()

			var items []models.MenuItem
			if period != "" {
				items, err = repo.ItemsByHallAndPeriod(ctx, hall, period)
			} else {
				var all []models.MenuItem
				all, err = repo.AllItems(ctx)
				for _, item := range all {
					if item.DiningHall == hall {
						items = append(items, item)
					}
				}
			}
			if err != nil {
				return fmt.Errorf("failed to load menu: %w", err)
			}

			if len(items) == 0 {
				fmt.Printf("No menu items for %s\n", hall)
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPERIOD\tTAGS")
			for _, item := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", item.ItemID, item.Name, item.Category, item.MealPeriod, strings.Join(item.Tags, ","))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&period, "meal-period", "", "Only items served in this meal period")
	return cmd
}
