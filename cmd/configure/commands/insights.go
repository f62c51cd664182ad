package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yashmitb/CleanPlate/internal/database"
	"github.com/yashmitb/CleanPlate/internal/services/insights"
)

// NewInsightsCmd creates the insights command, which prints the admin waste reports.
func NewInsightsCmd() *cobra.Command {
	var limit int
	var byCategory bool

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Print population waste insights",
		Long:  "Print the most disliked foods across all users, or dislikes grouped by food category with --by-category.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			log := newLogger()
			defer func() { _ = log.Sync() }()

			aggregator := insights.NewAggregator(database.NewProfileRepository(db), log)
			ctx := context.Background()
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

			if byCategory {
				report, err := aggregator.WasteByCategory(ctx)
				if err != nil {
					return fmt.Errorf("failed to build category report: %w", err)
				}
				fmt.Fprintln(tw, "CATEGORY\tDISLIKES\tUNIQUE ITEMS")
				for _, c := range report.Categories {
					fmt.Fprintf(tw, "%s\t%d\t%d\n", c.Category, c.TotalDislikes, c.UniqueItems)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Printf("\n%s\n", report.Insight)
				return nil
			}

			report, err := aggregator.WasteInsights(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to build waste insights: %w", err)
			}
			fmt.Printf("Users analyzed: %d (with dislikes: %d)\n\n", report.Summary.TotalUsersAnalyzed, report.Summary.UsersWithPreferences)
			fmt.Fprintln(tw, "FOOD\tUSERS\tPERCENT\tSEVERITY")
			for _, in := range report.Insights {
				fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t%s\n", in.FoodItem, in.DislikeCount, in.PercentageOfUsers, in.Severity)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			for _, action := range report.Recommendations.ActionItems {
				fmt.Printf("  * %s\n", action)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of foods to show")
	cmd.Flags().BoolVar(&byCategory, "by-category", false, "Group dislikes by food category")
	return cmd
}
