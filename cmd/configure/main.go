package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yashmitb/CleanPlate/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "cleanplate-configure",
		Short: "Configuration tool for the CleanPlate API",
		Long:  "CLI tool for managing dining hall menus, rate limits and admin reports",
	}
	rootCmd.PersistentFlags().BoolVar(&commands.Debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(commands.NewSchemaCmd())
	rootCmd.AddCommand(commands.NewMenuCmd())
	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewInsightsCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewTestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
