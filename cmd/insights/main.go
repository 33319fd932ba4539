// Command insights streams an inventory insight from the API, fetches the
// baseline forecast alongside it, and prints the reconciled suggestions.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	appName = "insights"
	Version = "0.1.0"

	envAPIURL   = "MISE_API_URL"
	envAPIToken = "MISE_API_TOKEN"
)

func main() {
	_ = godotenv.Load()
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Inventory insight client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(runCmd(), tokenCmd(), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})
	return cmd
}
