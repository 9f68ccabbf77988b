package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mariposa-trails/trailhead/cmd/trailhead/commands"
	"github.com/mariposa-trails/trailhead/logger"
)

var rootCmd = &cobra.Command{
	Use:   "trailhead",
	Short: "Trailhead - Mariposa Trails backend",
	Long: `Trailhead - backend for the Mariposa Trails web app.

Serves the trail dataset over HTTP and merges incoming trail updates
into a version-controlled repository acting as the datastore.

Available commands:
  serve    - Start the HTTP API server
  version  - Show version information

Examples:
  trailhead serve              # Start the API on the configured port
  trailhead serve --json-logs  # Structured log output for collectors
  trailhead version            # Show build information`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit JSON log output instead of console output")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
