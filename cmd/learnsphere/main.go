// Command learnsphere runs the LearnSphere API and its admin tasks.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "learnsphere",
	Short:   "LearnSphere AI backend",
	Version: version,
	Example: `learnsphere serve
learnsphere migrate
learnsphere credits grant --email user@example.com --amount 20`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(creditsCmd())
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}
