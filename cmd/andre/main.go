package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukerupert/andre/internal/buildinfo"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "andre",
		Short:   "Personal finance assistant web frontend",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	var configPath string
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "andre.toml", "path to TOML config file (optional)")

	rootCmd.AddCommand(
		newServeCmd(&configPath),
		newMigrateCmd(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
