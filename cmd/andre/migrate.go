package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/andre/internal/config"
	"github.com/dukerupert/andre/internal/database"
	"github.com/dukerupert/andre/internal/logging"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			logger := logging.Setup(cfg.Logging.Level)

			db, err := database.Open(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			version, err := database.Version(db)
			if err != nil {
				return err
			}
			logger.Info("database migrated", "path", cfg.Database.Path, "version", version)
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
}
