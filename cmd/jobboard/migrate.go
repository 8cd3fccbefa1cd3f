package main

import (
	"context"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMigrate(cmd.Context())
	},
}

func runMigrate(ctx context.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	repo, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDatabase(repo, logger)

	if err := repo.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("Database schema is up to date")
	return nil
}
