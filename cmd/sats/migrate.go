package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sats-budget/internal/config"
	"github.com/Veraticus/sats-budget/internal/storage"
)

func migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates on open, so this is only needed to prepare a
database ahead of time or to check its version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			settings, err := config.Load()
			if err != nil {
				return err
			}

			store, err := storage.NewSQLiteStorage(settings.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			before, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if status {
				_, _ = fmt.Fprintf(out, "Database: %s\nSchema version: %d (latest %d)\n",
					settings.DatabasePath, before, storage.ExpectedSchemaVersion)
				return nil
			}

			slog.Info("Running database migrations", "database", settings.DatabasePath, "version", before)
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			after, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}

			if after == before {
				notice(out, "Database is already at schema version %d.", after)
				return nil
			}
			success(out, "Migrated database from version %d to %d", before, after)
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "show the schema version without migrating")
	return cmd
}
