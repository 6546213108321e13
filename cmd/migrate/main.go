package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/config"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/repository/postgresql/migrations"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var databaseURL string

	openMigrator := func() (*database.Migrator, error) {
		dsn := databaseURL
		if dsn == "" {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			dsn = cfg.DatabaseURL()
		}
		return database.NewMigrator(dsn, migrations.FS)
	}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the timesheet database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string (defaults to the DB_* environment)")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, err := openMigrator()
			if err != nil {
				return err
			}
			defer migrator.Close()

			if err := migrator.Up(); err != nil {
				return err
			}
			return printVersion(cmd, migrator)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back the given number of migrations, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 0
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}

			migrator, err := openMigrator()
			if err != nil {
				return err
			}
			defer migrator.Close()

			if err := migrator.Down(steps); err != nil {
				return err
			}
			return printVersion(cmd, migrator)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, err := openMigrator()
			if err != nil {
				return err
			}
			defer migrator.Close()

			return printVersion(cmd, migrator)
		},
	})

	return root
}

func printVersion(cmd *cobra.Command, migrator *database.Migrator) error {
	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	cmd.Printf("schema version %d (dirty: %t)\n", version, dirty)
	return nil
}
