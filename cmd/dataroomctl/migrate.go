package main

import (
	"fmt"
	"strconv"

	"dataroom/internal/database/migrations"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := migrations.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migrations.MigrateUp(db); err != nil {
			return err
		}
		status, err := migrations.GetStatus(db)
		if err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "Schema at version %d\n", status.Current)
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations (default 1 step)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Environment == "prod" {
			return fmt.Errorf("refusing to roll back migrations in production")
		}

		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("steps must be a positive integer, got %q", args[0])
			}
			steps = n
		}

		db, err := migrations.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migrations.MigrateDown(db, steps); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "Rolled back %d migration(s)\n", steps)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current and latest schema versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := migrations.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		status, err := migrations.GetStatus(db)
		if err != nil {
			return err
		}

		state := "up to date"
		switch {
		case status.Dirty:
			state = "dirty (a migration failed)"
		case status.Current < status.Latest:
			state = fmt.Sprintf("%d migration(s) pending", status.Latest-status.Current)
		case status.Current > status.Latest:
			state = "ahead of this binary"
		}
		printf(cmd.OutOrStdout(), "Current: %d\nLatest:  %d\nState:   %s\n", status.Current, status.Latest, state)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
