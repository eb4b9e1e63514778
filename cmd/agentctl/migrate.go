package main

import (
	"fmt"

	"github.com/kiranshivaraju/agentlist/internal/config"
	"github.com/kiranshivaraju/agentlist/internal/store"
	"github.com/spf13/cobra"
)

type migrateOptions struct {
	dir   string
	steps int
}

func newMigrateCmd() *cobra.Command {
	opts := &migrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage schema migrations",
	}
	cmd.PersistentFlags().StringVar(&opts.dir, "dir", defaultMigrationsDir(), "migrations directory")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := config.LoadDatabase()
			if err != nil {
				return err
			}
			if err := store.RunMigrations(db.URL, opts.dir); err != nil {
				return err
			}
			return printVersion(cmd, db.URL, opts.dir)
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.steps < 1 {
				return fmt.Errorf("--steps must be at least 1, got %d", opts.steps)
			}
			db, err := config.LoadDatabase()
			if err != nil {
				return err
			}
			if err := store.RollbackMigrations(db.URL, opts.dir, opts.steps); err != nil {
				return err
			}
			return printVersion(cmd, db.URL, opts.dir)
		},
	}
	down.Flags().IntVar(&opts.steps, "steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := config.LoadDatabase()
			if err != nil {
				return err
			}
			return printVersion(cmd, db.URL, opts.dir)
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func printVersion(cmd *cobra.Command, url, dir string) error {
	v, dirty, err := store.MigrationVersion(url, dir)
	if err != nil {
		return err
	}
	if dirty {
		printf(cmd, "schema version %d (dirty)\n", v)
		return nil
	}
	printf(cmd, "schema version %d\n", v)
	return nil
}
