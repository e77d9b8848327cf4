// ABOUTME: CLI command for copying workouts between storage backends.
// ABOUTME: Reads everything from the configured backend and writes it to another.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/liftlog/internal/config"
	"github.com/harperreed/liftlog/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo     string
	migrateDryRun bool
	migrateForce  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy workouts to another storage backend",
	Long: `Copy every user's workouts from the configured backend to another one.

The source is the backend selected by LIFTLOG_BACKEND or config.json. The
destination is opened with the same data directory and Charm host.

IMPORTANT:

  - Workout ids are preserved, so rerunning replaces rather than duplicates
  - A destination that already holds workouts is refused unless --force
  - Run with --dry-run first to see what would be copied

USAGE:

  liftlog migrate --to sqlite --dry-run
  liftlog migrate --to sqlite

AFTER MIGRATION:

  Point liftlog at the new backend:
    export LIFTLOG_BACKEND=sqlite`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		to := strings.ToLower(migrateTo)
		if to == "" {
			return fmt.Errorf("--to is required (badger, sqlite, or charm)")
		}
		if to == cfg.GetBackend() {
			return fmt.Errorf("source and destination are both %s", to)
		}

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			workouts, err := repo.AllWorkouts(ctx)
			if err != nil {
				return fmt.Errorf("failed to read source: %w", err)
			}
			fmt.Printf("Would copy %d workouts from %s to %s\n", len(workouts), cfg.GetBackend(), to)
			return nil
		}

		dstCfg := *cfg
		dstCfg.Backend = to
		dst, err := dstCfg.OpenStorage(logger)
		if err != nil {
			return fmt.Errorf("failed to open destination: %w", err)
		}
		defer dst.Close()

		if !migrateForce {
			empty, err := storage.IsEmpty(ctx, dst)
			if err != nil {
				return fmt.Errorf("failed to inspect destination: %w", err)
			}
			if !empty {
				return fmt.Errorf("destination %s already holds workouts (use --force to merge)", to)
			}
		}

		// Push once at the end instead of after every batch.
		cs, toCharm := dst.(*storage.CharmStore)
		if toCharm {
			cs.SetAutoSync(false)
		}

		summary, err := storage.MigrateData(ctx, repo, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		if toCharm {
			if err := cs.Sync(); err != nil {
				color.Yellow("⚠ Sync after migration failed: %v", err)
			}
		}

		color.Green("✓ Copied %d workouts for %d users from %s to %s",
			summary.Workouts, summary.Users, cfg.GetBackend(), to)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend ("+config.BackendBadger+", "+config.BackendSQLite+", or "+config.BackendCharm+")")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "copy into a destination that already has workouts")
	rootCmd.AddCommand(migrateCmd)
}
