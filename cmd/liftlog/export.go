// ABOUTME: CLI commands for exporting and importing workout data.
// ABOUTME: Supports JSON, YAML, and Markdown export and JSON import.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/liftlog/internal/models"
	"github.com/harperreed/liftlog/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput   string
	exportSince    string
	exportAllUsers bool
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export workout data",
	Long: `Export workout data in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export grouped by user (human-readable)
  markdown   Markdown tables per day (for sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include workouts on or after this date (YYYY-MM-DD)
  --all-users    Export every user instead of --user

EXAMPLES:

  liftlog export json -o backup.json
  liftlog export yaml --all-users
  liftlog export markdown --since 2025-01-01`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := storage.ExportFilter{Since: exportSince}
		if !exportAllUsers {
			filter.UserID = currentUser()
		}
		if exportSince != "" {
			if _, err := time.Parse(models.DateLayout, exportSince); err != nil {
				return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
			}
		}

		exportData, err := storage.GetAllData(context.Background(), repo, filter)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		var data []byte
		switch format := args[0]; format {
		case "json":
			data, err = storage.ExportJSON(exportData)
		case "yaml":
			data, err = storage.ExportYAML(exportData)
		case "markdown":
			data = []byte(storage.ExportMarkdown(exportData))
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported %d workouts to %s", len(exportData.Workouts), exportOutput)
			return nil
		}
		fmt.Println(string(data))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import workouts from a JSON export",
	Long: `Import workouts from a JSON file written by 'liftlog export json'.

Workouts keep their original ids and users, so importing the same file
twice replaces rather than duplicates.

EXAMPLES:

  liftlog import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		n, err := storage.ImportJSON(context.Background(), repo, data)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported %d workouts from %s", n, filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include workouts since date (YYYY-MM-DD)")
	exportCmd.Flags().BoolVar(&exportAllUsers, "all-users", false, "export every user")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
