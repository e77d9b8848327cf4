// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Serves the workout tools over stdio until interrupted.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/harperreed/liftlog/internal/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.
The server communicates via stdin/stdout.

CONFIGURATION:

  {
    "mcpServers": {
      "liftlog": { "command": "liftlog", "args": ["mcp"] }
    }
  }

AVAILABLE TOOLS:

  parse_workout    Extract a workout from a chat message
  submit_workout   Save a list of structured exercises
  get_workouts     Summary, date, exercise, or progress queries

AVAILABLE RESOURCES:

  liftlog://summary   Workouts grouped by date for --user`,
	Annotations: map[string]string{completionKey: completionOptional},
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(service, userFlag)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("mcp server listening on stdio", zap.String("user_id", currentUser()))
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
