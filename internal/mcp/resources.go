// ABOUTME: MCP resource implementations for liftlog.
// ABOUTME: Provides liftlog://summary, the workout history grouped by date.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const summaryURI = "liftlog://summary"

func (s *Server) registerResources() {
	// liftlog://summary - every saved workout grouped by date, newest first
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Workout Summary",
		Description: "Saved workouts grouped by date, newest first",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// Resource handlers

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	summary, err := s.service.Summary(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize workouts: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      summaryURI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
