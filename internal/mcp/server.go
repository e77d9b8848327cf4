// ABOUTME: MCP server setup for the liftlog workout service.
// ABOUTME: Wraps the MCP server around the parse, submit, and query operations.
package mcp

import (
	"context"

	"github.com/harperreed/liftlog/internal/workout"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with workout service access.
type Server struct {
	mcpServer *mcp.Server
	service   *workout.Service
	// userID scopes the summary resource.
	userID string
}

// NewServer creates a new MCP server over the given service. An empty
// userID reads the anonymous user's summary.
func NewServer(service *workout.Service, userID string) (*Server, error) {
	if userID == "" {
		userID = workout.AnonymousUser
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "liftlog",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		service:   service,
		userID:    userID,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
