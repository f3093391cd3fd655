// Package mcp exposes Space queries and window moves as MCP tools over stdio.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/dashspace/internal/service"
)

const (
	ServerName    = "dashspace"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for Space queries and window moves.
type Server struct {
	mcpServer *mcpsdk.Server
	svc       *service.Service
}

// NewServer creates a new MCP server over svc.
func NewServer(svc *service.Service) *Server {
	s := &Server{svc: svc}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close releases server resources.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	return s.svc.Close()
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_spaces",
		Description: "List Space identifiers known to the window server. mask selects current (visible) Spaces, other Spaces, or all of them (default). Returns an empty list when Space support is unavailable.",
	}, s.handleListSpaces)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List on-screen windows with their owning application, title and Space, and whether they are on a currently visible Space.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_space",
		Description: "Return the Space that a window is on. exists is false when the window has closed.",
	}, s.handleWindowSpace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move a window to another Space and verify the move by re-reading the window's Space. The outcome is confirmed, unconfirmed (the window server ignored the request), skipped (the window closed), already (no move needed) or requested (verification disabled).",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "check_permissions",
		Description: "Report whether this process holds accessibility authorization. With prompt set, ask the system to show its authorization dialog.",
	}, s.handleCheckPermissions)
}
