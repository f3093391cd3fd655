package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/1broseidon/dashspace/internal/mcp"
)

func newMCPCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
		Args:  exactArgs(0, "dashspace mcp <command>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newMCPServeCmd(e))
	return cmd
}

func newMCPServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start the MCP server on stdio. Designed to be invoked by MCP clients.

Example:
  claude mcp add dashspace -- dashspace mcp serve`,
		Args: exactArgs(0, "dashspace mcp serve"),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.open(cmd)
			if err != nil {
				return err
			}
			server := mcp.NewServer(svc)
			defer server.Close()

			ctx, cancel := signalContext(context.Background())
			defer cancel()

			svc.Logger.Info("mcp server starting", "name", mcp.ServerName, "version", mcp.ServerVersion)
			return server.Run(ctx)
		},
	}
}
