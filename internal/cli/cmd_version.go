package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/dashspace/internal/mcp"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print dashspace version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dashspace %s\n", mcp.ServerVersion)
		},
	}
}
