package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/1broseidon/dashspace/internal/tui"
)

func newWatchCmd(e *env) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live view of Spaces and windows",
		Long: `Live view of Spaces, on-screen windows, the focused window and accessibility
authorization. Select a window and press 1-9 to move it to that Space.`,
		Args: exactArgs(0, "dashspace watch [--interval 1s]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			return tui.Watch(svc, interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", tui.DefaultRefreshInterval, "refresh interval")

	return cmd
}
