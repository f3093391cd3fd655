package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

type windowJSON struct {
	ID      uint32 `json:"id"`
	PID     int    `json:"pid,omitempty"`
	App     string `json:"app,omitempty"`
	Title   string `json:"title,omitempty"`
	Space   uint64 `json:"space,omitempty"`
	Current bool   `json:"current"`
}

func newWindowsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List on-screen windows and their Spaces",
		Args:  exactArgs(0, "dashspace windows"),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			windows, err := svc.Windows()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if e.opts.JSON {
				res := make([]windowJSON, 0, len(windows))
				for _, w := range windows {
					res = append(res, windowJSON{
						ID:      uint32(w.ID),
						PID:     w.PID,
						App:     w.AppID,
						Title:   w.Title,
						Space:   uint64(w.Space),
						Current: w.OnCurrent,
					})
				}
				return writeJSON(out, res)
			}

			rows := make([][]string, 0, len(windows))
			for _, w := range windows {
				space := "-"
				if w.Space != 0 {
					space = w.Space.String()
				}
				rows = append(rows, []string{
					w.ID.String(),
					strconv.Itoa(w.PID),
					w.AppID,
					space,
					yesNo(w.OnCurrent),
					w.Title,
				})
			}
			return writeTable(out, []string{"WINDOW", "PID", "APP", "SPACE", "CURRENT", "TITLE"}, rows)
		},
	}
	return cmd
}
