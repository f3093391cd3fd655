package cli

import (
	"github.com/spf13/cobra"

	errs "github.com/1broseidon/dashspace/internal/errors"
	"github.com/1broseidon/dashspace/internal/platform"
)

type spaceJSON struct {
	ID      uint64 `json:"id"`
	Current bool   `json:"current"`
}

type spacesJSON struct {
	Mask   string      `json:"mask"`
	Spaces []spaceJSON `json:"spaces"`
}

func newSpacesCmd(e *env) *cobra.Command {
	var mask string

	cmd := &cobra.Command{
		Use:   "spaces",
		Short: "List Spaces",
		Long: `List Space identifiers known to the window server.

--mask selects current (visible) Spaces, other Spaces, all Spaces, or a comma
separated combination such as current,other.`,
		Args: exactArgs(0, "dashspace spaces [--mask current|other|all]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := platform.ParseSpaceMask(mask)
			if err != nil {
				return errs.Wrap(errs.EUsage, "invalid --mask", err)
			}

			svc, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			ids, err := svc.Spaces.EnumerateSpaces(m)
			if err != nil {
				return err
			}
			current, err := svc.Spaces.EnumerateSpaces(platform.MaskCurrent)
			if err != nil {
				return err
			}
			visible := make(map[platform.SpaceID]bool, len(current))
			for _, id := range current {
				visible[id] = true
			}

			out := cmd.OutOrStdout()
			if e.opts.JSON {
				res := spacesJSON{Mask: m.String(), Spaces: make([]spaceJSON, 0, len(ids))}
				for _, id := range ids {
					res.Spaces = append(res.Spaces, spaceJSON{ID: uint64(id), Current: visible[id]})
				}
				return writeJSON(out, res)
			}

			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				rows = append(rows, []string{id.String(), yesNo(visible[id])})
			}
			return writeTable(out, []string{"SPACE", "CURRENT"}, rows)
		},
	}

	cmd.Flags().StringVar(&mask, "mask", "all", "which Spaces to list: current, other, all")

	return cmd
}
