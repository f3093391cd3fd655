package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/1broseidon/dashspace/internal/errors"
	"github.com/1broseidon/dashspace/internal/platform"
	"github.com/1broseidon/dashspace/internal/service"
	"github.com/1broseidon/dashspace/internal/spaces"
	"github.com/1broseidon/dashspace/internal/tui"
)

func newWindowCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Query, move and resolve individual windows",
		Args:  exactArgs(0, "dashspace window <command>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newWindowSpaceCmd(e),
		newWindowMoveCmd(e),
		newWindowResolveCmd(e),
		newWindowPartitionCmd(e),
	)
	return cmd
}

type windowSpaceJSON struct {
	Window uint32 `json:"window"`
	Space  uint64 `json:"space,omitempty"`
	Exists bool   `json:"exists"`
}

func newWindowSpaceCmd(e *env) *cobra.Command {
	var focused bool

	cmd := &cobra.Command{
		Use:   "space <window-id> | --focused",
		Short: "Show the Space a window is on",
		RunE: func(cmd *cobra.Command, args []string) error {
			if focused == (len(args) == 1) || len(args) > 1 {
				return errs.New(errs.EUsage, "usage: dashspace window space <window-id> | --focused")
			}

			svc, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			var (
				window platform.WindowID
				space  platform.SpaceID
				ok     bool
			)
			if focused {
				window, space, ok, err = focusedSpace(svc)
			} else {
				window, err = platform.ParseWindowID(args[0])
				if err != nil {
					return errs.Wrap(errs.EUsage, "invalid window id", err)
				}
				space, ok, err = svc.Spaces.WindowSpace(window)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if e.opts.JSON {
				if err := writeJSON(out, windowSpaceJSON{Window: uint32(window), Space: uint64(space), Exists: ok}); err != nil {
					return err
				}
			}
			if !ok {
				return errs.NewWithDetails(errs.EWindowVanished,
					fmt.Sprintf("window %d no longer exists", window),
					map[string]string{"window": window.String()})
			}
			if !e.opts.JSON {
				_, err = fmt.Fprintf(out, "window %d: space %d\n", window, space)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&focused, "focused", false, "use the focused window (requires accessibility access)")

	return cmd
}

func focusedSpace(svc *service.Service) (platform.WindowID, platform.SpaceID, bool, error) {
	el, release, err := svc.Backend.ElementSource().FocusedWindow()
	if err != nil {
		return 0, 0, false, sourceError(svc, "failed to get focused window", err)
	}
	defer release()
	return svc.SpaceOfElement(el)
}

type moveJSON struct {
	Window   uint32 `json:"window"`
	Target   uint64 `json:"target"`
	From     uint64 `json:"from,omitempty"`
	Final    uint64 `json:"final,omitempty"`
	Outcome  string `json:"outcome"`
	Attempts int    `json:"attempts"`
	Reason   string `json:"reason,omitempty"`
}

func newWindowMoveCmd(e *env) *cobra.Command {
	var (
		noVerify bool
		focused  bool
		pick     bool
	)

	cmd := &cobra.Command{
		Use:   "move <window-id> <space> | --focused <space> | --pick",
		Short: "Move a window to another Space",
		Long: `Move a window to another Space.

The move is verified by re-reading the window's Space. An unconfirmed move
(the window server ignored the request) exits with status 3. --no-verify
only sends the request.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			want := 2
			switch {
			case pick:
				want = 0
			case focused:
				want = 1
			}
			if len(args) != want || (pick && focused) {
				return errs.New(errs.EUsage, "usage: dashspace window move <window-id> <space> | --focused <space> | --pick")
			}

			svc, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			var (
				window platform.WindowID
				target platform.SpaceID
			)
			switch {
			case pick:
				window, target, err = tui.PickMove(svc)
				if err != nil {
					return err
				}
			case focused:
				target, err = platform.ParseSpaceID(args[0])
				if err != nil {
					return errs.Wrap(errs.EUsage, "invalid space id", err)
				}
				el, release, err := svc.Backend.ElementSource().FocusedWindow()
				if err != nil {
					return sourceError(svc, "failed to get focused window", err)
				}
				window, err = svc.Resolver.Resolve(el)
				release()
				if err != nil {
					return err
				}
			default:
				window, err = platform.ParseWindowID(args[0])
				if err != nil {
					return errs.Wrap(errs.EUsage, "invalid window id", err)
				}
				target, err = platform.ParseSpaceID(args[1])
				if err != nil {
					return errs.Wrap(errs.EUsage, "invalid space id", err)
				}
			}

			out := cmd.OutOrStdout()
			if noVerify {
				requested, err := svc.Spaces.RequestMove(window, target)
				if err != nil {
					return err
				}
				res := spaces.MoveResult{Window: window, Target: target, Outcome: spaces.OutcomeRequested}
				if !requested {
					res.Outcome = spaces.OutcomeSkipped
					res.Reason = "window vanished"
				}
				return writeMove(out, e.opts.JSON, res)
			}

			ctx, cancel := signalContext(context.Background())
			defer cancel()

			res, err := svc.Spaces.MoveWindow(ctx, window, target)
			if err != nil {
				return err
			}
			if err := writeMove(out, e.opts.JSON, res); err != nil {
				return err
			}
			return res.Err()
		},
	}

	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "send the move request without verifying it")
	cmd.Flags().BoolVar(&focused, "focused", false, "move the focused window (requires accessibility access)")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose the window and target Space interactively")

	return cmd
}

func writeMove(out io.Writer, asJSON bool, res spaces.MoveResult) error {
	if asJSON {
		return writeJSON(out, moveJSON{
			Window:   uint32(res.Window),
			Target:   uint64(res.Target),
			From:     uint64(res.From),
			Final:    uint64(res.Final),
			Outcome:  string(res.Outcome),
			Attempts: res.Attempts,
			Reason:   res.Reason,
		})
	}

	ok := res.Outcome != spaces.OutcomeUnconfirmed && res.Outcome != spaces.OutcomeSkipped
	line := fmt.Sprintf("window %d -> space %d: %s", res.Window, res.Target, status(out, ok, string(res.Outcome)))
	if res.Reason != "" {
		line += " " + muted(out, "("+res.Reason+")")
	}
	_, err := fmt.Fprintln(out, line)
	return err
}

type resolveJSON struct {
	Index  int    `json:"index"`
	Window uint32 `json:"window,omitempty"`
	Listed bool   `json:"listed"`
	Error  string `json:"error,omitempty"`
	// Retryable is true when a fresh element may resolve.
	Retryable bool `json:"retryable,omitempty"`
}

func newWindowResolveCmd(e *env) *cobra.Command {
	var (
		pid     int
		focused bool
	)

	cmd := &cobra.Command{
		Use:   "resolve --pid <pid> | --focused",
		Short: "Resolve accessibility window elements to window ids",
		Long: `Resolve the accessibility window elements of an application (or the focused
window) to window server ids, and check each id against the window list.`,
		Args: exactArgs(0, "dashspace window resolve --pid <pid> | --focused"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (pid > 0) == focused {
				return errs.New(errs.EUsage, "usage: dashspace window resolve --pid <pid> | --focused")
			}

			svc, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			var (
				elements []platform.Element
				release  func()
			)
			if focused {
				var el platform.Element
				el, release, err = svc.Backend.ElementSource().FocusedWindow()
				elements = []platform.Element{el}
			} else {
				elements, release, err = svc.Backend.ElementSource().ApplicationWindows(pid)
			}
			if err != nil {
				return sourceError(svc, "failed to read accessibility windows", err)
			}
			defer release()

			results, err := svc.Resolver.ResolveAll(elements)
			if err != nil {
				return err
			}

			listed := map[platform.WindowID]bool{}
			if windows, err := svc.Backend.ListWindows(); err == nil {
				for _, w := range windows {
					listed[w.ID] = true
				}
			}

			rows := make([]resolveJSON, 0, len(results))
			for i, r := range results {
				row := resolveJSON{Index: i, Window: uint32(r.Window), Listed: listed[r.Window]}
				if r.Err != nil {
					row.Error = string(errs.GetCode(r.Err))
					row.Retryable = errs.Retryable(r.Err)
				}
				rows = append(rows, row)
			}

			out := cmd.OutOrStdout()
			if e.opts.JSON {
				return writeJSON(out, rows)
			}
			lines := make([][]string, 0, len(rows))
			for _, r := range rows {
				window := "-"
				if r.Window != 0 {
					window = fmt.Sprintf("%d", r.Window)
				}
				lines = append(lines, []string{fmt.Sprintf("%d", r.Index), window, yesNo(r.Listed), r.Error})
			}
			return writeTable(out, []string{"ELEMENT", "WINDOW", "LISTED", "ERROR"}, lines)
		},
	}

	cmd.Flags().IntVar(&pid, "pid", 0, "application process id")
	cmd.Flags().BoolVar(&focused, "focused", false, "resolve the focused window")

	return cmd
}

type partitionJSON struct {
	Current []uint32 `json:"current"`
	Other   []uint32 `json:"other"`
}

func newWindowPartitionCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partition [window-id...]",
		Short: "Split windows into those on the current Space and the rest",
		Long: `Split windows into those on a currently visible Space and those elsewhere.
With no ids every on-screen window is partitioned. Closed windows are dropped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]platform.WindowID, 0, len(args))
			for _, arg := range args {
				id, err := platform.ParseWindowID(arg)
				if err != nil {
					return errs.Wrap(errs.EUsage, "invalid window id", err)
				}
				ids = append(ids, id)
			}

			svc, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			if len(ids) == 0 {
				windows, err := svc.Backend.ListWindows()
				if err != nil {
					return errs.Wrap(errs.EWindowListFailed, "failed to list windows", err)
				}
				for _, w := range windows {
					ids = append(ids, w.ID)
				}
			}

			current, other, err := svc.Spaces.PartitionByCurrentSpace(ids)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if e.opts.JSON {
				return writeJSON(out, partitionJSON{Current: toUint32s(current), Other: toUint32s(other)})
			}
			if _, err := fmt.Fprintf(out, "current: %s\n", joinIDs(current)); err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "other:   %s\n", joinIDs(other))
			return err
		},
	}
	return cmd
}

func toUint32s(ids []platform.WindowID) []uint32 {
	out := make([]uint32, 0, len(ids))
	for _, id := range ids {
		out = append(out, uint32(id))
	}
	return out
}

func joinIDs(ids []platform.WindowID) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, " ")
}
