package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	errs "github.com/1broseidon/dashspace/internal/errors"
	"github.com/1broseidon/dashspace/internal/permissions"
	"github.com/1broseidon/dashspace/internal/platform"
)

type permissionsJSON struct {
	Backend     string `json:"backend"`
	Capability  string `json:"capability"`
	Trusted     bool   `json:"trusted"`
	SettingsURL string `json:"settings_url,omitempty"`
}

func newPermissionsCmd(e *env) *cobra.Command {
	var (
		prompt  bool
		wait    bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Check accessibility authorization",
		Long: `Check whether this process holds accessibility authorization, which window
resolution requires. --prompt asks the system to show its authorization
dialog; --wait polls until access is granted (or --timeout elapses).`,
		Args: exactArgs(0, "dashspace permissions [--prompt] [--wait] [--timeout 1m]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			if prompt {
				_ = svc.Permissions.Require(true)
			}
			if wait && svc.Backend.Elements().Capability() == platform.Available {
				ctx, cancel := signalContext(context.Background())
				defer cancel()
				if timeout > 0 {
					ctx, cancel = context.WithTimeout(ctx, timeout)
					defer cancel()
				}
				if err := svc.Permissions.WaitTrusted(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
					return err
				}
			}

			checkErr := svc.Permissions.Require(false)
			capability := svc.Backend.Elements().Capability()
			res := permissionsJSON{
				Backend:    svc.Backend.Name(),
				Capability: capability.String(),
				Trusted:    checkErr == nil,
			}
			if errs.GetCode(checkErr) == errs.EPermissionDenied {
				res.SettingsURL = permissions.SettingsURL
			}

			out := cmd.OutOrStdout()
			if e.opts.JSON {
				if err := writeJSON(out, res); err != nil {
					return err
				}
				return checkErr
			}

			verdict := status(out, res.Trusted, "granted")
			switch {
			case capability != platform.Available:
				verdict = muted(out, "unavailable")
			case !res.Trusted:
				verdict = status(out, false, "not granted")
			}
			if _, err := fmt.Fprintf(out, "backend: %s\naccessibility: %s\n", res.Backend, verdict); err != nil {
				return err
			}
			return checkErr
		},
	}

	cmd.Flags().BoolVar(&prompt, "prompt", false, "show the system authorization dialog")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait until access is granted")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up waiting after this long (0 waits forever)")

	return cmd
}
