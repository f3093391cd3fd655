package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/dashspace/internal/config"
	errs "github.com/1broseidon/dashspace/internal/errors"
)

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
		Args:  exactArgs(0, "dashspace config <command>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "print",
			Short: "Print the effective configuration",
			Args:  exactArgs(0, "dashspace config print"),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := e.loadConfig()
				if err != nil {
					return err
				}
				data, err := config.Marshal(res.Config)
				if err != nil {
					return errs.Wrap(errs.EInvalidConfig, "failed to render config", err)
				}
				out := cmd.OutOrStdout()
				if res.File == "" {
					fmt.Fprintln(out, "# defaults (no config file)")
				} else {
					fmt.Fprintf(out, "# %s\n", res.File)
				}
				_, err = out.Write(data)
				return err
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Validate the configuration file",
			Args:  exactArgs(0, "dashspace config validate"),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := e.loadConfig()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if res.File == "" {
					path, _ := e.configPath()
					_, err = fmt.Fprintf(out, "%s: no config file at %s, defaults apply\n", status(out, true, "ok"), path)
					return err
				}
				_, err = fmt.Fprintf(out, "%s: %s\n", status(out, true, "ok"), res.File)
				return err
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  exactArgs(0, "dashspace config path"),
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := e.configPath()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
				return err
			},
		},
	)
	return cmd
}
