// Package cli provides the Cobra command tree for dashspace.
package cli

import (
	"io"

	"github.com/spf13/cobra"

	errs "github.com/1broseidon/dashspace/internal/errors"
	"github.com/1broseidon/dashspace/internal/mcp"
	"github.com/1broseidon/dashspace/internal/platform"
)

// GlobalOpts holds global options parsed before subcommand dispatch.
type GlobalOpts struct {
	ConfigPath string
	LogLevel   string
	JSON       bool
}

// env is shared by every subcommand of one root command.
type env struct {
	opts GlobalOpts
	// backend replaces the configured backend when set.
	backend platform.Backend
}

// NewRootCmd creates the root cobra command for dashspace.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&env{})
}

func newRootCmd(e *env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dashspace",
		Short: "Resolve windows and move them between Spaces",
		Long: `dashspace - resolve windows and move them between Spaces

dashspace maps accessibility elements to window server ids, reports which
Space (virtual desktop) each window is on, and moves windows between Spaces,
verifying every move by re-reading the window's Space.`,
		Version:       mcp.ServerVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVar(&e.opts.ConfigPath, "config", "", "config file (default $DASHSPACE_CONFIG or ~/.config/dashspace/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&e.opts.LogLevel, "log-level", "", "diagnostic log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&e.opts.JSON, "json", false, "output as JSON")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errs.New(errs.EUsage, err.Error())
	})

	rootCmd.AddCommand(
		newSpacesCmd(e),
		newWindowsCmd(e),
		newWindowCmd(e),
		newPermissionsCmd(e),
		newMCPCmd(e),
		newConfigCmd(e),
		newWatchCmd(e),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command with the given output writers.
func Execute(stdout, stderr io.Writer) error {
	rootCmd := NewRootCmd()
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.Execute()
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return errs.New(errs.EUsage, "usage: "+usage)
		}
		return nil
	}
}
