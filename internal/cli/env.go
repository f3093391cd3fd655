package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/dashspace/internal/config"
	errs "github.com/1broseidon/dashspace/internal/errors"
	"github.com/1broseidon/dashspace/internal/permissions"
	"github.com/1broseidon/dashspace/internal/platform"
	"github.com/1broseidon/dashspace/internal/service"
)

func (e *env) configPath() (string, error) {
	if e.opts.ConfigPath != "" {
		return e.opts.ConfigPath, nil
	}
	path, err := config.DefaultConfigPath()
	if err != nil {
		return "", errs.Wrap(errs.EInvalidConfig, "failed to locate config", err)
	}
	return path, nil
}

func (e *env) loadConfig() (*config.LoadResult, error) {
	path, err := e.configPath()
	if err != nil {
		return nil, err
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, errs.Wrap(errs.EInvalidConfig, "invalid configuration", err)
	}
	if e.opts.LogLevel != "" {
		res.Config.LogLevel = e.opts.LogLevel
	}
	return res, nil
}

// open loads the configuration and wires the service. Callers must Close it.
func (e *env) open(cmd *cobra.Command) (*service.Service, error) {
	res, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := service.NewLogger(cmd.ErrOrStderr(), res.Config.LogLevel)
	if err != nil {
		return nil, errs.Wrap(errs.EUsage, "invalid log level", err)
	}
	if e.backend != nil {
		return service.NewWithBackend(e.backend, res.Config, logger)
	}
	return service.New(res.Config, logger)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// sourceError maps an element source failure to a coded error. An
// untrusted process sees API-disabled (or unrelated) failures from the
// element source, and both surface as E_PERMISSION_DENIED.
func sourceError(svc *service.Service, msg string, err error) error {
	if errors.Is(err, platform.ErrUnsupported) {
		return errs.Wrap(errs.EUnsupported, msg, err)
	}
	var serr *platform.StatusError
	if (errors.As(err, &serr) && serr.Status == platform.StatusAPIDisabled) || !svc.Permissions.Trusted() {
		return &errs.Error{
			Code:    errs.EPermissionDenied,
			Msg:     msg + ": accessibility access is not granted",
			Cause:   err,
			Details: map[string]string{"settings_url": permissions.SettingsURL},
		}
	}
	return errs.Wrap(errs.EResolutionFailed, msg, err)
}
