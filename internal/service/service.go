// Package service wires the platform backend, identity resolver, Space
// manager, permission checker and journal from one configuration.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/1broseidon/dashspace/internal/axwindow"
	"github.com/1broseidon/dashspace/internal/config"
	errs "github.com/1broseidon/dashspace/internal/errors"
	"github.com/1broseidon/dashspace/internal/journal"
	"github.com/1broseidon/dashspace/internal/permissions"
	"github.com/1broseidon/dashspace/internal/platform"
	"github.com/1broseidon/dashspace/internal/spaces"
)

// Service holds the wired subsystem.
type Service struct {
	Backend     platform.Backend
	Spaces      *spaces.Manager
	Resolver    *axwindow.Resolver
	Permissions *permissions.Checker
	Journal     *journal.Journal
	Logger      *slog.Logger
}

// New opens the backend named by cfg.Backend and wires the subsystem.
func New(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	backend, err := platform.Open(cfg.Backend)
	if err != nil {
		return nil, errs.Wrap(errs.EInvalidConfig, "failed to open backend", err)
	}
	return NewWithBackend(backend, cfg, logger)
}

// NewWithBackend wires the subsystem over an already opened backend.
func NewWithBackend(backend platform.Backend, cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("backend", backend.Name())

	jcfg := cfg.GetJournalConfig()
	j, err := journal.Open(journal.Config{
		Enabled:   jcfg.Enabled,
		Level:     journal.ParseLogLevel(jcfg.Level),
		FilePath:  jcfg.File,
		MaxSizeMB: jcfg.MaxSizeMB,
		MaxFiles:  jcfg.MaxFiles,
	})
	if err != nil {
		logger.Warn("move journal disabled", "error", err)
		j = nil
	}

	mgr := spaces.NewManager(backend, backend, spaces.Options{
		Verify:         cfg.Move.GetVerify(),
		VerifyAttempts: cfg.Move.VerifyAttempts,
		VerifyInterval: cfg.Move.VerifyInterval.Std(),
		Logger:         logger.With("component", "spaces"),
		Journal:        j,
	})

	if backend.Capability() != platform.Available {
		logger.Info("window server integration unavailable; operations degrade to no-ops")
	}

	return &Service{
		Backend:     backend,
		Spaces:      mgr,
		Resolver:    axwindow.NewResolver(backend.Elements(), logger.With("component", "axwindow")),
		Permissions: permissions.NewChecker(backend.Elements(), cfg.Permissions.PollInterval.Std(), logger.With("component", "permissions")),
		Journal:     j,
		Logger:      logger,
	}, nil
}

// Close releases the journal. The window server connection lives for the
// rest of the process.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}
	return s.Journal.Close()
}

// SpaceOfElement resolves element and returns the Space of its window. ok is
// false when the window vanished between resolution and the query.
func (s *Service) SpaceOfElement(element platform.Element) (platform.WindowID, platform.SpaceID, bool, error) {
	window, err := s.Resolver.Resolve(element)
	if err != nil {
		return 0, 0, false, err
	}
	space, ok, err := s.Spaces.WindowSpace(window)
	return window, space, ok, err
}

// MoveElement resolves element and moves its window to target.
func (s *Service) MoveElement(ctx context.Context, element platform.Element, target platform.SpaceID) (spaces.MoveResult, error) {
	window, err := s.Resolver.Resolve(element)
	if err != nil {
		return spaces.MoveResult{Target: target}, err
	}
	return s.Spaces.MoveWindow(ctx, window, target)
}

// WindowState is a window plus the Space it was on when listed.
type WindowState struct {
	platform.Window
	Space platform.SpaceID
	// OnCurrent is true when Space is one of the currently visible Spaces.
	OnCurrent bool
}

// Windows lists on-screen windows with their Spaces. Windows that close
// while the list is being built are dropped. Without Space support every
// window is returned with a zero Space.
func (s *Service) Windows() ([]WindowState, error) {
	windows, err := s.Backend.ListWindows()
	if err != nil {
		return nil, errs.Wrap(errs.EWindowListFailed, "failed to list windows", err)
	}

	out := make([]WindowState, 0, len(windows))
	if s.Spaces.Capability() != platform.Available {
		for _, w := range windows {
			out = append(out, WindowState{Window: w})
		}
		return out, nil
	}

	current, err := s.Spaces.EnumerateSpaces(platform.MaskCurrent)
	if err != nil {
		return nil, err
	}
	visible := make(map[platform.SpaceID]bool, len(current))
	for _, id := range current {
		visible[id] = true
	}

	ids := make([]platform.WindowID, len(windows))
	for i, w := range windows {
		ids[i] = w.ID
	}
	spaceOf, err := s.Spaces.WindowSpaces(ids)
	if err != nil {
		return nil, err
	}
	for _, w := range windows {
		space, ok := spaceOf[w.ID]
		if !ok {
			continue
		}
		out = append(out, WindowState{Window: w, Space: space, OnCurrent: visible[space]})
	}
	return out, nil
}

// NewLogger returns a text slog logger writing to w at level, which is one
// of debug, info, warning/warn, error.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
