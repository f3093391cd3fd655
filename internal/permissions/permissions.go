// Package permissions checks and watches the process's accessibility
// authorization.
package permissions

import (
	"context"
	"log/slog"
	"time"

	errs "github.com/1broseidon/dashspace/internal/errors"
	"github.com/1broseidon/dashspace/internal/platform"
)

// DefaultPollInterval matches how often the system settings toggle is
// worth re-reading.
const DefaultPollInterval = time.Second

// SettingsURL opens the Accessibility pane of System Settings.
const SettingsURL = "x-apple.systempreferences:com.apple.preference.security?Privacy_Accessibility"

// Event is a change in authorization.
type Event struct {
	Trusted bool
	At      time.Time
}

// Checker reads accessibility authorization from an element backend.
type Checker struct {
	backend  platform.ElementBackend
	interval time.Duration
	logger   *slog.Logger
}

// NewChecker returns a Checker polling every interval (DefaultPollInterval
// when interval <= 0).
func NewChecker(backend platform.ElementBackend, interval time.Duration, logger *slog.Logger) *Checker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Checker{backend: backend, interval: interval, logger: logger}
}

// Trusted reports the current authorization without prompting.
func (c *Checker) Trusted() bool {
	return c.backend.Capability() == platform.Available && c.backend.ProcessTrusted(false)
}

// Require returns E_PERMISSION_DENIED unless the process is trusted. With
// prompt set the platform may show its authorization dialog first.
func (c *Checker) Require(prompt bool) error {
	if c.backend.Capability() != platform.Available {
		return errs.New(errs.EUnsupported, "accessibility is not available on this platform")
	}
	if c.backend.ProcessTrusted(prompt) {
		return nil
	}
	return errs.NewWithDetails(errs.EPermissionDenied,
		"accessibility access is not granted; enable it in System Settings > Privacy & Security > Accessibility",
		map[string]string{"settings_url": SettingsURL})
}

// WaitTrusted polls until the process is trusted or ctx is done.
func (c *Checker) WaitTrusted(ctx context.Context) error {
	if c.Trusted() {
		return nil
	}
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if c.Trusted() {
				c.logger.Info("accessibility access granted")
				return nil
			}
		}
	}
}

// Watch polls authorization and sends an Event on every change, including
// revocation. The first Event reports the initial state. The channel is
// closed when ctx is done.
func (c *Checker) Watch(ctx context.Context) <-chan Event {
	ch := make(chan Event, 1)
	go func() {
		defer close(ch)
		last := c.Trusted()
		if !send(ctx, ch, Event{Trusted: last, At: time.Now()}) {
			return
		}

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := c.Trusted()
				if now == last {
					continue
				}
				last = now
				if now {
					c.logger.Info("accessibility access granted")
				} else {
					c.logger.Warn("accessibility access revoked")
				}
				if !send(ctx, ch, Event{Trusted: now, At: time.Now()}) {
					return
				}
			}
		}
	}()
	return ch
}

func send(ctx context.Context, ch chan<- Event, ev Event) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
