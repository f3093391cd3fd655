// Package spaces queries and reassigns the Space membership of windows.
//
// The window server is the only source of truth: Space membership can change
// at any time (a user dragging a window to another desktop), so the Manager
// keeps no cache and every call reads live state. The platform's move call
// reports nothing, so moves are a request followed by verification reads.
package spaces

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	errs "github.com/1broseidon/dashspace/internal/errors"
	"github.com/1broseidon/dashspace/internal/journal"
	"github.com/1broseidon/dashspace/internal/platform"
)

const (
	DefaultVerifyAttempts = 5
	DefaultVerifyInterval = 50 * time.Millisecond
)

// Options configures a Manager.
type Options struct {
	// Verify turns on the post-move verification reads in MoveWindow.
	Verify         bool
	VerifyAttempts int
	VerifyInterval time.Duration
	Logger         *slog.Logger
	Journal        *journal.Journal
}

// DefaultOptions returns verification on with the default attempt budget.
func DefaultOptions() Options {
	return Options{
		Verify:         true,
		VerifyAttempts: DefaultVerifyAttempts,
		VerifyInterval: DefaultVerifyInterval,
	}
}

// Manager enumerates Spaces and queries or moves windows between them.
type Manager struct {
	backend platform.SpaceBackend
	windows platform.WindowLister
	conns   *ConnectionProvider
	opts    Options
	logger  *slog.Logger
	journal *journal.Journal

	// mu serializes window server access so no read can slip between a move
	// request and its verification.
	mu sync.Mutex

	sleep func(ctx context.Context, d time.Duration) error
}

// NewManager returns a Manager over backend. windows is the independent
// window-list collaborator used to confirm a window exists before its Space
// is trusted.
func NewManager(backend platform.SpaceBackend, windows platform.WindowLister, opts Options) *Manager {
	if opts.VerifyAttempts <= 0 {
		opts.VerifyAttempts = DefaultVerifyAttempts
	}
	if opts.VerifyInterval < 0 {
		opts.VerifyInterval = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		backend: backend,
		windows: windows,
		conns:   ProcessConnections(backend),
		opts:    opts,
		logger:  logger,
		journal: opts.Journal,
		sleep:   sleepContext,
	}
}

// Capability reports whether the underlying backend can serve Space calls.
func (m *Manager) Capability() platform.Capability {
	return m.backend.Capability()
}

// EnumerateSpaces returns the Spaces selected by mask, in window server
// order. Each call is a fresh snapshot. A mask containing MaskAll is widened
// to include the current and other Spaces, so the All result is always a
// superset of the Current and Other results.
func (m *Manager) EnumerateSpaces(mask platform.SpaceMask) ([]platform.SpaceID, error) {
	if err := m.supported(); err != nil {
		return nil, err
	}
	if mask == 0 {
		return []platform.SpaceID{}, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enumerateLocked(mask), nil
}

func (m *Manager) enumerateLocked(mask platform.SpaceMask) []platform.SpaceID {
	if mask.Has(platform.MaskAll) {
		mask |= platform.MaskCurrent | platform.MaskOther
	}
	raw := m.backend.CopySpaces(m.conns.Connection(), mask)

	out := make([]platform.SpaceID, 0, len(raw))
	seen := make(map[platform.SpaceID]struct{}, len(raw))
	for _, id := range raw {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// WindowSpace returns the Space window occupies. ok is false when the window
// no longer exists (or the window server has no Space for it); that race is
// absorbed here rather than reported as an error.
func (m *Manager) WindowSpace(window platform.WindowID) (space platform.SpaceID, ok bool, err error) {
	if err := m.supported(); err != nil {
		return 0, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	live, err := m.liveWindowsLocked()
	if err != nil {
		return 0, false, err
	}
	space, _ = m.windowSpaceLocked(window, live)
	return space, space != 0, nil
}

// WindowSpaces returns the Space of each window in one existence check.
// Windows that no longer exist or have no Space are left out of the map.
func (m *Manager) WindowSpaces(windows []platform.WindowID) (map[platform.WindowID]platform.SpaceID, error) {
	if err := m.supported(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	live, err := m.liveWindowsLocked()
	if err != nil {
		return nil, err
	}
	out := make(map[platform.WindowID]platform.SpaceID, len(windows))
	for _, w := range windows {
		if space, _ := m.windowSpaceLocked(w, live); space != 0 {
			out[w] = space
		}
	}
	return out, nil
}

// windowSpaceLocked returns the window's Space and whether the window is in
// the live set. A live window may still have no Space (sticky windows).
func (m *Manager) windowSpaceLocked(window platform.WindowID, live map[platform.WindowID]struct{}) (platform.SpaceID, bool) {
	if _, exists := live[window]; !exists {
		m.logger.Debug("window vanished before space query", "window", window)
		return 0, false
	}
	space := m.backend.WindowSpace(m.conns.Connection(), window)
	if space == 0 {
		m.logger.Debug("window server has no space for window", "window", window)
	}
	return space, true
}

func (m *Manager) liveWindowsLocked() (map[platform.WindowID]struct{}, error) {
	windows, err := m.windows.ListWindows()
	if err != nil {
		return nil, errs.Wrap(errs.EWindowListFailed, "failed to list windows", err)
	}
	live := make(map[platform.WindowID]struct{}, len(windows))
	for _, w := range windows {
		live[w.ID] = struct{}{}
	}
	return live, nil
}

// RequestMove asks the window server to move window to target without
// verifying the result. requested is false when the window no longer exists
// and the request was skipped.
func (m *Manager) RequestMove(window platform.WindowID, target platform.SpaceID) (requested bool, err error) {
	if err := m.supported(); err != nil {
		return false, err
	}
	if target == 0 {
		return false, errs.New(errs.EUsage, "target space must be non-zero")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	live, err := m.liveWindowsLocked()
	if err != nil {
		return false, err
	}
	if _, exists := live[window]; !exists {
		m.logger.Debug("window vanished before move request", "window", window, "target", target)
		m.journal.Record(journal.ActionMoveSkipped, uint32(window), map[string]interface{}{
			"target": uint64(target),
			"reason": "window vanished",
		})
		return false, nil
	}
	m.requestLocked(window, target)
	return true, nil
}

func (m *Manager) requestLocked(window platform.WindowID, target platform.SpaceID) {
	m.backend.MoveWindowToSpace(m.conns.Connection(), window, target)
	m.logger.Debug("move requested", "window", window, "target", target)
	m.journal.Record(journal.ActionMoveRequest, uint32(window), map[string]interface{}{
		"target": uint64(target),
	})
}

// MoveWindow requests the move and, when verification is on, re-reads the
// window's Space until it equals target or the attempt budget runs out.
// An unconfirmed move is not an error; inspect the result or call
// MoveResult.Err to turn it into one. Cancelling ctx stops verification.
func (m *Manager) MoveWindow(ctx context.Context, window platform.WindowID, target platform.SpaceID) (MoveResult, error) {
	res := MoveResult{Window: window, Target: target}
	if err := m.supported(); err != nil {
		return res, err
	}
	if target == 0 {
		return res, errs.New(errs.EUsage, "target space must be non-zero")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	live, err := m.liveWindowsLocked()
	if err != nil {
		return res, err
	}
	from, exists := m.windowSpaceLocked(window, live)
	if !exists || from == 0 {
		res.Outcome = OutcomeSkipped
		res.Reason = "window vanished"
		if exists {
			res.Reason = "window has no space"
		}
		m.finish(res)
		return res, nil
	}
	res.From = from
	res.Final = from
	if from == target {
		res.Outcome = OutcomeAlready
		m.finish(res)
		return res, nil
	}

	m.requestLocked(window, target)
	if !m.opts.Verify {
		res.Outcome = OutcomeRequested
		m.finish(res)
		return res, nil
	}

	for attempt := 1; attempt <= m.opts.VerifyAttempts; attempt++ {
		if err := m.sleep(ctx, m.opts.VerifyInterval); err != nil {
			res.Outcome = OutcomeUnconfirmed
			res.Reason = "verification cancelled"
			m.finish(res)
			return res, err
		}
		res.Attempts = attempt

		live, err := m.liveWindowsLocked()
		if err != nil {
			res.Outcome = OutcomeUnconfirmed
			res.Reason = "window list unavailable"
			m.finish(res)
			return res, err
		}
		got, exists := m.windowSpaceLocked(window, live)
		if !exists {
			res.Outcome = OutcomeUnconfirmed
			res.Final = 0
			res.Reason = "window vanished after move request"
			m.finish(res)
			return res, nil
		}
		res.Final = got
		if got == target {
			res.Outcome = OutcomeConfirmed
			m.finish(res)
			return res, nil
		}
	}

	res.Outcome = OutcomeUnconfirmed
	res.Reason = "space did not change"
	if !m.spaceExistsLocked(target) {
		res.Reason = "target space vanished"
	}
	m.finish(res)
	return res, nil
}

func (m *Manager) spaceExistsLocked(space platform.SpaceID) bool {
	for _, s := range m.enumerateLocked(platform.MaskAll) {
		if s == space {
			return true
		}
	}
	return false
}

// PartitionByCurrentSpace splits windows into those on the current Space
// and those elsewhere. Windows that no longer exist are dropped.
func (m *Manager) PartitionByCurrentSpace(windows []platform.WindowID) (current, other []platform.WindowID, err error) {
	if err := m.supported(); err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	onCurrent := make(map[platform.SpaceID]struct{})
	for _, s := range m.enumerateLocked(platform.MaskCurrent) {
		onCurrent[s] = struct{}{}
	}
	live, err := m.liveWindowsLocked()
	if err != nil {
		return nil, nil, err
	}
	for _, w := range windows {
		space, _ := m.windowSpaceLocked(w, live)
		if space == 0 {
			continue
		}
		if _, yes := onCurrent[space]; yes {
			current = append(current, w)
		} else {
			other = append(other, w)
		}
	}
	return current, other, nil
}

func (m *Manager) finish(res MoveResult) {
	details := map[string]interface{}{
		"target":  uint64(res.Target),
		"from":    uint64(res.From),
		"final":   uint64(res.Final),
		"attempt": res.Attempts,
	}
	if res.Reason != "" {
		details["reason"] = res.Reason
	}

	switch res.Outcome {
	case OutcomeConfirmed:
		m.logger.Info("window moved", "window", res.Window, "from", res.From, "target", res.Target, "attempts", res.Attempts)
		m.journal.Record(journal.ActionMoveConfirmed, uint32(res.Window), details)
	case OutcomeUnconfirmed:
		m.logger.Warn("window move unconfirmed", "window", res.Window, "target", res.Target, "final", res.Final, "reason", res.Reason)
		m.journal.Record(journal.ActionMoveUnconfirmed, uint32(res.Window), details)
	case OutcomeSkipped:
		m.logger.Debug("window move skipped", "window", res.Window, "target", res.Target, "reason", res.Reason)
		m.journal.Record(journal.ActionMoveSkipped, uint32(res.Window), details)
	case OutcomeAlready:
		m.logger.Debug("window already on target space", "window", res.Window, "target", res.Target)
		m.journal.Record(journal.ActionMoveNoop, uint32(res.Window), details)
	}
}

func (m *Manager) supported() error {
	if m.backend.Capability() != platform.Available {
		return errs.New(errs.EUnsupported, "space management is not available on this platform")
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Outcome classifies the result of MoveWindow.
type Outcome string

const (
	OutcomeConfirmed   Outcome = "confirmed"   // re-query returned the target
	OutcomeUnconfirmed Outcome = "unconfirmed" // no observable effect
	OutcomeSkipped     Outcome = "skipped"     // window vanished before the request
	OutcomeAlready     Outcome = "already"     // window was already on the target
	OutcomeRequested   Outcome = "requested"   // verification disabled
)

// MoveResult describes what MoveWindow observed.
type MoveResult struct {
	Window   platform.WindowID
	Target   platform.SpaceID
	From     platform.SpaceID
	Final    platform.SpaceID
	Outcome  Outcome
	Attempts int
	Reason   string
}

// Err returns a soft E_MOVE_UNCONFIRMED error for unconfirmed moves and nil
// for every other outcome.
func (r MoveResult) Err() error {
	if r.Outcome != OutcomeUnconfirmed {
		return nil
	}
	return errs.NewWithDetails(errs.EMoveUnconfirmed,
		fmt.Sprintf("move of window %d to space %d was not confirmed: %s", r.Window, r.Target, r.Reason),
		map[string]string{
			"window": r.Window.String(),
			"target": r.Target.String(),
			"final":  r.Final.String(),
		})
}
