package tui

import (
	"time"

	errs "github.com/1broseidon/dashspace/internal/errors"
	"github.com/1broseidon/dashspace/internal/platform"
	"github.com/1broseidon/dashspace/internal/service"
)

// snapshot is one refresh of window server state.
type snapshot struct {
	spaces  []platform.SpaceID
	current map[platform.SpaceID]bool
	windows []service.WindowState
	focused platform.WindowID
	trusted bool
	at      time.Time
}

// loadSnapshot reads Spaces, windows and accessibility state. Missing Space
// support is not an error; the snapshot just has no Spaces.
func loadSnapshot(svc *service.Service) (snapshot, error) {
	snap := snapshot{
		current: make(map[platform.SpaceID]bool),
		trusted: svc.Permissions.Trusted(),
		at:      time.Now(),
	}

	all, err := svc.Spaces.EnumerateSpaces(platform.MaskAll)
	if err != nil && errs.GetCode(err) != errs.EUnsupported {
		return snap, err
	}
	snap.spaces = all
	current, err := svc.Spaces.EnumerateSpaces(platform.MaskCurrent)
	if err != nil && errs.GetCode(err) != errs.EUnsupported {
		return snap, err
	}
	for _, id := range current {
		snap.current[id] = true
	}

	snap.windows, err = svc.Windows()
	if err != nil {
		return snap, err
	}

	if snap.trusted {
		snap.focused = focusedWindow(svc)
	}
	return snap, nil
}

func focusedWindow(svc *service.Service) platform.WindowID {
	el, release, err := svc.Backend.ElementSource().FocusedWindow()
	if err != nil {
		return 0
	}
	defer release()
	window, err := svc.Resolver.Resolve(el)
	if err != nil {
		return 0
	}
	return window
}
