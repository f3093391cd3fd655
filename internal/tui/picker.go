package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	errs "github.com/1broseidon/dashspace/internal/errors"
	"github.com/1broseidon/dashspace/internal/platform"
	"github.com/1broseidon/dashspace/internal/service"
)

// PickMove asks the user for a window and a target Space.
func PickMove(svc *service.Service) (platform.WindowID, platform.SpaceID, error) {
	snap, err := loadSnapshot(svc)
	if err != nil {
		return 0, 0, err
	}
	if len(snap.windows) == 0 {
		return 0, 0, errs.New(errs.EUsage, "no windows to move")
	}
	if len(snap.spaces) == 0 {
		return 0, 0, errs.New(errs.EUnsupported, "no spaces available")
	}

	window := snap.focused
	if window == 0 {
		window = snap.windows[0].ID
	}
	var target platform.SpaceID

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[platform.WindowID]().
				Title("Window").
				Options(windowOptions(snap)...).
				Value(&window),
			huh.NewSelect[platform.SpaceID]().
				Title("Move to space").
				Options(spaceOptions(snap)...).
				Value(&target),
		),
	)
	if err := form.Run(); err != nil {
		return 0, 0, err
	}
	return window, target, nil
}

func windowOptions(snap snapshot) []huh.Option[platform.WindowID] {
	opts := make([]huh.Option[platform.WindowID], 0, len(snap.windows))
	for _, w := range snap.windows {
		label := fmt.Sprintf("%d  %s", w.ID, w.AppID)
		if w.Title != "" {
			label += ": " + w.Title
		}
		if w.Space != 0 {
			label += fmt.Sprintf("  (space %d)", w.Space)
		}
		opts = append(opts, huh.NewOption(label, w.ID))
	}
	return opts
}

func spaceOptions(snap snapshot) []huh.Option[platform.SpaceID] {
	opts := make([]huh.Option[platform.SpaceID], 0, len(snap.spaces))
	for _, id := range snap.spaces {
		label := id.String()
		if snap.current[id] {
			label += " (current)"
		}
		opts = append(opts, huh.NewOption(label, id))
	}
	return opts
}
