// Package axwindow maps accessibility elements to window server identifiers.
package axwindow

import (
	"fmt"
	"log/slog"

	errs "github.com/1broseidon/dashspace/internal/errors"
	"github.com/1broseidon/dashspace/internal/platform"
)

// Resolver resolves borrowed accessibility elements to window identifiers.
// It never retains or releases the elements it is given.
type Resolver struct {
	backend platform.ElementBackend
	logger  *slog.Logger
}

// NewResolver returns a Resolver backed by backend. A nil logger discards.
func NewResolver(backend platform.ElementBackend, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{backend: backend, logger: logger}
}

// Resolve returns the window behind element. Failures carry one of
// E_PERMISSION_DENIED, E_INVALID_ELEMENT, E_NOT_A_WINDOW,
// E_RESOLUTION_FAILED or E_UNSUPPORTED.
func (r *Resolver) Resolve(element platform.Element) (platform.WindowID, error) {
	if r.backend.Capability() != platform.Available {
		return 0, errs.New(errs.EUnsupported, "accessibility element resolution is not available on this platform")
	}
	if element.IsZero() {
		return 0, errs.New(errs.EInvalidElement, "element is empty")
	}

	window, status := r.backend.WindowForElement(element)
	if status == platform.StatusSuccess && window != 0 {
		return window, nil
	}

	err := r.classify(status)
	r.logger.Debug("element resolution failed", "status", int32(status), "code", errs.GetCode(err))
	return 0, err
}

func (r *Resolver) classify(status platform.Status) error {
	details := map[string]string{"status": fmt.Sprintf("%d", int32(status))}

	switch status {
	case platform.StatusAPIDisabled:
		return permissionDenied(details)
	case platform.StatusInvalidUIElement, platform.StatusCannotComplete:
		// CannotComplete is also what an untrusted process sees for some
		// elements, so trust decides between the two kinds.
		if status == platform.StatusCannotComplete && !r.backend.ProcessTrusted(false) {
			return permissionDenied(details)
		}
		return errs.NewWithDetails(errs.EInvalidElement, "accessibility element is no longer valid", details)
	case platform.StatusSuccess,
		platform.StatusFailure,
		platform.StatusIllegalArgument,
		platform.StatusAttributeUnsupported,
		platform.StatusNoValue:
		if !r.backend.ProcessTrusted(false) {
			return permissionDenied(details)
		}
		return errs.NewWithDetails(errs.ENotAWindow, "accessibility element is not backed by a window", details)
	default:
		if !r.backend.ProcessTrusted(false) {
			return permissionDenied(details)
		}
		return errs.NewWithDetails(errs.EResolutionFailed,
			fmt.Sprintf("accessibility status %d", int32(status)), details)
	}
}

func permissionDenied(details map[string]string) error {
	return errs.NewWithDetails(errs.EPermissionDenied,
		"accessibility access is not granted; enable it in System Settings > Privacy & Security > Accessibility",
		details)
}

// Result is the outcome of resolving one element of a batch.
type Result struct {
	Element platform.Element
	Window  platform.WindowID
	Err     error
}

// ResolveAll resolves each element independently. A permission failure
// aborts the batch because every later element would fail the same way.
func (r *Resolver) ResolveAll(elements []platform.Element) ([]Result, error) {
	results := make([]Result, 0, len(elements))
	for _, el := range elements {
		window, err := r.Resolve(el)
		if errs.UserVisible(err) {
			return results, err
		}
		results = append(results, Result{Element: el, Window: window, Err: err})
	}
	return results, nil
}
