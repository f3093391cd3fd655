package axwindow

import (
	"testing"

	errs "github.com/1broseidon/dashspace/internal/errors"
	"github.com/1broseidon/dashspace/internal/platform"
)

// stubElements answers every element with a fixed status.
type stubElements struct {
	window  platform.WindowID
	status  platform.Status
	trusted bool
}

func (s stubElements) Capability() platform.Capability { return platform.Available }

func (s stubElements) WindowForElement(platform.Element) (platform.WindowID, platform.Status) {
	return s.window, s.status
}

func (s stubElements) ProcessTrusted(bool) bool { return s.trusted }

func TestResolveStatusMapping(t *testing.T) {
	el := platform.NewFakeServer().AddElement(platform.StatusSuccess)

	tests := []struct {
		name    string
		status  platform.Status
		trusted bool
		want    errs.Code
	}{
		{"api disabled", platform.StatusAPIDisabled, true, errs.EPermissionDenied},
		{"api disabled untrusted", platform.StatusAPIDisabled, false, errs.EPermissionDenied},
		{"invalid element", platform.StatusInvalidUIElement, true, errs.EInvalidElement},
		{"invalid element untrusted", platform.StatusInvalidUIElement, false, errs.EInvalidElement},
		{"cannot complete", platform.StatusCannotComplete, true, errs.EInvalidElement},
		{"cannot complete untrusted", platform.StatusCannotComplete, false, errs.EPermissionDenied},
		{"success without window", platform.StatusSuccess, true, errs.ENotAWindow},
		{"failure", platform.StatusFailure, true, errs.ENotAWindow},
		{"illegal argument", platform.StatusIllegalArgument, true, errs.ENotAWindow},
		{"attribute unsupported", platform.StatusAttributeUnsupported, true, errs.ENotAWindow},
		{"no value", platform.StatusNoValue, true, errs.ENotAWindow},
		{"no value untrusted", platform.StatusNoValue, false, errs.EPermissionDenied},
		{"not implemented", platform.StatusNotImplemented, true, errs.EResolutionFailed},
		{"unknown status", platform.Status(-1), true, errs.EResolutionFailed},
		{"unknown status untrusted", platform.Status(-1), false, errs.EPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(stubElements{status: tt.status, trusted: tt.trusted}, nil)
			window, err := r.Resolve(el)
			if window != 0 {
				t.Errorf("window = %d, want 0", window)
			}
			if got := errs.GetCode(err); got != tt.want {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestResolveWindowElement(t *testing.T) {
	fake := platform.NewFakeServer()
	s1 := fake.AddSpace()
	want, el := fake.AddWindow(7, "app", "doc", s1)

	r := NewResolver(fake, nil)
	got, err := r.Resolve(el)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != want {
		t.Errorf("window = %d, want %d", got, want)
	}

	listed, err := fake.ListWindows()
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].ID != got {
		t.Errorf("resolved window %d not in window list %v", got, listed)
	}
}

func TestResolveFakeLifecycle(t *testing.T) {
	fake := platform.NewFakeServer()
	s1 := fake.AddSpace()
	win, el := fake.AddWindow(7, "app", "doc", s1)
	_, stale := fake.AddWindow(7, "app", "other", s1)
	button := fake.AddElement(platform.StatusAttributeUnsupported)
	r := NewResolver(fake, nil)

	fake.InvalidateElement(stale)
	if _, err := r.Resolve(stale); errs.GetCode(err) != errs.EInvalidElement {
		t.Errorf("stale element: code = %q", errs.GetCode(err))
	}
	if _, err := r.Resolve(button); errs.GetCode(err) != errs.ENotAWindow {
		t.Errorf("non-window element: code = %q", errs.GetCode(err))
	}
	if _, err := r.Resolve(platform.Element{}); errs.GetCode(err) != errs.EInvalidElement {
		t.Errorf("zero element: code = %q", errs.GetCode(err))
	}

	fake.SetTrusted(false)
	if _, err := r.Resolve(el); errs.GetCode(err) != errs.EPermissionDenied {
		t.Errorf("untrusted: code = %q", errs.GetCode(err))
	}

	fake.SetTrusted(true)
	fake.CloseWindow(win)
	if _, err := r.Resolve(el); errs.GetCode(err) != errs.EInvalidElement {
		t.Errorf("closed window: code = %q", errs.GetCode(err))
	}
}

func TestResolveUnsupported(t *testing.T) {
	b := platform.NewUnsupportedBackend("test")
	r := NewResolver(b.Elements(), nil)

	el := platform.NewFakeServer().AddElement(platform.StatusSuccess)
	if _, err := r.Resolve(el); errs.GetCode(err) != errs.EUnsupported {
		t.Errorf("code = %q, want %q", errs.GetCode(err), errs.EUnsupported)
	}
}

func TestResolveAll(t *testing.T) {
	fake := platform.NewFakeServer()
	s1 := fake.AddSpace()
	w1, e1 := fake.AddWindow(7, "app", "a", s1)
	w2, e2 := fake.AddWindow(7, "app", "b", s1)
	sheet := fake.AddElement(platform.StatusNoValue)
	r := NewResolver(fake, nil)

	results, err := r.ResolveAll([]platform.Element{e1, sheet, e2})
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Window != w1 || results[0].Err != nil {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Window != 0 || errs.GetCode(results[1].Err) != errs.ENotAWindow {
		t.Errorf("results[1] = %+v", results[1])
	}
	if results[2].Window != w2 || results[2].Err != nil {
		t.Errorf("results[2] = %+v", results[2])
	}
}

func TestResolveAllAbortsOnPermissionDenied(t *testing.T) {
	fake := platform.NewFakeServer()
	s1 := fake.AddSpace()
	_, e1 := fake.AddWindow(7, "app", "a", s1)
	_, e2 := fake.AddWindow(7, "app", "b", s1)
	fake.SetTrusted(false)

	results, err := NewResolver(fake, nil).ResolveAll([]platform.Element{e1, e2})
	if errs.GetCode(err) != errs.EPermissionDenied {
		t.Fatalf("code = %q, want %q", errs.GetCode(err), errs.EPermissionDenied)
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want none", results)
	}
}
