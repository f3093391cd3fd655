package platform

import (
	"errors"
	"testing"
)

func TestFakeServerSpaces(t *testing.T) {
	f := NewFakeServer()
	s1 := f.AddSpace()
	s2 := f.AddSpace()
	s3 := f.AddSpace()
	conn := f.MainConnection()

	tests := []struct {
		name string
		mask SpaceMask
		want []SpaceID
	}{
		{"current", MaskCurrent, []SpaceID{s1}},
		{"other", MaskOther, []SpaceID{s2, s3}},
		{"all", MaskAll, []SpaceID{s1, s2, s3}},
		{"none", 0, nil},
	}
	for _, tt := range tests {
		got := f.CopySpaces(conn, tt.mask)
		if !equalSpaces(got, tt.want) {
			t.Errorf("%s: CopySpaces = %v, want %v", tt.name, got, tt.want)
		}
	}

	if got := f.CopySpaces(Connection{}, MaskAll); got != nil {
		t.Errorf("CopySpaces with invalid connection = %v, want nil", got)
	}

	if err := f.SetCurrentSpace(s3); err != nil {
		t.Fatalf("SetCurrentSpace: %v", err)
	}
	if got := f.CopySpaces(conn, MaskCurrent); !equalSpaces(got, []SpaceID{s3}) {
		t.Errorf("current after switch = %v", got)
	}
	if err := f.SetCurrentSpace(99); err == nil {
		t.Error("SetCurrentSpace(99) should fail")
	}
}

func TestFakeServerMoveSemantics(t *testing.T) {
	f := NewFakeServer()
	s1 := f.AddSpace()
	s2 := f.AddSpace()
	win, _ := f.AddWindow(1, "app", "w", s1)
	conn := f.MainConnection()

	f.MoveWindowToSpace(conn, win, 99)
	if got := f.WindowSpace(conn, win); got != s1 {
		t.Errorf("move to unknown space: space = %d, want %d", got, s1)
	}

	f.DropMoves = true
	f.MoveWindowToSpace(conn, win, s2)
	if got := f.WindowSpace(conn, win); got != s1 {
		t.Errorf("dropped move: space = %d, want %d", got, s1)
	}
	f.DropMoves = false

	f.MoveLag = 2
	f.MoveWindowToSpace(conn, win, s2)
	for i := 0; i < 2; i++ {
		if got := f.WindowSpace(conn, win); got != s1 {
			t.Errorf("lagged read %d: space = %d, want %d", i, got, s1)
		}
	}
	if got := f.WindowSpace(conn, win); got != s2 {
		t.Errorf("after lag: space = %d, want %d", got, s2)
	}

	if got := f.WindowSpace(conn, 12345); got != 0 {
		t.Errorf("unknown window space = %d, want 0", got)
	}

	var hooked WindowID
	f.OnMove = func(w WindowID, _ SpaceID) { hooked = w }
	f.MoveWindowToSpace(conn, win, s1)
	if hooked != win {
		t.Errorf("OnMove saw %d, want %d", hooked, win)
	}
}

func TestFakeServerRemoveSpace(t *testing.T) {
	f := NewFakeServer()
	s1 := f.AddSpace()
	s2 := f.AddSpace()
	win, _ := f.AddWindow(1, "app", "w", s1)
	conn := f.MainConnection()

	f.RemoveSpace(s1)
	if got := f.CopySpaces(conn, MaskCurrent); !equalSpaces(got, []SpaceID{s2}) {
		t.Errorf("current after removal = %v, want [%d]", got, s2)
	}
	if got := f.WindowSpace(conn, win); got != 0 {
		t.Errorf("window on removed space = %d, want 0", got)
	}
}

func TestFakeServerElements(t *testing.T) {
	f := NewFakeServer()
	s1 := f.AddSpace()
	win, el := f.AddWindow(1, "app", "w", s1)
	button := f.AddElement(StatusAttributeUnsupported)

	tests := []struct {
		name       string
		element    Element
		wantWindow WindowID
		wantStatus Status
	}{
		{"window element", el, win, StatusSuccess},
		{"button", button, 0, StatusAttributeUnsupported},
		{"unknown", Element{ref: 999}, 0, StatusInvalidUIElement},
	}
	for _, tt := range tests {
		w, status := f.WindowForElement(tt.element)
		if w != tt.wantWindow || status != tt.wantStatus {
			t.Errorf("%s: WindowForElement = (%d, %d), want (%d, %d)", tt.name, w, status, tt.wantWindow, tt.wantStatus)
		}
	}

	f.CloseWindow(win)
	if _, status := f.WindowForElement(el); status != StatusInvalidUIElement {
		t.Errorf("closed window element status = %d, want %d", status, StatusInvalidUIElement)
	}

	f.SetTrusted(false)
	if _, status := f.WindowForElement(button); status != StatusAPIDisabled {
		t.Errorf("untrusted status = %d, want %d", status, StatusAPIDisabled)
	}
	if f.ProcessTrusted(true) {
		t.Error("ProcessTrusted should be false")
	}
	if f.Prompts() != 1 {
		t.Errorf("Prompts = %d, want 1", f.Prompts())
	}
}

func TestFakeServerApplicationWindows(t *testing.T) {
	f := NewFakeServer()
	s1 := f.AddSpace()
	a, _ := f.AddWindow(10, "app", "a", s1)
	f.AddWindow(11, "other", "b", s1)
	b, _ := f.AddWindow(10, "app", "c", s1)

	els, release, err := f.ApplicationWindows(10)
	if err != nil {
		t.Fatalf("ApplicationWindows: %v", err)
	}
	defer release()
	if len(els) != 2 {
		t.Fatalf("got %d elements, want 2", len(els))
	}
	for i, want := range []WindowID{a, b} {
		if got, _ := f.WindowForElement(els[i]); got != want {
			t.Errorf("element %d resolves to %d, want %d", i, got, want)
		}
	}

	f.SetTrusted(false)
	var serr *StatusError
	if _, _, err := f.ApplicationWindows(10); !errors.As(err, &serr) || serr.Status != StatusAPIDisabled {
		t.Errorf("untrusted ApplicationWindows error = %v, want API disabled status", err)
	}
	if _, _, err := f.FocusedWindow(); !errors.As(err, &serr) || serr.Status != StatusAPIDisabled {
		t.Errorf("untrusted FocusedWindow error = %v, want API disabled status", err)
	}
}

func TestFakeServerListWindowsSorted(t *testing.T) {
	f := NewFakeServer()
	s1 := f.AddSpace()
	for i := 0; i < 5; i++ {
		f.AddWindow(i, "app", "w", s1)
	}
	windows, err := f.ListWindows()
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	for i := 1; i < len(windows); i++ {
		if windows[i-1].ID >= windows[i].ID {
			t.Fatalf("windows not sorted: %v", windows)
		}
	}
}

func TestUnsupportedBackend(t *testing.T) {
	b := NewUnsupportedBackend("no window server")
	if b.Capability() != Unsupported || b.Elements().Capability() != Unsupported {
		t.Error("expected Unsupported capability")
	}
	if b.MainConnection().Valid() {
		t.Error("expected invalid connection")
	}
	if got := b.CopySpaces(b.MainConnection(), MaskAll); len(got) != 0 {
		t.Errorf("CopySpaces = %v, want empty", got)
	}
	if _, err := b.ListWindows(); !errors.Is(err, ErrUnsupported) {
		t.Errorf("ListWindows error = %v, want ErrUnsupported", err)
	}
	if _, _, err := b.ElementSource().FocusedWindow(); !errors.Is(err, ErrUnsupported) {
		t.Errorf("FocusedWindow error = %v, want ErrUnsupported", err)
	}
	if _, status := b.Elements().WindowForElement(Element{ref: 1}); status != StatusNotImplemented {
		t.Errorf("status = %d, want %d", status, StatusNotImplemented)
	}
}

func TestOpen(t *testing.T) {
	b, err := Open(BackendNone)
	if err != nil {
		t.Fatalf("Open(none): %v", err)
	}
	if b.Capability() != Unsupported {
		t.Error("none backend should be unsupported")
	}

	if _, err := Open("wayland"); err == nil {
		t.Error("Open(wayland) should fail")
	}

	b, err = Open(BackendAuto)
	if err != nil {
		t.Fatalf("Open(auto) should never fail, got %v", err)
	}
	if b == nil {
		t.Fatal("Open(auto) returned nil backend")
	}
}

func equalSpaces(a, b []SpaceID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
