package platform

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned by backends that cannot serve an operation on
// this platform or build.
var ErrUnsupported = errors.New("window server operation not supported on this platform")

// UnsupportedBackend is the degraded backend used when no window server
// integration is available. Every query answers with the platform sentinel
// and every mutation is a no-op.
type UnsupportedBackend struct {
	// Reason is shown to users explaining why the backend is unavailable.
	Reason string
}

var (
	_ Backend        = (*UnsupportedBackend)(nil)
	_ ElementBackend = unsupportedElements{}
	_ ElementSource  = unsupportedElements{}
)

// NewUnsupportedBackend returns a backend reporting Capability Unsupported.
func NewUnsupportedBackend(reason string) *UnsupportedBackend {
	return &UnsupportedBackend{Reason: reason}
}

func (b *UnsupportedBackend) Name() string { return "none" }

func (b *UnsupportedBackend) Capability() Capability { return Unsupported }

func (b *UnsupportedBackend) MainConnection() Connection { return Connection{} }

func (b *UnsupportedBackend) CopySpaces(Connection, SpaceMask) []SpaceID { return nil }

func (b *UnsupportedBackend) WindowSpace(Connection, WindowID) SpaceID { return 0 }

func (b *UnsupportedBackend) MoveWindowToSpace(Connection, WindowID, SpaceID) {}

func (b *UnsupportedBackend) ListWindows() ([]Window, error) {
	return nil, b.err()
}

func (b *UnsupportedBackend) Elements() ElementBackend { return unsupportedElements{b.err()} }

func (b *UnsupportedBackend) ElementSource() ElementSource { return unsupportedElements{b.err()} }

func (b *UnsupportedBackend) err() error {
	if b == nil || b.Reason == "" {
		return ErrUnsupported
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, b.Reason)
}

type unsupportedElements struct {
	err error
}

func (unsupportedElements) Capability() Capability { return Unsupported }

func (unsupportedElements) WindowForElement(Element) (WindowID, Status) {
	return 0, StatusNotImplemented
}

func (unsupportedElements) ProcessTrusted(bool) bool { return false }

func (u unsupportedElements) ApplicationWindows(int) ([]Element, func(), error) {
	return nil, func() {}, u.err
}

func (u unsupportedElements) FocusedWindow() (Element, func(), error) {
	return Element{}, func() {}, u.err
}
