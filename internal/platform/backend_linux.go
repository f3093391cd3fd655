//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/dashspace/internal/x11"
)

// X11Backend exposes EWMH virtual desktops as Spaces. SpaceID n is desktop
// n-1, so the zero SpaceID keeps its "no space" meaning. Accessibility
// elements have no X11 equivalent and are reported Unsupported.
type X11Backend struct {
	conn *x11.Connection
}

var _ Backend = (*X11Backend)(nil)

// NewX11Backend wraps an existing X11 connection.
func NewX11Backend(conn *x11.Connection) *X11Backend {
	return &X11Backend{conn: conn}
}

func openX11() (Backend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &X11Backend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *X11Backend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

func (b *X11Backend) Name() string { return "x11" }

func (b *X11Backend) Capability() Capability {
	if b == nil || b.conn == nil {
		return Unsupported
	}
	return Available
}

// MainConnection uses the root window as the session token; it is stable
// for the life of the X connection and never zero.
func (b *X11Backend) MainConnection() Connection {
	if b == nil || b.conn == nil {
		return Connection{}
	}
	return Connection{id: uint64(b.conn.Root)}
}

func (b *X11Backend) CopySpaces(conn Connection, mask SpaceMask) []SpaceID {
	if !conn.Valid() || b.conn == nil {
		return nil
	}
	count, err := b.conn.GetDesktopCount()
	if err != nil {
		return nil
	}
	current, err := b.conn.GetCurrentDesktop()
	if err != nil {
		current = -1
	}

	var out []SpaceID
	for desktop := 0; desktop < count; desktop++ {
		switch {
		case mask.Has(MaskAll),
			mask.Has(MaskCurrent) && desktop == current,
			mask.Has(MaskOther) && desktop != current:
			out = append(out, desktopSpace(desktop))
		}
	}
	return out
}

func (b *X11Backend) WindowSpace(conn Connection, window WindowID) SpaceID {
	if !conn.Valid() || b.conn == nil {
		return 0
	}
	desktop, err := b.conn.GetWindowDesktop(uint32(window))
	if err != nil || desktop < 0 {
		return 0
	}
	return desktopSpace(desktop)
}

// MoveWindowToSpace sends the desktop change request. Like the macOS call it
// reports nothing; a request for a desktop that does not exist is dropped.
func (b *X11Backend) MoveWindowToSpace(conn Connection, window WindowID, space SpaceID) {
	if !conn.Valid() || b.conn == nil || space == 0 {
		return
	}
	count, err := b.conn.GetDesktopCount()
	if err != nil || uint64(space) > uint64(count) {
		return
	}
	_ = b.conn.SetWindowDesktop(uint32(window), int(space)-1)
}

func (b *X11Backend) ListWindows() ([]Window, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	clients, err := b.conn.ListClients()
	if err != nil {
		return nil, err
	}
	windows := make([]Window, 0, len(clients))
	for _, c := range clients {
		windows = append(windows, Window{
			ID:    WindowID(c.ID),
			PID:   c.PID,
			AppID: c.Class,
			Title: c.Title,
		})
	}
	return windows, nil
}

func (b *X11Backend) Elements() ElementBackend {
	return unsupportedElements{fmt.Errorf("%w: accessibility elements are not available on X11", ErrUnsupported)}
}

func (b *X11Backend) ElementSource() ElementSource {
	return unsupportedElements{fmt.Errorf("%w: accessibility elements are not available on X11", ErrUnsupported)}
}

func desktopSpace(desktop int) SpaceID {
	return SpaceID(desktop + 1)
}
