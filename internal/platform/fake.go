package platform

import (
	"fmt"
	"sort"
	"sync"
)

// FakeServer is an in-memory window server. It follows the platform
// contract closely: Space calls never fail, unknown windows answer with
// the zero SpaceID and moves to unknown targets are silently dropped.
type FakeServer struct {
	mu sync.Mutex

	connections int
	spaces      []SpaceID
	current     SpaceID
	nextSpace   SpaceID
	nextWindow  WindowID
	windows     map[WindowID]*fakeWindow
	elements    map[uintptr]*fakeElement
	nextElement uintptr
	focused     Element
	trusted     bool
	prompts     int

	// DropMoves makes MoveWindowToSpace a no-op, as when the window server
	// ignores a request.
	DropMoves bool
	// MoveLag delays a move's visible effect by this many WindowSpace reads.
	MoveLag int
	// OnMove runs after a move request is recorded, outside the lock.
	OnMove func(window WindowID, space SpaceID)
}

type fakeWindow struct {
	pid     int
	app     string
	title   string
	space   SpaceID
	pending SpaceID
	lag     int
}

type fakeElement struct {
	window WindowID
	status Status
	valid  bool
}

var (
	_ Backend        = (*FakeServer)(nil)
	_ ElementBackend = (*FakeServer)(nil)
	_ ElementSource  = (*FakeServer)(nil)
)

// NewFakeServer returns an empty fake window server whose process is
// trusted for accessibility.
func NewFakeServer() *FakeServer {
	return &FakeServer{
		nextSpace:   1,
		nextWindow:  100,
		nextElement: 1,
		windows:     make(map[WindowID]*fakeWindow),
		elements:    make(map[uintptr]*fakeElement),
		trusted:     true,
	}
}

func (f *FakeServer) Name() string { return "fake" }

func (f *FakeServer) Capability() Capability { return Available }

// AddSpace appends a Space. The first Space added becomes current.
func (f *FakeServer) AddSpace() SpaceID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextSpace
	f.nextSpace++
	f.spaces = append(f.spaces, id)
	if f.current == 0 {
		f.current = id
	}
	return id
}

// RemoveSpace deletes a Space. Windows on it are left without a Space.
func (f *FakeServer) RemoveSpace(space SpaceID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.spaces {
		if s == space {
			f.spaces = append(f.spaces[:i], f.spaces[i+1:]...)
			break
		}
	}
	if f.current == space {
		f.current = 0
		if len(f.spaces) > 0 {
			f.current = f.spaces[0]
		}
	}
	for _, w := range f.windows {
		if w.space == space {
			w.space = 0
		}
	}
}

// SetCurrentSpace switches the active Space.
func (f *FakeServer) SetCurrentSpace(space SpaceID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasSpaceLocked(space) {
		return fmt.Errorf("space %d does not exist", space)
	}
	f.current = space
	return nil
}

// AddWindow creates a window on space owned by pid and returns its id and
// accessibility element.
func (f *FakeServer) AddWindow(pid int, app, title string, space SpaceID) (WindowID, Element) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextWindow
	f.nextWindow++
	f.windows[id] = &fakeWindow{pid: pid, app: app, title: title, space: space}
	el := f.addElementLocked(&fakeElement{window: id, valid: true})
	if f.focused.IsZero() {
		f.focused = el
	}
	return id, el
}

// AddElement registers an element that is not backed by a window; resolving
// it answers with status.
func (f *FakeServer) AddElement(status Status) Element {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addElementLocked(&fakeElement{status: status, valid: true})
}

// CloseWindow destroys a window. Its elements become invalid.
func (f *FakeServer) CloseWindow(window WindowID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.windows, window)
	for _, el := range f.elements {
		if el.window == window {
			el.valid = false
		}
	}
}

// InvalidateElement marks an element stale without closing its window.
func (f *FakeServer) InvalidateElement(e Element) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if el, ok := f.elements[e.ref]; ok {
		el.valid = false
	}
}

// Focus makes e the focused window element.
func (f *FakeServer) Focus(e Element) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focused = e
}

// SetTrusted grants or revokes accessibility authorization.
func (f *FakeServer) SetTrusted(trusted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trusted = trusted
}

// SetWindowSpace moves a window directly, as a user dragging it would.
func (f *FakeServer) SetWindowSpace(window WindowID, space SpaceID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.windows[window]; ok {
		w.space = space
		w.pending = 0
	}
}

// Connections reports how many times MainConnection was called.
func (f *FakeServer) Connections() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connections
}

// Prompts reports how many times an authorization prompt was requested.
func (f *FakeServer) Prompts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts
}

func (f *FakeServer) MainConnection() Connection {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connections++
	return Connection{id: uint64(f.connections)}
}

func (f *FakeServer) CopySpaces(conn Connection, mask SpaceMask) []SpaceID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !conn.Valid() {
		return nil
	}
	var out []SpaceID
	for _, s := range f.spaces {
		switch {
		case mask.Has(MaskAll),
			mask.Has(MaskCurrent) && s == f.current,
			mask.Has(MaskOther) && s != f.current:
			out = append(out, s)
		}
	}
	return out
}

func (f *FakeServer) WindowSpace(conn Connection, window WindowID) SpaceID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !conn.Valid() {
		return 0
	}
	w, ok := f.windows[window]
	if !ok {
		return 0
	}
	if w.pending != 0 {
		if w.lag <= 0 {
			w.space = w.pending
			w.pending = 0
		} else {
			w.lag--
		}
	}
	return w.space
}

func (f *FakeServer) MoveWindowToSpace(conn Connection, window WindowID, space SpaceID) {
	f.mu.Lock()
	hook := f.OnMove
	if conn.Valid() && !f.DropMoves && f.hasSpaceLocked(space) {
		if w, ok := f.windows[window]; ok {
			if f.MoveLag > 0 {
				w.pending = space
				w.lag = f.MoveLag
			} else {
				w.space = space
			}
		}
	}
	f.mu.Unlock()
	if hook != nil {
		hook(window, space)
	}
}

func (f *FakeServer) ListWindows() ([]Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Window, 0, len(f.windows))
	for id, w := range f.windows {
		out = append(out, Window{ID: id, PID: w.pid, AppID: w.app, Title: w.title})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeServer) Elements() ElementBackend { return f }

func (f *FakeServer) ElementSource() ElementSource { return f }

func (f *FakeServer) WindowForElement(e Element) (WindowID, Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.trusted {
		return 0, StatusAPIDisabled
	}
	el, ok := f.elements[e.ref]
	if !ok || !el.valid {
		return 0, StatusInvalidUIElement
	}
	if el.window == 0 {
		return 0, el.status
	}
	return el.window, StatusSuccess
}

func (f *FakeServer) ProcessTrusted(prompt bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if prompt && !f.trusted {
		f.prompts++
	}
	return f.trusted
}

func (f *FakeServer) ApplicationWindows(pid int) ([]Element, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.trusted {
		return nil, func() {}, &StatusError{Op: fmt.Sprintf("copy windows of pid %d", pid), Status: StatusAPIDisabled}
	}
	var out []Element
	refs := make([]uintptr, 0, len(f.elements))
	for ref := range f.elements {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	for _, ref := range refs {
		el := f.elements[ref]
		if !el.valid || el.window == 0 {
			continue
		}
		if w, ok := f.windows[el.window]; ok && w.pid == pid {
			out = append(out, Element{ref: ref})
		}
	}
	return out, func() {}, nil
}

func (f *FakeServer) FocusedWindow() (Element, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.trusted {
		return Element{}, func() {}, &StatusError{Op: "focused window", Status: StatusAPIDisabled}
	}
	if f.focused.IsZero() {
		return Element{}, func() {}, fmt.Errorf("no focused window")
	}
	return f.focused, func() {}, nil
}

func (f *FakeServer) addElementLocked(el *fakeElement) Element {
	ref := f.nextElement
	f.nextElement++
	f.elements[ref] = el
	return Element{ref: ref}
}

func (f *FakeServer) hasSpaceLocked(space SpaceID) bool {
	for _, s := range f.spaces {
		if s == space {
			return true
		}
	}
	return false
}
