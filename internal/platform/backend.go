package platform

// SpaceBackend wraps the window server's Space calls. The calls mirror the
// platform contract: none of them report failure, and results for unknown
// windows or spaces are sentinels (0, empty).
type SpaceBackend interface {
	Capability() Capability
	// MainConnection returns the process session handle. Callers cache it.
	MainConnection() Connection
	CopySpaces(conn Connection, mask SpaceMask) []SpaceID
	WindowSpace(conn Connection, window WindowID) SpaceID
	MoveWindowToSpace(conn Connection, window WindowID, space SpaceID)
}

// ElementBackend resolves accessibility elements to window identifiers.
type ElementBackend interface {
	Capability() Capability
	WindowForElement(element Element) (WindowID, Status)
	// ProcessTrusted reports whether the process holds accessibility
	// authorization. When prompt is true the platform may show its
	// authorization dialog.
	ProcessTrusted(prompt bool) bool
}

// WindowLister is the independent window-list collaborator used to check
// that a window still exists before trusting a Space query.
type WindowLister interface {
	ListWindows() ([]Window, error)
}

// ElementSource hands out accessibility elements. Elements stay valid until
// release is called.
type ElementSource interface {
	ApplicationWindows(pid int) (elements []Element, release func(), err error)
	FocusedWindow() (element Element, release func(), err error)
}

// Backend is the full set of capabilities a platform may provide.
type Backend interface {
	Name() string
	SpaceBackend
	WindowLister
	Elements() ElementBackend
	ElementSource() ElementSource
}

