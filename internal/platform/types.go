package platform

import (
	"fmt"
	"strconv"
	"strings"
)

// WindowID is a window-server window identifier. Zero is never a live window.
type WindowID uint32

// String implements fmt.Stringer.
func (w WindowID) String() string {
	return strconv.FormatUint(uint64(w), 10)
}

// ParseWindowID parses a decimal window identifier.
func ParseWindowID(s string) (WindowID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q: %w", s, err)
	}
	if v == 0 {
		return 0, fmt.Errorf("invalid window id %q: must be non-zero", s)
	}
	return WindowID(v), nil
}

// SpaceID identifies one virtual desktop. Zero is the "no space" sentinel
// the window server returns for unknown windows.
type SpaceID uint64

// String implements fmt.Stringer.
func (s SpaceID) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// ParseSpaceID parses a decimal Space identifier.
func ParseSpaceID(s string) (SpaceID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid space id %q: %w", s, err)
	}
	if v == 0 {
		return 0, fmt.Errorf("invalid space id %q: must be non-zero", s)
	}
	return SpaceID(v), nil
}

// Connection is the caller's session with the window server. The token is
// only meaningful to the backend that issued it.
type Connection struct {
	id uint64
}

// Valid reports whether the connection was issued by a backend.
func (c Connection) Valid() bool {
	return c.id != 0
}

// Element is a borrowed handle to one node of the accessibility tree. The
// zero Element references nothing.
type Element struct {
	ref uintptr
}

// IsZero reports whether e references no element.
func (e Element) IsZero() bool {
	return e.ref == 0
}

// SpaceMask selects which Spaces an enumeration returns.
type SpaceMask uint32

const (
	MaskCurrent SpaceMask = 0x1
	MaskOther   SpaceMask = 0x2
	MaskAll     SpaceMask = 0x4
)

// Has reports whether every bit of flag is set in m.
func (m SpaceMask) Has(flag SpaceMask) bool {
	return flag != 0 && m&flag == flag
}

// String renders the mask as a comma separated flag list.
func (m SpaceMask) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	if m.Has(MaskCurrent) {
		parts = append(parts, "current")
	}
	if m.Has(MaskOther) {
		parts = append(parts, "other")
	}
	if m.Has(MaskAll) {
		parts = append(parts, "all")
	}
	if rest := m &^ (MaskCurrent | MaskOther | MaskAll); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, ",")
}

// ParseSpaceMask parses "current", "other", "all", "none" or a comma
// separated combination such as "current,other".
func ParseSpaceMask(s string) (SpaceMask, error) {
	var mask SpaceMask
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "current":
			mask |= MaskCurrent
		case "other", "others":
			mask |= MaskOther
		case "all":
			mask |= MaskAll
		case "none", "":
		default:
			return 0, fmt.Errorf("unknown space mask %q (want current, other, all or none)", part)
		}
	}
	return mask, nil
}

// Status is a raw accessibility status code as returned by the platform.
type Status int32

// Accessibility status codes (AXError).
const (
	StatusSuccess              Status = 0
	StatusFailure              Status = -25200
	StatusIllegalArgument      Status = -25201
	StatusInvalidUIElement     Status = -25202
	StatusCannotComplete       Status = -25204
	StatusAttributeUnsupported Status = -25205
	StatusNotImplemented       Status = -25208
	StatusAPIDisabled          Status = -25211
	StatusNoValue              Status = -25212
)

// StatusError is an element source failure that carries the platform's
// accessibility status.
type StatusError struct {
	Op     string
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: accessibility status %d", e.Op, int32(e.Status))
}

// Capability tells callers whether a backend can serve its operations.
type Capability int

const (
	Unsupported Capability = iota
	Available
)

func (c Capability) String() string {
	if c == Available {
		return "available"
	}
	return "unsupported"
}

// Window contains metadata for a top-level window from the window list.
type Window struct {
	ID    WindowID
	PID   int
	AppID string
	Title string
}
