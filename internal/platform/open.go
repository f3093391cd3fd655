package platform

import (
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendAuto   = "auto"
	BackendDarwin = "darwin"
	BackendX11    = "x11"
	BackendNone   = "none"
)

// Open returns the named backend. "auto" picks the first backend that can
// be opened on this platform and falls back to an UnsupportedBackend, so it
// never fails.
func Open(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case BackendAuto, "":
		var reasons []string
		for _, open := range []func() (Backend, error){openDarwin, openX11} {
			b, err := open()
			if err == nil {
				return b, nil
			}
			reasons = append(reasons, err.Error())
		}
		return NewUnsupportedBackend(strings.Join(reasons, "; ")), nil
	case BackendDarwin:
		return openDarwin()
	case BackendX11:
		return openX11()
	case BackendNone:
		return NewUnsupportedBackend("disabled by configuration"), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want auto, darwin, x11 or none)", name)
	}
}
