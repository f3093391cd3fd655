//go:build !darwin || !cgo

package platform

import "fmt"

func openDarwin() (Backend, error) {
	return nil, fmt.Errorf("darwin backend requires macOS and a cgo-enabled build (CGO_ENABLED=1)")
}
