package spaces

import (
	"sync"

	"github.com/1broseidon/dashspace/internal/platform"
)

// ConnectionProvider hands out the process-wide window server connection.
// The connection is opened on first use and lives until the process exits;
// there is no release operation.
type ConnectionProvider struct {
	backend platform.SpaceBackend
	once    sync.Once
	conn    platform.Connection
}

// NewConnectionProvider returns a provider for backend. The backend is not
// contacted until Connection is first called.
func NewConnectionProvider(backend platform.SpaceBackend) *ConnectionProvider {
	return &ConnectionProvider{backend: backend}
}

// Connection returns the session handle, opening it on the first call.
// Concurrent first callers share a single initialization.
func (p *ConnectionProvider) Connection() platform.Connection {
	p.once.Do(func() {
		p.conn = p.backend.MainConnection()
	})
	return p.conn
}

var (
	processMu    sync.Mutex
	processConns = map[platform.SpaceBackend]*ConnectionProvider{}
)

// ProcessConnections returns the provider shared by every caller using
// backend in this process.
func ProcessConnections(backend platform.SpaceBackend) *ConnectionProvider {
	processMu.Lock()
	defer processMu.Unlock()
	if p, ok := processConns[backend]; ok {
		return p
	}
	p := NewConnectionProvider(backend)
	processConns[backend] = p
	return p
}
