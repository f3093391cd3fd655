package spaces

import (
	"sync"
	"testing"

	"github.com/1broseidon/dashspace/internal/platform"
)

func TestConnectionProviderOpensOnce(t *testing.T) {
	fake := platform.NewFakeServer()
	p := NewConnectionProvider(fake)

	if fake.Connections() != 0 {
		t.Fatal("provider should not connect before first use")
	}

	var wg sync.WaitGroup
	conns := make([]platform.Connection, 16)
	for i := range conns {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conns[i] = p.Connection()
		}(i)
	}
	wg.Wait()

	if fake.Connections() != 1 {
		t.Errorf("MainConnection called %d times, want 1", fake.Connections())
	}
	for i, c := range conns {
		if c != conns[0] || !c.Valid() {
			t.Errorf("conns[%d] = %v, want %v", i, c, conns[0])
		}
	}
}

func TestProcessConnectionsShared(t *testing.T) {
	fake := platform.NewFakeServer()
	fake.AddSpace()

	a := NewManager(fake, fake, DefaultOptions())
	b := NewManager(fake, fake, DefaultOptions())
	if _, err := a.EnumerateSpaces(platform.MaskAll); err != nil {
		t.Fatal(err)
	}
	if _, err := b.EnumerateSpaces(platform.MaskAll); err != nil {
		t.Fatal(err)
	}

	if fake.Connections() != 1 {
		t.Errorf("MainConnection called %d times, want 1", fake.Connections())
	}
	if ProcessConnections(fake) != ProcessConnections(fake) {
		t.Error("ProcessConnections should return the same provider")
	}
	if ProcessConnections(platform.NewFakeServer()) == ProcessConnections(fake) {
		t.Error("different backends should not share a provider")
	}
}
