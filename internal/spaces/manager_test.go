package spaces

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	errs "github.com/1broseidon/dashspace/internal/errors"
	"github.com/1broseidon/dashspace/internal/journal"
	"github.com/1broseidon/dashspace/internal/platform"
)

func testOptions() Options {
	return Options{Verify: true, VerifyAttempts: 5, VerifyInterval: 0}
}

func newTestManager(t *testing.T) (*Manager, *platform.FakeServer, platform.SpaceID, platform.SpaceID) {
	t.Helper()
	fake := platform.NewFakeServer()
	s1 := fake.AddSpace()
	s2 := fake.AddSpace()
	return NewManager(fake, fake, testOptions()), fake, s1, s2
}

type failingLister struct{}

func (failingLister) ListWindows() ([]platform.Window, error) {
	return nil, errors.New("window list unavailable")
}

func TestEnumerateSpacesAllIsSuperset(t *testing.T) {
	m, fake, _, _ := newTestManager(t)
	fake.AddSpace()
	fake.AddSpace()

	current, err := m.EnumerateSpaces(platform.MaskCurrent)
	if err != nil {
		t.Fatalf("EnumerateSpaces(current): %v", err)
	}
	other, err := m.EnumerateSpaces(platform.MaskOther)
	if err != nil {
		t.Fatalf("EnumerateSpaces(other): %v", err)
	}
	all, err := m.EnumerateSpaces(platform.MaskAll)
	if err != nil {
		t.Fatalf("EnumerateSpaces(all): %v", err)
	}

	inAll := map[platform.SpaceID]bool{}
	for _, s := range all {
		inAll[s] = true
	}
	for _, s := range append(current, other...) {
		if !inAll[s] {
			t.Errorf("space %d missing from All result %v", s, all)
		}
	}
	if len(current) != 1 || len(other) != 3 || len(all) != 4 {
		t.Errorf("current=%v other=%v all=%v", current, other, all)
	}
}

func TestEnumerateSpacesMasks(t *testing.T) {
	m, _, s1, s2 := newTestManager(t)

	tests := []struct {
		name string
		mask platform.SpaceMask
		want []platform.SpaceID
	}{
		{"empty mask", 0, []platform.SpaceID{}},
		{"current", platform.MaskCurrent, []platform.SpaceID{s1}},
		{"other", platform.MaskOther, []platform.SpaceID{s2}},
		{"current|other", platform.MaskCurrent | platform.MaskOther, []platform.SpaceID{s1, s2}},
		{"all", platform.MaskAll, []platform.SpaceID{s1, s2}},
		{"all|current", platform.MaskAll | platform.MaskCurrent, []platform.SpaceID{s1, s2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.EnumerateSpaces(tt.mask)
			if err != nil {
				t.Fatalf("EnumerateSpaces: %v", err)
			}
			if got == nil || !equalSpaces(got, tt.want) {
				t.Errorf("EnumerateSpaces(%v) = %v, want %v", tt.mask, got, tt.want)
			}
		})
	}
}

func TestEnumerateSpacesIsFreshSnapshot(t *testing.T) {
	m, fake, _, _ := newTestManager(t)

	before, _ := m.EnumerateSpaces(platform.MaskAll)
	s3 := fake.AddSpace()
	after, _ := m.EnumerateSpaces(platform.MaskAll)

	if len(after) != len(before)+1 || after[len(after)-1] != s3 {
		t.Errorf("before=%v after=%v, want new space %d", before, after, s3)
	}
}

func TestWindowSpaceIdempotent(t *testing.T) {
	m, fake, _, s2 := newTestManager(t)
	win, _ := fake.AddWindow(1, "app", "w", s2)

	for i := 0; i < 3; i++ {
		got, ok, err := m.WindowSpace(win)
		if err != nil || !ok || got != s2 {
			t.Fatalf("read %d: WindowSpace = (%d, %v, %v), want (%d, true, nil)", i, got, ok, err, s2)
		}
	}
}

func TestWindowSpaceVanished(t *testing.T) {
	m, fake, s1, _ := newTestManager(t)
	win, _ := fake.AddWindow(1, "app", "w", s1)
	stranded, _ := fake.AddWindow(1, "app", "x", s1)

	fake.CloseWindow(win)
	got, ok, err := m.WindowSpace(win)
	if err != nil || ok || got != 0 {
		t.Errorf("closed window: WindowSpace = (%d, %v, %v), want (0, false, nil)", got, ok, err)
	}

	fake.RemoveSpace(s1)
	got, ok, err = m.WindowSpace(stranded)
	if err != nil || ok || got != 0 {
		t.Errorf("window without space: WindowSpace = (%d, %v, %v), want (0, false, nil)", got, ok, err)
	}
}

func TestWindowSpaceListFailure(t *testing.T) {
	fake := platform.NewFakeServer()
	s1 := fake.AddSpace()
	win, _ := fake.AddWindow(1, "app", "w", s1)
	m := NewManager(fake, failingLister{}, testOptions())

	_, _, err := m.WindowSpace(win)
	if errs.GetCode(err) != errs.EWindowListFailed {
		t.Errorf("code = %q, want %q", errs.GetCode(err), errs.EWindowListFailed)
	}
}

func TestMoveWindowRoundTrip(t *testing.T) {
	m, fake, s1, s2 := newTestManager(t)
	win, _ := fake.AddWindow(1, "app", "w", s1)

	res, err := m.MoveWindow(context.Background(), win, s2)
	if err != nil {
		t.Fatalf("MoveWindow: %v", err)
	}
	if res.Outcome != OutcomeConfirmed || res.From != s1 || res.Final != s2 || res.Attempts != 1 {
		t.Errorf("move to s2 = %+v", res)
	}
	if got, _, _ := m.WindowSpace(win); got != s2 {
		t.Errorf("WindowSpace after move = %d, want %d", got, s2)
	}

	res, err = m.MoveWindow(context.Background(), win, s1)
	if err != nil {
		t.Fatalf("MoveWindow back: %v", err)
	}
	if res.Outcome != OutcomeConfirmed || res.Final != s1 {
		t.Errorf("move back = %+v", res)
	}
	if res.Err() != nil {
		t.Errorf("Err() = %v, want nil", res.Err())
	}
}

func TestWindowSpaces(t *testing.T) {
	m, fake, s1, s2 := newTestManager(t)
	a, _ := fake.AddWindow(1, "app", "a", s1)
	b, _ := fake.AddWindow(1, "app", "b", s2)
	sticky, _ := fake.AddWindow(1, "app", "sticky", s1)
	fake.SetWindowSpace(sticky, 0)
	gone, _ := fake.AddWindow(1, "app", "gone", s2)
	fake.CloseWindow(gone)

	got, err := m.WindowSpaces([]platform.WindowID{a, b, sticky, gone})
	if err != nil {
		t.Fatalf("WindowSpaces: %v", err)
	}
	if len(got) != 2 || got[a] != s1 || got[b] != s2 {
		t.Errorf("WindowSpaces = %v, want %d:%d %d:%d", got, a, s1, b, s2)
	}

	if _, err := NewManager(fake, failingLister{}, testOptions()).WindowSpaces([]platform.WindowID{a}); errs.GetCode(err) != errs.EWindowListFailed {
		t.Errorf("list failure code = %q", errs.GetCode(err))
	}
}

func TestMoveWindowUnconfirmed(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(f *platform.FakeServer, win platform.WindowID)
		target     func(s2 platform.SpaceID) platform.SpaceID
		wantReason string
		wantTries  int
	}{
		{
			name:       "window server ignores request",
			setup:      func(f *platform.FakeServer, _ platform.WindowID) { f.DropMoves = true },
			target:     func(s2 platform.SpaceID) platform.SpaceID { return s2 },
			wantReason: "space did not change",
			wantTries:  5,
		},
		{
			name:       "unknown target space",
			setup:      func(*platform.FakeServer, platform.WindowID) {},
			target:     func(platform.SpaceID) platform.SpaceID { return 999 },
			wantReason: "target space vanished",
			wantTries:  5,
		},
		{
			name: "window closes after request",
			setup: func(f *platform.FakeServer, win platform.WindowID) {
				f.OnMove = func(platform.WindowID, platform.SpaceID) { f.CloseWindow(win) }
			},
			target:     func(s2 platform.SpaceID) platform.SpaceID { return s2 },
			wantReason: "window vanished after move request",
			wantTries:  1,
		},
		{
			name: "target space removed during move",
			setup: func(f *platform.FakeServer, _ platform.WindowID) {
				f.DropMoves = true
				f.OnMove = func(_ platform.WindowID, s platform.SpaceID) { f.RemoveSpace(s) }
			},
			target:     func(s2 platform.SpaceID) platform.SpaceID { return s2 },
			wantReason: "target space vanished",
			wantTries:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, fake, s1, s2 := newTestManager(t)
			win, _ := fake.AddWindow(1, "app", "w", s1)
			tt.setup(fake, win)

			res, err := m.MoveWindow(context.Background(), win, tt.target(s2))
			if err != nil {
				t.Fatalf("MoveWindow: %v", err)
			}
			if res.Outcome != OutcomeUnconfirmed {
				t.Fatalf("outcome = %q, want unconfirmed", res.Outcome)
			}
			if res.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", res.Reason, tt.wantReason)
			}
			if res.Attempts != tt.wantTries {
				t.Errorf("attempts = %d, want %d", res.Attempts, tt.wantTries)
			}
			if errs.GetCode(res.Err()) != errs.EMoveUnconfirmed {
				t.Errorf("Err() code = %q, want %q", errs.GetCode(res.Err()), errs.EMoveUnconfirmed)
			}
		})
	}
}

func TestMoveWindowLaggedEffectIsConfirmed(t *testing.T) {
	m, fake, s1, s2 := newTestManager(t)
	win, _ := fake.AddWindow(1, "app", "w", s1)
	fake.MoveLag = 2

	res, err := m.MoveWindow(context.Background(), win, s2)
	if err != nil {
		t.Fatalf("MoveWindow: %v", err)
	}
	if res.Outcome != OutcomeConfirmed || res.Attempts != 3 {
		t.Errorf("move = %+v, want confirmed after 3 attempts", res)
	}
}

func TestMoveWindowLagBeyondBudget(t *testing.T) {
	fake := platform.NewFakeServer()
	s1 := fake.AddSpace()
	s2 := fake.AddSpace()
	win, _ := fake.AddWindow(1, "app", "w", s1)
	fake.MoveLag = 10
	m := NewManager(fake, fake, Options{Verify: true, VerifyAttempts: 2})

	res, err := m.MoveWindow(context.Background(), win, s2)
	if err != nil {
		t.Fatalf("MoveWindow: %v", err)
	}
	if res.Outcome != OutcomeUnconfirmed || res.Attempts != 2 || res.Final != s1 {
		t.Errorf("move = %+v, want unconfirmed after 2 attempts", res)
	}
}

func TestMoveWindowOutcomes(t *testing.T) {
	t.Run("skipped when window is gone", func(t *testing.T) {
		m, fake, s1, s2 := newTestManager(t)
		win, _ := fake.AddWindow(1, "app", "w", s1)
		fake.CloseWindow(win)

		res, err := m.MoveWindow(context.Background(), win, s2)
		if err != nil || res.Outcome != OutcomeSkipped || res.Reason != "window vanished" {
			t.Errorf("MoveWindow = (%+v, %v), want skipped", res, err)
		}
		if res.Err() != nil {
			t.Errorf("skipped Err() = %v, want nil", res.Err())
		}
	})

	t.Run("skipped when window has no space", func(t *testing.T) {
		m, fake, s1, s2 := newTestManager(t)
		win, _ := fake.AddWindow(1, "app", "w", s1)
		fake.SetWindowSpace(win, 0)

		res, err := m.MoveWindow(context.Background(), win, s2)
		if err != nil || res.Outcome != OutcomeSkipped || res.Reason != "window has no space" {
			t.Errorf("MoveWindow = (%+v, %v), want skipped without space", res, err)
		}
	})

	t.Run("already on target", func(t *testing.T) {
		m, fake, s1, _ := newTestManager(t)
		win, _ := fake.AddWindow(1, "app", "w", s1)
		var moves int
		fake.OnMove = func(platform.WindowID, platform.SpaceID) { moves++ }

		res, err := m.MoveWindow(context.Background(), win, s1)
		if err != nil || res.Outcome != OutcomeAlready {
			t.Errorf("MoveWindow = (%+v, %v), want already", res, err)
		}
		if moves != 0 {
			t.Errorf("move requests = %d, want 0", moves)
		}
	})

	t.Run("requested without verification", func(t *testing.T) {
		fake := platform.NewFakeServer()
		s1 := fake.AddSpace()
		s2 := fake.AddSpace()
		win, _ := fake.AddWindow(1, "app", "w", s1)
		m := NewManager(fake, fake, Options{Verify: false})

		res, err := m.MoveWindow(context.Background(), win, s2)
		if err != nil || res.Outcome != OutcomeRequested || res.Attempts != 0 {
			t.Errorf("MoveWindow = (%+v, %v), want requested", res, err)
		}
		if got, _, _ := m.WindowSpace(win); got != s2 {
			t.Errorf("space = %d, want %d", got, s2)
		}
	})

	t.Run("zero target", func(t *testing.T) {
		m, fake, s1, _ := newTestManager(t)
		win, _ := fake.AddWindow(1, "app", "w", s1)

		_, err := m.MoveWindow(context.Background(), win, 0)
		if errs.GetCode(err) != errs.EUsage {
			t.Errorf("code = %q, want %q", errs.GetCode(err), errs.EUsage)
		}
	})
}

func TestMoveWindowContextCancelled(t *testing.T) {
	m, fake, s1, s2 := newTestManager(t)
	win, _ := fake.AddWindow(1, "app", "w", s1)
	fake.DropMoves = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := m.MoveWindow(ctx, win, s2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if res.Outcome != OutcomeUnconfirmed || res.Reason != "verification cancelled" {
		t.Errorf("result = %+v", res)
	}
}

func TestMoveWindowSleepsBeforeEachRead(t *testing.T) {
	m, fake, s1, s2 := newTestManager(t)
	win, _ := fake.AddWindow(1, "app", "w", s1)
	fake.DropMoves = true
	m.opts.VerifyInterval = 20 * time.Millisecond

	var sleeps []time.Duration
	m.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}

	res, _ := m.MoveWindow(context.Background(), win, s2)
	if len(sleeps) != res.Attempts || len(sleeps) != 5 {
		t.Errorf("sleeps = %d, attempts = %d, want 5", len(sleeps), res.Attempts)
	}
	for _, d := range sleeps {
		if d != 20*time.Millisecond {
			t.Errorf("sleep = %v, want 20ms", d)
		}
	}
}

func TestRequestMove(t *testing.T) {
	m, fake, s1, s2 := newTestManager(t)
	win, _ := fake.AddWindow(1, "app", "w", s1)

	requested, err := m.RequestMove(win, s2)
	if err != nil || !requested {
		t.Fatalf("RequestMove = (%v, %v), want (true, nil)", requested, err)
	}
	if got, _, _ := m.WindowSpace(win); got != s2 {
		t.Errorf("space = %d, want %d", got, s2)
	}

	fake.CloseWindow(win)
	requested, err = m.RequestMove(win, s1)
	if err != nil || requested {
		t.Errorf("RequestMove on closed window = (%v, %v), want (false, nil)", requested, err)
	}
}

func TestPartitionByCurrentSpace(t *testing.T) {
	m, fake, s1, s2 := newTestManager(t)
	a, _ := fake.AddWindow(1, "app", "a", s1)
	b, _ := fake.AddWindow(1, "app", "b", s2)
	c, _ := fake.AddWindow(1, "app", "c", s1)
	gone, _ := fake.AddWindow(1, "app", "d", s2)
	fake.CloseWindow(gone)

	current, other, err := m.PartitionByCurrentSpace([]platform.WindowID{a, b, c, gone})
	if err != nil {
		t.Fatalf("PartitionByCurrentSpace: %v", err)
	}
	if !equalWindows(current, []platform.WindowID{a, c}) {
		t.Errorf("current = %v, want [%d %d]", current, a, c)
	}
	if !equalWindows(other, []platform.WindowID{b}) {
		t.Errorf("other = %v, want [%d]", other, b)
	}

	if err := fake.SetCurrentSpace(s2); err != nil {
		t.Fatal(err)
	}
	current, _, _ = m.PartitionByCurrentSpace([]platform.WindowID{a, b, c})
	if !equalWindows(current, []platform.WindowID{b}) {
		t.Errorf("after switch current = %v, want [%d]", current, b)
	}
}

func TestUnsupportedBackend(t *testing.T) {
	b := platform.NewUnsupportedBackend("test")
	m := NewManager(b, b, DefaultOptions())

	if m.Capability() != platform.Unsupported {
		t.Error("expected Unsupported capability")
	}
	if _, err := m.EnumerateSpaces(platform.MaskAll); errs.GetCode(err) != errs.EUnsupported {
		t.Errorf("EnumerateSpaces code = %q", errs.GetCode(err))
	}
	if _, _, err := m.WindowSpace(1); errs.GetCode(err) != errs.EUnsupported {
		t.Errorf("WindowSpace code = %q", errs.GetCode(err))
	}
	if _, err := m.RequestMove(1, 1); errs.GetCode(err) != errs.EUnsupported {
		t.Errorf("RequestMove code = %q", errs.GetCode(err))
	}
	if _, err := m.MoveWindow(context.Background(), 1, 1); errs.GetCode(err) != errs.EUnsupported {
		t.Errorf("MoveWindow code = %q", errs.GetCode(err))
	}
	if _, _, err := m.PartitionByCurrentSpace([]platform.WindowID{1}); errs.GetCode(err) != errs.EUnsupported {
		t.Errorf("PartitionByCurrentSpace code = %q", errs.GetCode(err))
	}
}

func TestConcurrentQueriesDuringMove(t *testing.T) {
	m, fake, s1, s2 := newTestManager(t)
	win, _ := fake.AddWindow(1, "app", "w", s1)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			target := s1
			if i%2 == 0 {
				target = s2
			}
			if _, err := m.MoveWindow(context.Background(), win, target); err != nil {
				t.Errorf("MoveWindow: %v", err)
			}
		}(i)
		go func() {
			defer wg.Done()
			if _, ok, err := m.WindowSpace(win); err != nil || !ok {
				t.Errorf("WindowSpace = (%v, %v)", ok, err)
			}
		}()
	}
	wg.Wait()
}

func TestMoveJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moves.log")
	j, err := journal.Open(journal.Config{Enabled: true, Level: journal.LevelDebug, FilePath: path})
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	defer j.Close()

	fake := platform.NewFakeServer()
	s1 := fake.AddSpace()
	s2 := fake.AddSpace()
	win, _ := fake.AddWindow(1, "app", "w", s1)
	opts := testOptions()
	opts.Journal = j
	m := NewManager(fake, fake, opts)

	if _, err := m.MoveWindow(context.Background(), win, s2); err != nil {
		t.Fatalf("MoveWindow: %v", err)
	}
	fake.DropMoves = true
	if _, err := m.MoveWindow(context.Background(), win, s1); err != nil {
		t.Fatalf("MoveWindow: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	log := string(data)
	for _, want := range []string{"[MOVE-REQUEST]", "[MOVE-CONFIRMED]", "[MOVE-UNCONFIRMED]", `reason="space did not change"`} {
		if !strings.Contains(log, want) {
			t.Errorf("journal missing %q:\n%s", want, log)
		}
	}
}

func equalSpaces(a, b []platform.SpaceID) bool {
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

func equalWindows(a, b []platform.WindowID) bool {
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
