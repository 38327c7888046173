package wm

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/justyntemme/deskshell/internal/registry"
)

// checkInvariants verifies the sequence has no duplicates and the maximized
// app is open.
func checkInvariants(t *testing.T, m *Manager) {
	t.Helper()
	seen := make(map[registry.AppID]bool)
	for _, id := range m.OpenApps() {
		if seen[id] {
			t.Fatalf("duplicate app %q in open sequence %v", id, m.OpenApps())
		}
		seen[id] = true
	}
	if maxID, ok := m.Maximized(); ok && !seen[maxID] {
		t.Fatalf("maximized app %q is not open", maxID)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	m := NewManager(Config{})
	first, _ := m.Open(registry.AppNotes, nil)
	second, _ := m.Open(registry.AppNotes, nil)

	if m.Len() != 1 {
		t.Errorf("expected 1 open app, got %d", m.Len())
	}
	if first.InstanceID != second.InstanceID {
		t.Error("reopening should return the same instance")
	}
	checkInvariants(t, m)
}

func TestReopenWithParamsUpdatesInstance(t *testing.T) {
	m := NewManager(Config{})
	m.Open(registry.AppFiles, &Params{Category: registry.Documents})
	m.Open(registry.AppFiles, &Params{Category: registry.Pictures})

	if m.Len() != 1 {
		t.Fatalf("expected 1 open app, got %d", m.Len())
	}
	if p := m.Params(registry.AppFiles); p == nil || p.Category != registry.Pictures {
		t.Errorf("expected pictures params, got %+v", p)
	}

	m.Open(registry.AppFiles, nil)
	if p := m.Params(registry.AppFiles); p == nil || p.Category != registry.Pictures {
		t.Errorf("nil params should keep the previous ones, got %+v", p)
	}
}

func TestParamsAreCopied(t *testing.T) {
	m := NewManager(Config{})
	p := &Params{FileName: "a.jpg"}
	m.Open(registry.AppPhotoViewer, p)
	p.FileName = "b.jpg"

	if got := m.Params(registry.AppPhotoViewer); got.FileName != "a.jpg" {
		t.Errorf("caller mutation leaked into manager: %q", got.FileName)
	}
}

func TestOpenReturnsCopy(t *testing.T) {
	m := NewManager(Config{})
	inst, _ := m.Open(registry.AppPhotoViewer, &Params{FileName: "a.jpg"})
	inst.Params.FileName = "b.jpg"
	if got := m.Params(registry.AppPhotoViewer); got.FileName != "a.jpg" {
		t.Errorf("mutating the new instance leaked into manager: %q", got.FileName)
	}

	again, _ := m.Open(registry.AppPhotoViewer, nil)
	again.Params.FileName = "c.jpg"
	if got := m.Params(registry.AppPhotoViewer); got.FileName != "a.jpg" {
		t.Errorf("mutating a reopened instance leaked into manager: %q", got.FileName)
	}
}

func TestRandomSequencesKeepInvariants(t *testing.T) {
	apps := []registry.AppID{
		registry.AppFiles, registry.AppNotes, registry.AppPhotos,
		registry.AppTerminal, registry.AppLauncher, registry.AppID("bogus"),
	}

	for seed := uint64(1); seed <= 50; seed++ {
		rng := rand.New(rand.NewPCG(seed, 0))
		m := NewManager(Config{})
		for step := 0; step < 200; step++ {
			id := apps[rng.IntN(len(apps))]
			switch rng.IntN(4) {
			case 0:
				m.Open(id, nil)
			case 1:
				m.Close(id)
			case 2:
				m.ToggleMaximize(id)
			case 3:
				m.Focus(id)
			}
			checkInvariants(t, m)

			for i, e := range m.StackOrder() {
				if e.Z != DefaultBaseZ+i || e.AppID != m.OpenApps()[i] {
					t.Fatalf("seed %d step %d: stack order %v does not follow the sequence %v",
						seed, step, m.StackOrder(), m.OpenApps())
				}
			}
		}
	}
}

func TestStackOrder(t *testing.T) {
	m := NewManager(Config{BaseZ: 100})
	m.Open(registry.AppFiles, nil)
	m.Open(registry.AppNotes, nil)
	m.Open(registry.AppTerminal, nil)

	expected := []StackEntry{
		{registry.AppFiles, 100},
		{registry.AppNotes, 101},
		{registry.AppTerminal, 102},
	}
	if got := m.StackOrder(); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}

	m.Close(registry.AppNotes)
	expected = []StackEntry{{registry.AppFiles, 100}, {registry.AppTerminal, 101}}
	if got := m.StackOrder(); !reflect.DeepEqual(got, expected) {
		t.Errorf("after close: expected %v, got %v", expected, got)
	}
}

func TestToggleMaximize(t *testing.T) {
	m := NewManager(Config{})
	m.Open(registry.AppFiles, nil)
	m.Open(registry.AppNotes, nil)

	m.ToggleMaximize(registry.AppFiles)
	if id, ok := m.Maximized(); !ok || id != registry.AppFiles {
		t.Fatalf("expected files maximized, got %q", id)
	}

	m.ToggleMaximize(registry.AppNotes)
	if id, _ := m.Maximized(); id != registry.AppNotes {
		t.Errorf("only one app can be maximized, got %q", id)
	}

	m.ToggleMaximize(registry.AppNotes)
	if _, ok := m.Maximized(); ok {
		t.Error("toggling twice should clear maximize")
	}

	m.ToggleMaximize(registry.AppMail)
	if _, ok := m.Maximized(); ok {
		t.Error("apps that are not open cannot be maximized")
	}
	checkInvariants(t, m)
}

func TestCloseClearsMaximize(t *testing.T) {
	m := NewManager(Config{})
	m.Open(registry.AppFiles, nil)
	m.ToggleMaximize(registry.AppFiles)
	m.Close(registry.AppFiles)

	if _, ok := m.Maximized(); ok {
		t.Error("closing the maximized app should clear maximize")
	}
	m.Close(registry.AppFiles)
	if m.Len() != 0 {
		t.Errorf("expected no open apps, got %d", m.Len())
	}
	checkInvariants(t, m)
}

func TestOpenDoesNotChangeMaximize(t *testing.T) {
	m := NewManager(Config{})
	m.Open(registry.AppFiles, nil)
	m.ToggleMaximize(registry.AppFiles)
	m.Open(registry.AppNotes, nil)

	if id, _ := m.Maximized(); id != registry.AppFiles {
		t.Errorf("open should not change maximize, got %q", id)
	}
}

func TestLauncherPseudoApps(t *testing.T) {
	testCases := []registry.AppID{registry.AppLauncher, registry.AppGrid}

	for _, id := range testCases {
		m := NewManager(Config{})
		if _, ok := m.Open(id, nil); ok {
			t.Errorf("%s should not open a window", id)
		}
		if !m.LauncherVisible() || m.Len() != 0 {
			t.Errorf("%s: expected launcher visible and no windows", id)
		}
		m.Close(id)
		if m.LauncherVisible() {
			t.Errorf("%s: close should hide the launcher", id)
		}
	}
}

func TestUnknownAppIgnored(t *testing.T) {
	m := NewManager(Config{})
	if _, ok := m.Open(registry.AppID("solitaire"), nil); ok {
		t.Error("unknown app should not open")
	}
	if m.Len() != 0 {
		t.Errorf("expected no open apps, got %d", m.Len())
	}
}

func TestFocusRaisesToTop(t *testing.T) {
	m := NewManager(Config{})
	m.Open(registry.AppFiles, nil)
	m.Open(registry.AppNotes, nil)
	m.Open(registry.AppMail, nil)

	m.Focus(registry.AppFiles)
	expected := []registry.AppID{registry.AppNotes, registry.AppMail, registry.AppFiles}
	if got := m.OpenApps(); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
	m.Focus(registry.AppCalendar)
	if m.Len() != 3 {
		t.Error("focusing a closed app should not open it")
	}
	checkInvariants(t, m)
}

func TestSnapshotAndReset(t *testing.T) {
	m := NewManager(Config{})
	m.Open(registry.AppFiles, &Params{Category: registry.Home})
	m.ToggleMaximize(registry.AppFiles)
	m.ShowLauncher()

	snap := m.Snapshot()
	if len(snap.Open) != 1 || snap.Maximized != registry.AppFiles || !snap.LauncherVisible {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	snap.Open[0].Params.Category = registry.USB
	if m.Params(registry.AppFiles).Category != registry.Home {
		t.Error("snapshot should not alias manager state")
	}

	m.Reset()
	if m.Len() != 0 || m.LauncherVisible() {
		t.Error("reset should close everything")
	}
	if _, ok := m.Maximized(); ok {
		t.Error("reset should clear maximize")
	}
}
