package app

import (
	"path/filepath"
	"testing"

	"github.com/justyntemme/deskshell/internal/config"
)

func TestAddAndRemoveMount(t *testing.T) {
	cfg := config.NewManager(filepath.Join(t.TempDir(), "config.json"))
	dir := t.TempDir()

	if err := AddMount(cfg, "USB="+dir, true); err != nil {
		t.Fatal(err)
	}
	mounts := config.NewManager(cfg.Path())
	mounts.Load()
	got := mounts.Get().Mounts
	if len(got) != 1 || got[0].Category != "usb" || got[0].Dir != dir || !got[0].Watch {
		t.Fatalf("unexpected mounts %+v", got)
	}

	if err := RemoveMount(cfg, "usb"); err != nil {
		t.Fatal(err)
	}
	if got := cfg.Get().Mounts; len(got) != 0 {
		t.Errorf("expected no mounts, got %+v", got)
	}
}

func TestAddMountRejects(t *testing.T) {
	cfg := config.NewManager(filepath.Join(t.TempDir(), "config.json"))
	testCases := []string{
		"usb",
		"trash=" + t.TempDir(),
		"music=" + t.TempDir(),
		"usb=" + filepath.Join(t.TempDir(), "gone"),
	}
	for _, arg := range testCases {
		if err := AddMount(cfg, arg, false); err == nil {
			t.Errorf("AddMount(%q): expected an error", arg)
		}
	}
}

func TestSetNamePolicy(t *testing.T) {
	cfg := config.NewManager(filepath.Join(t.TempDir(), "config.json"))
	if err := SetNamePolicy(cfg, "sometimes"); err == nil {
		t.Error("unknown policy should be rejected")
	}
	if err := SetNamePolicy(cfg, "Unique"); err != nil {
		t.Fatal(err)
	}
	if got := cfg.Get().Desktop.NamePolicy; got != "unique" {
		t.Errorf("expected unique, got %q", got)
	}
}
