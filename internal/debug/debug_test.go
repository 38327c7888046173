package debug

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogRespectsCategories(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	Enable(WM)
	Disable(VFS_ENTRY)

	Log(WM, "opened %s", "files")
	Log(VFS_ENTRY, "imported %s", "a.txt")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Message != "opened files" {
		t.Errorf("expected message %q, got %q", "opened files", entries[0].Message)
	}
	if got := entries[0].ContextMap()["cat"]; got != "WM" {
		t.Errorf("expected cat=WM, got %v", got)
	}
}

func TestApplyEnv(t *testing.T) {
	saved := map[Category]bool{}
	for _, c := range []Category{WM, VFS, NAV} {
		saved[c] = IsEnabled(c)
	}
	defer SetCategories(saved)

	applyEnv("wm,nav")
	if !IsEnabled(WM) || !IsEnabled(NAV) {
		t.Error("expected WM and NAV to be enabled")
	}
	if IsEnabled(VFS) {
		t.Error("expected VFS to be disabled")
	}

	applyEnv("all")
	if !IsEnabled(VFS) {
		t.Error("expected VFS to be enabled after all")
	}
}

func TestInitBadLevelFallsBack(t *testing.T) {
	if err := Init(Config{Level: "loud", Format: "console", OutputPath: "stderr"}); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	defer SetLogger(zap.NewNop())
	if !level.Enabled(zap.InfoLevel) || level.Enabled(zap.DebugLevel) {
		t.Errorf("expected info level, got %v", level.Level())
	}
}
