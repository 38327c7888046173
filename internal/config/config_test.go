package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskshell", "config.json")
	m := NewManager(path)
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected default config file to be written: %v", err)
	}
	if got := m.Get().Desktop.BaseZ; got != 10 {
		t.Errorf("expected default baseZ 10, got %d", got)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"desktop": {"namePolicy": "unique"}, "mounts": [{"category": "usb", "dir": "/mnt/usb", "watch": true}]}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	m := NewManager(path)
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg := m.Get()
	if cfg.Desktop.NamePolicy != "unique" {
		t.Errorf("expected unique policy, got %q", cfg.Desktop.NamePolicy)
	}
	if cfg.Desktop.HistoryLimit != 100 {
		t.Errorf("unset fields should keep defaults, got historyLimit=%d", cfg.Desktop.HistoryLimit)
	}
	if len(cfg.Mounts) != 1 || !cfg.Mounts[0].Watch {
		t.Errorf("unexpected mounts %+v", cfg.Mounts)
	}
}

func TestLoadParseErrorUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	m := NewManager(path)
	if err := m.Load(); err != nil {
		t.Fatalf("parse errors should not fail Load: %v", err)
	}
	if m.ParseError() == nil {
		t.Error("expected ParseError to be recorded")
	}
	if m.Get().Server.Addr != DefaultConfig().Server.Addr {
		t.Error("expected defaults after a parse error")
	}
}

func TestAddAndRemoveMount(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "config.json"))
	if err := m.AddMount(MountConfig{Category: "usb", Dir: "/a"}); err != nil {
		t.Fatal(err)
	}
	if err := m.AddMount(MountConfig{Category: "usb", Dir: "/b"}); err != nil {
		t.Fatal(err)
	}
	if mounts := m.Get().Mounts; len(mounts) != 1 || mounts[0].Dir != "/b" {
		t.Errorf("expected one usb mount at /b, got %+v", mounts)
	}
	if err := m.RemoveMount("usb"); err != nil {
		t.Fatal(err)
	}
	if mounts := m.Get().Mounts; len(mounts) != 0 {
		t.Errorf("expected no mounts, got %+v", mounts)
	}
}

func TestDuration(t *testing.T) {
	testCases := []struct {
		input    string
		expected time.Duration
	}{
		{"", time.Minute},
		{"30s", 30 * time.Second},
		{"bogus", time.Minute},
		{"-5s", time.Minute},
	}
	for _, tc := range testCases {
		if got := Duration(tc.input, time.Minute); got != tc.expected {
			t.Errorf("Duration(%q): expected %s, got %s", tc.input, tc.expected, got)
		}
	}
}

func TestGenerateConfigBacksUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"server": {"addr": ":1"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	backup, err := GenerateConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if backup == "" {
		t.Fatal("expected a backup path")
	}
	if data, err := os.ReadFile(backup); err != nil || string(data) != `{"server": {"addr": ":1"}}` {
		t.Errorf("backup should hold the old config, got %q (%v)", data, err)
	}
}
