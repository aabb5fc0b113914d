package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManagerAt(filepath.Join(t.TempDir(), "pixelmagic", "config.toml"))
	m.lookupInstallPath = func() (string, error) { return "", errors.New("no registry") }
	return m
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	m := newTestManager(t)
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg := m.Get()
	if cfg.Rotation.Name != "Warrior Sample" {
		t.Errorf("Expected default rotation, got %q", cfg.Rotation.Name)
	}
	if cfg.Hotkeys.Toggle != "Ctrl+Alt+P" {
		t.Errorf("Expected default toggle hotkey, got %q", cfg.Hotkeys.Toggle)
	}
	if len(cfg.Game.ProcessNames) != 3 {
		t.Errorf("Expected 3 default process names, got %v", cfg.Game.ProcessNames)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	m := newTestManager(t)
	m.Update(func(c *Config) {
		c.Rotation.Mode = "aoe"
		c.Rotation.PulseIntervalMS = 100
		c.Spells = append(c.Spells, SpellConfig{Name: "Rend", Slot: 2, Key: "D2"})
	})
	if err := m.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := NewManagerAt(m.Path())
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg := loaded.Get()
	if cfg.Rotation.Mode != "aoe" || cfg.PulseInterval().Milliseconds() != 100 {
		t.Errorf("Unexpected rotation config %+v", cfg.Rotation)
	}
	if len(cfg.Spells) != 2 || cfg.Spells[1].Name != "Rend" {
		t.Errorf("Expected 2 spells, got %+v", cfg.Spells)
	}
}

func TestLoadPartialFile(t *testing.T) {
	m := newTestManager(t)
	if err := os.MkdirAll(filepath.Dir(m.Path()), 0755); err != nil {
		t.Fatal(err)
	}
	data := `
[game]
install_path = 'D:\Games\World of Warcraft'

[api]
enabled = false
`
	if err := os.WriteFile(m.Path(), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg := m.Get()
	if cfg.Game.InstallPath != `D:\Games\World of Warcraft` {
		t.Errorf("Expected install path from file, got %q", cfg.Game.InstallPath)
	}
	if cfg.API.Enabled {
		t.Error("Expected API disabled")
	}
	if cfg.Rotation.PulseIntervalMS != 250 {
		t.Errorf("Expected default pulse interval, got %d", cfg.Rotation.PulseIntervalMS)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	m := newTestManager(t)
	os.MkdirAll(filepath.Dir(m.Path()), 0755)
	os.WriteFile(m.Path(), []byte("[rotation]\npulse_interval_ms = 0\n"), 0644)

	if err := m.Load(); err == nil {
		t.Error("Expected error for zero pulse interval")
	}
	if m.Get().Rotation.PulseIntervalMS != 250 {
		t.Error("Expected defaults kept after failed load")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port", func(c *Config) { c.API.Port = 70000 }},
		{"spell name", func(c *Config) { c.Spells = []SpellConfig{{Slot: 1, Key: "D1"}} }},
		{"spell slot", func(c *Config) { c.Spells = []SpellConfig{{Name: "Charge", Key: "D1"}} }},
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}
	for _, tt := range tests {
		c := DefaultConfig()
		tt.mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestGetReturnsCopy(t *testing.T) {
	m := newTestManager(t)
	cfg := m.Get()
	cfg.Game.ProcessNames[0] = "Other"
	cfg.Rotation.Name = "Changed"

	fresh := m.Get()
	if fresh.Game.ProcessNames[0] != "Wow" || fresh.Rotation.Name != "Warrior Sample" {
		t.Error("Expected Get to return an independent copy")
	}
}

func TestInstallPathTrimsConfigured(t *testing.T) {
	m := newTestManager(t)
	m.Update(func(c *Config) { c.Game.InstallPath = "  C:\\WoW  " })

	p, err := m.InstallPath()
	if err != nil {
		t.Fatalf("InstallPath failed: %v", err)
	}
	if p != "C:\\WoW" {
		t.Errorf("Expected trimmed path, got %q", p)
	}
}

func TestInstallPathFallsBackToRegistry(t *testing.T) {
	m := newTestManager(t)
	m.lookupInstallPath = func() (string, error) { return `C:\Program Files (x86)\World of Warcraft`, nil }

	p, err := m.InstallPath()
	if err != nil {
		t.Fatalf("InstallPath failed: %v", err)
	}
	if !strings.HasSuffix(p, "World of Warcraft") {
		t.Errorf("Expected registry path, got %q", p)
	}

	reloaded := NewManagerAt(m.Path())
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if reloaded.Get().Game.InstallPath != p {
		t.Errorf("Expected registry path persisted, got %q", reloaded.Get().Game.InstallPath)
	}
}

func TestInstallPathNotFound(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.InstallPath(); !errors.Is(err, ErrInstallPathNotFound) {
		t.Errorf("Expected ErrInstallPathNotFound, got %v", err)
	}
	if _, err := m.AddonPath(); !errors.Is(err, ErrInstallPathNotFound) {
		t.Errorf("Expected ErrInstallPathNotFound from AddonPath, got %v", err)
	}
}

func TestAddonPath(t *testing.T) {
	m := newTestManager(t)
	m.Update(func(c *Config) { c.Game.InstallPath = "wow" })

	p, err := m.AddonPath()
	if err != nil {
		t.Fatalf("AddonPath failed: %v", err)
	}
	if want := filepath.Join("wow", "Interface", "AddOns"); p != want {
		t.Errorf("Expected %q, got %q", want, p)
	}
}

func TestChangeCallback(t *testing.T) {
	m := newTestManager(t)
	calls := 0
	m.RegisterChangeCallback(func() { calls++ })

	m.Update(func(c *Config) { c.Rotation.Mode = "aoe" })
	m.Set(DefaultConfig())
	if calls != 2 {
		t.Errorf("Expected 2 change callbacks, got %d", calls)
	}
}
