package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.System.Scale != 1.0 {
		t.Errorf("default scale = %f, expected 1", cfg.System.Scale)
	}
	if cfg.System.G != DefaultG {
		t.Errorf("default g = %g, expected %g", cfg.System.G, DefaultG)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "system.yaml")
	cfg := GetPreset("earth-moon")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.System.Name != "earth-moon" {
		t.Errorf("system name = %q", loaded.System.Name)
	}
	if len(loaded.System.Bodies) != 2 {
		t.Fatalf("expected 2 bodies, got %d", len(loaded.System.Bodies))
	}
	moon := loaded.System.Bodies[1]
	if moon.Position.X != 384400 {
		t.Errorf("moon position.x = %f, raw value should survive the round trip", moon.Position.X)
	}
}

func TestValidateRejectsCoincidentBodies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.System.Bodies = []BodyDef{
		{Name: "a", Mass: 1, Position: Triple{X: 1}},
		{Name: "b", Mass: 1, Position: Triple{X: 1}},
	}

	if err := cfg.Validate(); err == nil {
		t.Error("expected coincident positions to be rejected")
	}
}

func TestValidateRejectsBadScale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.System.Scale = 0

	if err := cfg.Validate(); err == nil {
		t.Error("expected zero scale to be rejected")
	}
}

func TestValidateRejectsNegativeMass(t *testing.T) {
	cfg := DefaultConfig()
	cfg.System.Bodies = []BodyDef{{Name: "a", Mass: -1}}

	if err := cfg.Validate(); err == nil {
		t.Error("expected negative mass to be rejected")
	}
}

func TestGetPreset(t *testing.T) {
	if GetPreset("sol") == nil {
		t.Fatal("expected sol preset")
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for unknown preset")
	}
	if len(ListPresets()) < 3 {
		t.Error("expected at least three presets")
	}
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s should validate: %v", name, err)
		}
	}
}
