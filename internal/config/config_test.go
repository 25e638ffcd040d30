package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/mdsim/internal/md"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.System.Edge != 3 || cfg.System.Element != "He" {
		t.Errorf("expected 3³ He cube, got %d³ %s", cfg.System.Edge, cfg.System.Element)
	}
	if cfg.Force.Sigma != 0.9 || cfg.Force.Epsilon != 20.0 {
		t.Errorf("unexpected LJ parameters %+v", cfg.Force)
	}
	if cfg.Dt != 0.001 || cfg.Steps != 10000 || cfg.Interval != 100 {
		t.Errorf("unexpected run settings dt=%g steps=%d interval=%d", cfg.Dt, cfg.Steps, cfg.Interval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero edge", func(c *Config) { c.System.Edge = 0 }},
		{"negative jitter", func(c *Config) { c.System.Jitter = -1 }},
		{"unknown element", func(c *Config) { c.System.Element = "Xe" }},
		{"zero sigma", func(c *Config) { c.Force.Sigma = 0 }},
		{"negative epsilon", func(c *Config) { c.Force.Epsilon = -1 }},
		{"unknown strategy", func(c *Config) { c.Force.Strategy = "gpu" }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative steps", func(c *Config) { c.Steps = -5 }},
		{"zero interval", func(c *Config) { c.Interval = 0 }},
		{"zero threshold", func(c *Config) { c.Threshold = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, md.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestCustomMasses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Masses = map[string]float64{"Ar": 39.948}
	cfg.System.Element = "Ar"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if m, _ := cfg.MassTable().Mass("Ar"); m != 39.948 {
		t.Errorf("expected Ar mass 39.948, got %f", m)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := "system:\n  edge: 4\nforce:\n  epsilon: 5\nsteps: 200\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.System.Edge != 4 || cfg.Force.Epsilon != 5 || cfg.Steps != 200 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.System.Element != "He" || cfg.Force.Sigma != 0.9 || cfg.Interval != 100 {
		t.Errorf("defaults not kept: %+v", cfg)
	}
}

func TestLoadOverPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("dt: 0.002\nforce:\n  epsilon: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("He", "large")
	cfg, err := LoadOver(base, path)
	if err != nil {
		t.Fatalf("LoadOver failed: %v", err)
	}
	if cfg.Dt != 0.002 || cfg.Force.Epsilon != 4 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.System.Edge != 5 || cfg.Force.Sigma != 0.9 {
		t.Errorf("preset values not kept: %+v", cfg)
	}
	if base.Dt != 0.001 || base.Force.Epsilon != 20 {
		t.Errorf("LoadOver modified its base: %+v", base)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("system: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := DefaultConfig()
	cfg.System.Jitter = 0.02
	cfg.System.Seed = 7
	cfg.Force.Strategy = "parallel"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.System != cfg.System || loaded.Force != cfg.Force || loaded.Dt != cfg.Dt {
		t.Errorf("round trip mismatch: %+v vs %+v", loaded, cfg)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("He", "large")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.System.Edge != 5 {
		t.Errorf("expected edge 5, got %d", cfg.System.Edge)
	}

	cfg.System.Edge = 99
	if GetPreset("He", "large").System.Edge != 5 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("He", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("Xe", "default"); cfg != nil {
		t.Error("expected nil for nonexistent element")
	}
}

func TestPresetsAreValid(t *testing.T) {
	for _, element := range Elements() {
		for _, name := range ListPresets(element) {
			if err := GetPreset(element, name).Validate(); err != nil {
				t.Errorf("preset %s/%s: %v", element, name, err)
			}
		}
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("He")
	if len(presets) == 0 {
		t.Error("expected presets for He")
	}
	if presets[0] != "default" {
		t.Errorf("expected sorted names, got %v", presets)
	}

	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent element")
	}
}
