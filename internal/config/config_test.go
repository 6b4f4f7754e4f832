package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Sim.Layout != "drone" {
		t.Errorf("expected layout drone, got %s", cfg.Sim.Layout)
	}
	if cfg.Sim.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Align.Gains.Kp != 10 {
		t.Errorf("expected gyro Kp 10, got %v", cfg.Align.Gains.Kp)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("gen1")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Align.Gains.Kp != 7 {
		t.Errorf("expected gyro Kp 7, got %v", cfg.Align.Gains.Kp)
	}
	if cfg.Path.DockingAlignPrecision != 0.02 {
		t.Errorf("expected docking precision 0.02, got %v", cfg.Path.DockingAlignPrecision)
	}

	cfg.Align.Gains.Kp = 99
	if GetPreset("gen1").Align.Gains.Kp != 7 {
		t.Error("presets should not share state")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	want := []string{"gen1", "gen2", "lifter", "miner", "rover"}
	if got := ListPresets(); !reflect.DeepEqual(got, want) {
		t.Errorf("presets %v, want %v", got, want)
	}
	for _, name := range want {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sim.Layout = "zeppelin"
	cfg.Sim.Integrator = "magic"
	cfg.Sim.Dt = 0
	cfg.Nav.Precision = -1

	err := cfg.Validate()
	if got := len(multierr.Errors(err)); got != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", got, err)
	}
	for _, want := range []string{"zeppelin", "magic", "dt", "nav.precision"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error lacks %q: %v", want, err)
		}
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "navsim.yaml")

	cfg := GetPreset("lifter")
	cfg.Path.ApproachDistance = 3.5
	if err := Save(file, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(file)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", got, cfg)
	}
}

func TestLoadPartial(t *testing.T) {
	file := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(file, []byte("sim:\n  layout: rover\nrover:\n  arrival_radius: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sim.Layout != "rover" || cfg.Rover.ArrivalRadius != 4 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Sim.Dt != DefaultDt || cfg.Rover.Heading.Kp != 1.5 {
		t.Error("missing keys should keep defaults")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	file := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(file, []byte("sim: [not, a, map"), 0644)
	if _, err := Load(file); err == nil {
		t.Error("expected parse error")
	}
}
