package config

import "sort"

// Presets are named starting configurations. gen2 is the default tuning;
// gen1 keeps the older, softer gyro gain and looser docking alignment.
var Presets = map[string]func() *Config{
	"gen2": DefaultConfig,
	"gen1": func() *Config {
		cfg := DefaultConfig()
		cfg.Align.Gains.Kp = 7
		cfg.Path.DockingAlignPrecision = 0.02
		return cfg
	},
	"lifter": func() *Config {
		cfg := DefaultConfig()
		cfg.Sim.Layout = "lifter"
		cfg.Nav.FactorGravity = true
		return cfg
	},
	"rover": func() *Config {
		cfg := DefaultConfig()
		cfg.Sim.Layout = "rover"
		cfg.Sim.Integrator = "euler"
		return cfg
	},
	"miner": func() *Config {
		cfg := DefaultConfig()
		cfg.Sim.Layout = "miner"
		cfg.Nav.FactorGravity = true
		cfg.Sim.Integrator = "verlet"
		return cfg
	},
}

// GetPreset returns a fresh copy of a preset, or nil when it does not exist.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
