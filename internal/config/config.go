package config

import (
	"fmt"
	"os"

	"github.com/san-kum/navcore/internal/align"
	"github.com/san-kum/navcore/internal/avoid"
	"github.com/san-kum/navcore/internal/integrators"
	"github.com/san-kum/navcore/internal/nav"
	"github.com/san-kum/navcore/internal/path"
	"github.com/san-kum/navcore/internal/rover"
	"github.com/san-kum/navcore/internal/sim"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLayout     = "drone"
	DefaultIntegrator = "rk4"
	DefaultDt         = 0.1
	DefaultMaxTicks   = 6000
)

type Config struct {
	Sim   SimConfig    `yaml:"sim"`
	Align align.Config `yaml:"align"`
	Nav   nav.Config   `yaml:"nav"`
	Path  path.Config  `yaml:"path"`
	Avoid avoid.Config `yaml:"avoid"`
	Rover rover.Config `yaml:"rover"`
}

type SimConfig struct {
	Layout     string  `yaml:"layout"`
	Integrator string  `yaml:"integrator"`
	Dt         float64 `yaml:"dt"`
	MaxTicks   int     `yaml:"max_ticks"`
}

// Runner is the tick-loop configuration of the simulator.
func (s SimConfig) Runner() sim.Config {
	return sim.Config{Dt: s.Dt, MaxTicks: s.MaxTicks}
}

func DefaultConfig() *Config {
	return &Config{
		Sim: SimConfig{
			Layout:     DefaultLayout,
			Integrator: DefaultIntegrator,
			Dt:         DefaultDt,
			MaxTicks:   DefaultMaxTicks,
		},
		Align: align.DefaultConfig(),
		Nav:   nav.DefaultConfig(),
		Path:  path.DefaultConfig(),
		Avoid: avoid.DefaultConfig(),
		Rover: rover.DefaultConfig(),
	}
}

// Load reads a YAML file over the defaults; keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if _, e := integrators.ByName(c.Sim.Integrator); e != nil {
		err = multierr.Append(err, e)
	}
	if _, e := sim.NewRegistry().Get(c.Sim.Layout); e != nil {
		err = multierr.Append(err, e)
	}
	err = multierr.Append(err, c.Sim.Runner().Validate())

	positive := []struct {
		name  string
		value float64
	}{
		{"align.precision", c.Align.Precision},
		{"nav.precision", c.Nav.Precision},
		{"path.nav_precision", c.Path.NavPrecision},
		{"path.align_precision", c.Path.AlignPrecision},
		{"path.docking_nav_precision", c.Path.DockingNavPrecision},
		{"path.docking_align_precision", c.Path.DockingAlignPrecision},
		{"rover.arrival_radius", c.Rover.ArrivalRadius},
	}
	for _, p := range positive {
		if p.value <= 0 {
			err = multierr.Append(err, fmt.Errorf("%s must be positive, got %g", p.name, p.value))
		}
	}
	return err
}
