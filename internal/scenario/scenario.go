package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/geo/r3"
	"github.com/san-kum/navcore/internal/config"
	"github.com/san-kum/navcore/internal/geom"
	"github.com/san-kum/navcore/internal/path"
	"github.com/san-kum/navcore/internal/sim"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Mission kinds.
const (
	KindGoto  = "goto"
	KindAvoid = "avoid"
	KindPath  = "path"
	KindDrive = "drive"
	KindProbe = "probe"
)

var Kinds = []string{KindGoto, KindAvoid, KindPath, KindDrive, KindProbe}

var ErrInvalidScenario = errors.New("scenario: invalid")

// Pose is a position with an optional orientation. A zero forward vector
// means the identity orientation.
type Pose struct {
	Position r3.Vector `yaml:"position"`
	Forward  r3.Vector `yaml:"forward,omitempty"`
	Up       r3.Vector `yaml:"up,omitempty"`
}

func (p Pose) Frame() geom.Frame {
	if p.Forward.Norm2() == 0 {
		return geom.Identity(p.Position)
	}
	up := p.Up
	if up.Norm2() == 0 {
		up = geom.UnitY
	}
	return geom.LookAt(p.Position, p.Position.Add(p.Forward), up)
}

type WaypointSpec struct {
	Pose       `yaml:",inline"`
	Docking    bool      `yaml:"docking,omitempty"`
	DockingDir r3.Vector `yaml:"docking_dir,omitempty"`
}

type Mission struct {
	Kind   string    `yaml:"kind"`
	Target r3.Vector `yaml:"target"`
	// Speed is m/s for flying missions and the propulsion ratio for drive.
	Speed float64 `yaml:"speed"`

	// Path missions replay Path from PathFile, or the inline Waypoints.
	Path       string         `yaml:"path"`
	PathFile   string         `yaml:"path_file"`
	Waypoints  []WaypointSpec `yaml:"waypoints"`
	Reverse    bool           `yaml:"reverse"`
	StartIndex int            `yaml:"start_index"`

	// Probe missions bisect the ground probe over [Extent, Extent+Span].
	Extent    float64 `yaml:"extent"`
	Span      float64 `yaml:"span"`
	Precision float64 `yaml:"precision"`
}

type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Layout      string         `yaml:"layout"`
	Integrator  string         `yaml:"integrator"`
	Dt          float64        `yaml:"dt"`
	MaxTicks    int            `yaml:"max_ticks"`
	Gravity     r3.Vector      `yaml:"gravity"`
	Ground      *float64       `yaml:"ground,omitempty"`
	Start       Pose           `yaml:"start"`
	Obstacles   []sim.Obstacle `yaml:"obstacles"`
	Ports       []sim.Port     `yaml:"ports"`
	Mission     Mission        `yaml:"mission"`

	dir string
}

// Load reads a scenario file. A relative path_file resolves against the
// scenario's directory.
func Load(file string) (*Scenario, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	sc.dir = filepath.Dir(file)
	return sc, nil
}

func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	var err error
	if sc.Name == "" {
		err = multierr.Append(err, fmt.Errorf("%w: name is required", ErrInvalidScenario))
	}
	if sc.Preset != "" && config.GetPreset(sc.Preset) == nil {
		err = multierr.Append(err, fmt.Errorf("%w: unknown preset %q", ErrInvalidScenario, sc.Preset))
	}
	for i, o := range sc.Obstacles {
		if o.Radius <= 0 {
			err = multierr.Append(err, fmt.Errorf("%w: obstacle %d has no radius", ErrInvalidScenario, i))
		}
	}

	m := sc.Mission
	switch m.Kind {
	case KindGoto, KindAvoid:
	case KindDrive:
		if sc.Ground == nil {
			err = multierr.Append(err, fmt.Errorf("%w: drive mission needs a ground plane", ErrInvalidScenario))
		}
	case KindPath:
		if m.PathFile == "" && len(m.Waypoints) == 0 {
			err = multierr.Append(err, fmt.Errorf("%w: path mission needs path_file or waypoints", ErrInvalidScenario))
		}
		if m.PathFile != "" && m.Path == "" {
			err = multierr.Append(err, fmt.Errorf("%w: path mission with path_file needs a path name", ErrInvalidScenario))
		}
	case KindProbe:
		if m.Span <= 0 {
			err = multierr.Append(err, fmt.Errorf("%w: probe mission needs a positive span", ErrInvalidScenario))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("%w: unknown mission kind %q", ErrInvalidScenario, m.Kind))
	}
	return err
}

// Configure layers the scenario's settings over base, which is left untouched.
func (sc *Scenario) Configure(base *config.Config) *config.Config {
	cfg := *base
	if sc.Preset != "" {
		if p := config.GetPreset(sc.Preset); p != nil {
			cfg = *p
		}
	}
	if sc.Layout != "" {
		cfg.Sim.Layout = sc.Layout
	}
	if sc.Integrator != "" {
		cfg.Sim.Integrator = sc.Integrator
	}
	if sc.Dt > 0 {
		cfg.Sim.Dt = sc.Dt
	}
	if sc.MaxTicks > 0 {
		cfg.Sim.MaxTicks = sc.MaxTicks
	}
	return &cfg
}

// Environment is the world the scenario's vehicle is placed in.
func (sc *Scenario) Environment() sim.Environment {
	return sim.Environment{
		Gravity:   sc.Gravity,
		Obstacles: sc.Obstacles,
		Ports:     sc.Ports,
		Ground:    sc.Ground,
	}
}

// Path resolves the path a path mission replays.
func (sc *Scenario) Path() (*path.Path, error) {
	m := sc.Mission
	if len(m.Waypoints) > 0 {
		name := m.Path
		if name == "" {
			name = sc.Name
		}
		p := &path.Path{Name: name, Speed: m.Speed}
		if p.Speed <= 0 {
			p.Speed = path.DefaultSpeed
		}
		for _, w := range m.Waypoints {
			p.Waypoints = append(p.Waypoints, path.Waypoint{
				Frame:      w.Frame(),
				Docking:    w.Docking,
				DockingDir: w.DockingDir,
			})
		}
		return p, nil
	}

	file := m.PathFile
	if !filepath.IsAbs(file) && sc.dir != "" {
		file = filepath.Join(sc.dir, file)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	for _, p := range path.Unmarshal(string(data)) {
		if p.Name == m.Path {
			if m.Speed > 0 {
				p.Speed = m.Speed
			}
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", path.ErrUnknownPath, m.Path, file)
}
