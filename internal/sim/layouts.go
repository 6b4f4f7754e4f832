package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/san-kum/navcore/internal/geom"
	"github.com/san-kum/navcore/internal/integrators"
)

// Layout is a named vehicle design: a body plus the devices mounted on it.
type Layout struct {
	Name        string
	Description string
	Mass        float64
	Radius      float64
	mount       func(w *World)
}

// Registry holds the known vehicle layouts.
type Registry struct {
	layouts map[string]Layout
}

func NewRegistry() *Registry {
	r := &Registry{layouts: make(map[string]Layout)}

	r.Register(Layout{
		Name:        "drone",
		Description: "six-axis thruster craft with gyro, connector, corner sensors and camera",
		Mass:        1000,
		Radius:      2,
		mount: func(w *World) {
			mountThrusters(w, 50000)
			w.AddGyro("gyro", LocalIdentity, math.Pi)
			mountSensing(w)
		},
	})
	r.Register(Layout{
		Name:        "lifter",
		Description: "heavy craft with doubled lift thrusters and a sideways-mounted gyro",
		Mass:        4000,
		Radius:      3,
		mount: func(w *World) {
			mountThrusters(w, 120000)
			w.AddThruster("lift-aux", geom.UnitY, 120000)
			sideways := geom.Frame{Forward: geom.UnitX, Right: r3.Vector{Z: -1}, Up: geom.UnitY}
			w.AddGyro("gyro", sideways, math.Pi/2)
			mountSensing(w)
		},
	})
	r.Register(Layout{
		Name:        "rover",
		Description: "four-wheel ground vehicle with front and rear steering",
		Mass:        1500,
		Radius:      2,
		mount: func(w *World) {
			w.AddWheel("wheel-fl", r3.Vector{X: -1, Y: -0.5, Z: 1.5})
			w.AddWheel("wheel-fr", r3.Vector{X: 1, Y: -0.5, Z: 1.5})
			w.AddWheel("wheel-rl", r3.Vector{X: -1, Y: -0.5, Z: -1.5})
			w.AddWheel("wheel-rr", r3.Vector{X: 1, Y: -0.5, Z: -1.5})
		},
	})
	r.Register(Layout{
		Name:        "miner",
		Description: "drone with a downward ground probe",
		Mass:        1200,
		Radius:      2,
		mount: func(w *World) {
			mountThrusters(w, 60000)
			w.AddGyro("gyro", LocalIdentity, math.Pi)
			mountSensing(w)
			w.SetGroundProbe()
		},
	})

	return r
}

func (r *Registry) Register(l Layout) {
	r.layouts[l.Name] = l
}

func (r *Registry) Get(name string) (Layout, error) {
	l, ok := r.layouts[name]
	if !ok {
		return Layout{}, fmt.Errorf("%w: %s", ErrUnknownLayout, name)
	}
	return l, nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.layouts))
	for name := range r.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates a world holding a vehicle of the named layout at start.
func (r *Registry) Build(name string, env Environment, integrator integrators.Integrator, start geom.Frame) (*World, error) {
	l, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	w, err := NewWorld(env, integrator, start, l.Mass, l.Radius)
	if err != nil {
		return nil, err
	}
	l.mount(w)
	return w, nil
}

// mountThrusters places one thruster pushing along each body axis.
func mountThrusters(w *World, maxThrust float64) {
	dirs := []struct {
		id  string
		dir r3.Vector
	}{
		{"right", geom.UnitX},
		{"left", r3.Vector{X: -1}},
		{"up", geom.UnitY},
		{"down", r3.Vector{Y: -1}},
		{"forward", geom.UnitZ},
		{"backward", r3.Vector{Z: -1}},
	}
	for _, d := range dirs {
		w.AddThruster(d.id, d.dir, maxThrust)
	}
}

// mountSensing adds a nose connector, the four forward corner sensors and the
// camera probe.
func mountSensing(w *World) {
	w.SetConnector(r3.Vector{Z: 1}, 0.5)
	for _, c := range []struct {
		id   string
		x, y float64
	}{
		{"sensor-tr", 1, 1},
		{"sensor-tl", -1, 1},
		{"sensor-br", 1, -1},
		{"sensor-bl", -1, -1},
	} {
		w.AddSensor(c.id, r3.Vector{X: c.x, Y: c.y, Z: 1.5}, 10)
	}
	w.SetCamera(r3.Vector{Z: 1.5})
}
