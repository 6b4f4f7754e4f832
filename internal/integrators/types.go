package integrators

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r3"
)

// State is a body's translational state: position followed by velocity.
type State []float64

// Pack builds a State from position and velocity.
func Pack(p, v r3.Vector) State {
	return State{p.X, p.Y, p.Z, v.X, v.Y, v.Z}
}

// Unpack splits a State built by Pack.
func (s State) Unpack() (p, v r3.Vector) {
	return r3.Vector{X: s[0], Y: s[1], Z: s[2]}, r3.Vector{X: s[3], Y: s[4], Z: s[5]}
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System yields the time derivative of a state.
type System interface {
	Derive(x State, t float64) State
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(x State, t float64) State

func (f SystemFunc) Derive(x State, t float64) State { return f(x, t) }

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

var factories = map[string]func() Integrator{
	"euler":  func() Integrator { return NewEuler() },
	"rk4":    func() Integrator { return NewRK4() },
	"rk45":   func() Integrator { return NewRK45() },
	"verlet": func() Integrator { return NewVerlet() },
}

// ByName returns a fresh integrator.
func ByName(name string) (Integrator, error) {
	fn, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
