package viz

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/navcore/internal/geom"
	"github.com/san-kum/navcore/internal/sim"
)

const circleSegments = 24

// Scene is one frame of a running scenario.
type Scene struct {
	Env     sim.Environment
	Vehicle geom.Frame
	Radius  float64
	Trail   []r3.Vector
	Goal    r3.Vector
	HasGoal bool
}

// SceneOf captures the world's current frame.
func SceneOf(w *sim.World, trail []r3.Vector) Scene {
	return Scene{
		Env:     w.Environment(),
		Vehicle: w.Body().Frame(),
		Radius:  w.Body().BoundingRadius(),
		Trail:   trail,
	}
}

// WithGoal sets the marker drawn at the controller's goal.
func (s Scene) WithGoal(goal r3.Vector, ok bool) Scene {
	s.Goal, s.HasGoal = goal, ok
	return s
}

// Static is everything that does not move: obstacles, ports and the ground.
func (s Scene) Static() *Wireframe {
	w := NewWireframe()
	for _, o := range s.Env.Obstacles {
		w.AddCircle(o.Center, geom.UnitX, geom.UnitZ, o.Radius, circleSegments)
		w.AddCircle(o.Center, geom.UnitX, geom.UnitY, o.Radius, circleSegments)
		w.AddCircle(o.Center, geom.UnitY, geom.UnitZ, o.Radius, circleSegments)
	}
	for _, p := range s.Env.Ports {
		w.AddCircle(p.Position, geom.UnitX, geom.UnitZ, 0.5, 8)
		if p.Forward.Norm() > 0 {
			w.AddEdge(p.Position, p.Position.Add(p.Forward.Normalize().Mul(3)))
		}
	}
	return w
}

// VehicleFrame draws the body outline with a heading line and the up axis.
func (s Scene) VehicleFrame() *Wireframe {
	w := NewWireframe()
	f := s.Vehicle
	r := s.Radius
	if r <= 0 {
		r = 1
	}
	w.AddCircle(f.Position, f.Right, f.Forward, r, 12)
	w.AddEdge(f.Position, f.Position.Add(f.Forward.Mul(3*r)))
	w.AddEdge(f.Position, f.Position.Add(f.Up.Mul(r)))
	return w
}

// Wireframe assembles the full frame.
func (s Scene) Wireframe() *Wireframe {
	w := s.Static()
	w.Merge(s.VehicleFrame())
	for _, p := range s.Trail {
		w.AddPoint(p)
	}
	if s.HasGoal {
		g := s.Goal
		w.AddEdge(g.Add(r3.Vector{X: -1, Z: -1}), g.Add(r3.Vector{X: 1, Z: 1}))
		w.AddEdge(g.Add(r3.Vector{X: -1, Z: 1}), g.Add(r3.Vector{X: 1, Z: -1}))
	}
	return w
}

// Draw renders the scene onto c.
func (s Scene) Draw(c *Canvas, cam *Camera) {
	c.Clear()
	Render3D(c, s.Wireframe(), cam)
}

// Track draws a recorded trace top-down, fitted to the canvas. It is used
// for runs loaded from storage, where only positions survive.
func Track(c *Canvas, env sim.Environment, positions []r3.Vector) *Camera {
	scene := Scene{Env: env, Trail: positions}
	w := scene.Static()
	for _, p := range positions {
		w.AddPoint(p)
	}
	for i := 1; i < len(positions); i++ {
		w.AddEdge(positions[i-1], positions[i])
	}

	cam := NewCamera()
	cam.Fit(w.Points())
	c.Clear()
	Render3D(c, w, cam)
	return cam
}
