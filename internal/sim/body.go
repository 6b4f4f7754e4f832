package sim

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/navcore/internal/geom"
)

// Body is the simulated vehicle. It is the vehicle's vessel.Reference.
type Body struct {
	frame   geom.Frame
	vel     r3.Vector
	angVel  r3.Vector
	mass    float64
	radius  float64
	com     r3.Vector
	gravity r3.Vector
}

func (b *Body) Frame() geom.Frame          { return b.frame }
func (b *Body) LinearVelocity() r3.Vector  { return b.vel }
func (b *Body) AngularVelocity() r3.Vector { return b.angVel }
func (b *Body) Gravity() r3.Vector         { return b.gravity }
func (b *Body) Mass() float64              { return b.mass }
func (b *Body) BoundingRadius() float64    { return b.radius }

// CenterOfMass is the world position of the body's centre of mass.
func (b *Body) CenterOfMass() r3.Vector {
	return b.frame.PointToWorld(b.com)
}

func (b *Body) Position() r3.Vector {
	return b.frame.Position
}

func (b *Body) Speed() float64 {
	return b.vel.Norm()
}

// Teleport places the body at a new pose at rest.
func (b *Body) Teleport(f geom.Frame) {
	b.frame = f
	b.vel = r3.Vector{}
	b.angVel = r3.Vector{}
}
