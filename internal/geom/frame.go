package geom

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Frame is a position plus three orthonormal basis vectors in world space.
// The basis is trusted as given and never re-orthonormalized.
type Frame struct {
	Position r3.Vector
	Forward  r3.Vector
	Right    r3.Vector
	Up       r3.Vector
}

var (
	UnitX = r3.Vector{X: 1}
	UnitY = r3.Vector{Y: 1}
	UnitZ = r3.Vector{Z: 1}
)

// Identity returns the frame at pos looking down -Z with +Y up.
func Identity(pos r3.Vector) Frame {
	return Frame{
		Position: pos,
		Forward:  r3.Vector{Z: -1},
		Right:    UnitX,
		Up:       UnitY,
	}
}

// NewFrame builds a frame from a forward and an up vector. Right is forward x up.
func NewFrame(pos, forward, up r3.Vector) Frame {
	f := forward.Normalize()
	u := up.Normalize()
	return Frame{
		Position: pos,
		Forward:  f,
		Right:    f.Cross(u).Normalize(),
		Up:       u,
	}
}

// ToLocal expresses a world direction in the frame's (right, up, forward) axes.
func (f Frame) ToLocal(v r3.Vector) r3.Vector {
	return r3.Vector{X: v.Dot(f.Right), Y: v.Dot(f.Up), Z: v.Dot(f.Forward)}
}

// ToWorld is the inverse of ToLocal.
func (f Frame) ToWorld(l r3.Vector) r3.Vector {
	return f.Right.Mul(l.X).Add(f.Up.Mul(l.Y)).Add(f.Forward.Mul(l.Z))
}

// PointToLocal converts a world point into frame-relative coordinates.
func (f Frame) PointToLocal(p r3.Vector) r3.Vector {
	return f.ToLocal(p.Sub(f.Position))
}

// PointToWorld converts a frame-relative point into world coordinates.
func (f Frame) PointToWorld(l r3.Vector) r3.Vector {
	return f.Position.Add(f.ToWorld(l))
}

// Rotate turns the basis around a world axis. The position is unchanged.
func (f Frame) Rotate(axis r3.Vector, angle float64) Frame {
	return Frame{
		Position: f.Position,
		Forward:  RotateAround(f.Forward, axis, angle),
		Right:    RotateAround(f.Right, axis, angle),
		Up:       RotateAround(f.Up, axis, angle),
	}
}

// Compose places a frame given in this frame's local coordinates into world space.
func (f Frame) Compose(local Frame) Frame {
	return Frame{
		Position: f.PointToWorld(local.Position),
		Forward:  f.ToWorld(local.Forward),
		Right:    f.ToWorld(local.Right),
		Up:       f.ToWorld(local.Up),
	}
}

// Orthonormalize re-derives right and up from forward. Used by the simulator
// to stop integration drift; the control code never calls it.
func (f Frame) Orthonormalize() Frame {
	fwd := f.Forward.Normalize()
	right := fwd.Cross(f.Up).Normalize()
	if right.Norm2() == 0 {
		right = f.Right.Normalize()
	}
	return Frame{
		Position: f.Position,
		Forward:  fwd,
		Right:    right,
		Up:       right.Cross(fwd).Normalize(),
	}
}

func (f Frame) String() string {
	return fmt.Sprintf("pos=%v fwd=%v up=%v", f.Position, f.Forward, f.Up)
}

// RotateAround rotates v by angle radians around axis using Rodrigues' formula.
// A zero axis leaves v unchanged.
func RotateAround(v, axis r3.Vector, angle float64) r3.Vector {
	k := axis.Normalize()
	if k.Norm2() == 0 || angle == 0 {
		return v
	}
	cos, sin := math.Cos(angle), math.Sin(angle)
	return v.Mul(cos).
		Add(k.Cross(v).Mul(sin)).
		Add(k.Mul(k.Dot(v) * (1 - cos)))
}

// ProjectOnPlane removes the component of v along the plane normal n.
func ProjectOnPlane(v, n r3.Vector) r3.Vector {
	nn := n.Norm2()
	if nn == 0 {
		return v
	}
	return v.Sub(n.Mul(v.Dot(n) / nn))
}

// Perpendicular returns some unit vector orthogonal to v.
func Perpendicular(v r3.Vector) r3.Vector {
	return v.Ortho()
}

// LookAt returns a frame at pos facing target. The up hint is projected off
// the new forward axis; when the hint is parallel to forward any perpendicular
// axis is used. A target at pos keeps the hint-based identity orientation.
func LookAt(pos, target, upHint r3.Vector) Frame {
	fwd := target.Sub(pos).Normalize()
	if fwd.Norm2() == 0 {
		fwd = r3.Vector{Z: -1}
	}
	up := ProjectOnPlane(upHint, fwd).Normalize()
	if up.Norm2() < 1e-12 {
		up = Perpendicular(fwd)
	}
	return NewFrame(pos, fwd, up)
}
