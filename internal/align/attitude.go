package align

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/san-kum/navcore/internal/geom"
)

// upVector is the direction opposing gravity. Without gravity the vehicle's
// own up axis stands in so the angles stay finite.
func (a *Aligner) upVector(cur geom.Frame) r3.Vector {
	up := a.ref.Gravity().Mul(-1).Normalize()
	if up.Norm2() == 0 {
		return cur.Up.Normalize()
	}
	return up
}

// horizon returns the yaw reference direction and its right-hand side in the
// plane perpendicular to up. World X is projected first; when it is parallel
// to up, world Z is used instead.
func horizon(up r3.Vector) (dir, right r3.Vector) {
	dir = geom.ProjectOnPlane(geom.UnitX, up)
	if dir.Norm2() <= degenerateReference {
		dir = geom.ProjectOnPlane(geom.UnitZ, up)
	}
	dir = dir.Normalize()
	return dir, dir.Cross(up)
}

// CalculateYawPitchRoll returns the gravity-relative attitude in radians.
// Yaw is positive turning right of the horizontal reference, pitch positive
// nose up, roll positive right side up.
func (a *Aligner) CalculateYawPitchRoll() (yaw, pitch, roll float64) {
	cur := a.ref.Frame()
	up := a.upVector(cur)
	down := up.Mul(-1)

	refDir, refRight := horizon(up)
	fh := geom.ProjectOnPlane(cur.Forward, up)
	if fh.Norm2() > 1e-12 {
		yaw = math.Atan2(fh.Dot(refRight), fh.Dot(refDir))
	}

	pitch = geom.SafeAcos(cur.Forward.Dot(down)) - math.Pi/2
	roll = geom.SafeAcos(cur.Right.Dot(down)) - math.Pi/2
	return yaw, pitch, roll
}

// FrameFromYawPitchRoll builds the frame at the vehicle's position with the
// given gravity-relative attitude.
func (a *Aligner) FrameFromYawPitchRoll(yaw, pitch, roll float64) geom.Frame {
	cur := a.ref.Frame()
	up := a.upVector(cur)
	refDir, refRight := horizon(up)

	fwd := refDir.Mul(math.Cos(yaw)).Add(refRight.Mul(math.Sin(yaw)))
	f := geom.NewFrame(cur.Position, fwd, up)
	f = f.Rotate(f.Right, pitch)
	return f.Rotate(f.Forward, -roll)
}

// CalculateBearingTo returns the heading of dest in the same convention as
// yaw: the vehicle's applied yaw is first undone around the gravity axis, then
// the signed angle to the horizontal direction of dest is measured.
func (a *Aligner) CalculateBearingTo(dest r3.Vector) float64 {
	cur := a.ref.Frame()
	delta := dest.Sub(cur.Position)
	if delta.Norm() < BearingMinDistance {
		return 0
	}

	up := a.upVector(cur)
	yaw, _, _ := a.CalculateYawPitchRoll()

	realFwd := geom.ProjectOnPlane(geom.RotateAround(cur.Forward, up, yaw), up).Normalize()
	if realFwd.Norm2() == 0 {
		realFwd, _ = horizon(up)
	}
	toDest := geom.ProjectOnPlane(delta, up).Normalize()

	cross := realFwd.Cross(toDest)
	return math.Atan2(cross.Dot(up.Mul(-1)), realFwd.Dot(toDest))
}
