// Package geom provides the orientation frames and rotation helpers shared by
// the control packages.
//
// Vectors are [r3.Vector] values. A [Frame] maps world directions into local
// (right, up, forward) coordinates; an angular command expressed in those
// coordinates reads as (pitch, yaw, roll):
//
//	local := frame.ToLocal(worldAxis)
//	pitch, yaw, roll := local.X, local.Y, local.Z
//
// All helpers are pure and handle degenerate input (zero vectors, parallel
// axes) by falling back to a defined value rather than producing NaN.
package geom
