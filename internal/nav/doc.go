// Package nav implements point-to-point translational navigation.
//
// A [Navigator] classifies thrusters into six body-relative [Direction]
// groups, turns the velocity error towards a target into a force through
// three PID regulators, and splits that force across the groups as thrust
// ratios. One call to [Navigator.NavigateTo] is one tick.
//
// [FindGround] is a bisection search over the reach of an extent probe.
package nav
