// Package scenario describes simulated missions in YAML and runs them: it
// builds a world from a vehicle layout, binds the control components to the
// world's devices and ticks them until the mission ends.
package scenario
