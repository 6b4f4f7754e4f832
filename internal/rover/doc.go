// Package rover drives wheeled ground vehicles. Wheels are grouped into
// quadrants around the centre of mass and receive mirrored propulsion and
// steering so a single command turns all four corners together.
package rover
