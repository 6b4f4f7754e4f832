// Package sim is a small rigid-body world for exercising the control core.
//
// A World holds one vehicle body and the devices bolted to it: gyros,
// thrusters, wheels, a connector, proximity sensors, a ranging camera and a
// ground probe. Each device implements the matching vessel interface, so the
// controllers drive simulated hardware exactly as they would real hardware.
// Translational motion is integrated with a pluggable integrator; rotation
// follows the gyro overrides directly.
//
// Runner steps a World at a fixed tick, calling a Controller before every
// step and feeding Metrics and Observers with a Sample after it.
package sim
