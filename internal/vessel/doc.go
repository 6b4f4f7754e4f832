// Package vessel defines the actuator and sensor interfaces the control core
// binds to.
//
// A vehicle is handed to the core as a [Binding]:
//
//   - [Reference]: pose, velocity, gravity and mass
//   - [OrientationActuator]: gyroscope-like rate overrides
//   - [ThrustActuator]: fixed-direction thrusters
//   - [Suspension]: steerable driven wheels
//   - [Connector], [ProximitySensor], [RangingProbe], [ExtentProbe]
//
// Components fail to initialize with an [InitError] when a required class of
// device is missing.
package vessel
