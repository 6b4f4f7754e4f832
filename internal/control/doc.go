// Package control provides the discrete feedback regulators used by every
// motion component.
//
//   - [PID]: Proportional-Integral-Derivative controller fed one error per tick
//   - [AngleController]: PID over angles, wrapping the error into (-pi, pi]
//
// # Usage
//
//	pid := control.NewPID(3, 1, 0, 1.0/6)  // Kp, Ki, Kd, time step
//	accel := pid.Control(desired - actual)
//
// Both support live tuning through GetParams/SetParam.
package control
