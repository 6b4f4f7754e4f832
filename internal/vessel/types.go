package vessel

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/navcore/internal/geom"
)

// Reference is the vehicle's pose and motion sensor. All control maths is
// done against its frame.
type Reference interface {
	Frame() geom.Frame
	LinearVelocity() r3.Vector
	AngularVelocity() r3.Vector
	// Gravity is the natural gravity acceleration at the vehicle, zero in space.
	Gravity() r3.Vector
	Mass() float64
	CenterOfMass() r3.Vector
	BoundingRadius() float64
}

// OrientationActuator applies torque towards a commanded angular rate.
// Overrides are given in the actuator's own frame as (pitch, yaw, roll).
type OrientationActuator interface {
	ID() string
	Frame() geom.Frame
	SetOverride(rate r3.Vector)
	ClearOverride()
}

// ThrustActuator pushes the vehicle along one fixed body direction.
type ThrustActuator interface {
	ID() string
	// Direction is the world direction of the force applied to the vehicle.
	Direction() r3.Vector
	MaxThrust() float64
	SetThrustRatio(ratio float64)
}

// Connector couples the vehicle to an external structure.
type Connector interface {
	Connected() bool
	Connect()
	Disconnect()
	// PeerForward reports the facing of the coupled structure when connected.
	PeerForward() (r3.Vector, bool)
}

// ProximitySensor is a binary obstacle detector.
type ProximitySensor interface {
	ID() string
	Position() r3.Vector
	Active() bool
}

// RangingProbe returns the distance to the first obstacle along a world
// direction, up to maxDistance.
type RangingProbe interface {
	Frame() geom.Frame
	SetEnabled(enabled bool)
	Range(dir r3.Vector, maxDistance float64) (float64, bool)
}

// Suspension is a steerable, driven wheel of a ground vehicle.
type Suspension interface {
	ID() string
	Position() r3.Vector
	SetPropulsion(p float64)
	SetSteering(s float64)
	SetBrake(on bool)
}

// ExtentProbe is a sensor with an adjustable reach that reports whether
// anything lies within it.
type ExtentProbe interface {
	SetExtent(extent float64)
	Extent() float64
	Active() bool
}

// Binding is everything a vehicle exposes to the control core. Fields that
// a vehicle lacks stay nil or empty.
type Binding struct {
	Reference Reference
	Gyros     []OrientationActuator
	Thrusters []ThrustActuator
	Wheels    []Suspension
	Connector Connector
	Sensors   []ProximitySensor
	Probe     RangingProbe
	Ground    ExtentProbe
}
