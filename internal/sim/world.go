package sim

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/san-kum/navcore/internal/geom"
	"github.com/san-kum/navcore/internal/integrators"
	"github.com/san-kum/navcore/internal/vessel"
)

// Environment is everything in the world besides the vehicle.
type Environment struct {
	Gravity   r3.Vector  `yaml:"gravity"`
	Obstacles []Obstacle `yaml:"obstacles"`
	Ports     []Port     `yaml:"ports"`
	// Ground is the height of a flat ground plane (world Y); nil for space.
	Ground *float64 `yaml:"ground,omitempty"`
}

// WheelConfig tunes the kinematic ground model.
type WheelConfig struct {
	MaxSpeed float64 `yaml:"max_speed"`
	MaxSteer float64 `yaml:"max_steer"`
}

func DefaultWheelConfig() WheelConfig {
	return WheelConfig{MaxSpeed: 10, MaxSteer: 0.6}
}

// World is one vehicle in an environment.
type World struct {
	env        Environment
	body       *Body
	integrator integrators.Integrator
	wheelCfg   WheelConfig

	gyros     []*Gyro
	thrusters []*Thruster
	wheels    []*Wheel
	sensors   []*ProximitySensor
	connector *Connector
	camera    *Camera
	ground    *GroundProbe

	time float64
}

func NewWorld(env Environment, integrator integrators.Integrator, start geom.Frame, mass, radius float64) (*World, error) {
	if mass <= 0 {
		return nil, fmt.Errorf("%w: mass must be positive, got %f", ErrInvalidConfig, mass)
	}
	if integrator == nil {
		integrator = integrators.NewRK4()
	}
	return &World{
		env:        env,
		integrator: integrator,
		wheelCfg:   DefaultWheelConfig(),
		body: &Body{
			frame:   start,
			mass:    mass,
			radius:  radius,
			gravity: env.Gravity,
		},
	}, nil
}

func (w *World) Body() *Body               { return w.body }
func (w *World) Time() float64             { return w.time }
func (w *World) Environment() Environment  { return w.env }
func (w *World) Gyros() []*Gyro            { return w.gyros }
func (w *World) Thrusters() []*Thruster    { return w.thrusters }
func (w *World) Wheels() []*Wheel          { return w.wheels }
func (w *World) Connector() *Connector     { return w.connector }
func (w *World) Camera() *Camera           { return w.camera }
func (w *World) GroundProbe() *GroundProbe { return w.ground }

func (w *World) SetWheelConfig(cfg WheelConfig) { w.wheelCfg = cfg }

// AddGyro mounts a gyro with the given orientation relative to the body.
func (w *World) AddGyro(id string, mount geom.Frame, maxRate float64) *Gyro {
	g := &Gyro{id: id, body: w.body, mount: mount, maxRate: maxRate}
	w.gyros = append(w.gyros, g)
	return g
}

// AddThruster mounts a thruster whose force on the body points along dir,
// given in body coordinates.
func (w *World) AddThruster(id string, dir r3.Vector, maxThrust float64) *Thruster {
	t := &Thruster{id: id, body: w.body, dir: dir, max: maxThrust}
	w.thrusters = append(w.thrusters, t)
	return t
}

func (w *World) AddWheel(id string, offset r3.Vector) *Wheel {
	wh := &Wheel{id: id, world: w, offset: offset}
	w.wheels = append(w.wheels, wh)
	return wh
}

func (w *World) AddSensor(id string, offset r3.Vector, reach float64) *ProximitySensor {
	s := &ProximitySensor{id: id, world: w, offset: offset, reach: reach}
	w.sensors = append(w.sensors, s)
	return s
}

func (w *World) SetConnector(offset r3.Vector, reach float64) *Connector {
	w.connector = &Connector{world: w, offset: offset, reach: reach}
	return w.connector
}

func (w *World) SetCamera(offset r3.Vector) *Camera {
	w.camera = &Camera{world: w, offset: offset}
	return w.camera
}

func (w *World) SetGroundProbe() *GroundProbe {
	w.ground = &GroundProbe{world: w}
	return w.ground
}

// Binding exposes the world's devices through the vessel interfaces.
func (w *World) Binding() vessel.Binding {
	b := vessel.Binding{Reference: w.body}
	for _, g := range w.gyros {
		b.Gyros = append(b.Gyros, g)
	}
	for _, t := range w.thrusters {
		b.Thrusters = append(b.Thrusters, t)
	}
	for _, wh := range w.wheels {
		b.Wheels = append(b.Wheels, wh)
	}
	for _, s := range w.sensors {
		b.Sensors = append(b.Sensors, s)
	}
	if w.connector != nil {
		b.Connector = w.connector
	}
	if w.camera != nil {
		b.Probe = w.camera
	}
	if w.ground != nil {
		b.Ground = w.ground
	}
	return b
}

// Altitude is the body's height above the ground plane.
func (w *World) Altitude() (float64, bool) {
	if w.env.Ground == nil {
		return 0, false
	}
	return w.body.frame.Position.Y - *w.env.Ground, true
}

// Force is the total thrust currently applied to the body.
func (w *World) Force() r3.Vector {
	var f r3.Vector
	for _, t := range w.thrusters {
		f = f.Add(t.Force())
	}
	return f
}

// ThrustOutput is the summed magnitude of all thruster outputs in newtons.
func (w *World) ThrustOutput() float64 {
	total := 0.0
	for _, t := range w.thrusters {
		total += t.max * t.ratio
	}
	return total
}

// cast finds the nearest obstacle along a unit ray within maxDistance.
func (w *World) cast(origin, dir r3.Vector, maxDistance float64) (float64, bool) {
	best := math.Inf(1)
	for _, o := range w.env.Obstacles {
		if d, hit := raySphere(origin, dir, o); hit && d < best {
			best = d
		}
	}
	if best <= maxDistance {
		return best, true
	}
	return 0, false
}

// Step advances the world by dt. A docked body does not move.
func (w *World) Step(dt float64) error {
	b := w.body
	if w.connector != nil && w.connector.Connected() {
		b.vel = r3.Vector{}
		b.angVel = r3.Vector{}
		w.time += dt
		return nil
	}

	w.rotate(dt)
	if len(w.wheels) > 0 && w.env.Ground != nil {
		w.roll(dt)
	} else {
		w.translate(dt)
	}

	if alt, ok := w.Altitude(); ok && alt < 0 {
		b.frame.Position.Y = *w.env.Ground
		if b.vel.Y < 0 {
			b.vel.Y = 0
		}
	}

	w.time += dt
	if !integrators.Pack(b.frame.Position, b.vel).IsValid() {
		return ErrDiverged
	}
	return nil
}

// rotate applies the mean rate of all overriding gyros. With no override the
// body holds its attitude.
func (w *World) rotate(dt float64) {
	var sum r3.Vector
	n := 0
	for _, g := range w.gyros {
		if g.active {
			sum = sum.Add(g.worldRate())
			n++
		}
	}
	b := w.body
	if n == 0 {
		b.angVel = r3.Vector{}
		return
	}
	b.angVel = sum.Mul(1 / float64(n))
	if rate := b.angVel.Norm(); rate > 0 {
		pos := b.frame.Position
		b.frame = b.frame.Rotate(b.angVel, rate*dt).Orthonormalize()
		b.frame.Position = pos
	}
}

func (w *World) translate(dt float64) {
	b := w.body
	accel := w.Force().Mul(1 / b.mass).Add(b.gravity)
	sys := integrators.SystemFunc(func(x integrators.State, t float64) integrators.State {
		_, v := x.Unpack()
		return integrators.Pack(v, accel)
	})
	next := w.integrator.Step(sys, integrators.Pack(b.frame.Position, b.vel), w.time, dt)
	b.frame.Position, b.vel = next.Unpack()
}

// roll moves a wheeled body along the ground: speed follows the mirrored
// propulsion, yaw follows front-minus-rear steering over the wheelbase.
func (w *World) roll(dt float64) {
	b := w.body
	var propulsion, steer float64
	front, rear := math.Inf(-1), math.Inf(1)
	braked := false
	for _, wh := range w.wheels {
		p := wh.propulsion
		if wh.right() {
			p = -p
		}
		propulsion += p
		s := wh.steering
		if !wh.front() {
			s = -s
		}
		steer += s
		front = math.Max(front, wh.offset.Z)
		rear = math.Min(rear, wh.offset.Z)
		braked = braked || wh.brake
	}
	n := float64(len(w.wheels))
	speed := propulsion / n * w.wheelCfg.MaxSpeed
	if braked {
		speed = 0
	}
	base := front - rear
	if base <= 0 {
		base = 2
	}

	yawRate := speed * math.Tan(steer/n*w.wheelCfg.MaxSteer) / base
	b.angVel = b.frame.Up.Mul(-yawRate)
	if yawRate != 0 {
		pos := b.frame.Position
		b.frame = b.frame.Rotate(b.frame.Up, -yawRate*dt)
		b.frame.Position = pos
	}
	b.vel = b.frame.Forward.Mul(speed)
	b.frame.Position = b.frame.Position.Add(b.vel.Mul(dt))
}
