package nav

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/rs/zerolog"
	"github.com/san-kum/navcore/internal/control"
	"github.com/san-kum/navcore/internal/geom"
	"github.com/san-kum/navcore/internal/vessel"
	"go.uber.org/multierr"
)

type Config struct {
	Gains                 control.Gains `yaml:"gains"`
	Precision             float64       `yaml:"precision"`
	BrakingDistanceFactor float64       `yaml:"braking_distance_factor"`
	FactorGravity         bool          `yaml:"factor_gravity"`
	ClassifyThreshold     float64       `yaml:"classify_threshold"`
	DefaultMaxSpeed       float64       `yaml:"default_max_speed"`
}

func DefaultConfig() Config {
	return Config{
		Gains:                 control.Gains{Kp: 3, Ki: 1, Kd: 0, TimeStep: control.DefaultTimeStep},
		Precision:             0.1,
		BrakingDistanceFactor: 3,
		FactorGravity:         false,
		ClassifyThreshold:     0.7,
		DefaultMaxSpeed:       20,
	}
}

// Navigator flies the vehicle to a point with its thrusters.
type Navigator struct {
	ref    vessel.Reference
	cfg    Config
	groups Groups
	x      *control.PID
	y      *control.PID
	z      *control.PID
	force  r3.Vector
	log    zerolog.Logger
}

// New classifies thrusters against the reference frame. Every direction group
// must end up with at least one thruster; all empty groups are reported.
func New(ref vessel.Reference, thrusters []vessel.ThrustActuator, cfg Config, log zerolog.Logger) (*Navigator, error) {
	if ref == nil {
		return nil, vessel.NewInitError("nav", vessel.ErrNoReference, "")
	}
	if len(thrusters) == 0 {
		return nil, vessel.NewInitError("nav", vessel.ErrNoThrusters, "")
	}
	def := DefaultConfig()
	if cfg.Precision <= 0 {
		cfg.Precision = def.Precision
	}
	if cfg.BrakingDistanceFactor <= 0 {
		cfg.BrakingDistanceFactor = def.BrakingDistanceFactor
	}
	if cfg.ClassifyThreshold <= 0 {
		cfg.ClassifyThreshold = def.ClassifyThreshold
	}
	if cfg.DefaultMaxSpeed <= 0 {
		cfg.DefaultMaxSpeed = def.DefaultMaxSpeed
	}

	groups := Classify(ref.Frame(), thrusters, cfg.ClassifyThreshold)

	var err error
	for _, d := range Directions {
		if len(groups[d]) == 0 {
			err = multierr.Append(err, vessel.NewInitError("nav", vessel.ErrEmptyGroup, fmt.Sprintf("no %s thrusters found", d)))
		}
	}
	if err != nil {
		return nil, err
	}

	ev := log.Debug()
	for _, d := range Directions {
		ev = ev.Int(d.String(), len(groups[d]))
	}
	ev.Msg("thrusters classified")

	return &Navigator{
		ref:    ref,
		cfg:    cfg,
		groups: groups,
		x:      control.NewPIDFromGains(cfg.Gains),
		y:      control.NewPIDFromGains(cfg.Gains),
		z:      control.NewPIDFromGains(cfg.Gains),
		log:    log,
	}, nil
}

func (n *Navigator) SetPrecision(p float64) {
	if p > 0 {
		n.cfg.Precision = p
	}
}

func (n *Navigator) Precision() float64 {
	return n.cfg.Precision
}

// Position is the vehicle's current world position.
func (n *Navigator) Position() r3.Vector {
	return n.ref.Frame().Position
}

func (n *Navigator) Group(d Direction) []vessel.ThrustActuator {
	return n.groups[d]
}

// LastForce is the world force requested on the last tick.
func (n *Navigator) LastForce() r3.Vector {
	return n.force
}

// DesiredSpeed is the cruise speed for the remaining distance: capped by
// maxSpeed, decelerating as distance/BrakingDistanceFactor near the target,
// and never below a crawl that grows with distance.
func (n *Navigator) DesiredSpeed(distance, maxSpeed float64) float64 {
	p := n.cfg.Precision
	minSpeed := p
	if distance < 2*p {
		minSpeed = math.Max(p/2, distance/2)
	} else if distance < 10*p {
		minSpeed = 5 * p
	}
	return math.Min(maxSpeed, math.Max(minSpeed, distance/n.cfg.BrakingDistanceFactor))
}

// NavigateTo issues one tick of thrust towards target. It reports true once
// both the remaining distance and the speed are below precision, at which
// point all thrust is released.
func (n *Navigator) NavigateTo(target r3.Vector, maxSpeed float64) bool {
	if maxSpeed <= 0 {
		maxSpeed = n.cfg.DefaultMaxSpeed
	}

	pos := n.ref.Frame().Position
	vel := n.ref.LinearVelocity()
	delta := target.Sub(pos)
	distance := delta.Norm()

	if distance < n.cfg.Precision && vel.Norm() < n.cfg.Precision {
		n.Stop()
		return true
	}

	desired := delta.Normalize().Mul(n.DesiredSpeed(distance, maxSpeed))
	velErr := desired.Sub(vel)

	accel := r3.Vector{
		X: n.x.Control(velErr.X),
		Y: n.y.Control(velErr.Y),
		Z: n.z.Control(velErr.Z),
	}
	if n.cfg.FactorGravity {
		accel = accel.Sub(n.ref.Gravity())
	}

	n.applyForce(accel.Mul(n.ref.Mass()))
	return false
}

// Stop zeroes every thruster and clears the velocity regulators.
func (n *Navigator) Stop() {
	for _, d := range Directions {
		for _, t := range n.groups[d] {
			t.SetThrustRatio(0)
		}
	}
	n.force = r3.Vector{}
	n.x.Reset()
	n.y.Reset()
	n.z.Reset()
}

func (n *Navigator) applyForce(force r3.Vector) {
	n.force = force
	f := n.ref.Frame()
	for _, d := range Directions {
		required := math.Max(0, force.Dot(d.Axis(f)))
		capacity := n.groups.Capacity(d)
		ratio := 0.0
		if capacity > 0 {
			ratio = geom.Clamp(required/capacity, 0, 1)
		}
		for _, t := range n.groups[d] {
			t.SetThrustRatio(ratio)
		}
	}
}

// SetGroupForce fills the thrusters of a group one after another until they
// deliver newtons in total. Surplus force beyond the group's capacity is dropped.
func (n *Navigator) SetGroupForce(d Direction, newtons float64) {
	remaining := math.Max(0, newtons)
	for _, t := range n.groups[d] {
		limit := t.MaxThrust()
		if remaining <= 0 || limit <= 0 {
			t.SetThrustRatio(0)
			continue
		}
		take := math.Min(remaining, limit)
		t.SetThrustRatio(take / limit)
		remaining -= take
	}
}
