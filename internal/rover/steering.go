package rover

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/rs/zerolog"
	"github.com/san-kum/navcore/internal/control"
	"github.com/san-kum/navcore/internal/geom"
	"github.com/san-kum/navcore/internal/vessel"
)

type Quadrant int

const (
	FrontLeft Quadrant = iota
	FrontRight
	RearLeft
	RearRight
)

var Quadrants = []Quadrant{FrontLeft, FrontRight, RearLeft, RearRight}

func (q Quadrant) String() string {
	switch q {
	case FrontLeft:
		return "front-left"
	case FrontRight:
		return "front-right"
	case RearLeft:
		return "rear-left"
	case RearRight:
		return "rear-right"
	}
	return fmt.Sprintf("quadrant(%d)", int(q))
}

func (q Quadrant) right() bool { return q == FrontRight || q == RearRight }
func (q Quadrant) rear() bool  { return q == RearLeft || q == RearRight }

type Config struct {
	Heading       control.Gains `yaml:"heading"`
	ArrivalRadius float64       `yaml:"arrival_radius"`
}

func DefaultConfig() Config {
	return Config{
		Heading:       control.Gains{Kp: 1.5, Ki: 0, Kd: 0.1, TimeStep: control.DefaultTimeStep},
		ArrivalRadius: 2,
	}
}

// Steering commands the wheels of a ground vehicle. Positive propulsion
// drives forward, positive steering turns right.
type Steering struct {
	ref     vessel.Reference
	cfg     Config
	groups  map[Quadrant][]vessel.Suspension
	heading *control.AngleController
	log     zerolog.Logger
}

// New sorts the wheels into quadrants. It fails only when no wheel lands in
// any quadrant.
func New(ref vessel.Reference, wheels []vessel.Suspension, cfg Config, log zerolog.Logger) (*Steering, error) {
	if ref == nil {
		return nil, vessel.NewInitError("rover", vessel.ErrNoReference, "")
	}
	if cfg.ArrivalRadius <= 0 {
		cfg.ArrivalRadius = DefaultConfig().ArrivalRadius
	}

	groups := Classify(ref, wheels)
	total := 0
	ev := log.Debug()
	for _, q := range Quadrants {
		total += len(groups[q])
		ev = ev.Int(q.String(), len(groups[q]))
	}
	if total == 0 {
		return nil, vessel.NewInitError("rover", vessel.ErrNoSuspension, "no suspensions found")
	}
	ev.Msg("wheels classified")

	return &Steering{
		ref:     ref,
		cfg:     cfg,
		groups:  groups,
		heading: control.NewAngleController(cfg.Heading.Kp, cfg.Heading.Ki, cfg.Heading.Kd, cfg.Heading.TimeStep),
		log:     log,
	}, nil
}

// Classify places each wheel by the sign of its offset from the centre of
// mass along the reference's forward and right axes. A wheel exactly on an
// axis counts as rear or left.
func Classify(ref vessel.Reference, wheels []vessel.Suspension) map[Quadrant][]vessel.Suspension {
	f := ref.Frame()
	com := ref.CenterOfMass()
	groups := make(map[Quadrant][]vessel.Suspension, len(Quadrants))
	for _, w := range wheels {
		rel := w.Position().Sub(com)
		front := rel.Dot(f.Forward) > 0
		right := rel.Dot(f.Right) > 0
		var q Quadrant
		switch {
		case front && !right:
			q = FrontLeft
		case front && right:
			q = FrontRight
		case !front && !right:
			q = RearLeft
		default:
			q = RearRight
		}
		groups[q] = append(groups[q], w)
	}
	return groups
}

func (s *Steering) Group(q Quadrant) []vessel.Suspension {
	return s.groups[q]
}

// Drive sets every wheel. Right-side wheels face the other way and get the
// propulsion negated; rear wheels steer opposite to the front.
func (s *Steering) Drive(propulsion, steering float64) {
	for _, q := range Quadrants {
		p, st := propulsion, steering
		if q.right() {
			p = -p
		}
		if q.rear() {
			st = -st
		}
		for _, w := range s.groups[q] {
			w.SetPropulsion(p)
			w.SetSteering(st)
		}
	}
}

func (s *Steering) Forward(p float64)       { s.Drive(p, 0) }
func (s *Steering) Backward(p float64)      { s.Drive(-p, 0) }
func (s *Steering) ForwardRight(p float64)  { s.Drive(p, 1) }
func (s *Steering) ForwardLeft(p float64)   { s.Drive(p, -1) }
func (s *Steering) BackwardRight(p float64) { s.Drive(-p, 1) }
func (s *Steering) BackwardLeft(p float64)  { s.Drive(-p, -1) }

func (s *Steering) Stop() {
	s.Drive(0, 0)
	s.heading.Reset()
}

func (s *Steering) SetHandbrake(on bool) {
	for _, q := range Quadrants {
		for _, w := range s.groups[q] {
			w.SetBrake(on)
		}
	}
}

// HeadingError is the signed ground-plane angle from the vehicle's forward
// axis to target, positive to the right.
func (s *Steering) HeadingError(target r3.Vector) float64 {
	local := s.ref.Frame().PointToLocal(target)
	if local.X == 0 && local.Z == 0 {
		return 0
	}
	return math.Atan2(local.X, local.Z)
}

// DriveToward steers at target with the given propulsion and reports arrival
// once the ground-plane distance is within the arrival radius. Arrival stops
// the wheels.
func (s *Steering) DriveToward(target r3.Vector, propulsion float64) bool {
	f := s.ref.Frame()
	offset := geom.ProjectOnPlane(target.Sub(f.Position), f.Up)
	if offset.Norm() <= s.cfg.ArrivalRadius {
		s.Stop()
		s.log.Debug().Msg("drive target reached")
		return true
	}

	steer := geom.Clamp(s.heading.ControlAngle(s.HeadingError(target), 0), -1, 1)
	s.Drive(propulsion, steer)
	return false
}
