package avoid

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/rs/zerolog"
	"github.com/san-kum/navcore/internal/fsm"
	"github.com/san-kum/navcore/internal/vessel"
	"go.uber.org/multierr"
)

// Mover translates the vehicle; *nav.Navigator satisfies it.
type Mover interface {
	NavigateTo(target r3.Vector, maxSpeed float64) bool
	Stop()
}

// Orienter points the vehicle; *align.Aligner satisfies it.
type Orienter interface {
	AlignWithTarget(point r3.Vector) bool
	Stop()
}

type Config struct {
	DetourDistance  float64 `yaml:"detour_distance"`
	DuplicateRadius float64 `yaml:"duplicate_radius"`
	MinSpeed        float64 `yaml:"min_speed"`
	SpeedDivisor    float64 `yaml:"speed_divisor"`
	ProbeLookahead  float64 `yaml:"probe_lookahead"`
	// ProbeSpread scales the bounding radius into the lateral offset of the
	// outer probe rays.
	ProbeSpread     float64 `yaml:"probe_spread"`
	DefaultMaxSpeed float64 `yaml:"default_max_speed"`
}

func DefaultConfig() Config {
	return Config{
		DetourDistance:  10,
		DuplicateRadius: 0.1,
		MinSpeed:        2,
		SpeedDivisor:    5,
		ProbeLookahead:  4,
		ProbeSpread:     0.5,
		DefaultMaxSpeed: 20,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.DetourDistance <= 0 {
		c.DetourDistance = def.DetourDistance
	}
	if c.DuplicateRadius <= 0 {
		c.DuplicateRadius = def.DuplicateRadius
	}
	if c.MinSpeed <= 0 {
		c.MinSpeed = def.MinSpeed
	}
	if c.SpeedDivisor <= 0 {
		c.SpeedDivisor = def.SpeedDivisor
	}
	if c.ProbeLookahead <= 0 {
		c.ProbeLookahead = def.ProbeLookahead
	}
	if c.ProbeSpread < 0 {
		c.ProbeSpread = def.ProbeSpread
	}
	if c.DefaultMaxSpeed <= 0 {
		c.DefaultMaxSpeed = def.DefaultMaxSpeed
	}
	return c
}

// Corner names one of the four forward proximity sensors.
type Corner int

const (
	TopRight Corner = iota
	TopLeft
	BottomRight
	BottomLeft
)

var Corners = []Corner{TopRight, TopLeft, BottomRight, BottomLeft}

func (c Corner) String() string {
	switch c {
	case TopRight:
		return "top-right"
	case TopLeft:
		return "top-left"
	case BottomRight:
		return "bottom-right"
	case BottomLeft:
		return "bottom-left"
	}
	return fmt.Sprintf("corner(%d)", int(c))
}

type Status int

const (
	StatusIdle Status = iota
	StatusNavigating
	StatusArrived
	StatusStuck
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusNavigating:
		return "navigating"
	case StatusArrived:
		return "arrived"
	case StatusStuck:
		return "stuck"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// blocked is a snapshot of the corner sensors.
type blocked struct {
	tr, tl, br, bl bool
}

func (b blocked) any() bool {
	return b.tr || b.tl || b.br || b.bl
}

// Avoider navigates to a goal, detouring around whatever the corner sensors report.
type Avoider struct {
	cfg      Config
	ref      vessel.Reference
	mover    Mover
	orienter Orienter
	probe    vessel.RangingProbe
	corners  map[Corner]vessel.ProximitySensor
	machine  *fsm.Machine
	status   Status
	goal     r3.Vector
	maxSpeed float64
	log      zerolog.Logger
}

// New classifies the forward sensors into corners by their offset from the
// centre of mass. All four corners and the ranging probe are required.
func New(ref vessel.Reference, mover Mover, orienter Orienter, sensors []vessel.ProximitySensor,
	probe vessel.RangingProbe, cfg Config, log zerolog.Logger) (*Avoider, error) {
	if ref == nil {
		return nil, vessel.NewInitError("avoid", vessel.ErrNoReference, "")
	}
	if mover == nil || orienter == nil {
		return nil, fmt.Errorf("avoid: navigator and aligner are required")
	}
	if len(sensors) < len(Corners) {
		return nil, vessel.NewInitError("avoid", vessel.ErrNoSensors,
			fmt.Sprintf("need at least %d sensors, have %d", len(Corners), len(sensors)))
	}

	corners := ClassifyCorners(ref, sensors)
	var err error
	for _, c := range Corners {
		if corners[c] == nil {
			err = multierr.Append(err, vessel.NewInitError("avoid", vessel.ErrNoSensors, fmt.Sprintf("no forward %s sensor found", c)))
		}
	}
	if probe == nil {
		err = multierr.Append(err, vessel.NewInitError("avoid", vessel.ErrNoProbe, ""))
	}
	if err != nil {
		return nil, err
	}

	a := &Avoider{
		cfg:      cfg.withDefaults(),
		ref:      ref,
		mover:    mover,
		orienter: orienter,
		probe:    probe,
		corners:  corners,
		machine:  fsm.NewMachine(log),
		log:      log,
	}
	a.machine.TransitionTo(&idleState{a})
	return a, nil
}

// ClassifyCorners assigns sensors ahead of the centre of mass to a corner by
// the sign of their offset along the reference's right and up axes. Sensors
// behind the centre of mass are ignored; the last sensor seen wins a corner.
func ClassifyCorners(ref vessel.Reference, sensors []vessel.ProximitySensor) map[Corner]vessel.ProximitySensor {
	f := ref.Frame()
	com := ref.CenterOfMass()
	out := make(map[Corner]vessel.ProximitySensor, len(Corners))
	for _, s := range sensors {
		rel := s.Position().Sub(com)
		if rel.Dot(f.Forward) <= 0 {
			continue
		}
		right := rel.Dot(f.Right) > 0
		up := rel.Dot(f.Up) > 0
		switch {
		case up && right:
			out[TopRight] = s
		case up && !right:
			out[TopLeft] = s
		case !up && right:
			out[BottomRight] = s
		default:
			out[BottomLeft] = s
		}
	}
	return out
}

// Sensor returns the sensor bound to a corner.
func (a *Avoider) Sensor(c Corner) vessel.ProximitySensor {
	return a.corners[c]
}

func (a *Avoider) Status() Status {
	return a.status
}

// Goal is the final target of the current trip.
func (a *Avoider) Goal() (r3.Vector, bool) {
	return a.goal, a.status != StatusIdle
}

// State is the name of the active state.
func (a *Avoider) State() string {
	return a.machine.CurrentName()
}

func (a *Avoider) OnTransition(fn func(from, to string)) {
	a.machine.OnTransition(fn)
}

// NavigateTo starts a new trip, abandoning any trip in progress. A
// non-positive maxSpeed uses the configured default.
func (a *Avoider) NavigateTo(target r3.Vector, maxSpeed float64) {
	if _, idle := a.machine.Current().(*idleState); !idle {
		a.Stop()
	}
	if maxSpeed <= 0 {
		maxSpeed = a.cfg.DefaultMaxSpeed
	}
	a.goal = target
	a.maxSpeed = maxSpeed
	a.status = StatusNavigating
	a.probe.SetEnabled(true)

	a.log.Info().
		Float64("x", target.X).Float64("y", target.Y).Float64("z", target.Z).
		Float64("max_speed", maxSpeed).
		Msg("avoidance trip started")
	a.machine.TransitionTo(&aligningState{a: a, target: target})
}

func (a *Avoider) Stop() {
	a.status = StatusIdle
	a.machine.TransitionTo(&idleState{a})
}

// Execute runs one tick.
func (a *Avoider) Execute() {
	a.machine.Execute()
}

func (a *Avoider) sense() blocked {
	return blocked{
		tr: a.corners[TopRight].Active(),
		tl: a.corners[TopLeft].Active(),
		br: a.corners[BottomRight].Active(),
		bl: a.corners[BottomLeft].Active(),
	}
}

// cruiseSpeed limits the trip speed by the distance left to target.
func (a *Avoider) cruiseSpeed(target r3.Vector) float64 {
	d := a.ref.Frame().Position.Distance(target)
	return math.Max(a.cfg.MinSpeed, math.Min(a.maxSpeed, d/a.cfg.SpeedDivisor))
}

// probeAhead casts nine rays reach units ahead of the probe: one straight
// ahead and eight through the corners and edge midpoints of a square around
// it. It reports the nearest hit.
func (a *Avoider) probeAhead(reach float64) (float64, bool) {
	f := a.probe.Frame()
	half := a.ref.BoundingRadius() * a.cfg.ProbeSpread
	ahead := f.Forward.Mul(reach)

	closest := math.Inf(1)
	for _, off := range [][2]float64{
		{0, 0},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	} {
		dir := ahead.Add(f.Up.Mul(off[0] * half)).Add(f.Right.Mul(off[1] * half)).Normalize()
		if d, hit := a.probe.Range(dir, reach); hit && d < closest {
			closest = d
		}
	}
	return closest, closest <= reach
}
