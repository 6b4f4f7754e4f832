package align

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/rs/zerolog"
	"github.com/san-kum/navcore/internal/control"
	"github.com/san-kum/navcore/internal/geom"
	"github.com/san-kum/navcore/internal/vessel"
)

const (
	// BearingMinDistance is the range inside which a bearing is reported as zero.
	BearingMinDistance = 0.1

	// degenerateReference bounds the squared length of a projected reference axis.
	degenerateReference = 1e-6
)

type Config struct {
	Gains     control.Gains `yaml:"gains"`
	Precision float64       `yaml:"precision"`
}

func DefaultConfig() Config {
	return Config{
		Gains:     control.Gains{Kp: 10, Ki: 0, Kd: 0, TimeStep: control.DefaultTimeStep},
		Precision: 0.01,
	}
}

// Aligner rotates a vehicle until its frame matches a target frame.
type Aligner struct {
	ref       vessel.Reference
	gyros     []vessel.OrientationActuator
	pitch     *control.PID
	yaw       *control.PID
	roll      *control.PID
	precision float64
	lastErr   r3.Vector
	log       zerolog.Logger
}

func New(ref vessel.Reference, gyros []vessel.OrientationActuator, cfg Config, log zerolog.Logger) (*Aligner, error) {
	if ref == nil {
		return nil, vessel.NewInitError("align", vessel.ErrNoReference, "")
	}
	if len(gyros) == 0 {
		return nil, vessel.NewInitError("align", vessel.ErrNoOrientationActuators, "")
	}
	if cfg.Precision <= 0 {
		cfg.Precision = DefaultConfig().Precision
	}

	log.Debug().Int("gyros", len(gyros)).Float64("precision", cfg.Precision).Msg("aligner ready")

	return &Aligner{
		ref:       ref,
		gyros:     gyros,
		pitch:     control.NewPIDFromGains(cfg.Gains),
		yaw:       control.NewPIDFromGains(cfg.Gains),
		roll:      control.NewPIDFromGains(cfg.Gains),
		precision: cfg.Precision,
		log:       log,
	}, nil
}

func (a *Aligner) SetPrecision(p float64) {
	if p > 0 {
		a.precision = p
	}
}

func (a *Aligner) Precision() float64 {
	return a.precision
}

// LastErrors returns the (pitch, yaw, roll) error of the last alignment tick.
func (a *Aligner) LastErrors() r3.Vector {
	return a.lastErr
}

// Controllers exposes the pitch, yaw and roll regulators for live tuning.
func (a *Aligner) Controllers() (pitch, yaw, roll *control.PID) {
	return a.pitch, a.yaw, a.roll
}

// AlignWithFrame issues one tick of rotation towards target and reports
// whether the vehicle has settled on it. On success all overrides are released.
func (a *Aligner) AlignWithFrame(target geom.Frame) bool {
	cur := a.ref.Frame()

	fwdAxis := rotationAxis(cur.Forward, target.Forward, cur.Up)
	upAxis := rotationAxis(cur.Up, target.Up, cur.Forward)

	local := cur.ToLocal(fwdAxis)
	errPitch := local.X
	errYaw := local.Y
	errRoll := cur.ToLocal(upAxis).Z
	a.lastErr = r3.Vector{X: errPitch, Y: errYaw, Z: errRoll}

	if math.Abs(errPitch) < a.precision &&
		math.Abs(errYaw) < a.precision &&
		math.Abs(errRoll) < a.precision &&
		a.ref.AngularVelocity().Norm() < a.precision {
		a.Stop()
		return true
	}

	cmd := r3.Vector{
		X: a.pitch.Control(errPitch),
		Y: a.yaw.Control(errYaw),
		Z: a.roll.Control(errRoll),
	}
	a.apply(cur, cmd)
	return false
}

// AlignWithTarget faces the vehicle towards a world point, keeping its
// current up vector as the roll reference.
func (a *Aligner) AlignWithTarget(point r3.Vector) bool {
	cur := a.ref.Frame()
	if point.Sub(cur.Position).Norm2() == 0 {
		return a.AlignWithFrame(cur)
	}
	return a.AlignWithFrame(geom.LookAt(cur.Position, point, cur.Up))
}

// AlignWithGravity levels the vehicle while keeping its heading.
func (a *Aligner) AlignWithGravity() bool {
	yaw, _, _ := a.CalculateYawPitchRoll()
	return a.AlignWithFrame(a.FrameFromYawPitchRoll(yaw, 0, 0))
}

// Stop releases every orientation override and clears the regulators.
func (a *Aligner) Stop() {
	for _, g := range a.gyros {
		g.ClearOverride()
	}
	a.pitch.Reset()
	a.yaw.Reset()
	a.roll.Reset()
}

// apply converts a command in the reference frame into each actuator's own frame.
func (a *Aligner) apply(ref geom.Frame, cmd r3.Vector) {
	world := ref.ToWorld(cmd)
	for _, g := range a.gyros {
		g.SetOverride(g.Frame().ToLocal(world))
	}
}

// rotationAxis returns the axis turning from onto to, scaled by the sine of
// the angle between them. Past 90 degrees the axis is normalized so the error
// does not fade towards opposition; exactly opposed vectors turn around fallback.
func rotationAxis(from, to, fallback r3.Vector) r3.Vector {
	axis := from.Cross(to)
	if from.Dot(to) >= 0 {
		return axis
	}
	if axis.Norm2() < 1e-12 {
		return fallback.Normalize()
	}
	return axis.Normalize()
}
