package sim

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/san-kum/navcore/internal/geom"
)

// LocalIdentity is the unrotated mounting of a device, expressed in body
// coordinates (right, up, forward).
var LocalIdentity = geom.Frame{Forward: geom.UnitZ, Right: geom.UnitX, Up: geom.UnitY}

// Gyro turns the body towards a commanded rate given in its own frame.
type Gyro struct {
	id       string
	body     *Body
	mount    geom.Frame
	maxRate  float64
	override r3.Vector
	active   bool
}

func (g *Gyro) ID() string { return g.id }

// Frame is the gyro's world orientation.
func (g *Gyro) Frame() geom.Frame {
	return g.body.frame.Compose(g.mount)
}

func (g *Gyro) SetOverride(rate r3.Vector) {
	g.override = rate
	g.active = true
}

func (g *Gyro) ClearOverride() {
	g.override = r3.Vector{}
	g.active = false
}

func (g *Gyro) Active() bool { return g.active }

// worldRate is the commanded angular velocity in world space, limited to maxRate.
func (g *Gyro) worldRate() r3.Vector {
	f := g.Frame()
	w := f.Right.Mul(g.override.X).Add(f.Up.Mul(g.override.Y)).Add(f.Forward.Mul(g.override.Z))
	if n := w.Norm(); g.maxRate > 0 && n > g.maxRate {
		w = w.Mul(g.maxRate / n)
	}
	return w
}

// Thruster pushes the body along a fixed body direction.
type Thruster struct {
	id    string
	body  *Body
	dir   r3.Vector
	max   float64
	ratio float64
}

func (t *Thruster) ID() string { return t.id }

func (t *Thruster) Direction() r3.Vector {
	return t.body.frame.ToWorld(t.dir).Normalize()
}

func (t *Thruster) MaxThrust() float64 { return t.max }

func (t *Thruster) SetThrustRatio(ratio float64) {
	t.ratio = geom.Clamp(ratio, 0, 1)
}

func (t *Thruster) Ratio() float64 { return t.ratio }

func (t *Thruster) Force() r3.Vector {
	return t.Direction().Mul(t.max * t.ratio)
}

// Port is a fixed docking point. Forward is the direction it faces.
type Port struct {
	Name     string    `yaml:"name"`
	Position r3.Vector `yaml:"position"`
	Forward  r3.Vector `yaml:"forward"`
}

// Connector couples to any port within reach of its mounting point.
type Connector struct {
	world  *World
	offset r3.Vector
	reach  float64
	peer   *Port
}

func (c *Connector) Position() r3.Vector {
	return c.world.body.frame.PointToWorld(c.offset)
}

func (c *Connector) Connected() bool { return c.peer != nil }

func (c *Connector) Connect() {
	if c.peer != nil {
		return
	}
	pos := c.Position()
	best := math.Inf(1)
	for i := range c.world.env.Ports {
		p := &c.world.env.Ports[i]
		if d := p.Position.Distance(pos); d <= c.reach && d < best {
			best = d
			c.peer = p
		}
	}
	if c.peer != nil {
		c.world.body.vel = r3.Vector{}
		c.world.body.angVel = r3.Vector{}
	}
}

func (c *Connector) Disconnect() { c.peer = nil }

func (c *Connector) PeerForward() (r3.Vector, bool) {
	if c.peer == nil {
		return r3.Vector{}, false
	}
	return c.peer.Forward, true
}

// Obstacle is a solid sphere.
type Obstacle struct {
	Center r3.Vector `yaml:"center"`
	Radius float64   `yaml:"radius"`
}

// raySphere returns the distance along a unit ray to the sphere surface, zero
// when the origin is inside.
func raySphere(origin, dir r3.Vector, o Obstacle) (float64, bool) {
	m := origin.Sub(o.Center)
	b := m.Dot(dir)
	c := m.Norm2() - o.Radius*o.Radius
	if c <= 0 {
		return 0, true
	}
	if b > 0 {
		return 0, false
	}
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	return -b - math.Sqrt(disc), true
}

// ProximitySensor detects obstacles within reach straight ahead of its mount.
type ProximitySensor struct {
	id     string
	world  *World
	offset r3.Vector
	reach  float64
}

func (s *ProximitySensor) ID() string { return s.id }

func (s *ProximitySensor) Position() r3.Vector {
	return s.world.body.frame.PointToWorld(s.offset)
}

func (s *ProximitySensor) Active() bool {
	_, hit := s.world.cast(s.Position(), s.world.body.frame.Forward, s.reach)
	return hit
}

// Camera is the forward ranging probe. It only ranges while enabled.
type Camera struct {
	world   *World
	offset  r3.Vector
	enabled bool
	casts   int
}

func (c *Camera) Frame() geom.Frame {
	f := c.world.body.frame
	f.Position = f.PointToWorld(c.offset)
	return f
}

func (c *Camera) SetEnabled(enabled bool) { c.enabled = enabled }

func (c *Camera) Enabled() bool { return c.enabled }

// Casts is the number of rays cast so far.
func (c *Camera) Casts() int { return c.casts }

func (c *Camera) Range(dir r3.Vector, maxDistance float64) (float64, bool) {
	if !c.enabled {
		return 0, false
	}
	c.casts++
	return c.world.cast(c.Frame().Position, dir.Normalize(), maxDistance)
}

// Wheel is a driven, steerable suspension unit.
type Wheel struct {
	id         string
	world      *World
	offset     r3.Vector
	propulsion float64
	steering   float64
	brake      bool
}

func (w *Wheel) ID() string { return w.id }

func (w *Wheel) Position() r3.Vector {
	return w.world.body.frame.PointToWorld(w.offset)
}

func (w *Wheel) SetPropulsion(p float64) { w.propulsion = geom.Clamp(p, -1, 1) }
func (w *Wheel) SetSteering(s float64)   { w.steering = geom.Clamp(s, -1, 1) }
func (w *Wheel) SetBrake(on bool)        { w.brake = on }

func (w *Wheel) front() bool { return w.offset.Z > 0 }
func (w *Wheel) right() bool { return w.offset.X > 0 }

// GroundProbe reports whether the ground is within its extent below the body.
type GroundProbe struct {
	world  *World
	extent float64
}

func (g *GroundProbe) SetExtent(extent float64) { g.extent = math.Max(0, extent) }
func (g *GroundProbe) Extent() float64          { return g.extent }

func (g *GroundProbe) Active() bool {
	alt, ok := g.world.Altitude()
	return ok && alt <= g.extent
}
