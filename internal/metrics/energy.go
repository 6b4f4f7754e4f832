package metrics

import (
	"math"

	"github.com/san-kum/navcore/internal/sim"
)

// KineticEnergy is the peak translational kinetic energy of the vehicle.
type KineticEnergy struct {
	name string
	mass float64
	peak float64
}

func NewKineticEnergy(mass float64) *KineticEnergy {
	return &KineticEnergy{
		name: "kinetic_energy",
		mass: mass,
	}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(s sim.Sample) {
	e.peak = math.Max(e.peak, 0.5*e.mass*s.Speed*s.Speed)
}

func (e *KineticEnergy) Value() float64 { return e.peak }

func (e *KineticEnergy) Reset() { e.peak = 0 }

// DistanceTravelled sums the straight segments between consecutive positions.
type DistanceTravelled struct {
	name  string
	total float64
	last  sim.Sample
	seen  bool
}

func NewDistanceTravelled() *DistanceTravelled {
	return &DistanceTravelled{name: "distance_travelled"}
}

func (d *DistanceTravelled) Name() string { return d.name }

func (d *DistanceTravelled) Observe(s sim.Sample) {
	if d.seen {
		d.total += s.Position.Distance(d.last.Position)
	}
	d.last = s
	d.seen = true
}

func (d *DistanceTravelled) Value() float64 { return d.total }

func (d *DistanceTravelled) Reset() {
	d.total = 0
	d.seen = false
}

type PeakSpeed struct {
	name string
	peak float64
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed"}
}

func (p *PeakSpeed) Name() string { return p.name }

func (p *PeakSpeed) Observe(s sim.Sample) { p.peak = math.Max(p.peak, s.Speed) }

func (p *PeakSpeed) Value() float64 { return p.peak }

func (p *PeakSpeed) Reset() { p.peak = 0 }
