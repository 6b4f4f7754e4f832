package metrics

import (
	"github.com/san-kum/navcore/internal/sim"
)

// ThrustEffort is the mean total thruster output in newtons per tick.
type ThrustEffort struct {
	name    string
	sum     float64
	samples int
}

func NewThrustEffort() *ThrustEffort {
	return &ThrustEffort{
		name: "thrust_effort",
	}
}

func (c *ThrustEffort) Name() string {
	return c.name
}

func (c *ThrustEffort) Observe(s sim.Sample) {
	c.sum += s.Thrust
	c.samples++
}

func (c *ThrustEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ThrustEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
