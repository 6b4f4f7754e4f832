package metrics

import (
	"github.com/san-kum/navcore/internal/sim"
)

// Transitions counts controller state changes.
type Transitions struct {
	name  string
	count int
	state string
	seen  bool
}

func NewTransitions() *Transitions {
	return &Transitions{name: "transitions"}
}

func (t *Transitions) Name() string {
	return t.name
}

func (t *Transitions) Observe(s sim.Sample) {
	if t.seen && s.State != t.state {
		t.count++
	}
	t.state = s.State
	t.seen = true
}

func (t *Transitions) Value() float64 {
	return float64(t.count)
}

func (t *Transitions) Reset() {
	t.count = 0
	t.state = ""
	t.seen = false
}

// ArrivalTime is the first time the vehicle came within threshold of its
// goal, or -1 if it never did.
type ArrivalTime struct {
	name      string
	threshold float64
	at        float64
}

func NewArrivalTime(threshold float64) *ArrivalTime {
	return &ArrivalTime{
		name:      "arrival_time",
		threshold: threshold,
		at:        -1,
	}
}

func (a *ArrivalTime) Name() string {
	return a.name
}

func (a *ArrivalTime) Observe(s sim.Sample) {
	if a.at < 0 && s.GoalDistance <= a.threshold {
		a.at = s.Time
	}
}

func (a *ArrivalTime) Value() float64 {
	return a.at
}

func (a *ArrivalTime) Reset() {
	a.at = -1
}

// Defaults is the metric set attached to every scenario run.
func Defaults(mass float64) []sim.Metric {
	return []sim.Metric{
		NewDistanceTravelled(),
		NewPeakSpeed(),
		NewThrustEffort(),
		NewKineticEnergy(mass),
		NewTransitions(),
	}
}
