package sim

import (
	"context"
	"fmt"

	"github.com/golang/geo/r3"
)

// Controller drives the vehicle once per tick. Tick reports true when the
// controller has finished its mission.
type Controller interface {
	Tick() bool
	State() string
}

// Goaler is implemented by controllers that steer towards a known point.
type Goaler interface {
	Goal() (r3.Vector, bool)
}

// Sample is the vehicle's state after one tick.
type Sample struct {
	Tick         int       `json:"tick"`
	Time         float64   `json:"time"`
	Position     r3.Vector `json:"position"`
	Velocity     r3.Vector `json:"velocity"`
	Speed        float64   `json:"speed"`
	State        string    `json:"state"`
	Force        r3.Vector `json:"force"`
	Thrust       float64   `json:"thrust"`
	GoalDistance float64   `json:"goal_distance"`
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnSample(s Sample)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s Sample)

func (f ObserverFunc) OnSample(s Sample) { f(s) }

type Config struct {
	Dt       float64 `yaml:"dt"`
	MaxTicks int     `yaml:"max_ticks"`
}

func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, c.Dt)
	}
	if c.MaxTicks <= 0 {
		return fmt.Errorf("%w: max ticks must be positive, got %d", ErrInvalidConfig, c.MaxTicks)
	}
	return nil
}

type Result struct {
	Samples []Sample           `json:"-"`
	Ticks   int                `json:"ticks"`
	Done    bool               `json:"done"`
	Metrics map[string]float64 `json:"metrics"`
}

// Final is the last recorded sample.
func (r *Result) Final() (Sample, bool) {
	if len(r.Samples) == 0 {
		return Sample{}, false
	}
	return r.Samples[len(r.Samples)-1], true
}

// Runner alternates controller ticks with world steps.
type Runner struct {
	world      *World
	controller Controller
	metrics    []Metric
	observers  []Observer
}

func NewRunner(world *World, controller Controller) *Runner {
	return &Runner{world: world, controller: controller}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Run ticks until the controller reports done, MaxTicks is reached or ctx is
// cancelled. The partial result is returned alongside any error.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, m := range r.metrics {
		m.Reset()
	}

	result := &Result{
		Samples: make([]Sample, 0, min(cfg.MaxTicks, 4096)),
		Metrics: make(map[string]float64),
	}
	defer func() {
		result.Metrics = r.MetricValues()
	}()

	for i := 0; i < cfg.MaxTicks; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		s, done, err := r.Step(i, cfg.Dt)
		if err != nil {
			return result, err
		}
		result.Ticks++
		result.Samples = append(result.Samples, s)

		if done {
			result.Done = true
			break
		}
	}
	return result, nil
}

// Step runs a single tick outside of Run, feeding metrics and observers.
// Interactive front ends drive the world with it one frame at a time.
func (r *Runner) Step(tick int, dt float64) (Sample, bool, error) {
	done := r.controller.Tick()
	if err := r.world.Step(dt); err != nil {
		return Sample{}, done, &TickError{Tick: tick, Time: r.world.Time(), Wrapped: err}
	}
	s := r.sample(tick)
	for _, m := range r.metrics {
		m.Observe(s)
	}
	for _, o := range r.observers {
		o.OnSample(s)
	}
	return s, done, nil
}

// MetricValues snapshots every metric by name.
func (r *Runner) MetricValues() map[string]float64 {
	out := make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (r *Runner) World() *World { return r.world }

func (r *Runner) sample(tick int) Sample {
	b := r.world.body
	s := Sample{
		Tick:     tick,
		Time:     r.world.Time(),
		Position: b.frame.Position,
		Velocity: b.vel,
		Speed:    b.vel.Norm(),
		State:    r.controller.State(),
		Force:    r.world.Force(),
		Thrust:   r.world.ThrustOutput(),
	}
	if g, ok := r.controller.(Goaler); ok {
		if goal, ok := g.Goal(); ok {
			s.GoalDistance = goal.Distance(b.frame.Position)
		}
	}
	return s
}
