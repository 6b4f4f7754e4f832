package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/navcore/internal/sim"
)

// Exporter publishes live run samples as Prometheus metrics. It owns its
// registry so several exporters can coexist in one process.
type Exporter struct {
	registry     *prometheus.Registry
	ticks        prometheus.Counter
	speed        prometheus.Gauge
	goalDistance prometheus.Gauge
	thrust       prometheus.Gauge
	transitions  *prometheus.CounterVec
	state        string
}

func NewExporter(scenario string) *Exporter {
	labels := prometheus.Labels{"scenario": scenario}
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "navsim_ticks_total",
			Help:        "Total number of simulated ticks.",
			ConstLabels: labels,
		}),
		speed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "navsim_speed_meters_per_second",
			Help:        "Current vehicle speed.",
			ConstLabels: labels,
		}),
		goalDistance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "navsim_goal_distance_meters",
			Help:        "Distance from the vehicle to its current goal.",
			ConstLabels: labels,
		}),
		thrust: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "navsim_thrust_newtons",
			Help:        "Total thruster output.",
			ConstLabels: labels,
		}),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "navsim_state_transitions_total",
				Help:        "Controller state transitions.",
				ConstLabels: labels,
			},
			[]string{"from", "to"},
		),
	}
	e.registry.MustRegister(e.ticks, e.speed, e.goalDistance, e.thrust, e.transitions)
	return e
}

func (e *Exporter) OnSample(s sim.Sample) {
	e.ticks.Inc()
	e.speed.Set(s.Speed)
	e.goalDistance.Set(s.GoalDistance)
	e.thrust.Set(s.Thrust)
	if e.state != "" && s.State != e.state {
		e.transitions.WithLabelValues(e.state, s.State).Inc()
	}
	e.state = s.State
}

func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler serves the exporter's registry in the Prometheus text format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
