package scenario

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/san-kum/navcore/internal/align"
	"github.com/san-kum/navcore/internal/avoid"
	"github.com/san-kum/navcore/internal/config"
	"github.com/san-kum/navcore/internal/integrators"
	"github.com/san-kum/navcore/internal/metrics"
	"github.com/san-kum/navcore/internal/nav"
	"github.com/san-kum/navcore/internal/path"
	"github.com/san-kum/navcore/internal/rover"
	"github.com/san-kum/navcore/internal/sim"
	"github.com/san-kum/navcore/internal/vessel"
)

// DefaultDrivePower is the propulsion ratio of a drive mission without a speed.
const DefaultDrivePower = 0.5

// Setup is a scenario ready to tick.
type Setup struct {
	Scenario   *Scenario
	Config     *config.Config
	World      *sim.World
	Controller Controller
}

type Options struct {
	Log       zerolog.Logger
	Metrics   []sim.Metric
	Observers []sim.Observer
}

type Result struct {
	Scenario string
	Layout   string
	Mission  string
	Config   *config.Config
	Sim      *sim.Result
	Outcome  string
	World    *sim.World
}

// Build creates the world and binds the mission's components to it.
func Build(sc *Scenario, base *config.Config, log zerolog.Logger) (*Setup, error) {
	cfg := sc.Configure(base)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	integrator, err := integrators.ByName(cfg.Sim.Integrator)
	if err != nil {
		return nil, err
	}
	world, err := sim.NewRegistry().Build(cfg.Sim.Layout, sc.Environment(), integrator, sc.Start.Frame())
	if err != nil {
		return nil, err
	}

	log = log.With().Str("scenario", sc.Name).Str("mission", sc.Mission.Kind).Logger()
	ctrl, err := bind(sc, cfg, world.Binding(), log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sc.Name, err)
	}
	return &Setup{Scenario: sc, Config: cfg, World: world, Controller: ctrl}, nil
}

func bind(sc *Scenario, cfg *config.Config, b vessel.Binding, log zerolog.Logger) (Controller, error) {
	m := sc.Mission
	switch m.Kind {
	case KindGoto:
		n, err := nav.New(b.Reference, b.Thrusters, cfg.Nav, log)
		if err != nil {
			return nil, err
		}
		return &gotoMission{nav: n, target: m.Target, speed: m.Speed}, nil

	case KindAvoid:
		a, n, err := flight(cfg, b, log)
		if err != nil {
			return nil, err
		}
		av, err := avoid.New(b.Reference, n, a, b.Sensors, b.Probe, cfg.Avoid, log)
		if err != nil {
			return nil, err
		}
		av.NavigateTo(m.Target, m.Speed)
		return &avoidMission{avoider: av}, nil

	case KindPath:
		p, err := sc.Path()
		if err != nil {
			return nil, err
		}
		a, n, err := flight(cfg, b, log)
		if err != nil {
			return nil, err
		}
		exec, err := path.New(b.Reference, n, a, b.Connector, cfg.Path, log)
		if err != nil {
			return nil, err
		}
		if err := exec.AddPath(p); err != nil {
			return nil, err
		}
		if err := exec.StartPath(p.Name, m.Reverse, m.StartIndex); err != nil {
			return nil, err
		}
		return &pathMission{exec: exec}, nil

	case KindDrive:
		s, err := rover.New(b.Reference, b.Wheels, cfg.Rover, log)
		if err != nil {
			return nil, err
		}
		power := m.Speed
		if power <= 0 || power > 1 {
			power = DefaultDrivePower
		}
		s.SetHandbrake(false)
		return &driveMission{steering: s, target: m.Target, power: power}, nil

	case KindProbe:
		if b.Ground == nil {
			return nil, vessel.NewInitError("probe", vessel.ErrNoProbe, "layout has no ground probe")
		}
		return &probeMission{probe: b.Ground, extent: m.Extent, span: m.Span, precision: m.Precision}, nil
	}
	return nil, fmt.Errorf("%w: unknown mission kind %q", ErrInvalidScenario, m.Kind)
}

func flight(cfg *config.Config, b vessel.Binding, log zerolog.Logger) (*align.Aligner, *nav.Navigator, error) {
	a, err := align.New(b.Reference, b.Gyros, cfg.Align, log)
	if err != nil {
		return nil, nil, err
	}
	n, err := nav.New(b.Reference, b.Thrusters, cfg.Nav, log)
	if err != nil {
		return nil, nil, err
	}
	return a, n, nil
}

// Runner wires the default metrics and any extra ones and observers.
func (s *Setup) Runner(opts Options) *sim.Runner {
	r := sim.NewRunner(s.World, s.Controller)
	for _, m := range metrics.Defaults(s.World.Body().Mass()) {
		r.AddMetric(m)
	}
	for _, m := range opts.Metrics {
		r.AddMetric(m)
	}
	for _, o := range opts.Observers {
		r.AddObserver(o)
	}
	return r
}

func (s *Setup) result(res *sim.Result) *Result {
	return &Result{
		Scenario: s.Scenario.Name,
		Layout:   s.Config.Sim.Layout,
		Mission:  s.Scenario.Mission.Kind,
		Config:   s.Config,
		Sim:      res,
		Outcome:  s.Controller.Outcome(),
		World:    s.World,
	}
}

// Run builds the scenario and ticks it to completion.
func Run(ctx context.Context, sc *Scenario, base *config.Config, opts Options) (*Result, error) {
	setup, err := Build(sc, base, opts.Log)
	if err != nil {
		return nil, err
	}

	opts.Log.Info().Str("scenario", sc.Name).Str("layout", setup.Config.Sim.Layout).Msg("scenario started")
	res, err := setup.Runner(opts).Run(ctx, setup.Config.Sim.Runner())
	if res == nil {
		return nil, err
	}
	out := setup.result(res)
	opts.Log.Info().
		Str("scenario", sc.Name).
		Int("ticks", res.Ticks).
		Bool("done", res.Done).
		Str("outcome", out.Outcome).
		Msg("scenario finished")
	return out, err
}

// RunAll runs scenarios concurrently, each in its own world. Results keep
// the order of scenarios; a scenario that failed to build has a nil result.
func RunAll(ctx context.Context, scenarios []*Scenario, base *config.Config, log zerolog.Logger) ([]*Result, error) {
	setups := make([]*Setup, len(scenarios))
	jobs := make([]sim.Job, len(scenarios))
	for i, sc := range scenarios {
		jobs[i] = sim.Job{
			Name:   sc.Name,
			Config: sc.Configure(base).Sim.Runner(),
			Build: func() (*sim.Runner, error) {
				setup, err := Build(sc, base, log)
				if err != nil {
					return nil, err
				}
				setups[i] = setup
				return setup.Runner(Options{Log: log}), nil
			},
		}
	}

	simResults, err := sim.RunParallel(ctx, jobs)
	results := make([]*Result, len(scenarios))
	for i, res := range simResults {
		if res != nil && setups[i] != nil {
			results[i] = setups[i].result(res)
		}
	}
	return results, err
}
