package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/navcore/internal/config"
	"github.com/san-kum/navcore/internal/metrics"
	"github.com/san-kum/navcore/internal/scenario"
	"github.com/san-kum/navcore/internal/sim"
	"github.com/san-kum/navcore/internal/storage"
	"github.com/san-kum/navcore/internal/viz"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type overrides struct {
	layout     string
	integrator string
	dt         float64
	maxTicks   int
}

func (o *overrides) register(cmd *cobra.Command) *overrides {
	f := cmd.Flags()
	f.StringVar(&o.layout, "layout", "", "vehicle layout")
	f.StringVar(&o.integrator, "integrator", "", "integrator (euler, rk4, rk45, verlet)")
	f.Float64Var(&o.dt, "dt", 0, "timestep in seconds")
	f.IntVar(&o.maxTicks, "max-ticks", 0, "tick limit")
	return o
}

func (o *overrides) apply(sc *scenario.Scenario) {
	if o.layout != "" {
		sc.Layout = o.layout
	}
	if o.integrator != "" {
		sc.Integrator = o.integrator
	}
	if o.dt > 0 {
		sc.Dt = o.dt
	}
	if o.maxTicks > 0 {
		sc.MaxTicks = o.maxTicks
	}
}

func loadScenarios(files []string, o *overrides) ([]*scenario.Scenario, error) {
	out := make([]*scenario.Scenario, 0, len(files))
	for _, f := range files {
		sc, err := scenario.Load(f)
		if err != nil {
			return nil, err
		}
		o.apply(sc)
		out = append(out, sc)
	}
	return out, nil
}

func runCommand() *cobra.Command {
	var (
		noSave      bool
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "run [scenario.yaml...]",
		Short: "run scenarios to completion and store the results",
		Long: "Run one or more scenarios. Several scenarios run concurrently, each in its own world.\n" +
			"With --metrics-addr the Prometheus exporter is served until interrupted.",
		Args: cobra.MinimumNArgs(1),
	}
	o := new(overrides).register(cmd)
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9108")
	_ = viper.BindPFlag("metrics-addr", cmd.Flags().Lookup("metrics-addr"))

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		base, err := baseConfig()
		if err != nil {
			return err
		}
		scenarios, err := loadScenarios(args, o)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var results []*scenario.Result
		var runErr error
		addr := viper.GetString("metrics-addr")
		switch {
		case len(scenarios) > 1:
			if addr != "" {
				log.Warn().Msg("metrics are only served for a single scenario")
			}
			results, runErr = scenario.RunAll(ctx, scenarios, base, log)
		case addr != "":
			res, err := runServed(ctx, scenarios[0], base, addr)
			results, runErr = []*scenario.Result{res}, err
		default:
			res, err := scenario.Run(ctx, scenarios[0], base, scenario.Options{Log: log})
			results, runErr = []*scenario.Result{res}, err
		}

		st := storage.New(viper.GetString("data"))
		for _, res := range results {
			if res == nil {
				continue
			}
			printResult(cmd, res)
			if noSave {
				continue
			}
			id, err := st.Save(metadataOf(res), res.Sim)
			if err != nil {
				return fmt.Errorf("save %s: %w", res.Scenario, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved run %s\n\n", id)
		}
		return runErr
	}
	return cmd
}

// runServed runs one scenario with its telemetry exported over HTTP, then
// keeps serving until ctx is cancelled.
func runServed(ctx context.Context, sc *scenario.Scenario, base *config.Config, addr string) (*scenario.Result, error) {
	exporter := metrics.NewExporter(sc.Name)
	srv := &http.Server{Addr: addr, Handler: exporter.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	defer func() {
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()
	log.Info().Str("addr", addr).Msg("serving metrics")

	res, err := scenario.Run(ctx, sc, base, scenario.Options{Log: log, Observers: []sim.Observer{exporter}})
	if err != nil {
		return res, err
	}
	fmt.Fprintf(os.Stderr, "metrics at http://%s/metrics, interrupt to stop\n", addr)
	<-ctx.Done()
	return res, nil
}

func metadataOf(res *scenario.Result) storage.RunMetadata {
	return storage.RunMetadata{
		Scenario:    res.Scenario,
		Layout:      res.Layout,
		Mission:     res.Mission,
		Dt:          res.Config.Sim.Dt,
		Integrator:  res.Config.Sim.Integrator,
		Status:      res.Outcome,
		Environment: res.World.Environment(),
	}
}

func printResult(cmd *cobra.Command, res *scenario.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario: %s (%s mission, %s layout)\n", res.Scenario, res.Mission, res.Layout)
	fmt.Fprintf(out, "outcome:  %s\n", res.Outcome)
	fmt.Fprintf(out, "ticks:    %d (done: %v)\n", res.Sim.Ticks, res.Sim.Done)
	if final, ok := res.Sim.Final(); ok {
		p := final.Position
		fmt.Fprintf(out, "final:    t=%.2fs pos=(%.2f, %.2f, %.2f) speed=%.2f\n", final.Time, p.X, p.Y, p.Z, final.Speed)
	}

	names := make([]string, 0, len(res.Sim.Metrics))
	for name := range res.Sim.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.3f\n", name, res.Sim.Metrics[name])
	}
	_ = w.Flush()
}

func liveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live [scenario.yaml]",
		Short: "run a scenario with live visualization",
		Args:  cobra.ExactArgs(1),
	}
	o := new(overrides).register(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		base, err := baseConfig()
		if err != nil {
			return err
		}
		scenarios, err := loadScenarios(args, o)
		if err != nil {
			return err
		}
		setup, err := scenario.Build(scenarios[0], base, zerolog.Nop())
		if err != nil {
			return err
		}
		m, err := viz.RunLive(setup, scenario.Options{Log: zerolog.Nop()}, viz.GetTheme(viper.GetString("theme")))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s after %d ticks\n", setup.Scenario.Name, m.Outcome(), m.Ticks())
		return m.Err()
	}
	return cmd
}
