package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/san-kum/navcore/internal/analysis"
	"github.com/san-kum/navcore/internal/config"
	"github.com/san-kum/navcore/internal/integrators"
	"github.com/san-kum/navcore/internal/optim"
	"github.com/san-kum/navcore/internal/scenario"
	"github.com/spf13/cobra"
)

func analyzeCommand() *cobra.Command {
	var band float64
	cmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "step response and frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, samples, err := loadRun(args[0])
			if err != nil {
				return err
			}
			r, err := analysis.Analyze(samples, band)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "response analysis: %s\n", meta.ID)
			fmt.Fprintf(out, "scenario: %s (%s)\n\n", meta.Scenario, meta.Status)

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "initial distance\t%.3f m\n", r.InitialDistance)
			fmt.Fprintf(w, "final distance\t%.3f m\n", r.FinalDistance)
			fmt.Fprintf(w, "closest approach\t%.3f m\n", r.MinDistance)
			fmt.Fprintf(w, "peak speed\t%.3f m/s\n", r.PeakSpeed)
			if r.RiseTime >= 0 {
				fmt.Fprintf(w, "rise time\t%.2f s\n", r.RiseTime)
			} else {
				fmt.Fprintln(w, "rise time\tnot reached")
			}
			fmt.Fprintf(w, "overshoot\t%.3f m\n", r.Overshoot)
			if r.Settled {
				fmt.Fprintf(w, "settling time\t%.2f s (band %.2f m)\n", r.SettlingTime, band)
			} else {
				fmt.Fprintf(w, "settling time\tnot settled (band %.2f m)\n", band)
			}
			if r.Frequency > 0 {
				fmt.Fprintf(w, "oscillation\t%.3f hz (period %.3f s)\n", r.Frequency, 1/r.Frequency)
			} else {
				fmt.Fprintln(w, "oscillation\tnone")
			}
			if err := w.Flush(); err != nil {
				return err
			}

			speeds := make([]float64, len(samples))
			for i, s := range samples {
				speeds[i] = s.Speed
			}
			ps := analysis.PowerSpectrum(analysis.Pad(speeds))
			if len(ps) >= 8 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, asciigraph.Plot(ps[1:len(ps)/4],
					asciigraph.Height(10),
					asciigraph.Width(70),
					asciigraph.Caption("power spectrum (speed)"),
				))
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&band, "band", 0.2, "settling band around the goal in metres")
	return cmd
}

func phaseCommand() *cobra.Command {
	var (
		xName, yName  string
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "plot two channels of a stored run against each other",
		Long:  "Channels: " + strings.Join(analysis.ChannelNames(), ", "),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, samples, err := loadRun(args[0])
			if err != nil {
				return err
			}
			p, err := analysis.NewPortrait(samples, xName, yName)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "phase plot: %s\nscenario: %s\nx: %s, y: %s\n\n", meta.ID, meta.Scenario, xName, yName)
			fmt.Fprint(out, p.ASCII(width, height))
			return nil
		},
	}
	cmd.Flags().StringVar(&xName, "x", "goal", "channel on the x axis")
	cmd.Flags().StringVar(&yName, "y", "speed", "channel on the y axis")
	cmd.Flags().IntVar(&width, "width", 70, "plot width")
	cmd.Flags().IntVar(&height, "height", 20, "plot height")
	return cmd
}

func compareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [scenario.yaml] [integrator...]",
		Short: "run a scenario once per integrator, concurrently",
		Args:  cobra.MinimumNArgs(1),
	}
	o := new(overrides).register(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		base, err := baseConfig()
		if err != nil {
			return err
		}
		scenarios, err := loadScenarios(args[:1], o)
		if err != nil {
			return err
		}
		names := args[1:]
		if len(names) == 0 {
			names = integrators.Names()
		}

		variants := make([]*scenario.Scenario, len(names))
		for i, name := range names {
			sc := *scenarios[0]
			sc.Name = scenarios[0].Name + "/" + name
			sc.Integrator = name
			variants[i] = &sc
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		results, runErr := scenario.RunAll(ctx, variants, base, log)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "comparing integrators for %s\n\n", scenarios[0].Name)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "INTEGRATOR\tOUTCOME\tTICKS\tDONE\tDISTANCE\tFINAL GOAL")
		for i, res := range results {
			if res == nil {
				fmt.Fprintf(w, "%s\tfailed\t-\t-\t-\t-\n", names[i])
				continue
			}
			goal := "-"
			if final, ok := res.Sim.Final(); ok {
				goal = fmt.Sprintf("%.3f", final.GoalDistance)
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%.2f\t%s\n",
				names[i], res.Outcome, res.Sim.Ticks, res.Sim.Done, res.Sim.Metrics["distance_travelled"], goal)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		return runErr
	}
	return cmd
}

func tuneCommand() *cobra.Command {
	var (
		params    []string
		objective string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "tune [scenario.yaml]",
		Short: "grid search controller settings for a scenario",
		Long: "Run the scenario once per combination of --param values and report the\n" +
			"combination with the lowest objective. Runs that hit the tick limit score +Inf.\n\n" +
			"Parameters: " + strings.Join(optim.TunableNames(), ", "),
		Example: "  navsim tune scenarios/goto.yaml --param nav.kp=1,2,3 --param nav.ki=0:1:0.5",
		Args:    cobra.ExactArgs(1),
	}
	o := new(overrides).register(cmd)
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "parameter values as name=v1,v2 or name=start:stop:step")
	cmd.Flags().StringVar(&objective, "objective", "ticks", "ticks or a metric name to minimize")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the best configuration to this file")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(params) == 0 {
			return errors.New("at least one --param is required")
		}
		grid := make([]optim.Param, len(params))
		for i, s := range params {
			p, err := optim.ParseParam(s)
			if err != nil {
				return err
			}
			grid[i] = p
		}

		base, err := baseConfig()
		if err != nil {
			return err
		}
		scenarios, err := loadScenarios(args, o)
		if err != nil {
			return err
		}
		sc := *scenarios[0]
		tuned := sc.Configure(base)
		sc.Preset = ""

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		search := optim.NewGridSearch(grid)
		log.Info().Str("scenario", sc.Name).Int("trials", search.Size()).Msg("tuning")
		best, trials, err := search.Search(ctx, func(ctx context.Context, p map[string]float64) (float64, error) {
			cfg, err := optim.Apply(tuned, p)
			if err != nil {
				return 0, err
			}
			if err := cfg.Validate(); err != nil {
				return 0, err
			}
			res, err := scenario.Run(ctx, &sc, cfg, scenario.Options{Log: zerolog.Nop()})
			if err != nil {
				return 0, err
			}
			return score(res, objective)
		})

		out := cmd.OutOrStdout()
		printTrials(out, grid, trials)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\nbest: %s -> %s %s\n", formatParams(grid, best.Params), objective, formatScore(best.Score))
		if output != "" {
			cfg, err := optim.Apply(tuned, best.Params)
			if err != nil {
				return err
			}
			if err := config.Save(output, cfg); err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %s\n", output)
		}
		return nil
	}
	return cmd
}

func score(res *scenario.Result, objective string) (float64, error) {
	if !res.Sim.Done {
		return math.Inf(1), nil
	}
	if objective == "ticks" {
		return float64(res.Sim.Ticks), nil
	}
	v, ok := res.Sim.Metrics[objective]
	if !ok {
		names := make([]string, 0, len(res.Sim.Metrics))
		for name := range res.Sim.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		return 0, fmt.Errorf("unknown objective %q (ticks, %s)", objective, strings.Join(names, ", "))
	}
	return v, nil
}

func printTrials(out io.Writer, grid []optim.Param, trials []optim.Trial) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAMS\tSCORE")
	for _, t := range trials {
		result := formatScore(t.Score)
		if t.Err != nil {
			result = "error: " + t.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\n", formatParams(grid, t.Params), result)
	}
	_ = w.Flush()
}

func formatParams(grid []optim.Param, params map[string]float64) string {
	parts := make([]string, 0, len(grid))
	for _, p := range grid {
		parts = append(parts, fmt.Sprintf("%s=%g", p.Name, params[p.Name]))
	}
	return strings.Join(parts, " ")
}

func formatScore(v float64) string {
	if math.IsInf(v, 1) {
		return "unfinished"
	}
	return fmt.Sprintf("%.3f", v)
}
