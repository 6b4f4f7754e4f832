package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/navcore/internal/export"
	"github.com/san-kum/navcore/internal/sim"
	"github.com/san-kum/navcore/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func store() *storage.Store {
	return storage.New(viper.GetString("data"))
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := store().List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSCENARIO\tLAYOUT\tMISSION\tTIME\tTICKS\tDT\tINTEG\tSTATUS")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%.3fs\t%s\t%s\n",
					run.ID,
					run.Scenario,
					run.Layout,
					run.Mission,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Ticks,
					run.Dt,
					run.Integrator,
					run.Status,
				)
			}
			return w.Flush()
		},
	}
}

func loadRun(id string) (*storage.RunMetadata, []sim.Sample, error) {
	st := store()
	meta, err := st.Load(id)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadTrace(id)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", id)
	}
	return meta, samples, nil
}

func plotCommand() *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, samples, err := loadRun(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run: %s\nscenario: %s (%s)\nstatus: %s\nsamples: %d\n\n",
				meta.ID, meta.Scenario, meta.Mission, meta.Status, len(samples))

			series := []struct {
				caption string
				value   func(sim.Sample) float64
			}{
				{"speed (m/s)", func(s sim.Sample) float64 { return s.Speed }},
				{"distance to goal (m)", func(s sim.Sample) float64 { return s.GoalDistance }},
				{"altitude y (m)", func(s sim.Sample) float64 { return s.Position.Y }},
				{"thrust (N)", func(s sim.Sample) float64 { return s.Thrust }},
			}
			for _, sr := range series {
				data := make([]float64, len(samples))
				for i, s := range samples {
					data[i] = sr.value(s)
				}
				fmt.Fprintln(out, asciigraph.Plot(data,
					asciigraph.Height(10),
					asciigraph.Width(width),
					asciigraph.Caption(sr.caption),
				))
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "graph width")
	return cmd
}

func exportCommand() *cobra.Command {
	var (
		format    string
		output    string
		telemetry bool
	)
	cmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as svg, png, csv or json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, samples, err := loadRun(args[0])
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			title := fmt.Sprintf("%s (%s)", meta.Scenario, meta.Status)
			switch format {
			case "svg":
				svg := export.TrackSVG(samples, meta.Environment, 800, "#00ccff")
				_, err = io.WriteString(w, svg)
			case "png":
				err = writePlot(w, title, samples, meta.Environment, telemetry)
			case "csv":
				err = storage.ExportCSV(w, samples)
			case "json":
				err = storage.ExportJSON(w, *meta, samples)
			default:
				return fmt.Errorf("unknown format %q (svg, png, csv, json)", format)
			}
			if err == nil && output != "" {
				log.Info().Str("file", output).Str("format", format).Msg("exported")
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: svg, png, csv, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&telemetry, "telemetry", false, "png: plot speed and goal distance instead of the track")
	return cmd
}

func writePlot(w io.Writer, title string, samples []sim.Sample, env sim.Environment, telemetry bool) error {
	if telemetry {
		p, err := export.TelemetryPlot(title, samples)
		if err != nil {
			return err
		}
		return export.WritePNG(w, p, 8, 4)
	}
	p, err := export.TrackPlot(title, samples, env)
	if err != nil {
		return err
	}
	return export.WritePNG(w, p, 6, 6)
}
