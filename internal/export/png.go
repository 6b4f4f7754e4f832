package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/san-kum/navcore/internal/sim"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	trackColor    = color.RGBA{R: 0, G: 150, B: 255, A: 255}
	obstacleColor = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	portColor     = color.RGBA{R: 230, G: 180, B: 0, A: 255}
	goalColor     = color.RGBA{R: 220, G: 60, B: 60, A: 255}
)

// ErrNoSamples is returned when a plot is requested for an empty run.
var ErrNoSamples = errors.New("export: no samples to plot")

// TrackPlot is the top-down view of a run: world X across, world Z down the
// page so that forward (-Z) points up.
func TrackPlot(title string, samples []sim.Sample, env sim.Environment) (*plot.Plot, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "-z (m)"

	for _, o := range env.Obstacles {
		pts := make(plotter.XYs, 0, 49)
		for i := 0; i <= 48; i++ {
			a := 2 * math.Pi * float64(i) / 48
			pts = append(pts, plotter.XY{X: o.Center.X + o.Radius*math.Cos(a), Y: -(o.Center.Z + o.Radius*math.Sin(a))})
		}
		poly, err := plotter.NewPolygon(pts)
		if err != nil {
			return nil, err
		}
		poly.Color = obstacleColor
		poly.LineStyle.Color = obstacleColor
		p.Add(poly)
	}

	if len(env.Ports) > 0 {
		pts := make(plotter.XYs, len(env.Ports))
		for i, port := range env.Ports {
			pts[i] = plotter.XY{X: port.Position.X, Y: -port.Position.Z}
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = portColor
		sc.GlyphStyle.Shape = draw.BoxGlyph{}
		sc.GlyphStyle.Radius = vg.Points(4)
		p.Add(sc)
		p.Legend.Add("port", sc)
	}

	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		pts[i] = plotter.XY{X: s.Position.X, Y: -s.Position.Z}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = trackColor
	line.LineStyle.Width = vg.Points(2)
	p.Add(line)
	p.Legend.Add("track", line)

	end, err := plotter.NewScatter(pts[len(pts)-1:])
	if err != nil {
		return nil, err
	}
	end.GlyphStyle.Color = goalColor
	end.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(end)

	p.X.Min, p.X.Max, p.Y.Min, p.Y.Max = square(p.X.Min, p.X.Max, p.Y.Min, p.Y.Max)
	p.Add(plotter.NewGrid())
	return p, nil
}

// square widens the shorter axis so both cover the same distance.
func square(xmin, xmax, ymin, ymax float64) (float64, float64, float64, float64) {
	span := math.Max(xmax-xmin, ymax-ymin)
	cx, cy := (xmin+xmax)/2, (ymin+ymax)/2
	return cx - span/2, cx + span/2, cy - span/2, cy + span/2
}

// TelemetryPlot charts speed and distance to goal against time.
func TelemetryPlot(title string, samples []sim.Sample) (*plot.Plot, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "m/s, m"

	speed := make(plotter.XYs, len(samples))
	dist := make(plotter.XYs, len(samples))
	for i, s := range samples {
		speed[i] = plotter.XY{X: s.Time, Y: s.Speed}
		dist[i] = plotter.XY{X: s.Time, Y: s.GoalDistance}
	}

	for _, series := range []struct {
		name  string
		pts   plotter.XYs
		color color.Color
	}{
		{"speed", speed, trackColor},
		{"goal distance", dist, goalColor},
	} {
		line, err := plotter.NewLine(series.pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = series.color
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(series.name, line)
	}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p, nil
}

// WritePNG renders p at the given size in inches.
func WritePNG(w io.Writer, p *plot.Plot, widthIn, heightIn float64) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(96),
	)
	p.Draw(draw.New(c))
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("export: write png: %w", err)
	}
	return nil
}
