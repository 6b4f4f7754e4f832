package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/san-kum/navcore/internal/sim"
	"github.com/san-kum/navcore/internal/viz"
)

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	w, h := canvas.Dots()
	width, height := float64(w)*scale, float64(h)*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	r := scale * 0.4
	canvas.EachDot(func(x, y int) {
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
			float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
	})

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// bounds is the top-down extent of a track in world X and Z.
type bounds struct {
	minX, maxX, minZ, maxZ float64
}

func (b *bounds) add(x, z float64) {
	b.minX, b.maxX = math.Min(b.minX, x), math.Max(b.maxX, x)
	b.minZ, b.maxZ = math.Min(b.minZ, z), math.Max(b.maxZ, z)
}

func trackBounds(samples []sim.Sample, env sim.Environment) bounds {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, s := range samples {
		b.add(s.Position.X, s.Position.Z)
	}
	for _, o := range env.Obstacles {
		b.add(o.Center.X-o.Radius, o.Center.Z-o.Radius)
		b.add(o.Center.X+o.Radius, o.Center.Z+o.Radius)
	}
	for _, p := range env.Ports {
		b.add(p.Position.X, p.Position.Z)
	}

	// square the view so circles stay round, with a 10% margin
	span := math.Max(math.Max(b.maxX-b.minX, b.maxZ-b.minZ), 1) * 1.2
	cx, cz := (b.minX+b.maxX)/2, (b.minZ+b.maxZ)/2
	return bounds{cx - span/2, cx + span/2, cz - span/2, cz + span/2}
}

// TrackSVG draws a run top-down: world X to the right and forward (-Z) up.
// Obstacles are grey circles and ports are marked in yellow.
func TrackSVG(samples []sim.Sample, env sim.Environment, size int, stroke string) string {
	if len(samples) < 2 {
		return ""
	}
	b := trackBounds(samples, env)
	scale := float64(size) / (b.maxX - b.minX)
	px := func(v r3.Vector) (float64, float64) {
		return (v.X - b.minX) * scale, (v.Z - b.minZ) * scale
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size)

	for _, o := range env.Obstacles {
		x, y := px(o.Center)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"#444444\"/>\n", x, y, o.Radius*scale)
	}
	for _, p := range env.Ports {
		x, y := px(p.Position)
		fmt.Fprintf(&sb, "<rect x=\"%.1f\" y=\"%.1f\" width=\"6\" height=\"6\" fill=\"#ffd700\"/>\n", x-3, y-3)
	}

	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
	for i, s := range samples {
		x, y := px(s.Position)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")

	end := samples[len(samples)-1].Position
	x, y := px(end)
	fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"4\" fill=\"%s\"/>\n", x, y, stroke)
	sb.WriteString("</svg>")
	return sb.String()
}
