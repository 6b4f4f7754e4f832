package viz

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
)

// Camera is an orthographic view orbiting Center. With no rotation it looks
// down the world Z axis; RotX = π/2 looks straight down from above.
type Camera struct {
	Center     r3.Vector
	RotX, RotY float64
	Zoom       float64
	// Span is the world distance covered by the shorter canvas side at zoom 1.
	Span float64
}

func NewCamera() *Camera {
	return &Camera{RotX: math.Pi / 2, Zoom: 1, Span: 100}
}

// TopDown reports whether the camera looks straight down.
func (c *Camera) TopDown() bool {
	return c.RotX == math.Pi/2 && c.RotY == 0
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(20, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.05, c.Zoom/1.2) }

// ResetView returns to the top-down view at zoom 1.
func (c *Camera) ResetView() {
	c.RotX, c.RotY, c.Zoom = math.Pi/2, 0, 1
}

// Fit centres the camera on the bounding box of points and sizes Span so
// they all fit with a margin.
func (c *Camera) Fit(points []r3.Vector) {
	if len(points) == 0 {
		return
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = r3.Vector{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vector{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	c.Center = lo.Add(hi).Mul(0.5)
	ext := hi.Sub(lo)
	c.Span = math.Max(10, 1.2*math.Max(ext.X, math.Max(ext.Y, ext.Z)))
}

func (c *Camera) rotate(p r3.Vector) r3.Vector {
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	return p
}

// Project maps a world point to dot coordinates on a sw x sh canvas. It
// returns the depth towards the viewer and whether the point is on screen.
func (c *Camera) Project(p r3.Vector, sw, sh int) (int, int, float64, bool) {
	rot := c.rotate(p.Sub(c.Center))
	scale := float64(min(sw, sh)) / c.Span * c.Zoom
	sx := int(math.Round(rot.X*scale)) + sw/2
	sy := int(math.Round(-rot.Y*scale)) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// Unproject inverts Project for the top-down camera, returning the world
// point on the horizontal plane through Center.
func (c *Camera) Unproject(sx, sy, sw, sh int) r3.Vector {
	scale := float64(min(sw, sh)) / c.Span * c.Zoom
	return c.Center.Add(r3.Vector{X: float64(sx-sw/2) / scale, Z: float64(sy-sh/2) / scale})
}

type Edge struct {
	Start, End r3.Vector
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe              { return &Wireframe{} }
func (w *Wireframe) AddEdge(s, e r3.Vector) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddPoint(p r3.Vector)   { w.Edges = append(w.Edges, Edge{p, p}) }
func (w *Wireframe) Merge(other *Wireframe) { w.Edges = append(w.Edges, other.Edges...) }
func (w *Wireframe) Len() int               { return len(w.Edges) }
func (w *Wireframe) Points() (out []r3.Vector) {
	for _, e := range w.Edges {
		out = append(out, e.Start, e.End)
	}
	return out
}

// AddCircle adds a closed polygon of n segments around center in the plane
// spanned by the unit vectors u and v.
func (w *Wireframe) AddCircle(center, u, v r3.Vector, radius float64, n int) {
	prev := center.Add(u.Mul(radius))
	for i := 1; i <= n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		next := center.Add(u.Mul(radius * math.Cos(a))).Add(v.Mul(radius * math.Sin(a)))
		w.AddEdge(prev, next)
		prev = next
	}
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe back to front. Edges with both ends off
// screen are skipped.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.Dots()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, cw, ch)
		x2, y2, d2, v2 := cam.Project(e.End, cw, ch)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.Set(e.x1, e.y1)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2)
		}
	}
}
