package path

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/san-kum/navcore/internal/geom"
)

func randVec(r *rand.Rand) r3.Vector {
	return r3.Vector{X: r.Float64()*2000 - 1000, Y: r.Float64()*2000 - 1000, Z: r.Float64()*2000 - 1000}
}

func vecClose(a, b r3.Vector) bool {
	const tol = 1e-8
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestMarshalRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	var paths []*Path
	for i, name := range []string{"mine-to-base", "base-to-mine", "single"} {
		p := &Path{Name: name, Speed: 12.5 + float64(i)}
		count := 1 + r.Intn(8)
		for j := 0; j < count; j++ {
			f := geom.NewFrame(randVec(r), randVec(r), randVec(r))
			p.Waypoints = append(p.Waypoints, Waypoint{
				Frame:      f,
				Docking:    j%3 == 0,
				DockingDir: randVec(r).Normalize(),
			})
		}
		paths = append(paths, p)
	}

	got := Unmarshal(Marshal(paths))
	if len(got) != len(paths) {
		t.Fatalf("expected %d paths, got %d", len(paths), len(got))
	}

	for i, want := range paths {
		p := got[i]
		if p.Name != want.Name || p.Speed != want.Speed {
			t.Errorf("path %d header %q/%v, want %q/%v", i, p.Name, p.Speed, want.Name, want.Speed)
		}
		if len(p.Waypoints) != len(want.Waypoints) {
			t.Fatalf("path %s: %d waypoints, want %d", p.Name, len(p.Waypoints), len(want.Waypoints))
		}
		for j, w := range want.Waypoints {
			g := p.Waypoints[j]
			if g.Docking != w.Docking {
				t.Errorf("%s wp %d docking %v, want %v", p.Name, j, g.Docking, w.Docking)
			}
			pairs := [][2]r3.Vector{
				{g.Frame.Position, w.Frame.Position},
				{g.Frame.Forward, w.Frame.Forward},
				{g.Frame.Right, w.Frame.Right},
				{g.Frame.Up, w.Frame.Up},
				{g.DockingDir, w.DockingDir},
			}
			for k, pair := range pairs {
				if !vecClose(pair[0], pair[1]) {
					t.Errorf("%s wp %d vector %d: %v, want %v", p.Name, j, k, pair[0], pair[1])
				}
			}
		}
	}
}

func TestMarshalFormat(t *testing.T) {
	p := &Path{Name: "dock", Speed: 20, Waypoints: []Waypoint{{
		Frame:   geom.Identity(r3.Vector{X: 1, Y: 2, Z: 3}),
		Docking: true,
	}}}
	out := Marshal([]*Path{p, p})

	for _, want := range []string{
		"NAME:dock\n",
		"SPEED:20.00\n",
		"WAYPOINTS:1\n",
		"WP0:\n",
		"  POS:1.00000000,2.00000000,3.00000000\n",
		"  FWD:0.00000000,0.00000000,-1.00000000\n",
		"  DOCK:True\n",
		"\n---PATH---\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestUnmarshalTolerant(t *testing.T) {
	data := strings.Join([]string{
		"NAME:good",
		"SPEED:fast",
		"WAYPOINTS:2",
		"WP0:",
		"  POS:1,2,3",
		"  FWD:0,0,-1",
		"  RGT:not,a,vector",
		"  UP:0,1,0",
		"  DOCK:maybe",
		"garbage line",
		"WP1:",
		"  POS:broken",
		"  DOCK:true",
		"---PATH---",
		"NAME:empty",
		"SPEED:5",
		"WAYPOINTS:0",
		"---PATH---",
		"SPEED:3",
		"WP0:",
		"  POS:0,0,0",
		"---PATH---",
		"NAME:legacy",
		"WP0:\r",
		"  POS:4,5,6\r",
		"  DOCK:False\r",
	}, "\n")

	paths := Unmarshal(data)
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}

	good := paths[0]
	if good.Name != "good" || good.Speed != DefaultSpeed {
		t.Errorf("unexpected header %q %v", good.Name, good.Speed)
	}
	if len(good.Waypoints) != 1 {
		t.Fatalf("expected the waypoint without position dropped, got %d", len(good.Waypoints))
	}
	wp := good.Waypoints[0]
	if wp.Frame.Position != (r3.Vector{X: 1, Y: 2, Z: 3}) || wp.Docking {
		t.Errorf("unexpected waypoint %+v", wp)
	}
	if wp.Frame.Right != (r3.Vector{}) {
		t.Errorf("unparseable right vector should be skipped, got %v", wp.Frame.Right)
	}

	legacy := paths[1]
	if legacy.Name != "legacy" || legacy.Waypoints[0].Frame.Position != (r3.Vector{X: 4, Y: 5, Z: 6}) {
		t.Errorf("unexpected legacy path %+v", legacy)
	}
}

func TestApproachPoint(t *testing.T) {
	wp := Waypoint{Frame: geom.Identity(r3.Vector{X: 10})}
	if got := wp.ApproachPoint(2); got != (r3.Vector{X: 10, Z: -2}) {
		t.Errorf("approach along forward = %v", got)
	}
	wp.DockingDir = r3.Vector{Y: 3}
	if got := wp.ApproachPoint(2); got != (r3.Vector{X: 10, Y: 2}) {
		t.Errorf("approach along docking dir = %v", got)
	}
}

func TestPathLength(t *testing.T) {
	p := &Path{Waypoints: []Waypoint{
		{Frame: geom.Identity(r3.Vector{})},
		{Frame: geom.Identity(r3.Vector{X: 3, Y: 4})},
		{Frame: geom.Identity(r3.Vector{X: 3, Y: 4, Z: 10})},
	}}
	if got := p.Length(); math.Abs(got-15) > 1e-12 {
		t.Errorf("length %v, want 15", got)
	}
}
