package path

import (
	"errors"

	"github.com/golang/geo/r3"
	"github.com/san-kum/navcore/internal/geom"
)

// DefaultSpeed is the cruise speed of a path that does not set one.
const DefaultSpeed = 20.0

var (
	ErrUnknownPath  = errors.New("path: unknown path")
	ErrEmptyPath    = errors.New("path: path has no waypoints")
	ErrBusy         = errors.New("path: executor is not idle")
	ErrNotRecording = errors.New("path: not recording")
	ErrEmptyName    = errors.New("path: empty path name")
)

// Waypoint is a recorded pose. Docking waypoints are approached along
// DockingDir, or along the frame's forward axis when DockingDir is zero.
type Waypoint struct {
	Frame      geom.Frame
	Docking    bool
	DockingDir r3.Vector
}

// ApproachPoint is the point distance units out from the waypoint along its
// docking direction.
func (w Waypoint) ApproachPoint(distance float64) r3.Vector {
	dir := w.DockingDir.Normalize()
	if dir.Norm2() == 0 {
		dir = w.Frame.Forward.Normalize()
	}
	return w.Frame.Position.Add(dir.Mul(distance))
}

// Path is an ordered list of waypoints replayed at Speed.
type Path struct {
	Name      string
	Speed     float64
	Waypoints []Waypoint
}

func (p *Path) Len() int {
	return len(p.Waypoints)
}

// Length is the summed straight-line distance between consecutive waypoints.
func (p *Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p.Waypoints); i++ {
		total += p.Waypoints[i].Frame.Position.Distance(p.Waypoints[i-1].Frame.Position)
	}
	return total
}

func (p *Path) Clone() *Path {
	c := &Path{Name: p.Name, Speed: p.Speed, Waypoints: make([]Waypoint, len(p.Waypoints))}
	copy(c.Waypoints, p.Waypoints)
	return c
}

// Status is a read-only snapshot of the executor, refreshed on every state entry.
type Status struct {
	Idle       bool
	Recording  bool
	Navigating bool
	Moving     bool
	Docking    bool
	Undocking  bool
	Reverse    bool
	Index      int
	PathName   string
	State      string
}
