package scenario

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/san-kum/navcore/internal/avoid"
	"github.com/san-kum/navcore/internal/nav"
	"github.com/san-kum/navcore/internal/path"
	"github.com/san-kum/navcore/internal/rover"
	"github.com/san-kum/navcore/internal/vessel"
)

// Controller is a mission bound to a vehicle. Outcome summarizes how the
// mission ended.
type Controller interface {
	Tick() bool
	State() string
	Goal() (r3.Vector, bool)
	Outcome() string
}

type gotoMission struct {
	nav     *nav.Navigator
	target  r3.Vector
	speed   float64
	arrived bool
}

func (m *gotoMission) Tick() bool {
	m.arrived = m.nav.NavigateTo(m.target, m.speed)
	return m.arrived
}

func (m *gotoMission) State() string {
	if m.arrived {
		return "Arrived"
	}
	return "Navigating"
}

func (m *gotoMission) Goal() (r3.Vector, bool) { return m.target, true }

func (m *gotoMission) Outcome() string {
	if m.arrived {
		return "arrived"
	}
	return "en route"
}

type avoidMission struct {
	avoider *avoid.Avoider
}

func (m *avoidMission) Tick() bool {
	m.avoider.Execute()
	s := m.avoider.Status()
	return s == avoid.StatusArrived || s == avoid.StatusStuck
}

func (m *avoidMission) State() string           { return m.avoider.State() }
func (m *avoidMission) Goal() (r3.Vector, bool) { return m.avoider.Goal() }
func (m *avoidMission) Outcome() string         { return m.avoider.Status().String() }

type pathMission struct {
	exec *path.Executor
	last path.Waypoint
	seen bool
}

func (m *pathMission) Tick() bool {
	m.exec.Update()
	if wp, ok := m.exec.CurrentWaypoint(); ok {
		m.last, m.seen = wp, true
	}
	return m.exec.StateName() == "Idle"
}

func (m *pathMission) State() string { return m.exec.StateName() }

func (m *pathMission) Goal() (r3.Vector, bool) {
	return m.last.Frame.Position, m.seen
}

func (m *pathMission) Outcome() string {
	st := m.exec.Status()
	if st.Idle {
		return fmt.Sprintf("path finished at waypoint %d", st.Index)
	}
	return fmt.Sprintf("%s at waypoint %d", st.State, st.Index)
}

type driveMission struct {
	steering *rover.Steering
	target   r3.Vector
	power    float64
	arrived  bool
}

func (m *driveMission) Tick() bool {
	if m.steering.DriveToward(m.target, m.power) {
		m.steering.SetHandbrake(true)
		m.arrived = true
	}
	return m.arrived
}

func (m *driveMission) State() string {
	if m.arrived {
		return "Parked"
	}
	return "Driving"
}

func (m *driveMission) Goal() (r3.Vector, bool) { return m.target, true }

func (m *driveMission) Outcome() string {
	if m.arrived {
		return "arrived"
	}
	return "en route"
}

// probeMission searches for the ground with the extent probe on its first tick.
type probeMission struct {
	probe     vessel.ExtentProbe
	extent    float64
	span      float64
	precision float64
	ground    float64
	err       error
	done      bool
}

func (m *probeMission) Tick() bool {
	if !m.done {
		m.ground, m.err = nav.FindGround(m.probe, m.extent, m.span, m.precision, 0)
		m.done = true
	}
	return true
}

func (m *probeMission) State() string {
	if m.done {
		return "Probed"
	}
	return "Probing"
}

func (m *probeMission) Goal() (r3.Vector, bool) { return r3.Vector{}, false }

func (m *probeMission) Outcome() string {
	if m.err != nil {
		return m.err.Error()
	}
	return fmt.Sprintf("ground at %.2f", m.ground)
}

// Ground is the extent at which the probe touched ground.
func (m *probeMission) Ground() (float64, error) {
	return m.ground, m.err
}
