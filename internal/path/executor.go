package path

import (
	"fmt"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/rs/zerolog"
	"github.com/san-kum/navcore/internal/fsm"
	"github.com/san-kum/navcore/internal/geom"
	"github.com/san-kum/navcore/internal/vessel"
)

// Mover translates the vehicle; *nav.Navigator satisfies it.
type Mover interface {
	NavigateTo(target r3.Vector, maxSpeed float64) bool
	SetPrecision(p float64)
	Stop()
}

// Orienter rotates the vehicle; *align.Aligner satisfies it.
type Orienter interface {
	AlignWithFrame(target geom.Frame) bool
	SetPrecision(p float64)
	Stop()
}

type Config struct {
	NavPrecision          float64 `yaml:"nav_precision"`
	AlignPrecision        float64 `yaml:"align_precision"`
	DockingNavPrecision   float64 `yaml:"docking_nav_precision"`
	DockingAlignPrecision float64 `yaml:"docking_align_precision"`
	ApproachDistance      float64 `yaml:"approach_distance"`
	NudgeDistance         float64 `yaml:"nudge_distance"`
	DefaultSpeed          float64 `yaml:"default_speed"`
}

func DefaultConfig() Config {
	return Config{
		NavPrecision:          0.2,
		AlignPrecision:        0.01,
		DockingNavPrecision:   0.1,
		DockingAlignPrecision: 0.01,
		ApproachDistance:      2.0,
		NudgeDistance:         0.01,
		DefaultSpeed:          DefaultSpeed,
	}
}

// Executor records waypoint paths and replays them, docking where a
// waypoint was recorded while connected.
type Executor struct {
	cfg      Config
	ref      vessel.Reference
	mover    Mover
	orienter Orienter
	conn     vessel.Connector
	paths    map[string]*Path
	machine  *fsm.Machine
	status   Status
	recorded *Path
	active   *Path
	index    int
	reverse  bool
	log      zerolog.Logger
}

// New builds an idle executor. conn may be nil for vehicles without a
// connector; docking waypoints then abort the path.
func New(ref vessel.Reference, mover Mover, orienter Orienter, conn vessel.Connector, cfg Config, log zerolog.Logger) (*Executor, error) {
	if ref == nil {
		return nil, vessel.NewInitError("path", vessel.ErrNoReference, "")
	}
	if mover == nil || orienter == nil {
		return nil, fmt.Errorf("path: navigator and aligner are required")
	}
	if cfg.DefaultSpeed <= 0 {
		cfg.DefaultSpeed = DefaultSpeed
	}

	e := &Executor{
		cfg:      cfg,
		ref:      ref,
		mover:    mover,
		orienter: orienter,
		conn:     conn,
		paths:    make(map[string]*Path),
		machine:  fsm.NewMachine(log),
		log:      log,
	}
	e.machine.TransitionTo(&idleState{e})
	return e, nil
}

// OnTransition forwards state changes to fn.
func (e *Executor) OnTransition(fn func(from, to string)) {
	e.machine.OnTransition(fn)
}

func (e *Executor) Status() Status {
	return e.status
}

func (e *Executor) StateName() string {
	return e.machine.CurrentName()
}

func (e *Executor) isIdle() bool {
	_, ok := e.machine.Current().(*idleState)
	return ok
}

// Update runs one tick of the active state.
func (e *Executor) Update() {
	e.machine.Execute()
}

// StartRecording begins a new path, replacing any path of the same name.
func (e *Executor) StartRecording(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if !e.isIdle() {
		return ErrBusy
	}
	e.recorded = &Path{Name: name, Speed: e.cfg.DefaultSpeed}
	e.paths[name] = e.recorded
	e.machine.TransitionTo(&recordingState{e})
	return nil
}

// AddWaypoint appends the current pose. When the connector is engaged the
// waypoint is a docking point approached along the peer's facing.
func (e *Executor) AddWaypoint() error {
	if _, ok := e.machine.Current().(*recordingState); !ok {
		return ErrNotRecording
	}
	wp := Waypoint{Frame: e.ref.Frame()}
	if e.conn != nil && e.conn.Connected() {
		wp.Docking = true
		if fwd, ok := e.conn.PeerForward(); ok {
			wp.DockingDir = fwd
		}
	}
	e.recorded.Waypoints = append(e.recorded.Waypoints, wp)
	e.status.Index = len(e.recorded.Waypoints) - 1

	e.log.Info().
		Str("path", e.recorded.Name).
		Int("index", e.status.Index).
		Bool("docking", wp.Docking).
		Msg("waypoint recorded")
	return nil
}

func (e *Executor) StopRecording() {
	if _, ok := e.machine.Current().(*recordingState); ok {
		e.machine.TransitionTo(&idleState{e})
	}
}

func (e *Executor) ClearPath(name string) error {
	if !e.isIdle() {
		return ErrBusy
	}
	delete(e.paths, name)
	return nil
}

// SetSpeed changes the cruise speed of a stored path.
func (e *Executor) SetSpeed(name string, speed float64) error {
	p, ok := e.paths[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPath, name)
	}
	p.Speed = speed
	return nil
}

// StartPath replays a stored path from start, counted from the end when
// reverse is set. An out-of-range start falls back to the first waypoint of
// the traversal.
func (e *Executor) StartPath(name string, reverse bool, start int) error {
	if !e.isIdle() {
		return ErrBusy
	}
	p, ok := e.paths[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPath, name)
	}
	n := len(p.Waypoints)
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyPath, name)
	}

	idx := start
	if reverse {
		idx = n - 1 - start
		if idx < 0 || idx >= n {
			idx = n - 1
		}
	} else if idx < 0 || idx >= n {
		idx = 0
	}

	e.active = p
	e.index = idx
	e.reverse = reverse

	e.log.Info().Str("path", name).Bool("reverse", reverse).Int("index", idx).Msg("path started")
	e.machine.TransitionTo(&startPathState{e})
	return nil
}

// StopPath abandons a running path. It has no effect while idle or recording.
func (e *Executor) StopPath() {
	switch e.machine.Current().(type) {
	case *startPathState, *aligningState, *movingState, *dockingState, *connectingState, *undockingState:
		e.machine.TransitionTo(&stopPathState{e})
	}
}

func (e *Executor) PathNames() []string {
	names := make([]string, 0, len(e.paths))
	for name := range e.paths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Executor) HasPath(name string) bool {
	_, ok := e.paths[name]
	return ok
}

// Path returns a copy of a stored path.
func (e *Executor) Path(name string) (*Path, bool) {
	p, ok := e.paths[name]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

func (e *Executor) PointCount(name string) int {
	if p, ok := e.paths[name]; ok {
		return len(p.Waypoints)
	}
	return 0
}

// AddPath stores a copy of p, replacing a path with the same name.
func (e *Executor) AddPath(p *Path) error {
	if p == nil || p.Name == "" {
		return ErrEmptyName
	}
	if !e.isIdle() {
		return ErrBusy
	}
	e.paths[p.Name] = p.Clone()
	return nil
}

// Serialize writes every stored path, ordered by name.
func (e *Executor) Serialize() string {
	paths := make([]*Path, 0, len(e.paths))
	for _, name := range e.PathNames() {
		paths = append(paths, e.paths[name])
	}
	return Marshal(paths)
}

// Deserialize merges paths parsed from data and returns how many were loaded.
func (e *Executor) Deserialize(data string) int {
	loaded := Unmarshal(data)
	for _, p := range loaded {
		e.paths[p.Name] = p
	}
	return len(loaded)
}

// CurrentWaypoint is the waypoint the running path is working towards.
func (e *Executor) CurrentWaypoint() (Waypoint, bool) {
	if e.active == nil || e.isIdle() {
		return Waypoint{}, false
	}
	return e.current(), true
}

func (e *Executor) current() Waypoint {
	return e.active.Waypoints[e.index]
}

func (e *Executor) speed() float64 {
	if e.active != nil && e.active.Speed > 0 {
		return e.active.Speed
	}
	return e.cfg.DefaultSpeed
}

// advance steps the index in traversal order. At the end of the traversal
// the index is left on the last waypoint and advance reports false.
func (e *Executor) advance() bool {
	next := e.index + 1
	if e.reverse {
		next = e.index - 1
	}
	if next < 0 || next >= len(e.active.Waypoints) {
		return false
	}
	e.index = next
	return true
}

func (e *Executor) setStatus(state string, s Status) {
	s.State = state
	s.Reverse = e.reverse
	s.Index = e.index
	if e.active != nil {
		s.PathName = e.active.Name
	}
	e.status = s
}
