package path

import (
	"github.com/golang/geo/r3"
)

type idleState struct{ e *Executor }

func (s *idleState) Name() string { return "Idle" }
func (s *idleState) Enter() {
	s.e.active = nil
	s.e.setStatus(s.Name(), Status{Idle: true})
}
func (s *idleState) Execute() {}

type recordingState struct{ e *Executor }

func (s *recordingState) Name() string { return "Recording" }
func (s *recordingState) Enter() {
	s.e.setStatus(s.Name(), Status{Recording: true, PathName: s.e.recorded.Name})
	s.e.status.Index = len(s.e.recorded.Waypoints) - 1
}
func (s *recordingState) Execute() {}

type startPathState struct{ e *Executor }

func (s *startPathState) Name() string { return "StartPath" }
func (s *startPathState) Enter() {
	s.e.setStatus(s.Name(), Status{Navigating: true})
}
func (s *startPathState) Execute() {
	e := s.e
	if e.current().Docking {
		e.machine.TransitionTo(&undockingState{e: e, from: e.index, advance: true})
		return
	}
	e.machine.TransitionTo(&aligningState{e})
}

type aligningState struct{ e *Executor }

func (s *aligningState) Name() string { return "Aligning" }
func (s *aligningState) Enter() {
	s.e.orienter.SetPrecision(s.e.cfg.AlignPrecision)
	s.e.setStatus(s.Name(), Status{Navigating: true})
}
func (s *aligningState) Execute() {
	e := s.e
	wp := e.current()
	if !e.orienter.AlignWithFrame(wp.Frame) {
		return
	}
	if wp.Docking {
		e.machine.TransitionTo(&dockingState{e: e})
		return
	}
	e.machine.TransitionTo(&movingState{e})
}

type movingState struct{ e *Executor }

func (s *movingState) Name() string { return "Moving" }
func (s *movingState) Enter() {
	s.e.mover.SetPrecision(s.e.cfg.NavPrecision)
	s.e.setStatus(s.Name(), Status{Navigating: true, Moving: true})
}
func (s *movingState) Execute() {
	e := s.e
	if !e.mover.NavigateTo(e.current().Frame.Position, e.speed()) {
		return
	}
	if !e.advance() {
		e.log.Info().Str("path", e.active.Name).Msg("path complete")
		e.machine.TransitionTo(&stopPathState{e})
		return
	}
	e.status.Index = e.index
	e.machine.TransitionTo(&aligningState{e})
}

type dockingPhase int

const (
	phaseApproach dockingPhase = iota
	phaseAlign
	phaseFinal
)

// dockingState reaches the approach point, aligns with the waypoint, then
// closes in at docking precision.
type dockingState struct {
	e     *Executor
	phase dockingPhase
}

func (s *dockingState) Name() string { return "Docking" }
func (s *dockingState) Enter() {
	e := s.e
	s.phase = phaseApproach
	e.mover.SetPrecision(e.cfg.NavPrecision)
	e.setStatus(s.Name(), Status{Navigating: true, Docking: true})
	if e.conn == nil {
		e.log.Warn().Int("index", e.index).Msg("docking waypoint without connector")
		e.machine.TransitionTo(&stopPathState{e})
	}
}
func (s *dockingState) Execute() {
	e := s.e
	wp := e.current()
	switch s.phase {
	case phaseApproach:
		if e.mover.NavigateTo(wp.ApproachPoint(e.cfg.ApproachDistance), e.speed()) {
			e.orienter.SetPrecision(e.cfg.DockingAlignPrecision)
			s.phase = phaseAlign
		}
	case phaseAlign:
		if e.orienter.AlignWithFrame(wp.Frame) {
			e.mover.SetPrecision(e.cfg.DockingNavPrecision)
			s.phase = phaseFinal
		}
	case phaseFinal:
		if e.mover.NavigateTo(wp.Frame.Position, e.speed()) {
			e.machine.TransitionTo(&connectingState{e: e})
		}
	}
}

// connectingState tries to engage the connector at the waypoint, then at
// nine nearby candidates: a forward nudge followed by the 3x3 ring around
// the waypoint in scan order. Success advances the path exactly once.
type connectingState struct {
	e          *Executor
	candidates []r3.Vector
	next       int
}

func (s *connectingState) Name() string { return "Connecting" }
func (s *connectingState) Enter() {
	e := s.e
	e.setStatus(s.Name(), Status{Navigating: true, Docking: true})
	s.candidates = connectCandidates(e.current(), e.cfg.NudgeDistance)
	s.next = 0
	e.conn.Connect()
}
func (s *connectingState) Execute() {
	e := s.e
	if e.conn.Connected() {
		from := e.index
		e.log.Info().Int("index", from).Int("retries", s.next).Msg("connected")
		if !e.advance() {
			e.log.Info().Str("path", e.active.Name).Msg("path complete")
			e.machine.TransitionTo(&stopPathState{e})
			return
		}
		e.machine.TransitionTo(&undockingState{e: e, from: from})
		return
	}

	if s.next >= len(s.candidates) {
		e.log.Warn().Int("index", e.index).Msg("connection failed at every candidate")
		e.machine.TransitionTo(&stopPathState{e})
		return
	}

	if e.mover.NavigateTo(s.candidates[s.next], e.speed()) {
		s.next++
		e.conn.Connect()
	}
}

// connectCandidates lists the retry positions around a docking waypoint.
func connectCandidates(wp Waypoint, nudge float64) []r3.Vector {
	f := wp.Frame
	out := []r3.Vector{f.Position.Add(f.Forward.Mul(nudge))}
	for _, v := range []float64{1, 0, -1} {
		for _, h := range []float64{-1, 0, 1} {
			if v == 0 && h == 0 {
				continue
			}
			out = append(out, f.Position.Add(f.Up.Mul(v*nudge)).Add(f.Right.Mul(h*nudge)))
		}
	}
	return out
}

// undockingState backs away from waypoint from along its docking direction.
// When advance is set the path index steps once the approach point is
// reached; otherwise the index already points at the next waypoint.
type undockingState struct {
	e       *Executor
	from    int
	advance bool
}

func (s *undockingState) Name() string { return "Undocking" }
func (s *undockingState) Enter() {
	e := s.e
	e.mover.SetPrecision(e.cfg.NavPrecision)
	e.setStatus(s.Name(), Status{Navigating: true, Undocking: true})
	if e.conn != nil && e.conn.Connected() {
		e.conn.Disconnect()
	}
}
func (s *undockingState) Execute() {
	e := s.e
	wp := e.active.Waypoints[s.from]
	if !e.mover.NavigateTo(wp.ApproachPoint(e.cfg.ApproachDistance), e.speed()) {
		return
	}
	if s.advance && !e.advance() {
		e.machine.TransitionTo(&stopPathState{e})
		return
	}
	if e.current().Docking {
		e.machine.TransitionTo(&dockingState{e: e})
		return
	}
	e.machine.TransitionTo(&movingState{e})
}

type stopPathState struct{ e *Executor }

func (s *stopPathState) Name() string { return "StopPath" }
func (s *stopPathState) Enter() {
	s.e.mover.Stop()
	s.e.orienter.Stop()
	s.e.setStatus(s.Name(), Status{})
}
func (s *stopPathState) Execute() {
	s.e.machine.TransitionTo(&idleState{s.e})
}
