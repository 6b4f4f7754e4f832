package avoid

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/san-kum/navcore/internal/geom"
)

type idleState struct{ a *Avoider }

func (s *idleState) Name() string { return "Idle" }
func (s *idleState) Enter() {
	s.a.probe.SetEnabled(false)
	s.a.orienter.Stop()
	s.a.mover.Stop()
}
func (s *idleState) Execute() {}

type aligningState struct {
	a      *Avoider
	target r3.Vector
}

func (s *aligningState) Name() string { return "Aligning" }
func (s *aligningState) Enter()       {}
func (s *aligningState) Execute() {
	if s.a.orienter.AlignWithTarget(s.target) {
		s.a.machine.TransitionTo(&navigatingState{a: s.a, target: s.target, detour: s.target != s.a.goal})
	}
}

type navigatingState struct {
	a      *Avoider
	target r3.Vector
	detour bool
}

func (s *navigatingState) Name() string { return "Navigating" }
func (s *navigatingState) Enter()       {}
func (s *navigatingState) Execute() {
	a := s.a
	if a.sense().any() {
		a.mover.Stop()
		a.machine.TransitionTo(&scanningState{a: a, target: s.target})
		return
	}

	speed := a.cruiseSpeed(s.target)
	if closest, hit := a.probeAhead(speed * a.cfg.ProbeLookahead); hit {
		speed = math.Max(a.cfg.MinSpeed, math.Min(speed, closest/a.cfg.SpeedDivisor))
		a.log.Debug().Float64("distance", closest).Float64("speed", speed).Msg("obstacle ahead, slowing")
	}

	if !a.mover.NavigateTo(s.target, speed) {
		return
	}
	if s.detour {
		a.log.Debug().Msg("detour complete, resuming")
		a.machine.TransitionTo(&aligningState{a: a, target: a.goal})
		return
	}
	a.log.Info().Msg("arrived")
	a.status = StatusArrived
	a.machine.TransitionTo(&idleState{a})
}

// candidate is a detour point offered during one scanning episode.
type candidate struct {
	name    string
	pos     r3.Vector
	allowed func(b blocked) bool
}

func clearRight(b blocked) bool  { return !b.tr && !b.br }
func clearLeft(b blocked) bool   { return !b.tl && !b.bl }
func clearTop(b blocked) bool    { return !b.tr && !b.tl }
func clearBottom(b blocked) bool { return !b.br && !b.bl }
func always(blocked) bool        { return true }

// detourCandidates lists the detour points around pose in the order they are
// tried: eight diagonals off forward, each gated by the corners it passes,
// then the four pure turns.
func detourCandidates(pose geom.Frame, distance float64) []candidate {
	fwd, right, up := pose.Forward, pose.Right, pose.Up
	at := func(dir r3.Vector) r3.Vector {
		return pose.Position.Add(dir.Normalize().Mul(distance))
	}
	return []candidate{
		{"center-right", at(fwd.Add(right)), clearRight},
		{"center-left", at(fwd.Sub(right)), clearLeft},
		{"top-center", at(fwd.Add(up)), clearTop},
		{"bottom-center", at(fwd.Sub(up)), clearBottom},
		{"top-right", at(fwd.Add(right).Add(up)), clearTop},
		{"bottom-right", at(fwd.Add(right).Sub(up)), clearBottom},
		{"top-left", at(fwd.Sub(right).Add(up)), clearTop},
		{"bottom-left", at(fwd.Sub(right).Sub(up)), clearBottom},
		{"right", at(right), always},
		{"left", at(right.Mul(-1)), always},
		{"up", at(up), always},
		{"down", at(up.Mul(-1)), always},
	}
}

// scanningState is one episode of looking for a way past an obstacle. The
// candidates are fixed from the pose at the first blocked check; each is
// either tried or rejected once, and the episode ends stuck when none remain.
type scanningState struct {
	a          *Avoider
	target     r3.Vector
	candidates []candidate
	next       int
	visited    []r3.Vector
	tried      []r3.Vector
}

func (s *scanningState) Name() string { return "Scanning" }
func (s *scanningState) Enter()       {}

func (s *scanningState) Execute() {
	a := s.a
	if !a.orienter.AlignWithTarget(s.target) {
		return
	}

	b := a.sense()
	if !b.any() {
		a.machine.TransitionTo(&navigatingState{a: a, target: s.target, detour: s.target != a.goal})
		return
	}

	if s.candidates == nil {
		s.candidates = detourCandidates(a.ref.Frame(), a.cfg.DetourDistance)
	}

	for s.next < len(s.candidates) {
		c := s.candidates[s.next]
		s.next++
		if s.isVisited(c.pos) {
			continue
		}
		s.visited = append(s.visited, c.pos)
		if !c.allowed(b) {
			continue
		}
		s.tried = append(s.tried, c.pos)
		s.target = c.pos
		a.log.Debug().Str("candidate", c.name).Msg("trying detour")
		return
	}

	a.log.Warn().Int("tried", len(s.tried)).Msg("no way around obstacle")
	a.status = StatusStuck
	a.machine.TransitionTo(&idleState{a})
}

func (s *scanningState) isVisited(p r3.Vector) bool {
	for _, v := range s.visited {
		if v.Distance(p) < s.a.cfg.DuplicateRadius {
			return true
		}
	}
	return false
}
