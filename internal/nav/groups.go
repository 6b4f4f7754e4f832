package nav

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/navcore/internal/geom"
	"github.com/san-kum/navcore/internal/vessel"
)

// Direction is a body-relative thrust direction.
type Direction int

const (
	Forward Direction = iota
	Backward
	Up
	Down
	Right
	Left
)

// Directions lists every thrust direction in classification order.
var Directions = []Direction{Forward, Backward, Up, Down, Right, Left}

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Up:
		return "up"
	case Down:
		return "down"
	case Right:
		return "right"
	case Left:
		return "left"
	}
	return "unknown"
}

// Axis returns the world-space unit vector of d for the given frame.
func (d Direction) Axis(f geom.Frame) r3.Vector {
	switch d {
	case Forward:
		return f.Forward
	case Backward:
		return f.Forward.Mul(-1)
	case Up:
		return f.Up
	case Down:
		return f.Up.Mul(-1)
	case Right:
		return f.Right
	case Left:
		return f.Right.Mul(-1)
	}
	return r3.Vector{}
}

// Groups maps each direction to the thrusters pushing that way.
type Groups map[Direction][]vessel.ThrustActuator

// Capacity is the summed maximum thrust of a group in newtons.
func (g Groups) Capacity(d Direction) float64 {
	total := 0.0
	for _, t := range g[d] {
		total += t.MaxThrust()
	}
	return total
}

// Classify assigns every thruster to the direction whose axis has the largest
// dot product with its thrust direction, provided that product exceeds
// threshold. Thrusters below the threshold on every axis are left out.
func Classify(f geom.Frame, thrusters []vessel.ThrustActuator, threshold float64) Groups {
	groups := make(Groups, len(Directions))
	for _, t := range thrusters {
		dir := t.Direction().Normalize()
		best, bestDot := Direction(-1), threshold
		for _, d := range Directions {
			if dot := dir.Dot(d.Axis(f)); dot > bestDot {
				best, bestDot = d, dot
			}
		}
		if best >= 0 {
			groups[best] = append(groups[best], t)
		}
	}
	return groups
}
