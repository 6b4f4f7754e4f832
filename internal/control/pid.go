package control

import (
	"errors"
	"fmt"

	"github.com/san-kum/navcore/internal/geom"
)

var (
	// ErrUnknownParam is returned by SetParam for a name the controller does not expose.
	ErrUnknownParam = errors.New("control: unknown parameter")

	// ErrParameterBounds indicates a parameter value is outside its valid range.
	ErrParameterBounds = errors.New("control: parameter out of valid bounds")
)

// DefaultTimeStep is the nominal tick length controllers are tuned for.
const DefaultTimeStep = 1.0 / 6.0

// Gains is the serializable tuning of a PID.
type Gains struct {
	Kp       float64 `yaml:"kp"`
	Ki       float64 `yaml:"ki"`
	Kd       float64 `yaml:"kd"`
	TimeStep float64 `yaml:"time_step"`
}

// PID is a discrete scalar regulator fed with an error per tick.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	timeStep float64
	integral float64
	prevErr  float64
	value    float64
	first    bool
}

func NewPID(kp, ki, kd, timeStep float64) *PID {
	if timeStep <= 0 {
		timeStep = DefaultTimeStep
	}
	return &PID{
		Kp:       kp,
		Ki:       ki,
		Kd:       kd,
		timeStep: timeStep,
		first:    true,
	}
}

func NewPIDFromGains(g Gains) *PID {
	return NewPID(g.Kp, g.Ki, g.Kd, g.TimeStep)
}

// Control advances the regulator by one time step. The first call after
// construction or Reset only seeds the error history and returns Kp*err.
func (p *PID) Control(err float64) float64 {
	if p.first {
		p.prevErr = err
		p.first = false
		p.value = p.Kp * err
		return p.value
	}

	p.integral += err * p.timeStep
	derivative := (err - p.prevErr) / p.timeStep
	p.prevErr = err

	p.value = p.Kp*err + p.Ki*p.integral + p.Kd*derivative
	return p.value
}

// Value is the output of the last Control call.
func (p *PID) Value() float64 {
	return p.value
}

func (p *PID) TimeStep() float64 {
	return p.timeStep
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.value = 0
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":       p.Kp,
		"Ki":       p.Ki,
		"Kd":       p.Kd,
		"TimeStep": p.timeStep,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "TimeStep":
		if value <= 0 {
			return fmt.Errorf("%w: time step %g", ErrParameterBounds, value)
		}
		p.timeStep = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}

// AngleController regulates an angle, taking the short way round.
type AngleController struct {
	PID
}

func NewAngleController(kp, ki, kd, timeStep float64) *AngleController {
	return &AngleController{PID: *NewPID(kp, ki, kd, timeStep)}
}

// ControlAngle wraps target-current into (-pi, pi] before regulating.
func (a *AngleController) ControlAngle(target, current float64) float64 {
	return a.Control(geom.WrapAngle(target - current))
}
