package control

import (
	"errors"
	"math"
	"testing"
)

func TestPIDFirstCallIsProportional(t *testing.T) {
	errs := []float64{0, 1, -3.5, 42, 1e-6}

	for _, e := range errs {
		p := NewPID(7, 2, 5, DefaultTimeStep)
		p.Control(10)
		p.Control(-4)
		p.Reset()

		if got := p.Control(e); got != p.Kp*e {
			t.Errorf("after reset Control(%v) = %v, want %v", e, got, p.Kp*e)
		}
	}
}

func TestPIDTerms(t *testing.T) {
	p := NewPID(1, 0.5, 2, 0.5)

	out := p.Control(2)
	if out != 2 {
		t.Errorf("first output %v, want 2", out)
	}

	out = p.Control(1)
	// integral 0.5, derivative (1-2)/0.5 = -2
	if want := 1 + 0.5*0.5 + 2*-2.0; math.Abs(out-want) > 1e-12 {
		t.Errorf("second output %v, want %v", out, want)
	}
	if p.Value() != out {
		t.Errorf("Value() = %v, want %v", p.Value(), out)
	}
}

func TestPIDDefaultTimeStep(t *testing.T) {
	p := NewPID(1, 0, 0, 0)
	if p.TimeStep() != DefaultTimeStep {
		t.Errorf("expected default time step, got %v", p.TimeStep())
	}
}

func TestPIDSetParam(t *testing.T) {
	p := NewPIDFromGains(Gains{Kp: 1, Ki: 0, Kd: 0, TimeStep: 0.1})

	tests := []struct {
		name    string
		param   string
		value   float64
		wantErr error
	}{
		{"kp", "Kp", 4, nil},
		{"ki", "Ki", 0.3, nil},
		{"kd", "Kd", 0.2, nil},
		{"time step", "TimeStep", 0.25, nil},
		{"bad time step", "TimeStep", 0, ErrParameterBounds},
		{"unknown", "Gain", 1, ErrUnknownParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.SetParam(tt.param, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := p.GetParams()[tt.param]; got != tt.value {
				t.Errorf("param %s = %v, want %v", tt.param, got, tt.value)
			}
		})
	}
}

func TestAngleControllerWraps(t *testing.T) {
	tests := []struct {
		name            string
		target, current float64
		want            float64
	}{
		{"across the seam", -3.0, 3.0, 2*math.Pi - 6.0},
		{"other way", 3.0, -3.0, 6.0 - 2*math.Pi},
		{"plain", 0.5, 0.2, 0.3},
		{"half turn", math.Pi, 0, math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAngleController(1, 0, 0, DefaultTimeStep)
			got := a.ControlAngle(tt.target, tt.current)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if got <= -math.Pi || got > math.Pi {
				t.Errorf("error %v not normalized", got)
			}
		})
	}
}
