package analysis

import (
	"errors"
	"math"

	"github.com/san-kum/navcore/internal/sim"
)

var ErrTooFewSamples = errors.New("analysis: at least two samples are required")

// Response summarizes how the goal distance of a run evolved. Times are in
// seconds from the first sample.
type Response struct {
	InitialDistance float64
	FinalDistance   float64
	MinDistance     float64
	PeakSpeed       float64

	// RiseTime spans closing 10% to 90% of the initial distance, -1 when the
	// run never closed 90%.
	RiseTime float64

	// Overshoot is the largest goal distance seen after first entering the
	// band, 0 when the band was never reached.
	Overshoot float64

	Settled      bool
	SettlingTime float64

	// Frequency is the dominant oscillation of the goal distance inside the
	// band, 0 when none was found.
	Frequency float64
}

// Analyze computes the response of a run against a settling band in metres.
func Analyze(samples []sim.Sample, band float64) (Response, error) {
	if len(samples) < 2 {
		return Response{}, ErrTooFewSamples
	}

	t0 := samples[0].Time
	d0 := samples[0].GoalDistance
	r := Response{
		InitialDistance: d0,
		FinalDistance:   samples[len(samples)-1].GoalDistance,
		MinDistance:     math.Inf(1),
		RiseTime:        -1,
	}

	t10, t90 := -1.0, -1.0
	entered := -1
	lastOut := -1
	for i, s := range samples {
		d := s.GoalDistance
		r.MinDistance = math.Min(r.MinDistance, d)
		r.PeakSpeed = math.Max(r.PeakSpeed, s.Speed)

		if t10 < 0 && d <= 0.9*d0 {
			t10 = s.Time - t0
		}
		if t90 < 0 && d <= 0.1*d0 {
			t90 = s.Time - t0
		}

		if d > band {
			lastOut = i
			if entered >= 0 {
				r.Overshoot = math.Max(r.Overshoot, d)
			}
		} else if entered < 0 {
			entered = i
		}
	}
	if t10 >= 0 && t90 >= 0 {
		r.RiseTime = t90 - t10
	}

	switch {
	case lastOut < 0:
		r.Settled = true
	case lastOut < len(samples)-1:
		r.Settled = true
		r.SettlingTime = samples[lastOut+1].Time - t0
	}

	if entered >= 0 {
		tail := samples[entered:]
		if len(tail) >= 8 {
			data := make([]float64, len(tail))
			for i, s := range tail {
				data[i] = s.GoalDistance
			}
			dt := (tail[len(tail)-1].Time - tail[0].Time) / float64(len(tail)-1)
			if f, ok := DominantFrequency(data, dt); ok {
				r.Frequency = f
			}
		}
	}
	return r, nil
}
