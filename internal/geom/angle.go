package geom

import "math"

// WrapAngle folds an angle into (-pi, pi] by repeatedly adding or subtracting 2*pi.
func WrapAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return a
	}
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// SafeAcos clamps its argument to [-1, 1] so overshoot never produces NaN.
func SafeAcos(x float64) float64 {
	return math.Acos(Clamp(x, -1, 1))
}

func Deg(rad float64) float64 { return rad * 180 / math.Pi }
func Rad(deg float64) float64 { return deg * math.Pi / 180 }
