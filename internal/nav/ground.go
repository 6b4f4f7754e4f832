package nav

import (
	"errors"

	"github.com/san-kum/navcore/internal/vessel"
)

// ErrGroundNotFound is returned when the probe reaches nothing at full extent.
// The caller is expected to move closer and search again.
var ErrGroundNotFound = errors.New("nav: ground not found within probe span")

// FindGround bisects the probe extent between start and start+span until the
// shortest extent touching ground is known to within precision. It returns
// that extent, leaving the probe set to it.
func FindGround(probe vessel.ExtentProbe, start, span, precision float64, maxIter int) (float64, error) {
	if precision <= 0 {
		precision = 0.1
	}
	if maxIter <= 0 {
		maxIter = 64
	}

	lo, hi := start, start+span
	probe.SetExtent(hi)
	if !probe.Active() {
		probe.SetExtent(start)
		return 0, ErrGroundNotFound
	}

	for i := 0; i < maxIter && hi-lo > precision; i++ {
		mid := (lo + hi) / 2
		probe.SetExtent(mid)
		if probe.Active() {
			hi = mid
		} else {
			lo = mid
		}
	}

	probe.SetExtent(hi)
	return hi, nil
}
