// Package analysis characterizes recorded runs.
//
//   - [Analyze]: step response of the goal distance (rise, overshoot, settling)
//   - [DominantFrequency]: strongest oscillation in a series via [PowerSpectrum]
//   - [NewPortrait]: phase portrait of two sample channels, rendered as text
//
// # Settling
//
// A run has settled once its goal distance enters the band and never leaves it:
//
//	r, err := analysis.Analyze(samples, 0.2)
//	if err == nil && r.Settled {
//	    fmt.Printf("settled after %.1fs\n", r.SettlingTime)
//	}
package analysis
