// Package optim searches controller gains and tolerances for the
// configuration that scores best on a caller supplied objective, usually the
// ticks a scenario needs to finish.
package optim
