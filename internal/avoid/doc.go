// Package avoid flies a vehicle to a point while steering around obstacles.
//
// Four forward corner proximity sensors trigger a scan: the vehicle re-aligns
// with its goal and, if still blocked, works through a fixed list of detour
// points at 45 and 90 degrees off its heading until one is clear. A forward
// ranging probe slows the vehicle as obstacles come into reach.
package avoid
