// Package path records vehicle poses as named waypoint paths and replays
// them, forwards or in reverse, through a navigator and an aligner.
//
// Waypoints recorded while the vehicle's connector is engaged are docking
// points: replay approaches them along the docking direction, closes in at
// docking precision and reconnects, retrying at nine small offsets around
// the recorded pose before giving up on the path.
//
// Paths persist in a line-oriented text format (see Marshal and Unmarshal).
package path
