// Package viz draws running scenarios in the terminal.
//
// Frames are rendered onto a braille [Canvas] through an orbiting
// orthographic [Camera]; [LiveModel] is the Bubble Tea model that steps a
// scenario and shows it alongside its telemetry.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single tick
//	F/S   - Faster/slower
//	C     - Follow the vehicle
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
