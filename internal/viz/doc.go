// Package viz replays recorded trajectories in the terminal.
//
// A [Model] is a Bubble Tea program that steps a play head through one or
// more [Run] values, drawing the current pose on a braille [Canvas] through
// an orbiting [Camera] and charting mechanical energy beside it.
//
// # Key Bindings
//
//	Space - Play/Pause
//	R     - Restart from t=0
//	[ ]   - Scrub backwards/forwards
//	Tab   - Switch between runs
//	< >   - Playback speed
//	WASD  - Orbit the camera
//	?     - Show help overlay
package viz
