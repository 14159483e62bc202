// Package viz renders a swarm in the terminal.
//
// [Canvas] is a braille pixel canvas, [Camera] projects panel positions
// around the central body onto it, and [Model] is a Bubble Tea program
// that advances an experiment one round per tick:
//
//	Space  - Pause/Resume
//	N      - Single round while paused
//	R      - Resample the swarm and restart
//	Arrows - Rotate the view
//	+/-    - Zoom
//	?      - Show help overlay
package viz
