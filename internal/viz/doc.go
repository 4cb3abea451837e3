// Package viz provides the terminal view of a running session.
//
// [Model] is a Bubble Tea program that steps a frame loop on a timer and
// shows the scene next to live counters and a peak-height chart. The scene is
// either the frame's draw list painted through a perspective [Camera] by a
// [Wireframe], or a top-down braille map of the app objects.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single frame while paused
//	V     - Camera / top-down view
//	+/-   - Zoom
//	Q     - Quit
package viz
