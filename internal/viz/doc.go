// Package viz draws trajectories for the terminal.
//
//   - [Camera] and [Bounds]: the orthographic azimuth/elevation view shared
//     with the PNG frame renderer
//   - [Canvas] and [Preview]: braille rendering of a single frame
//   - [ProgressModel]: a Bubble Tea progress display for long renders
//   - [Summary]: lipgloss panels for command output
package viz
