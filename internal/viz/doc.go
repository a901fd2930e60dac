// Package viz renders simulation output in the terminal.
//
//   - [Canvas]: Braille-based pixel canvas, 2x4 dots per cell
//   - [Orbits]: XY projection of every body's sampled path
//   - [Progress]: Bubble Tea progress view fed by a simulator observer
//   - [Summary]: lipgloss panel with the figures of a finished run
package viz
