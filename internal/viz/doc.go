// Package viz renders a running simulation in the terminal.
//
// [LiveModel] is a Bubble Tea model that steps a [sim.Simulator] on every
// tick and draws the cluster on a braille [Canvas] through a rotatable
// [Camera]. The side panel shows the largest displacement from the starting
// frame as an asciigraph plot and marks the step at which it first crossed
// the break threshold. [Menu] lets the user pick a starting configuration
// before handing over to the live view.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Rebuild the simulation from its factory
//	[ ]   - Halve/double steps per tick
//	x y z - Rotate (shift reverses)
//	+ -   - Zoom
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
