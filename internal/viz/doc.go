// Package viz renders a live pendulum batch in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of a [sim.Batch] with energy and chaos panels
//   - [NewInteractiveApp]: preset picker that launches a Model
//   - [Canvas]: Braille-based pixel canvas with per-pendulum colouring
//
// # Key Bindings
//
//	Space      - Pause/Resume simulation
//	R          - Reset with freshly sampled parameters
//	C          - Clear traces
//	Tab        - Select next parameter
//	Up/Down    - Increase/decrease selected parameter (clamped)
//	Left/Right - Move the anchor
//	T          - Cycle color themes
//	?          - Show help overlay
//	Q          - Quit
package viz
