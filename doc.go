// Package superstructure models the elevator and wrist of a competition
// robot: actuator ids, motor controller presets, control-law constants and
// the physical dimensions needed to turn motor rotations into meters and
// radians.
//
// # Installation
//
//	go install github.com/gwillem/superstructure/cmd/superstructure@latest
//
// # Usage
//
// Inspect the configuration:
//
//	superstructure presets
//	superstructure tuning
//
// Print or draw the mechanism for a joint state:
//
//	superstructure pose --extension 0.9 --angle 45
//	superstructure render --extension 0.9 --angle 45 --out pose.png
//
// Run the control loops against a simulated plant:
//
//	superstructure simulate --height 1.2 --angle 90
//
// Values in superstructure.yaml and SUPERSTRUCTURE_* environment variables
// override the built-in constants.
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/superstructure: CLI with presets, tuning, pose, render and simulate commands
//   - pkg/robot: Device registry, controller presets, tuning, physical model and configuration
//   - pkg/control: PID, feedforward, motion profiles and joint controllers
//   - pkg/mechanism: 2D pose tree and rendering
//   - pkg/sim: Fixed-rate simulation loop
package superstructure
