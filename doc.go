// Package gripper provides serial control for a hobbyist robotic gripper.
//
// A microcontroller drives the gripper and accepts single-character action
// codes over serial at 115200 baud, framed as T<code>\n: 0 stops, 1 grips,
// 2 releases.
//
// # Installation
//
//	go install github.com/gwillem/gripper/cmd/gripper@latest
//
// The classify command links against OpenCV through gocv.
//
// # Usage
//
// Pick the gripper and sensor ports once:
//
//	gripper setup
//
// Then open the control panel, send a single action, classify camera
// frames, or watch the magnetic field sensor:
//
//	gripper control
//	gripper send grip
//	gripper classify --send
//	gripper monitor --save field.csv
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/gripper: CLI with setup, control, send, classify and monitor commands
//   - pkg/gripper: Action codes, command framing, port guard and configuration
//   - pkg/panel: Control panel state (active button, connection)
//   - pkg/classify: Maps image classifier predictions to gripper actions
//   - pkg/classify/mobilenet: MobileNetV2 classifier and camera via gocv
//   - pkg/magfield: Magnetic field sensor stream parsing and windowing
package gripper
