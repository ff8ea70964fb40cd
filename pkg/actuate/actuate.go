// Package actuate applies chosen actions to the world: software camera
// parameters or a physical pan-tilt unit over a serial link. The control
// loop only sees the Sink capability; the transports live here.
package actuate

import "errors"

// Sentinel errors for the actuate package.
var (
	// ErrActuationFailed indicates the actuator rejected or dropped a
	// command. The loop records it as a failure sample and continues.
	ErrActuationFailed = errors.New("actuate: actuation failed")

	// ErrNotConnected indicates the sink's transport is closed.
	ErrNotConnected = errors.New("actuate: not connected")

	// ErrUnsupportedAction indicates the sink cannot express the action.
	ErrUnsupportedAction = errors.New("actuate: unsupported action")
)
