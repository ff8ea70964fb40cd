package vision

import "errors"

// Sentinel errors for the vision package.
var (
	// ErrInvalidFrame indicates a malformed or undecodable frame.
	// The loop logs it and skips the frame without a state change.
	ErrInvalidFrame = errors.New("vision: invalid frame")

	// ErrPerceptionUnavailable indicates the detector itself failed
	// (hardware disconnect, closed detector). The loop treats it as
	// maximal uncertainty rather than crashing.
	ErrPerceptionUnavailable = errors.New("vision: perception unavailable")
)
