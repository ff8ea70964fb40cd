// Package policy defines the action space for active perception and
// scores each action's recent performance.
package policy

import "fmt"

// Kind distinguishes the action variants. The set is closed: sinks
// dispatch on it with a switch, not runtime type inspection.
type Kind int

const (
	// KindExposure sets a discrete exposure level on the camera.
	KindExposure Kind = iota
	// KindZoom narrows the field of view with a center crop.
	KindZoom
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindExposure:
		return "exposure"
	case KindZoom:
		return "zoom"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Action is one corrective action the loop can take.
type Action struct {
	Index int
	Kind  Kind

	// Exposure level (log2 seconds, OpenCV convention). KindExposure only.
	Exposure float64

	// Center-crop fraction of width/height. KindZoom only.
	Crop float64
}

// ID returns a stable human-readable key for logs and events.
func (a Action) ID() string {
	switch a.Kind {
	case KindZoom:
		return fmt.Sprintf("zoom(%.2f)", a.Crop)
	default:
		return fmt.Sprintf("exp(%g)", a.Exposure)
	}
}
