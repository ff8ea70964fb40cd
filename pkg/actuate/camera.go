package actuate

import (
	"context"
	"fmt"

	"github.com/avishur/go-fixate/pkg/policy"
)

// CameraParams is the slice of a camera the sink needs: parameter set
// calls only. *camera.Camera satisfies it.
type CameraParams interface {
	SetExposure(level float64) error
	SetZoom(crop float64) error
}

// CameraSink applies actions as software camera-parameter changes.
type CameraSink struct {
	cam CameraParams
}

// NewCameraSink creates a sink over the given camera.
func NewCameraSink(cam CameraParams) *CameraSink {
	return &CameraSink{cam: cam}
}

// Apply dispatches on the action variant. Exposure actions sense the
// full frame, so they clear any digital zoom left over from a zoom
// trial; otherwise a sweep after a failed search would score exposure
// candidates on cropped frames.
func (s *CameraSink) Apply(_ context.Context, a policy.Action) error {
	switch a.Kind {
	case policy.KindExposure:
		if err := s.cam.SetZoom(1.0); err != nil {
			return fmt.Errorf("%w: clear zoom: %v", ErrActuationFailed, err)
		}
		if err := s.cam.SetExposure(a.Exposure); err != nil {
			return fmt.Errorf("%w: set exposure %g: %v", ErrActuationFailed, a.Exposure, err)
		}
	case policy.KindZoom:
		if err := s.cam.SetZoom(a.Crop); err != nil {
			return fmt.Errorf("%w: set zoom %.2f: %v", ErrActuationFailed, a.Crop, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedAction, a.Kind)
	}
	return nil
}
