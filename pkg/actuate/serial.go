package actuate

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"

	"github.com/avishur/go-fixate/pkg/policy"
)

// PanTiltSink drives an Arduino-style pan-tilt unit over a serial link.
// Commands are single ASCII lines; the firmware acks asynchronously and
// the loop never waits for physical settle time, it relies on dwell
// ticks instead.
//
// Wire protocol:
//
//	E <level>\n   set exposure level on the camera head
//	Z <crop>\n    narrow field of view to the given fraction
//	P <deg>\n     pan to absolute degrees
//	T <deg>\n     tilt to absolute degrees
//	C\n           center both axes
type PanTiltSink struct {
	mu   sync.Mutex
	port io.ReadWriteCloser
}

// OpenPanTilt opens the serial device and returns a sink over it.
func OpenPanTilt(device string, baud int) (*PanTiltSink, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("actuate: open %s: %w", device, err)
	}
	return NewPanTiltSink(port), nil
}

// NewPanTiltSink wraps an already-open transport. Used by tests with an
// in-memory pipe.
func NewPanTiltSink(port io.ReadWriteCloser) *PanTiltSink {
	return &PanTiltSink{port: port}
}

// Apply dispatches on the action variant and writes one command line.
// A command either fully completes or fails; two divergent commands are
// never interleaved. Exposure actions first restore the full field of
// view so a zoom trial never lingers into later exposure candidates.
func (s *PanTiltSink) Apply(_ context.Context, a policy.Action) error {
	switch a.Kind {
	case policy.KindExposure:
		if err := s.send("Z 1.00\n"); err != nil {
			return err
		}
		return s.send("E %g\n", a.Exposure)
	case policy.KindZoom:
		return s.send("Z %.2f\n", a.Crop)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedAction, a.Kind)
	}
}

// Pan moves the pan axis to an absolute angle in degrees.
func (s *PanTiltSink) Pan(deg float64) error {
	return s.send("P %.1f\n", deg)
}

// Tilt moves the tilt axis to an absolute angle in degrees.
func (s *PanTiltSink) Tilt(deg float64) error {
	return s.send("T %.1f\n", deg)
}

// Center returns both axes to their neutral position.
func (s *PanTiltSink) Center() error {
	return s.send("C\n")
}

func (s *PanTiltSink) send(format string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return ErrNotConnected
	}
	if _, err := fmt.Fprintf(s.port, format, args...); err != nil {
		return fmt.Errorf("%w: %v", ErrActuationFailed, err)
	}
	return nil
}

// Close releases the serial port.
func (s *PanTiltSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}
