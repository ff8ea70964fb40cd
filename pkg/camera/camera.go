// Package camera wraps a gocv video capture device as the loop's frame
// source and exposes the parameter set calls active perception needs.
package camera

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/avishur/go-fixate/pkg/frame"
)

// Config holds capture settings.
type Config struct {
	Device      int
	Width       int
	Height      int
	JPEGQuality int
}

// DefaultConfig returns the standard capture configuration.
func DefaultConfig() Config {
	return Config{
		Device:      0,
		Width:       1280,
		Height:      720,
		JPEGQuality: 85,
	}
}

// Camera owns the capture device. Next produces frames with a
// monotonically increasing sequence number; SetExposure and SetZoom are
// the software actuation surface.
type Camera struct {
	cfg Config

	mu     sync.Mutex
	cap    *gocv.VideoCapture
	img    gocv.Mat
	seq    uint64
	crop   float64 // digital zoom center-crop, 1.0 = off
	closed bool
}

// Open connects to the capture device. Fails fast if the hardware
// cannot be reached.
func Open(cfg Config) (*Camera, error) {
	cap, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("camera: open device %d: %w", cfg.Device, err)
	}
	if cfg.Width > 0 {
		cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	}
	if cfg.Height > 0 {
		cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}
	return &Camera{
		cfg:  cfg,
		cap:  cap,
		img:  gocv.NewMat(),
		crop: 1.0,
	}, nil
}

// Next reads one frame, applies the digital zoom crop if set, and
// encodes it to JPEG. A failed read is treated as end of stream.
func (c *Camera) Next(ctx context.Context) (frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return frame.Frame{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return frame.Frame{}, io.EOF
	}

	if ok := c.cap.Read(&c.img); !ok || c.img.Empty() {
		return frame.Frame{}, io.EOF
	}

	target := c.img
	if c.crop > 0 && c.crop < 1.0 {
		region := c.img.Region(centerRect(c.img.Cols(), c.img.Rows(), c.crop))
		defer region.Close()
		target = region
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, target,
		[]int{gocv.IMWriteJpegQuality, c.cfg.JPEGQuality})
	if err != nil {
		return frame.Frame{}, fmt.Errorf("camera: encode: %w", err)
	}
	defer buf.Close()

	c.seq++
	return frame.Frame{
		Seq:    c.seq,
		Time:   time.Now(),
		JPEG:   append([]byte(nil), buf.GetBytes()...),
		Width:  target.Cols(),
		Height: target.Rows(),
	}, nil
}

// SetExposure sets a manual exposure level (log2 seconds, OpenCV
// convention). Switches the driver out of auto exposure first.
func (c *Camera) SetExposure(level float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return io.ErrClosedPipe
	}
	// 1 = manual mode on V4L2; some drivers want 0.25. Setting the
	// exposure property afterwards works for both.
	c.cap.Set(gocv.VideoCaptureAutoExposure, 1)
	c.cap.Set(gocv.VideoCaptureExposure, level)
	return nil
}

// SetZoom enables a digital zoom center-crop applied to every frame
// from the next read on. crop >= 1 disables it.
func (c *Camera) SetZoom(crop float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if crop <= 0 || crop >= 1.0 {
		c.crop = 1.0
		return nil
	}
	c.crop = crop
	return nil
}

// Exposure reads back the current exposure property.
func (c *Camera) Exposure() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cap.Get(gocv.VideoCaptureExposure)
}

// ExposureSupported probes whether the driver honors manual exposure:
// set a different value, read it back, restore.
func (c *Camera) ExposureSupported() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	initial := c.cap.Get(gocv.VideoCaptureExposure)
	probe := -6.0
	if initial == probe {
		probe = -5.0
	}
	c.cap.Set(gocv.VideoCaptureAutoExposure, 1)
	c.cap.Set(gocv.VideoCaptureExposure, probe)
	changed := c.cap.Get(gocv.VideoCaptureExposure) != initial
	c.cap.Set(gocv.VideoCaptureExposure, initial)
	return changed
}

// Close releases the capture device.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.img.Close()
	return c.cap.Close()
}
