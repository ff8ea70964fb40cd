package vision

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/avishur/go-fixate/pkg/frame"
)

// ArucoConfig holds marker oracle configuration.
type ArucoConfig struct {
	Dictionary gocv.ArucoDictionaryCode

	// Quality proxy reference range: marker pixel area mapped to 0-1.
	AreaLow  float64
	AreaHigh float64
}

// DefaultArucoConfig returns the standard 6x6 dictionary setup.
func DefaultArucoConfig() ArucoConfig {
	return ArucoConfig{
		Dictionary: gocv.ArucoDict6x6_250,
		AreaLow:    800,
		AreaHigh:   100000,
	}
}

// ArucoOracle detects ArUco markers using OpenCV via gocv.
// The detector holds native resources; Close must be called.
type ArucoOracle struct {
	cfg      ArucoConfig
	detector gocv.ArucoDetector

	mu     sync.Mutex // protects native detector state
	closed bool
}

// NewArucoOracle creates a marker oracle for the configured dictionary.
func NewArucoOracle(cfg ArucoConfig) *ArucoOracle {
	dict := gocv.GetPredefinedDictionary(cfg.Dictionary)
	params := gocv.NewArucoDetectorParameters()
	return &ArucoOracle{
		cfg:      cfg,
		detector: gocv.NewArucoDetectorWithParams(dict, params),
	}
}

// Detect finds markers in the frame. crop < 1.0 restricts detection to a
// center crop of that fraction before running the detector.
func (o *ArucoOracle) Detect(f frame.Frame, crop float64) (Detection, error) {
	if err := f.Validate(); err != nil {
		return Detection{}, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return Detection{}, ErrPerceptionUnavailable
	}

	img, err := gocv.IMDecode(f.JPEG, gocv.IMReadGrayScale)
	if err != nil {
		return Detection{}, fmt.Errorf("%w: decode: %v", ErrInvalidFrame, err)
	}
	defer img.Close()
	if img.Empty() {
		return Detection{}, fmt.Errorf("%w: decoded empty image", ErrInvalidFrame)
	}

	target := img
	if crop > 0 && crop < 1.0 {
		roi := centerRect(img.Cols(), img.Rows(), crop)
		region := img.Region(roi)
		defer region.Close()
		target = region
	}

	corners, ids, _ := o.detector.DetectMarkers(target)
	if len(ids) == 0 {
		return Detection{}, nil
	}

	return Detection{
		Detected:  true,
		MarkerIDs: append([]int(nil), ids...),
		Quality:   o.quality(corners[0]),
	}, nil
}

// quality maps the first marker's pixel area to a 0-1 corner quality proxy.
func (o *ArucoOracle) quality(corners []gocv.Point2f) float64 {
	pts := make([][2]float64, len(corners))
	for i, p := range corners {
		pts[i] = [2]float64{float64(p.X), float64(p.Y)}
	}
	return normalize(quadArea(pts), o.cfg.AreaLow, o.cfg.AreaHigh)
}

// Close releases the native detector.
func (o *ArucoOracle) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	return o.detector.Close()
}

// centerRect returns a centered rectangle covering fraction of each axis.
func centerRect(w, h int, fraction float64) image.Rectangle {
	cw := int(float64(w) * fraction)
	ch := int(float64(h) * fraction)
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}
	x := (w - cw) / 2
	y := (h - ch) / 2
	return image.Rect(x, y, x+cw, y+ch)
}
