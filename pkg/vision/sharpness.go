package vision

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/avishur/go-fixate/pkg/frame"
)

// LaplacianMeter measures image clarity as the variance of the Laplacian
// and brightness as the mean gray level. Stateless apart from gocv's
// internal allocations; safe to share across ticks.
type LaplacianMeter struct{}

// NewLaplacianMeter creates a sharpness/brightness meter.
func NewLaplacianMeter() *LaplacianMeter {
	return &LaplacianMeter{}
}

// Estimate decodes the frame and computes its sharpness and brightness.
// Lower sharpness means a blurrier image; the value is always >= 0.
func (m *LaplacianMeter) Estimate(f frame.Frame) (Measure, error) {
	if err := f.Validate(); err != nil {
		return Measure{}, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}

	gray, err := gocv.IMDecode(f.JPEG, gocv.IMReadGrayScale)
	if err != nil {
		return Measure{}, fmt.Errorf("%w: decode: %v", ErrInvalidFrame, err)
	}
	defer gray.Close()
	if gray.Empty() {
		return Measure{}, fmt.Errorf("%w: decoded empty image", ErrInvalidFrame)
	}

	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(gray, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	vals, err := lap.DataPtrFloat64()
	if err != nil {
		return Measure{}, fmt.Errorf("%w: laplacian data: %v", ErrInvalidFrame, err)
	}

	return Measure{
		Sharpness:  variance(vals),
		Brightness: gray.Mean().Val1,
	}, nil
}

// variance computes the population variance of vals.
func variance(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	acc := 0.0
	for _, v := range vals {
		d := v - mean
		acc += d * d
	}
	return acc / float64(len(vals))
}
