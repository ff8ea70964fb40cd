// Package vision provides the perception collaborators for the control
// loop: fiducial marker detection and image clarity measurement.
package vision

import "github.com/avishur/go-fixate/pkg/frame"

// Detection is the result of running the marker oracle on one frame.
type Detection struct {
	Detected  bool
	MarkerIDs []int
	Quality   float64 // corner-quality proxy, 0-1
}

// Measure holds the per-frame image statistics used by the uncertainty
// estimator.
type Measure struct {
	Sharpness  float64 // variance of Laplacian, higher = sharper
	Brightness float64 // mean gray level, 0-255
}

// Oracle detects fiducial markers in a frame. crop < 1.0 restricts
// detection to a center crop of that fraction of width and height,
// crop >= 1.0 means full frame.
type Oracle interface {
	Detect(f frame.Frame, crop float64) (Detection, error)
}

// Meter computes image statistics for a frame.
type Meter interface {
	Estimate(f frame.Frame) (Measure, error)
}

// quadArea computes the area of a quadrilateral from its corner points
// using the shoelace formula. Points are (x, y) pairs in pixel coords.
func quadArea(pts [][2]float64) float64 {
	if len(pts) < 3 {
		return 0
	}
	area := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		area += pts[i][0]*pts[j][1] - pts[j][0]*pts[i][1]
	}
	if area < 0 {
		area = -area
	}
	return area / 2
}

// normalize maps value into [0, 1] against a low/high reference range.
func normalize(value, low, high float64) float64 {
	if high <= low {
		return 0
	}
	if value <= low {
		return 0
	}
	if value >= high {
		return 1
	}
	return (value - low) / (high - low)
}
