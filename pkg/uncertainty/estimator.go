// Package uncertainty turns per-frame detection and sharpness signals
// into a temporally smoothed confidence scalar.
//
// 0.0 means perfect confidence, 1.0 means the system is effectively blind.
package uncertainty

import (
	"fmt"
	"math"
)

// Config holds the estimator tunables.
type Config struct {
	// DetectionWeight and SharpnessWeight must be >= 0 and sum to 1.
	DetectionWeight float64
	SharpnessWeight float64

	// Window is the smoothing window length in frames.
	Window int

	// Sharpness reference range for normalization (variance of Laplacian).
	SharpnessLow  float64
	SharpnessHigh float64
}

// DefaultConfig returns the recommended estimator tuning.
func DefaultConfig() Config {
	return Config{
		DetectionWeight: 0.6,
		SharpnessWeight: 0.4,
		Window:          5,
		SharpnessLow:    20.0,
		SharpnessHigh:   300.0,
	}
}

// Validate checks the config for consistency.
func (c Config) Validate() error {
	if c.DetectionWeight < 0 || c.SharpnessWeight < 0 {
		return fmt.Errorf("uncertainty: weights must be >= 0")
	}
	if math.Abs(c.DetectionWeight+c.SharpnessWeight-1.0) > 1e-9 {
		return fmt.Errorf("uncertainty: weights must sum to 1, got %.3f",
			c.DetectionWeight+c.SharpnessWeight)
	}
	if c.Window < 1 {
		return fmt.Errorf("uncertainty: window must be >= 1, got %d", c.Window)
	}
	if c.SharpnessHigh <= c.SharpnessLow {
		return fmt.Errorf("uncertainty: sharpness range is empty")
	}
	return nil
}

// Reading is one smoothed uncertainty sample.
type Reading struct {
	Raw      float64
	Smoothed float64
	FrameSeq uint64
}

// Estimator owns the smoothing windows. It is not safe for concurrent
// use; the tick loop is its only caller.
type Estimator struct {
	cfg Config

	raws     []float64 // last Window raw values, oldest first
	detected []bool    // last Window detection flags, oldest first

	lastValidRaw float64
	hasValid     bool
}

// NewEstimator creates an estimator with the given config.
func NewEstimator(cfg Config) *Estimator {
	return &Estimator{
		cfg:      cfg,
		raws:     make([]float64, 0, cfg.Window),
		detected: make([]bool, 0, cfg.Window),
	}
}

// Update computes the raw uncertainty for one frame and folds it into the
// smoothing window. Undefined sharpness (NaN/Inf) clamps the raw value to
// the previous valid one instead of propagating.
func (e *Estimator) Update(seq uint64, det bool, sharpness float64) Reading {
	raw := e.raw(det, sharpness)
	return e.push(seq, det, raw)
}

// Unavailable records a tick where the perception oracle itself failed.
// It is treated as maximal uncertainty.
func (e *Estimator) Unavailable(seq uint64) Reading {
	return e.push(seq, false, 1.0)
}

func (e *Estimator) raw(det bool, sharpness float64) float64 {
	detTerm := 1.0
	if det {
		detTerm = 0.0
	}

	if math.IsNaN(sharpness) || math.IsInf(sharpness, 0) {
		if e.hasValid {
			return e.lastValidRaw
		}
		// No history yet: charge the full sharpness penalty.
		return clamp01(e.cfg.DetectionWeight*detTerm + e.cfg.SharpnessWeight)
	}

	blur := 1.0 - normalize(sharpness, e.cfg.SharpnessLow, e.cfg.SharpnessHigh)
	return clamp01(e.cfg.DetectionWeight*detTerm + e.cfg.SharpnessWeight*blur)
}

func (e *Estimator) push(seq uint64, det bool, raw float64) Reading {
	e.lastValidRaw = raw
	e.hasValid = true

	e.raws = append(e.raws, raw)
	if len(e.raws) > e.cfg.Window {
		e.raws = e.raws[1:]
	}
	e.detected = append(e.detected, det)
	if len(e.detected) > e.cfg.Window {
		e.detected = e.detected[1:]
	}

	// Recompute the mean from the window every tick. The window is tiny
	// and a fresh sum cannot drift the way an incremental accumulator can.
	sum := 0.0
	for _, v := range e.raws {
		sum += v
	}
	smoothed := clamp01(sum / float64(len(e.raws)))

	return Reading{Raw: raw, Smoothed: smoothed, FrameSeq: seq}
}

// StableDetected is the majority vote over the detection window. It is an
// auxiliary signal: single-frame detection flicker does not flip it.
func (e *Estimator) StableDetected() bool {
	if len(e.detected) == 0 {
		return false
	}
	hits := 0
	for _, d := range e.detected {
		if d {
			hits++
		}
	}
	return hits*2 > len(e.detected)
}

// Reset clears all window state.
func (e *Estimator) Reset() {
	e.raws = e.raws[:0]
	e.detected = e.detected[:0]
	e.hasValid = false
	e.lastValidRaw = 0
}

func normalize(value, low, high float64) float64 {
	if value <= low {
		return 0
	}
	if value >= high {
		return 1
	}
	return (value - low) / (high - low)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
