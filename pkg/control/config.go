package control

import (
	"fmt"
	"time"
)

// Config holds all tunable parameters for the control state machine and
// tick loop.
type Config struct {
	// RecoveryThreshold is the smoothed uncertainty above which the
	// loop considers perception degraded.
	RecoveryThreshold float64

	// DebounceTicks is how many consecutive over-threshold ticks are
	// required before entering recovery. Prevents flapping on single
	// noisy frames.
	DebounceTicks int

	// DwellTicks is how long each candidate is held during a recovery
	// sweep before moving on. Dwell also approximates hardware settle
	// time, since actuation is fire-and-forget.
	DwellTicks int

	// SearchConfirmTicks is how many consecutive cropped detections end
	// a search successfully.
	SearchConfirmTicks int

	// SearchMaxDwellTicks bounds one search episode before falling back
	// to another exposure sweep.
	SearchMaxDwellTicks int

	// MaxIncidentCycles caps full recovery+search cycles per incident.
	// Past the cap the loop declares the incident unrecoverable (non
	// fatal) and settles on the best-known candidate.
	MaxIncidentCycles int

	// SettleTicks is how many ticks after applying a winner the trigger
	// checks are suppressed, letting the camera stabilize.
	SettleTicks int

	// Brightness change detection (Weber ratio with an absolute floor).
	// A significant lighting change re-arms recovery after an
	// unrecoverable incident.
	BrightnessRatio float64
	BrightnessFloor float64

	// Interval is the tick period. Zero means run as fast as frames
	// arrive (used by tests and file-backed sources).
	Interval time.Duration

	// SampleEvery emits a periodic event every that many ticks in
	// addition to the per-transition events. Zero disables sampling.
	SampleEvery int
}

// DefaultConfig returns the recommended control tuning.
func DefaultConfig() Config {
	return Config{
		RecoveryThreshold:   0.5,
		DebounceTicks:       3,
		DwellTicks:          10,
		SearchConfirmTicks:  3,
		SearchMaxDwellTicks: 30,
		MaxIncidentCycles:   3,
		SettleTicks:         10,

		BrightnessRatio: 0.10,
		BrightnessFloor: 5.0,

		Interval:    33 * time.Millisecond, // ~30 fps
		SampleEvery: 30,
	}
}

// Validate checks the config for consistency.
func (c Config) Validate() error {
	if c.RecoveryThreshold <= 0 || c.RecoveryThreshold > 1 {
		return fmt.Errorf("control: recovery threshold must be in (0, 1], got %g", c.RecoveryThreshold)
	}
	if c.DebounceTicks < 1 {
		return fmt.Errorf("control: debounce ticks must be >= 1, got %d", c.DebounceTicks)
	}
	if c.DwellTicks < 1 {
		return fmt.Errorf("control: dwell ticks must be >= 1, got %d", c.DwellTicks)
	}
	if c.SearchConfirmTicks < 1 {
		return fmt.Errorf("control: search confirm ticks must be >= 1, got %d", c.SearchConfirmTicks)
	}
	if c.SearchMaxDwellTicks < c.SearchConfirmTicks {
		return fmt.Errorf("control: search max dwell must be >= confirm ticks")
	}
	if c.MaxIncidentCycles < 1 {
		return fmt.Errorf("control: max incident cycles must be >= 1, got %d", c.MaxIncidentCycles)
	}
	if c.SettleTicks < 0 {
		return fmt.Errorf("control: settle ticks must be >= 0, got %d", c.SettleTicks)
	}
	return nil
}
