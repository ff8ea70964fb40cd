package policy

import "fmt"

// Config holds the action space tunables.
type Config struct {
	// WindowSize is the per-candidate outcome window capacity.
	WindowSize int

	// ExposureLevels is the ordered list of discrete exposure levels
	// (log2 seconds, OpenCV convention).
	ExposureLevels []float64

	// ZoomCrop is the center-crop fraction for the zoom action.
	// 0 disables the zoom candidate entirely.
	ZoomCrop float64
}

// DefaultConfig returns the recommended action space.
func DefaultConfig() Config {
	return Config{
		WindowSize:     10,
		ExposureLevels: []float64{-8, -6, -4, -2},
		ZoomCrop:       0.5,
	}
}

// Validate checks the config for consistency.
func (c Config) Validate() error {
	if c.WindowSize < 1 {
		return fmt.Errorf("policy: window size must be >= 1, got %d", c.WindowSize)
	}
	if len(c.ExposureLevels) == 0 {
		return fmt.Errorf("policy: at least one exposure level is required")
	}
	if c.ZoomCrop < 0 || c.ZoomCrop >= 1.0 {
		return fmt.Errorf("policy: zoom crop must be in [0, 1), got %g", c.ZoomCrop)
	}
	return nil
}

// outcome is one evaluation sample for a candidate.
type outcome struct {
	detected  bool
	sharpness float64
}

// candidate pairs an action with its bounded outcome window.
type candidate struct {
	action Action
	window []outcome // FIFO, capacity WindowSize
}

// Space is the fixed, ordered collection of action candidates. It owns
// all candidate stats; RecordOutcome is the only mutator. Not safe for
// concurrent use; the tick loop is its only caller.
type Space struct {
	cfg        Config
	candidates []*candidate
	current    int
	zoomIndex  int // -1 if zoom disabled
}

// NewSpace builds the candidate list from config: one candidate per
// exposure level, in order, plus the zoom candidate last if enabled.
func NewSpace(cfg Config) (*Space, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Space{cfg: cfg, zoomIndex: -1}
	for i, level := range cfg.ExposureLevels {
		s.candidates = append(s.candidates, &candidate{
			action: Action{Index: i, Kind: KindExposure, Exposure: level},
		})
	}
	if cfg.ZoomCrop > 0 {
		s.zoomIndex = len(s.candidates)
		s.candidates = append(s.candidates, &candidate{
			action: Action{Index: s.zoomIndex, Kind: KindZoom, Crop: cfg.ZoomCrop},
		})
	}
	return s, nil
}

// Len returns the number of candidates.
func (s *Space) Len() int {
	return len(s.candidates)
}

// Action returns the action at idx.
func (s *Space) Action(idx int) Action {
	return s.candidates[s.clampIndex(idx)].action
}

// Current returns the currently applied action.
func (s *Space) Current() Action {
	return s.candidates[s.current].action
}

// CurrentIndex returns the index of the current action.
func (s *Space) CurrentIndex() int {
	return s.current
}

// SetCurrent marks idx as the currently applied action.
func (s *Space) SetCurrent(idx int) {
	s.current = s.clampIndex(idx)
}

// ZoomIndex returns the zoom candidate index, if one is configured.
func (s *Space) ZoomIndex() (int, bool) {
	if s.zoomIndex < 0 {
		return 0, false
	}
	return s.zoomIndex, true
}

// RecordOutcome pushes one evaluation sample into the candidate's window,
// evicting the oldest entry once the window is full.
func (s *Space) RecordOutcome(idx int, detected bool, sharpness float64) {
	c := s.candidates[s.clampIndex(idx)]
	c.window = append(c.window, outcome{detected: detected, sharpness: sharpness})
	if len(c.window) > s.cfg.WindowSize {
		c.window = c.window[1:]
	}
}

// Samples returns how many outcomes the candidate currently holds.
func (s *Space) Samples(idx int) int {
	return len(s.candidates[s.clampIndex(idx)].window)
}

// Score returns the candidate's success rate and mean sharpness.
// ok is false while the candidate holds fewer than half a window of
// samples; provisional candidates are excluded from SelectBest so the
// policy cannot converge prematurely on noise.
func (s *Space) Score(idx int) (rate, meanSharp float64, ok bool) {
	c := s.candidates[s.clampIndex(idx)]
	n := len(c.window)
	if n == 0 {
		return 0, 0, false
	}

	hits := 0
	sum := 0.0
	for _, o := range c.window {
		if o.detected {
			hits++
		}
		sum += o.sharpness
	}
	rate = float64(hits) / float64(n)
	meanSharp = sum / float64(n)
	ok = n*2 >= s.cfg.WindowSize
	return rate, meanSharp, ok
}

// SelectBest returns the index of the best non-provisional candidate:
// lexicographic argmax over (success rate, mean sharpness), ties broken
// by lowest index. If every candidate is provisional it returns the
// current candidate unchanged.
func (s *Space) SelectBest() int {
	best := -1
	bestRate, bestSharp := -1.0, -1.0
	for i := range s.candidates {
		rate, meanSharp, ok := s.Score(i)
		if !ok {
			continue
		}
		if rate > bestRate || (rate == bestRate && meanSharp > bestSharp) {
			best, bestRate, bestSharp = i, rate, meanSharp
		}
	}
	if best < 0 {
		return s.current
	}
	return best
}

// NextToExplore round-robins to the candidate after current, cyclically.
// Every candidate is revisited within one full cycle, so exploration is
// bounded by Len() dwells.
func (s *Space) NextToExplore(current int) int {
	return (s.clampIndex(current) + 1) % len(s.candidates)
}

// ResetStats clears every candidate's outcome window. Called at the start
// of a recovery incident so scores reflect the current conditions.
func (s *Space) ResetStats() {
	for _, c := range s.candidates {
		c.window = c.window[:0]
	}
}

func (s *Space) clampIndex(idx int) int {
	if idx < 0 {
		return 0
	}
	if idx >= len(s.candidates) {
		return len(s.candidates) - 1
	}
	return idx
}
