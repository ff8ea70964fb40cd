package uncertainty

// Baseline tracks the "normal" scene brightness and flags significant
// lighting changes. The threshold scales with the baseline (Weber's law)
// but keeps an absolute floor so dark scenes do not trip on sensor noise.
type Baseline struct {
	ratio float64
	floor float64

	value float64
	set   bool
}

// NewBaseline creates a brightness baseline tracker.
// ratio is the relative change that counts as an environment change,
// floor is the minimum absolute difference.
func NewBaseline(ratio, floor float64) *Baseline {
	return &Baseline{ratio: ratio, floor: floor}
}

// Observe folds in the current mean brightness. The first observation
// after a Reset establishes the baseline; later ones report whether the
// scene has changed significantly.
func (b *Baseline) Observe(brightness float64) (changed bool) {
	if !b.set {
		b.value = brightness
		b.set = true
		return false
	}

	diff := brightness - b.value
	if diff < 0 {
		diff = -diff
	}
	threshold := b.value * b.ratio
	if threshold < b.floor {
		threshold = b.floor
	}
	return diff > threshold
}

// Reset drops the baseline so the next Observe captures a new "normal".
// Called after the loop settles on a new sensing configuration.
func (b *Baseline) Reset() {
	b.set = false
	b.value = 0
}

// Set reports whether a baseline has been established.
func (b *Baseline) Set() bool {
	return b.set
}
