package uncertainty

import (
	"math"
	"testing"
)

func TestEstimator_RawWeighting(t *testing.T) {
	e := NewEstimator(DefaultConfig())

	// Not detected, fully blurry: both penalties at max.
	r := e.Update(1, false, 0)
	if r.Raw != 1.0 {
		t.Errorf("Expected raw 1.0 for miss with zero sharpness, got %v", r.Raw)
	}

	// Detected and tack sharp: no penalty at all.
	e = NewEstimator(DefaultConfig())
	r = e.Update(1, true, 1000)
	if r.Raw != 0.0 {
		t.Errorf("Expected raw 0.0 for sharp detection, got %v", r.Raw)
	}

	// Detected but blurry: only the sharpness term contributes.
	e = NewEstimator(DefaultConfig())
	r = e.Update(1, true, 10)
	if r.Raw != 0.4 {
		t.Errorf("Expected raw 0.4 for blurry detection, got %v", r.Raw)
	}
}

func TestEstimator_SmoothedStaysInRange(t *testing.T) {
	e := NewEstimator(DefaultConfig())

	inputs := []struct {
		det   bool
		sharp float64
	}{
		{false, 0}, {true, 1e9}, {false, -50}, {true, math.NaN()},
		{false, math.Inf(1)}, {true, 150}, {false, 20}, {true, 300},
	}
	for i := 0; i < 200; i++ {
		in := inputs[i%len(inputs)]
		r := e.Update(uint64(i), in.det, in.sharp)
		if r.Raw < 0 || r.Raw > 1 {
			t.Fatalf("tick %d: raw %v out of [0,1]", i, r.Raw)
		}
		if r.Smoothed < 0 || r.Smoothed > 1 {
			t.Fatalf("tick %d: smoothed %v out of [0,1]", i, r.Smoothed)
		}
		if math.IsNaN(r.Smoothed) {
			t.Fatalf("tick %d: smoothed is NaN", i)
		}
	}
}

func TestEstimator_NaNClampsToPreviousValid(t *testing.T) {
	e := NewEstimator(DefaultConfig())

	r := e.Update(1, true, 100)
	want := r.Raw

	r = e.Update(2, true, math.NaN())
	if r.Raw != want {
		t.Errorf("Expected NaN sharpness to reuse previous raw %v, got %v", want, r.Raw)
	}

	r = e.Update(3, true, math.Inf(1))
	if r.Raw != want {
		t.Errorf("Expected Inf sharpness to reuse previous raw %v, got %v", want, r.Raw)
	}
}

func TestEstimator_NoDriftOnConstantInput(t *testing.T) {
	e := NewEstimator(DefaultConfig())

	// Miss with zero sharpness pins raw at exactly 1.0; a long run must
	// keep the window mean at exactly 1.0 with no numeric drift.
	for i := 0; i < 10000; i++ {
		r := e.Update(uint64(i), false, 0)
		if r.Smoothed != 1.0 && i >= 0 {
			t.Fatalf("tick %d: smoothed drifted to %v", i, r.Smoothed)
		}
	}

	e = NewEstimator(DefaultConfig())
	for i := 0; i < 10000; i++ {
		r := e.Update(uint64(i), true, 1e6)
		if r.Smoothed != 0.0 {
			t.Fatalf("tick %d: smoothed drifted to %v", i, r.Smoothed)
		}
	}
}

func TestEstimator_PartialWindow(t *testing.T) {
	e := NewEstimator(DefaultConfig())

	// First frame: smoothed equals raw, window has one entry.
	r := e.Update(1, false, 0)
	if r.Smoothed != r.Raw {
		t.Errorf("Expected first smoothed == raw, got %v vs %v", r.Smoothed, r.Raw)
	}

	// Second frame: mean of the two raws.
	r2 := e.Update(2, true, 1e6)
	want := (r.Raw + r2.Raw) / 2
	if r2.Smoothed != want {
		t.Errorf("Expected smoothed %v over partial window, got %v", want, r2.Smoothed)
	}
}

func TestEstimator_WindowEviction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window = 3
	e := NewEstimator(cfg)

	// Fill with misses, then three sharp detections flush them out.
	for i := 0; i < 5; i++ {
		e.Update(uint64(i), false, 0)
	}
	var r Reading
	for i := 5; i < 8; i++ {
		r = e.Update(uint64(i), true, 1e6)
	}
	if r.Smoothed != 0.0 {
		t.Errorf("Expected old misses evicted, smoothed 0, got %v", r.Smoothed)
	}
}

func TestEstimator_StableDetectedMajorityVote(t *testing.T) {
	e := NewEstimator(DefaultConfig())

	pattern := []bool{true, true, false, true, false}
	for i, d := range pattern {
		e.Update(uint64(i), d, 100)
	}
	if !e.StableDetected() {
		t.Error("Expected majority vote true for 3/5 detections")
	}

	for i := 0; i < 3; i++ {
		e.Update(uint64(10+i), false, 100)
	}
	if e.StableDetected() {
		t.Error("Expected majority vote false after run of misses")
	}
}

func TestEstimator_Unavailable(t *testing.T) {
	e := NewEstimator(DefaultConfig())

	r := e.Unavailable(1)
	if r.Raw != 1.0 {
		t.Errorf("Expected oracle outage to read as raw 1.0, got %v", r.Raw)
	}
	if e.StableDetected() {
		t.Error("Expected outage tick to count as a miss")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config valid, got %v", err)
	}

	bad := cfg
	bad.DetectionWeight = 0.7 // no longer sums to 1
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for weights not summing to 1")
	}

	bad = cfg
	bad.Window = 0
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for zero window")
	}

	bad = cfg
	bad.SharpnessHigh = bad.SharpnessLow
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for empty sharpness range")
	}
}

func TestBaseline_WeberThreshold(t *testing.T) {
	b := NewBaseline(0.10, 5.0)

	if changed := b.Observe(100); changed {
		t.Error("First observation must set the baseline, not flag a change")
	}
	if changed := b.Observe(104); changed {
		t.Error("4 of 100 is under the 10 percent threshold")
	}
	if changed := b.Observe(115); !changed {
		t.Error("15 of 100 should flag a lighting change")
	}
}

func TestBaseline_FloorInDarkScenes(t *testing.T) {
	b := NewBaseline(0.10, 5.0)

	b.Observe(10) // baseline 10, ratio threshold would be 1, floor wins
	if changed := b.Observe(14); changed {
		t.Error("diff 4 is under the floor of 5")
	}
	if changed := b.Observe(16); !changed {
		t.Error("diff 6 exceeds the floor")
	}
}

func TestBaseline_Reset(t *testing.T) {
	b := NewBaseline(0.10, 5.0)
	b.Observe(100)
	b.Reset()
	if b.Set() {
		t.Error("Expected baseline unset after reset")
	}
	if changed := b.Observe(200); changed {
		t.Error("First observation after reset must set a new normal")
	}
}
