package policy

import "testing"

func testConfig() Config {
	return Config{
		WindowSize:     10,
		ExposureLevels: []float64{-8, -6, -4, -2},
		ZoomCrop:       0.5,
	}
}

func TestNewSpace_Layout(t *testing.T) {
	s, err := NewSpace(testConfig())
	if err != nil {
		t.Fatalf("NewSpace: %v", err)
	}

	if s.Len() != 5 {
		t.Fatalf("Expected 4 exposure candidates + zoom, got %d", s.Len())
	}
	for i, want := range []float64{-8, -6, -4, -2} {
		a := s.Action(i)
		if a.Kind != KindExposure || a.Exposure != want {
			t.Errorf("candidate %d: expected exposure %g, got %+v", i, want, a)
		}
		if a.Index != i {
			t.Errorf("candidate %d: index mismatch %d", i, a.Index)
		}
	}

	idx, ok := s.ZoomIndex()
	if !ok || idx != 4 {
		t.Errorf("Expected zoom candidate last at 4, got %d ok=%v", idx, ok)
	}
	if a := s.Action(idx); a.Kind != KindZoom || a.Crop != 0.5 {
		t.Errorf("Expected zoom action with crop 0.5, got %+v", a)
	}
}

func TestNewSpace_ZoomDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.ZoomCrop = 0
	s, err := NewSpace(cfg)
	if err != nil {
		t.Fatalf("NewSpace: %v", err)
	}
	if s.Len() != 4 {
		t.Errorf("Expected 4 candidates without zoom, got %d", s.Len())
	}
	if _, ok := s.ZoomIndex(); ok {
		t.Error("Expected no zoom candidate")
	}
}

func TestRecordOutcome_WindowEviction(t *testing.T) {
	s, _ := NewSpace(testConfig())

	// 5 hits then 10 misses: the hits must all be evicted.
	for i := 0; i < 5; i++ {
		s.RecordOutcome(0, true, 100)
	}
	for i := 0; i < 10; i++ {
		s.RecordOutcome(0, false, 50)
	}

	if n := s.Samples(0); n != 10 {
		t.Fatalf("Expected window capped at 10, got %d", n)
	}
	rate, meanSharp, ok := s.Score(0)
	if !ok {
		t.Fatal("Expected a full window to be scored")
	}
	if rate != 0 {
		t.Errorf("Expected early hits evicted, rate 0, got %v", rate)
	}
	if meanSharp != 50 {
		t.Errorf("Expected mean sharpness 50, got %v", meanSharp)
	}
}

func TestScore_ProvisionalUntilHalfWindow(t *testing.T) {
	s, _ := NewSpace(testConfig())

	for i := 0; i < 4; i++ {
		s.RecordOutcome(1, true, 100)
	}
	if _, _, ok := s.Score(1); ok {
		t.Error("Expected 4 of 10 samples to be provisional")
	}

	s.RecordOutcome(1, true, 100)
	if _, _, ok := s.Score(1); !ok {
		t.Error("Expected 5 of 10 samples to be scoreable")
	}
}

func TestSelectBest_HighestRateWins(t *testing.T) {
	s, _ := NewSpace(testConfig())

	for i := 0; i < 10; i++ {
		s.RecordOutcome(0, i%2 == 0, 100) // rate 0.5
		s.RecordOutcome(2, true, 80)      // rate 1.0
		s.RecordOutcome(3, false, 500)    // rate 0, sharpest
	}
	if best := s.SelectBest(); best != 2 {
		t.Errorf("Expected candidate 2 with the top success rate, got %d", best)
	}
}

func TestSelectBest_SharpnessBreaksRateTies(t *testing.T) {
	s, _ := NewSpace(testConfig())

	for i := 0; i < 10; i++ {
		s.RecordOutcome(0, true, 100)
		s.RecordOutcome(1, true, 250)
		s.RecordOutcome(2, true, 90)
	}
	if best := s.SelectBest(); best != 1 {
		t.Errorf("Expected equal rates broken by sharpness toward 1, got %d", best)
	}
}

func TestSelectBest_FullTieTakesLowestIndex(t *testing.T) {
	s, _ := NewSpace(testConfig())

	for i := 0; i < 10; i++ {
		for idx := 0; idx < s.Len(); idx++ {
			s.RecordOutcome(idx, false, 0)
		}
	}
	if best := s.SelectBest(); best != 0 {
		t.Errorf("Expected a full tie to resolve to index 0, got %d", best)
	}
}

func TestSelectBest_SkipsProvisionalCandidates(t *testing.T) {
	s, _ := NewSpace(testConfig())

	for i := 0; i < 10; i++ {
		s.RecordOutcome(0, i%2 == 0, 100) // rate 0.5, full window
	}
	// Perfect record but only 3 samples: must not win yet.
	for i := 0; i < 3; i++ {
		s.RecordOutcome(1, true, 300)
	}

	if best := s.SelectBest(); best != 0 {
		t.Errorf("Expected provisional candidate excluded, best 0, got %d", best)
	}
}

func TestSelectBest_AllProvisionalKeepsCurrent(t *testing.T) {
	s, _ := NewSpace(testConfig())
	s.SetCurrent(3)
	if best := s.SelectBest(); best != 3 {
		t.Errorf("Expected empty stats to keep current candidate 3, got %d", best)
	}
}

func TestNextToExplore_CoversEveryCandidate(t *testing.T) {
	s, _ := NewSpace(testConfig())

	seen := make(map[int]bool)
	cur := s.CurrentIndex()
	for i := 0; i < s.Len(); i++ {
		cur = s.NextToExplore(cur)
		if seen[cur] {
			t.Fatalf("candidate %d visited twice within one cycle", cur)
		}
		seen[cur] = true
	}
	if len(seen) != s.Len() {
		t.Errorf("Expected all %d candidates in one cycle, got %d", s.Len(), len(seen))
	}
}

func TestResetStats(t *testing.T) {
	s, _ := NewSpace(testConfig())
	for idx := 0; idx < s.Len(); idx++ {
		s.RecordOutcome(idx, true, 100)
	}
	s.ResetStats()
	for idx := 0; idx < s.Len(); idx++ {
		if n := s.Samples(idx); n != 0 {
			t.Errorf("candidate %d: expected empty window after reset, got %d", idx, n)
		}
	}
}

func TestSetCurrent_ClampsOutOfRange(t *testing.T) {
	s, _ := NewSpace(testConfig())
	s.SetCurrent(99)
	if got := s.CurrentIndex(); got != s.Len()-1 {
		t.Errorf("Expected clamp to last candidate, got %d", got)
	}
	s.SetCurrent(-5)
	if got := s.CurrentIndex(); got != 0 {
		t.Errorf("Expected clamp to 0, got %d", got)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := testConfig().Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	bad := testConfig()
	bad.WindowSize = 0
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for zero window size")
	}

	bad = testConfig()
	bad.ExposureLevels = nil
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for empty exposure levels")
	}

	bad = testConfig()
	bad.ZoomCrop = 1.0
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for zoom crop of 1.0")
	}
}

func TestActionID(t *testing.T) {
	s, _ := NewSpace(testConfig())
	if got := s.Action(1).ID(); got != "exp(-6)" {
		t.Errorf("Expected exp(-6), got %q", got)
	}
	if got := s.Action(4).ID(); got != "zoom(0.50)" {
		t.Errorf("Expected zoom(0.50), got %q", got)
	}
}
