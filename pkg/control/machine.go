package control

import (
	"github.com/google/uuid"

	"github.com/avishur/go-fixate/pkg/policy"
	"github.com/avishur/go-fixate/pkg/uncertainty"
)

// Input is one tick's worth of observations for the state machine.
type Input struct {
	Seq        uint64
	Detected   bool
	Sharpness  float64
	Brightness float64
	Raw        float64
	Smoothed   float64
}

// Result describes what the machine decided this tick.
type Result struct {
	State        State
	Transitioned bool

	// Apply, when non-nil, is the action the loop must dispatch to the
	// actuation sink this tick. At most one per tick.
	Apply *policy.Action

	// Incident is non-nil exactly once per incident: on the tick the
	// machine declares it unrecoverable.
	Incident *Incident
}

// Incident identifies one continuous episode of degraded perception.
type Incident struct {
	ID     string
	Cycles int
	Seq    uint64
}

// Machine is the control state machine. All mutable loop state (debounce
// counters, dwell counters, incident bookkeeping) lives here, on one
// explicit value; decisions depend only on tick counts and inputs, never
// on the wall clock, so identical input sequences produce identical
// state and action traces.
//
// Not safe for concurrent use; the tick loop is its only caller.
type Machine struct {
	cfg      Config
	space    *policy.Space
	baseline *uncertainty.Baseline

	state State

	// Tracking
	debounce   int
	settleLeft int

	// Recovery sweep
	dwellLeft int
	visited   int

	// Search
	searchHits      int
	searchDwellLeft int

	// Incident bookkeeping
	incidentID    string
	cyclesDone    int
	unrecoverable bool
}

// NewMachine creates a state machine over the given action space.
// The initial state is tracking with the space's current candidate.
func NewMachine(cfg Config, space *policy.Space) *Machine {
	return &Machine{
		cfg:      cfg,
		space:    space,
		baseline: uncertainty.NewBaseline(cfg.BrightnessRatio, cfg.BrightnessFloor),
		state:    StateTracking,
	}
}

// State returns the currently active state.
func (m *Machine) State() State {
	return m.state
}

// CurrentAction returns the action currently applied.
func (m *Machine) CurrentAction() policy.Action {
	return m.space.Current()
}

// IncidentID returns the open incident id, or "" outside incidents.
func (m *Machine) IncidentID() string {
	return m.incidentID
}

// Unrecoverable reports whether the machine has declared the current
// incident unrecoverable and is holding position until conditions change.
func (m *Machine) Unrecoverable() bool {
	return m.unrecoverable
}

// CropFraction returns the pre-oracle center-crop for the next frame:
// the zoom crop while searching, full frame otherwise.
func (m *Machine) CropFraction() float64 {
	if m.state == StateSearch {
		if idx, ok := m.space.ZoomIndex(); ok {
			return m.space.Action(idx).Crop
		}
	}
	return 1.0
}

// Tick advances the state machine by one frame. The transition function
// is total: every (state, input) pair maps to exactly one next state.
func (m *Machine) Tick(in Input) Result {
	switch m.state {
	case StateRecovery:
		return m.tickRecovery(in)
	case StateSearch:
		return m.tickSearch(in)
	default:
		return m.tickTracking(in)
	}
}

func (m *Machine) tickTracking(in Input) Result {
	m.space.RecordOutcome(m.space.CurrentIndex(), in.Detected, in.Sharpness)

	// Settle window: ignore triggers while the camera stabilizes after
	// an applied winner, then capture the new brightness "normal".
	if m.settleLeft > 0 {
		m.settleLeft--
		return Result{State: m.state}
	}

	envChanged := m.baseline.Observe(in.Brightness)

	// An unrecoverable incident stays latched until conditions genuinely
	// change: uncertainty recovers on its own, or the lighting shifts.
	if m.unrecoverable {
		if in.Smoothed < m.cfg.RecoveryThreshold || envChanged {
			m.unrecoverable = false
			m.incidentID = ""
			m.cyclesDone = 0
			m.debounce = 0
		}
		return Result{State: m.state}
	}

	if in.Smoothed >= m.cfg.RecoveryThreshold {
		m.debounce++
	} else {
		m.debounce = 0
	}

	if m.debounce < m.cfg.DebounceTicks {
		return Result{State: m.state}
	}

	return m.enterRecovery()
}

// enterRecovery starts (or restarts) an exploration sweep. The first
// candidate is applied on the transition tick; its dwell is counted over
// the following DwellTicks frames, which observe the new configuration.
func (m *Machine) enterRecovery() Result {
	if m.incidentID == "" {
		m.incidentID = uuid.NewString()
		m.cyclesDone = 0
		m.space.ResetStats()
	}

	next := m.space.NextToExplore(m.space.CurrentIndex())
	m.space.SetCurrent(next)
	m.visited = 1
	m.dwellLeft = m.cfg.DwellTicks
	m.debounce = 0
	m.state = StateRecovery

	action := m.space.Action(next)
	return Result{State: m.state, Transitioned: true, Apply: &action}
}

func (m *Machine) tickRecovery(in Input) Result {
	cur := m.space.CurrentIndex()
	m.space.RecordOutcome(cur, in.Detected, in.Sharpness)

	m.dwellLeft--
	if m.dwellLeft > 0 {
		return Result{State: m.state}
	}

	if m.visited < m.space.Len() {
		next := m.space.NextToExplore(cur)
		m.space.SetCurrent(next)
		m.visited++
		m.dwellLeft = m.cfg.DwellTicks
		action := m.space.Action(next)
		return Result{State: m.state, Apply: &action}
	}

	// Full cycle done: exactly Len()*DwellTicks ticks after entry.
	best := m.space.SelectBest()
	rate, _, scored := m.space.Score(best)

	if (!scored || rate == 0) && m.zoomCapable() {
		return m.enterSearch()
	}

	return m.applyWinner(best, nil)
}

func (m *Machine) enterSearch() Result {
	idx, _ := m.space.ZoomIndex()
	m.space.SetCurrent(idx)
	m.searchHits = 0
	m.searchDwellLeft = m.cfg.SearchMaxDwellTicks
	m.state = StateSearch

	action := m.space.Action(idx)
	return Result{State: m.state, Transitioned: true, Apply: &action}
}

func (m *Machine) tickSearch(in Input) Result {
	cur := m.space.CurrentIndex()
	m.space.RecordOutcome(cur, in.Detected, in.Sharpness)

	if in.Detected {
		m.searchHits++
	} else {
		m.searchHits = 0
	}

	if m.searchHits >= m.cfg.SearchConfirmTicks {
		// The narrowed view found the marker: commit to the zoom action
		// and resume full-frame sensing.
		return m.applyWinner(cur, nil)
	}

	m.searchDwellLeft--
	if m.searchDwellLeft > 0 {
		return Result{State: m.state}
	}

	// Search stalled. One full recovery+search cycle is spent.
	m.cyclesDone++
	if m.cyclesDone >= m.cfg.MaxIncidentCycles {
		incident := &Incident{ID: m.incidentID, Cycles: m.cyclesDone, Seq: in.Seq}
		m.unrecoverable = true
		res := m.applyWinner(m.space.SelectBest(), incident)
		return res
	}

	// Retry the exposure sweep rather than looping in search forever.
	next := m.space.NextToExplore(cur)
	m.space.SetCurrent(next)
	m.visited = 1
	m.dwellLeft = m.cfg.DwellTicks
	m.state = StateRecovery

	action := m.space.Action(next)
	return Result{State: m.state, Transitioned: true, Apply: &action}
}

// applyWinner commits to a candidate and returns to tracking. A nil
// incident means the incident is resolved; a non-nil one is surfaced
// (once) as unrecoverable while the loop keeps running.
func (m *Machine) applyWinner(idx int, incident *Incident) Result {
	m.space.SetCurrent(idx)
	m.settleLeft = m.cfg.SettleTicks
	m.baseline.Reset()
	m.debounce = 0
	m.state = StateTracking

	if incident == nil {
		m.incidentID = ""
		m.cyclesDone = 0
	}

	action := m.space.Action(idx)
	return Result{State: m.state, Transitioned: true, Apply: &action, Incident: incident}
}

func (m *Machine) zoomCapable() bool {
	_, ok := m.space.ZoomIndex()
	return ok
}
