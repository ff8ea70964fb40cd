// Package control is the orchestrator of the active-perception loop:
// it consumes smoothed uncertainty readings and decides whether to hold
// the current sensing configuration, sweep alternates, or narrow the
// field of view to recover detection.
package control

// State is the control state machine's mode. Exactly one is active at a
// time and transitions inside Machine.Tick are the only mutator.
type State int

const (
	// StateTracking holds the current action while uncertainty is low.
	StateTracking State = iota
	// StateRecovery sweeps the action space, one dwell per candidate.
	StateRecovery
	// StateSearch narrows the field of view with a center crop to
	// recover a marker that the exposure sweep could not find.
	StateSearch
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateTracking:
		return "tracking"
	case StateRecovery:
		return "recovery"
	case StateSearch:
		return "search"
	default:
		return "unknown"
	}
}
