package control

// Event is the structured record the loop emits on every state
// transition, and at the configured sampling rate otherwise. The sink's
// persistence format is up to the consumer.
type Event struct {
	Tick     uint64  `json:"tick"`
	State    string  `json:"state"`
	Action   string  `json:"action"`
	Raw      float64 `json:"raw_uncertainty"`
	Smoothed float64 `json:"smoothed_uncertainty"`
	Detected bool    `json:"detected"`

	// Transition is true for events emitted because the state changed.
	Transition bool `json:"transition,omitempty"`

	// Incident carries the incident id while one is open.
	Incident string `json:"incident,omitempty"`

	// Unrecoverable marks the single event that declares an incident
	// unrecoverable.
	Unrecoverable bool `json:"unrecoverable,omitempty"`
}

// Emitter consumes loop events. Implementations must not block the tick.
type Emitter interface {
	Emit(Event)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(Event)

// Emit implements Emitter.
func (f EmitterFunc) Emit(e Event) { f(e) }
