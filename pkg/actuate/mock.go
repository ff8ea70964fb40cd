package actuate

import (
	"context"
	"sync"

	"github.com/avishur/go-fixate/pkg/policy"
)

// MockSink records applied actions for tests. Individual applies can be
// scripted to fail.
type MockSink struct {
	mu      sync.Mutex
	applied []policy.Action

	// FailNext makes that many upcoming Apply calls return an error.
	failNext int

	// Err overrides the error returned for scripted failures.
	Err error
}

// NewMockSink creates an always-succeeding mock sink.
func NewMockSink() *MockSink {
	return &MockSink{}
}

// FailNext scripts the next n Apply calls to fail.
func (m *MockSink) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = n
}

// Apply records the action, or fails if scripted to.
func (m *MockSink) Apply(_ context.Context, a policy.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext > 0 {
		m.failNext--
		if m.Err != nil {
			return m.Err
		}
		return ErrActuationFailed
	}
	m.applied = append(m.applied, a)
	return nil
}

// Applied returns a copy of the recorded actions.
func (m *MockSink) Applied() []policy.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]policy.Action(nil), m.applied...)
}

// Reset clears the recorded actions.
func (m *MockSink) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied = nil
}
