package breaker

import (
	"context"
	"sync"

	"github.com/jonwraymond/strata"
)

// ManualControl isolates and resets the circuits it is attached to. Attach
// it by setting it on the options of one or more breakers before building
// their pipelines.
//
// Both operations are idempotent: isolating an isolated circuit and
// resetting a closed circuit do nothing.
type ManualControl struct {
	mu          sync.Mutex
	controllers []*controller
}

// NewManualControl creates an unattached manual control.
func NewManualControl() *ManualControl {
	return &ManualControl{}
}

func (m *ManualControl) attach(c *controller) {
	m.mu.Lock()
	m.controllers = append(m.controllers, c)
	m.mu.Unlock()
}

// Isolate forces every attached circuit into the isolated state. Only Reset
// leaves it.
func (m *ManualControl) Isolate(ctx context.Context) {
	rc := strata.AcquireContext(ctx)
	defer strata.ReleaseContext(rc)

	for _, c := range m.snapshot() {
		c.isolate(rc)
	}
}

// Reset forces every attached circuit closed and clears its metrics.
func (m *ManualControl) Reset(ctx context.Context) {
	rc := strata.AcquireContext(ctx)
	defer strata.ReleaseContext(rc)

	for _, c := range m.snapshot() {
		c.reset(rc)
	}
}

func (m *ManualControl) snapshot() []*controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*controller, len(m.controllers))
	copy(out, m.controllers)
	return out
}
