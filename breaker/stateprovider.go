package breaker

import "sync"

// StateProvider exposes a breaker's circuit state for read-only inspection.
// Attach it by setting it on the breaker's options before building the
// pipeline.
type StateProvider struct {
	mu   sync.Mutex
	ctrl *controller
}

// NewStateProvider creates an unattached state provider.
func NewStateProvider() *StateProvider {
	return &StateProvider{}
}

func (p *StateProvider) attach(c *controller) {
	p.mu.Lock()
	p.ctrl = c
	p.mu.Unlock()
}

// State returns the current circuit state, StateClosed before the provider
// is attached.
func (p *StateProvider) State() State {
	p.mu.Lock()
	c := p.ctrl
	p.mu.Unlock()

	if c == nil {
		return StateClosed
	}
	return c.currentState()
}

// HealthInfo returns the sampling window aggregate for a failure-rate
// breaker. The second return is false before attachment or when the breaker
// counts consecutive failures instead.
func (p *StateProvider) HealthInfo() (HealthInfo, bool) {
	p.mu.Lock()
	c := p.ctrl
	p.mu.Unlock()

	if c == nil {
		return HealthInfo{}, false
	}
	return c.healthSnapshot()
}
