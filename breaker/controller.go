package breaker

import (
	"sync"
	"time"

	"github.com/jonwraymond/strata"
	"github.com/jonwraymond/strata/clock"
)

// controller owns the breaker's single critical section: circuit state, the
// break deadline, the last breaking outcome, and the behavior's counters all
// change under one lock.
//
// Telemetry is reported inside the lock so that the emitted event order
// always matches the transition order. User hooks are enqueued inside the
// lock and dispatched outside it, still in transition order; callers may
// therefore observe a hook after further transitions have happened.
type controller struct {
	clk           clock.Clock
	telemetry     *strata.TelemetrySource
	breakDuration time.Duration
	onOpened      func(OpenedArguments) error
	onClosed      func(ClosedArguments) error
	onHalfOpened  func(HalfOpenedArguments) error

	mu          sync.Mutex
	state       State
	breakUntil  time.Time
	lastOutcome strata.Outcome
	behavior    behavior
	pending     []hookDispatch

	// dispatchMu serializes hook dispatch so queued hooks run in enqueue
	// order even when several executions drain concurrently.
	dispatchMu sync.Mutex
}

type hookDispatch struct {
	eventName string
	rc        *strata.Context
	run       func() error
}

type controllerConfig struct {
	clk           clock.Clock
	telemetry     *strata.TelemetrySource
	behavior      behavior
	breakDuration time.Duration
	onOpened      func(OpenedArguments) error
	onClosed      func(ClosedArguments) error
	onHalfOpened  func(HalfOpenedArguments) error
}

func newController(cfg controllerConfig) *controller {
	return &controller{
		clk:           cfg.clk,
		telemetry:     cfg.telemetry,
		breakDuration: cfg.breakDuration,
		onOpened:      cfg.onOpened,
		onClosed:      cfg.onClosed,
		onHalfOpened:  cfg.onHalfOpened,
		state:         StateClosed,
		behavior:      cfg.behavior,
	}
}

// preExecute decides whether an execution may proceed. It returns nil for a
// permit, or the broken-circuit verdict carrying the outcome that caused
// the break. An expired break transitions to half-open, emitting
// OnCircuitHalfOpened exactly once.
func (c *controller) preExecute(rc *strata.Context) *BrokenCircuitError {
	c.mu.Lock()

	switch c.state {
	case StateClosed, StateHalfOpen:
		c.mu.Unlock()
		return nil

	case StateIsolated:
		err := &BrokenCircuitError{Outcome: c.lastOutcome, Isolated: true}
		c.mu.Unlock()
		return err

	default: // StateOpen
		if c.clk.Now().Before(c.breakUntil) {
			err := &BrokenCircuitError{Outcome: c.lastOutcome}
			c.mu.Unlock()
			return err
		}
		c.transitionLocked(StateHalfOpen, rc, strata.Outcome{}, false)
		c.mu.Unlock()
		c.dispatchHooks()
		return nil
	}
}

// onActionSuccess records a successful (unhandled) outcome. A half-open
// probe succeeding closes the circuit.
func (c *controller) onActionSuccess(rc *strata.Context, outcome strata.Outcome) {
	c.mu.Lock()
	c.behavior.onActionSuccess(c.state)
	if c.state == StateHalfOpen {
		c.transitionLocked(StateClosed, rc, outcome, false)
	}
	c.mu.Unlock()
	c.dispatchHooks()
}

// onActionFailure records a handled outcome. The circuit opens when the
// behavior says so in the closed state, or on any handled failure while
// half-open.
func (c *controller) onActionFailure(rc *strata.Context, outcome strata.Outcome) {
	c.mu.Lock()
	shouldBreak := c.behavior.onActionFailure(c.state)
	if (c.state == StateClosed && shouldBreak) || c.state == StateHalfOpen {
		c.lastOutcome = outcome
		c.breakUntil = c.clk.Now().Add(c.breakDuration)
		c.transitionLocked(StateOpen, rc, outcome, false)
	}
	c.mu.Unlock()
	c.dispatchHooks()
}

// isolate forces the circuit into the isolated state. Idempotent.
func (c *controller) isolate(rc *strata.Context) {
	c.mu.Lock()
	if c.state != StateIsolated {
		c.transitionLocked(StateIsolated, rc, strata.Outcome{}, true)
	}
	c.mu.Unlock()
	c.dispatchHooks()
}

// reset forces the circuit closed and clears its bookkeeping. Idempotent.
func (c *controller) reset(rc *strata.Context) {
	c.mu.Lock()
	if c.state != StateClosed {
		c.breakUntil = time.Time{}
		c.lastOutcome = strata.Outcome{}
		c.transitionLocked(StateClosed, rc, strata.Outcome{}, true)
	}
	c.mu.Unlock()
	c.dispatchHooks()
}

func (c *controller) currentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// healthSnapshot returns the sampling window aggregate, false when the
// breaker uses consecutive-failure counting.
func (c *controller) healthSnapshot() (HealthInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.behavior.(*samplingBehavior); ok {
		return b.healthInfo(), true
	}
	return HealthInfo{}, false
}

// transitionLocked moves the circuit to the target state, reports the
// matching telemetry event, and enqueues the user hook for dispatch after
// the lock is released.
func (c *controller) transitionLocked(to State, rc *strata.Context, outcome strata.Outcome, manual bool) {
	c.state = to

	switch to {
	case StateOpen, StateIsolated:
		args := OpenedArguments{Context: rc, Outcome: outcome, BreakDuration: c.breakDuration, IsManual: manual}
		c.telemetry.ReportOutcome(EventOnOpened, rc, args, outcome)
		if c.onOpened != nil {
			c.enqueueHookLocked(EventOnOpened, rc, func() error { return c.onOpened(args) })
		}

	case StateClosed:
		c.behavior.onCircuitClosed()
		args := ClosedArguments{Context: rc, Outcome: outcome, IsManual: manual}
		c.telemetry.ReportOutcome(EventOnClosed, rc, args, outcome)
		if c.onClosed != nil {
			c.enqueueHookLocked(EventOnClosed, rc, func() error { return c.onClosed(args) })
		}

	case StateHalfOpen:
		args := HalfOpenedArguments{Context: rc}
		c.telemetry.Report(EventOnHalfOpened, rc, args)
		if c.onHalfOpened != nil {
			c.enqueueHookLocked(EventOnHalfOpened, rc, func() error { return c.onHalfOpened(args) })
		}
	}
}

func (c *controller) enqueueHookLocked(eventName string, rc *strata.Context, run func() error) {
	c.pending = append(c.pending, hookDispatch{eventName: eventName, rc: rc, run: run})
}

// dispatchHooks drains the hook queue outside the state lock. Whichever
// goroutine wins the dispatch lock delivers the queued hooks in order; a
// hook's failure is reported to telemetry and swallowed.
func (c *controller) dispatchHooks() {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.mu.Unlock()
			return
		}
		d := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()

		if err := d.run(); err != nil {
			c.telemetry.Report(strata.EventHookFailure, d.rc, strata.HookFailureArguments{
				EventName: d.eventName,
				Err:       err,
			})
		}
	}
}
