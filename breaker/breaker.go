// Package breaker provides a circuit breaker pipeline strategy.
//
// The circuit starts closed. Handled failures accumulate as a consecutive
// run ([Options]) or as a failure rate over a rolling sampling window
// ([SamplingOptions]) until the circuit opens and executions fail fast
// with [BrokenCircuitError]. After the break duration the circuit goes
// half-open and probes the next calls: a success closes the circuit, a
// handled failure re-opens it. [ManualControl] can isolate the circuit
// outside this cycle;
// [StateProvider] exposes the current state.
//
// The breaker observes outcomes, it never transforms them: a permitted
// execution's result or failure is returned to the caller unchanged.
package breaker

import "github.com/jonwraymond/strata"

type strategy struct {
	controller   *controller
	shouldHandle func(HandleArguments) bool
}

func newStrategy(ctrl *controller, shouldHandle func(HandleArguments) bool, mc *ManualControl, sp *StateProvider) *strategy {
	if shouldHandle == nil {
		shouldHandle = defaultShouldHandle
	}
	if mc != nil {
		mc.attach(ctrl)
	}
	if sp != nil {
		sp.attach(ctrl)
	}
	return &strategy{controller: ctrl, shouldHandle: shouldHandle}
}

func (s *strategy) Execute(rc *strata.Context, next strata.Callback) strata.Outcome {
	if broken := s.controller.preExecute(rc); broken != nil {
		return strata.Failure(broken)
	}

	out := next(rc)

	if s.shouldHandle(HandleArguments{Context: rc, Outcome: out}) {
		s.controller.onActionFailure(rc, out)
	} else {
		s.controller.onActionSuccess(rc, out)
	}
	return out
}
