package strata

import "github.com/jonwraymond/strata/clock"

// Callback is the unit of work a strategy wraps: either the next strategy in
// the pipeline or the user's operation.
type Callback func(rc *Context) Outcome

// Strategy is a single resilience behavior.
//
// Contract:
//   - next is invoked at most once per Execute call.
//   - A strategy that replaces rc's cancellation must restore the previous
//     signal on every exit path: success, failure, and cancellation.
//   - Strategies pass user failures through unchanged unless their own
//     semantics say otherwise.
type Strategy interface {
	Execute(rc *Context, next Callback) Outcome
}

// StrategyBuilder validates a strategy's options and constructs the
// strategy with its telemetry identity bound. Pipeline builders call Build
// once per added strategy.
type StrategyBuilder interface {
	// StrategyName is the instance name used in telemetry.
	StrategyName() string

	// StrategyType identifies the kind of strategy (e.g. "Timeout").
	StrategyType() string

	// Build validates options and returns the ready strategy. Validation
	// failures are returned as *OptionError.
	Build(telemetry *TelemetrySource, clk clock.Clock) (Strategy, error)
}
