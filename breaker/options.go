package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/strata"
	"github.com/jonwraymond/strata/clock"
)

const (
	minBreakDuration     = 500 * time.Millisecond
	defaultBreakDuration = 5 * time.Second

	defaultFailureThreshold = 5

	defaultFailureRatio      = 0.1
	defaultMinimumThroughput = 100
	defaultSamplingDuration  = 30 * time.Second
	minSamplingDuration      = 500 * time.Millisecond
)

// HandleArguments is passed to the ShouldHandle predicate for every
// completed callback.
type HandleArguments struct {
	Context *strata.Context
	Outcome strata.Outcome
}

// OpenedArguments is passed to the OnOpened hook.
type OpenedArguments struct {
	Context *strata.Context

	// Outcome is the outcome that broke the circuit. Zero for manual
	// isolation.
	Outcome strata.Outcome

	// BreakDuration is how long the circuit stays open before probing.
	BreakDuration time.Duration

	// IsManual reports whether the transition came from manual control.
	IsManual bool
}

// ClosedArguments is passed to the OnClosed hook.
type ClosedArguments struct {
	Context *strata.Context

	// Outcome is the successful probe outcome. Zero for manual reset.
	Outcome strata.Outcome

	// IsManual reports whether the transition came from manual control.
	IsManual bool
}

// HalfOpenedArguments is passed to the OnHalfOpened hook.
type HalfOpenedArguments struct {
	Context *strata.Context
}

// Options configures a consecutive-failures circuit breaker: the circuit
// opens after FailureThreshold handled failures in a row.
type Options struct {
	// Name is the strategy's telemetry instance name.
	// Default: "CircuitBreaker".
	Name string

	// FailureThreshold is the number of consecutive handled failures that
	// opens the circuit. Default: 5. Must be at least 1.
	FailureThreshold int

	// BreakDuration is how long the circuit stays open before a probe is
	// allowed. Default: 5 seconds. Must be at least 500ms.
	BreakDuration time.Duration

	// ShouldHandle classifies outcomes. Handled outcomes count as failures.
	// Default: any error that is not a cancellation and not a
	// BrokenCircuitError.
	ShouldHandle func(HandleArguments) bool

	// OnOpened, OnClosed and OnHalfOpened observe state transitions. They
	// run outside the breaker's lock, in transition order; returned errors
	// are reported to telemetry and swallowed.
	OnOpened     func(OpenedArguments) error
	OnClosed     func(ClosedArguments) error
	OnHalfOpened func(HalfOpenedArguments) error

	// ManualControl, when set, is attached to the built strategy so
	// Isolate and Reset reach this circuit.
	ManualControl *ManualControl

	// StateProvider, when set, exposes the built strategy's circuit state
	// for read-only inspection.
	StateProvider *StateProvider
}

// SamplingOptions configures a failure-rate circuit breaker: the circuit
// opens when the failure rate over a rolling sampling window reaches
// FailureRatio, once MinimumThroughput calls have been observed.
type SamplingOptions struct {
	// Name is the strategy's telemetry instance name.
	// Default: "CircuitBreaker".
	Name string

	// FailureRatio is the failure rate that opens the circuit. Default:
	// 0.1. Must be in (0, 1].
	FailureRatio float64

	// MinimumThroughput is the minimum number of calls in the sampling
	// window before the ratio is acted on. Default: 100. Must be at
	// least 2.
	MinimumThroughput int

	// SamplingDuration is the length of the rolling window health is
	// computed over. Default: 30 seconds. Must be at least 500ms.
	SamplingDuration time.Duration

	// BreakDuration is how long the circuit stays open before a probe is
	// allowed. Default: 5 seconds. Must be at least 500ms.
	BreakDuration time.Duration

	// ShouldHandle classifies outcomes. See Options.ShouldHandle.
	ShouldHandle func(HandleArguments) bool

	OnOpened     func(OpenedArguments) error
	OnClosed     func(ClosedArguments) error
	OnHalfOpened func(HalfOpenedArguments) error

	ManualControl *ManualControl
	StateProvider *StateProvider
}

// New returns a strategy builder for the consecutive-failures breaker.
// Options are validated when the pipeline is built.
func New(opts Options) strata.StrategyBuilder {
	return &consecutiveBuilder{opts: opts}
}

// NewSampling returns a strategy builder for the failure-rate breaker.
// Options are validated when the pipeline is built.
func NewSampling(opts SamplingOptions) strata.StrategyBuilder {
	return &samplingBuilder{opts: opts}
}

type consecutiveBuilder struct {
	opts Options
}

func (b *consecutiveBuilder) StrategyName() string {
	if b.opts.Name != "" {
		return b.opts.Name
	}
	return "CircuitBreaker"
}

func (b *consecutiveBuilder) StrategyType() string {
	return "CircuitBreaker"
}

func (b *consecutiveBuilder) Build(telemetry *strata.TelemetrySource, clk clock.Clock) (strata.Strategy, error) {
	opts := b.opts
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = defaultFailureThreshold
	}
	if opts.BreakDuration == 0 {
		opts.BreakDuration = defaultBreakDuration
	}
	if opts.FailureThreshold < 1 {
		return nil, optionErr(b.StrategyName(), "FailureThreshold", "must be at least 1, got %d", opts.FailureThreshold)
	}
	if opts.BreakDuration < minBreakDuration {
		return nil, optionErr(b.StrategyName(), "BreakDuration", "must be at least %s, got %s", minBreakDuration, opts.BreakDuration)
	}

	ctrl := newController(controllerConfig{
		clk:           clk,
		telemetry:     telemetry,
		behavior:      &consecutiveBehavior{threshold: opts.FailureThreshold},
		breakDuration: opts.BreakDuration,
		onOpened:      opts.OnOpened,
		onClosed:      opts.OnClosed,
		onHalfOpened:  opts.OnHalfOpened,
	})
	return newStrategy(ctrl, opts.ShouldHandle, opts.ManualControl, opts.StateProvider), nil
}

type samplingBuilder struct {
	opts SamplingOptions
}

func (b *samplingBuilder) StrategyName() string {
	if b.opts.Name != "" {
		return b.opts.Name
	}
	return "CircuitBreaker"
}

func (b *samplingBuilder) StrategyType() string {
	return "CircuitBreaker"
}

func (b *samplingBuilder) Build(telemetry *strata.TelemetrySource, clk clock.Clock) (strata.Strategy, error) {
	opts := b.opts
	if opts.FailureRatio == 0 {
		opts.FailureRatio = defaultFailureRatio
	}
	if opts.MinimumThroughput == 0 {
		opts.MinimumThroughput = defaultMinimumThroughput
	}
	if opts.SamplingDuration == 0 {
		opts.SamplingDuration = defaultSamplingDuration
	}
	if opts.BreakDuration == 0 {
		opts.BreakDuration = defaultBreakDuration
	}
	if opts.FailureRatio <= 0 || opts.FailureRatio > 1 {
		return nil, optionErr(b.StrategyName(), "FailureRatio", "must be in (0, 1], got %g", opts.FailureRatio)
	}
	if opts.MinimumThroughput < 2 {
		return nil, optionErr(b.StrategyName(), "MinimumThroughput", "must be at least 2, got %d", opts.MinimumThroughput)
	}
	if opts.SamplingDuration < minSamplingDuration {
		return nil, optionErr(b.StrategyName(), "SamplingDuration", "must be at least %s, got %s", minSamplingDuration, opts.SamplingDuration)
	}
	if opts.BreakDuration < minBreakDuration {
		return nil, optionErr(b.StrategyName(), "BreakDuration", "must be at least %s, got %s", minBreakDuration, opts.BreakDuration)
	}

	ctrl := newController(controllerConfig{
		clk:       clk,
		telemetry: telemetry,
		behavior: &samplingBehavior{
			metrics:           newHealthMetrics(opts.SamplingDuration, clk),
			failureRatio:      opts.FailureRatio,
			minimumThroughput: opts.MinimumThroughput,
		},
		breakDuration: opts.BreakDuration,
		onOpened:      opts.OnOpened,
		onClosed:      opts.OnClosed,
		onHalfOpened:  opts.OnHalfOpened,
	})
	return newStrategy(ctrl, opts.ShouldHandle, opts.ManualControl, opts.StateProvider), nil
}

func optionErr(strategy, field, format string, args ...any) *strata.OptionError {
	return &strata.OptionError{
		Strategy: strategy,
		Field:    field,
		Reason:   fmt.Sprintf(format, args...),
	}
}

// defaultShouldHandle treats every failure as handled except cancellations
// and the breaker's own verdicts.
func defaultShouldHandle(args HandleArguments) bool {
	err := args.Outcome.Err
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var broken *BrokenCircuitError
	return !errors.As(err, &broken)
}
