// Package timeout provides a pipeline strategy that cancels executions
// exceeding a time limit.
//
// The strategy replaces the execution context's cancellation signal with one
// that fires when either the surrounding signal fires or the timeout
// elapses. Only the second case is translated into a
// [TimeoutRejectedError]; outer cancellation propagates unchanged.
package timeout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jonwraymond/strata"
	"github.com/jonwraymond/strata/clock"
)

// EventOnTimeout is reported through telemetry when the strategy's timer
// fires before the surrounding cancellation does.
const EventOnTimeout = "OnTimeout"

// Infinite disables the timeout when returned by a generator.
const Infinite time.Duration = math.MaxInt64

// minTimeout is the smallest statically configured timeout accepted by
// validation.
const minTimeout = 500 * time.Millisecond

// defaultTimeout applies when Options.Timeout is zero and no generator is
// configured.
const defaultTimeout = 30 * time.Second

// TimeoutRejectedError is returned when the execution did not complete
// within the computed timeout.
type TimeoutRejectedError struct {
	// Timeout is the limit that elapsed.
	Timeout time.Duration

	// Cause is the cancellation failure the callback returned.
	Cause error
}

// Error reports the elapsed limit. TimeoutRejectedError deliberately does
// not unwrap to its cancellation cause: a timeout verdict must not satisfy
// errors.Is(err, context.Canceled), which outer strategies treat as
// unhandled cancellation.
func (e *TimeoutRejectedError) Error() string {
	return fmt.Sprintf("timeout: execution did not complete within %s", e.Timeout)
}

// GeneratorArguments is passed to the timeout generator before each
// execution.
type GeneratorArguments struct {
	Context *strata.Context
}

// Arguments is passed to the OnTimeout hook and carried on the OnTimeout
// telemetry event.
type Arguments struct {
	Context *strata.Context
	Timeout time.Duration
	Cause   error
}

// Options configures the timeout strategy.
type Options struct {
	// Name is the strategy's telemetry instance name. Default: "Timeout".
	Name string

	// Timeout is the static time limit. Default: 30 seconds. Must be at
	// least 500ms unless a Generator is configured.
	Timeout time.Duration

	// Generator computes a per-execution timeout from the context. A
	// non-positive or Infinite result disables the timeout for that call.
	// When set, Timeout is ignored.
	Generator func(GeneratorArguments) time.Duration

	// OnTimeout runs after the OnTimeout event is reported, with the
	// surrounding cancellation already restored on the context. A returned
	// error is reported to telemetry and swallowed.
	OnTimeout func(Arguments) error
}

// New returns a strategy builder for the timeout strategy. Options are
// validated when the pipeline is built.
func New(opts Options) strata.StrategyBuilder {
	return &strategyBuilder{opts: opts}
}

type strategyBuilder struct {
	opts Options
}

func (b *strategyBuilder) StrategyName() string {
	if b.opts.Name != "" {
		return b.opts.Name
	}
	return "Timeout"
}

func (b *strategyBuilder) StrategyType() string {
	return "Timeout"
}

func (b *strategyBuilder) Build(telemetry *strata.TelemetrySource, clk clock.Clock) (strata.Strategy, error) {
	opts := b.opts
	if opts.Generator == nil {
		if opts.Timeout == 0 {
			opts.Timeout = defaultTimeout
		}
		if opts.Timeout < minTimeout {
			return nil, &strata.OptionError{
				Strategy: b.StrategyName(),
				Field:    "Timeout",
				Reason:   fmt.Sprintf("must be at least %s, got %s", minTimeout, opts.Timeout),
			}
		}
	}
	return &strategy{
		timeout:   opts.Timeout,
		generator: opts.Generator,
		onTimeout: opts.OnTimeout,
		telemetry: telemetry,
		clk:       clk,
	}, nil
}

// errElapsed is the cancellation cause installed when the strategy's own
// timer fires.
var errElapsed = errors.New("timeout: deadline elapsed")

type strategy struct {
	timeout   time.Duration
	generator func(GeneratorArguments) time.Duration
	onTimeout func(Arguments) error
	telemetry *strata.TelemetrySource
	clk       clock.Clock
}

func (s *strategy) Execute(rc *strata.Context, next strata.Callback) strata.Outcome {
	d := s.timeout
	if s.generator != nil {
		d = s.generator(GeneratorArguments{Context: rc})
	}
	if d <= 0 || d == Infinite {
		return next(rc)
	}

	prev := rc.Cancellation()
	inner, cancel := context.WithCancelCause(prev)
	timer := s.clk.AfterFunc(d, func() {
		cancel(errElapsed)
	})
	rc.SetCancellation(inner)

	out := next(rc)

	// The surrounding signal must be back on the context before any hook
	// observes it.
	rc.SetCancellation(prev)
	timedOut := inner.Err() != nil &&
		errors.Is(context.Cause(inner), errElapsed) &&
		prev.Err() == nil
	timer.Stop()
	cancel(nil)

	if out.IsFailure() && isCancellation(out.Err) && timedOut {
		args := Arguments{Context: rc, Timeout: d, Cause: out.Err}
		s.telemetry.Report(EventOnTimeout, rc, args)
		if s.onTimeout != nil {
			if hookErr := s.onTimeout(args); hookErr != nil {
				s.telemetry.Report(strata.EventHookFailure, rc, strata.HookFailureArguments{
					EventName: EventOnTimeout,
					Err:       hookErr,
				})
			}
		}
		return strata.Failure(&TimeoutRejectedError{Timeout: d, Cause: out.Err})
	}
	return out
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
