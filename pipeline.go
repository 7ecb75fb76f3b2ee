package strata

import (
	"context"
	"time"

	"github.com/jonwraymond/strata/clock"
)

// EventPipelineExecuted is emitted to the telemetry listener once per
// top-level pipeline execution. It is delivered to the listener only; it is
// never appended to the execution context's event list.
const EventPipelineExecuted = "PipelineExecuted"

// PipelineExecutedArguments is the payload of EventPipelineExecuted.
type PipelineExecutedArguments struct {
	// Duration is the wall time of the whole execution, strategies included.
	Duration time.Duration

	// Healthy is true when the execution context's resilience event list is
	// empty after the execution.
	Healthy bool
}

// Pipeline is an ordered composition of strategies. The first strategy is
// outermost: it sees every execution first and its outcome last.
//
// A Pipeline is immutable after Build and safe for concurrent use.
type Pipeline struct {
	name         string
	instanceName string
	strategies   []Strategy
	builderProps *Properties
	listener     TelemetryListener
	clk          clock.Clock
}

// Name returns the builder name the pipeline was created with.
func (p *Pipeline) Name() string {
	return p.name
}

// InstanceName returns the pipeline's instance name, empty when unset.
func (p *Pipeline) InstanceName() string {
	return p.instanceName
}

// ExecuteOutcome runs cb through the pipeline using a caller-managed
// context. The caller is responsible for acquiring, initializing and
// releasing rc.
func (p *Pipeline) ExecuteOutcome(rc *Context, cb Callback) Outcome {
	start := p.clk.Now()
	out := p.composed(cb)(rc)
	p.reportExecuted(rc, out, p.clk.Since(start))
	return out
}

// composed wraps cb in the pipeline's strategies, innermost last, so that
// invoking the result runs strategies outermost-first.
func (p *Pipeline) composed(cb Callback) Callback {
	next := cb
	for i := len(p.strategies) - 1; i >= 0; i-- {
		s := p.strategies[i]
		inner := next
		next = func(rc *Context) Outcome {
			return s.Execute(rc, inner)
		}
	}
	return next
}

func (p *Pipeline) reportExecuted(rc *Context, out Outcome, d time.Duration) {
	if p.listener == nil {
		return
	}
	p.listener.Write(TelemetryEvent{
		BuilderName:       p.name,
		BuilderProperties: p.builderProps,
		StrategyName:      p.instanceName,
		StrategyType:      "Pipeline",
		EventName:         EventPipelineExecuted,
		Context:           rc,
		Arguments: PipelineExecutedArguments{
			Duration: d,
			Healthy:  rc.eventCount() == 0,
		},
		Outcome: &out,
	})
}

// Execute runs fn through the pipeline and returns its typed result. The
// execution context is pooled; fn must not retain it.
func Execute[T any](ctx context.Context, p *Pipeline, fn func(rc *Context) (T, error)) (T, error) {
	rc := AcquireContext(ctx)
	defer ReleaseContext(rc)
	Initialize[T](rc, true)

	out := p.ExecuteOutcome(rc, func(rc *Context) Outcome {
		v, err := fn(rc)
		if err != nil {
			return Failure(err)
		}
		return Success(v)
	})
	if out.Err != nil {
		var zero T
		return zero, out.Err
	}
	v, _ := out.Result.(T)
	return v, nil
}

// Run is Execute for operations with no result value.
func Run(ctx context.Context, p *Pipeline, fn func(rc *Context) error) error {
	rc := AcquireContext(ctx)
	defer ReleaseContext(rc)
	Initialize[VoidResult](rc, true)

	out := p.ExecuteOutcome(rc, func(rc *Context) Outcome {
		if err := fn(rc); err != nil {
			return Failure(err)
		}
		return Success(VoidResult{})
	})
	return out.Err
}
