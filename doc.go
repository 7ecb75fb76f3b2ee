// Package strata composes resilience strategies into pipelines that wrap
// user operations.
//
// A pipeline is an ordered stack of strategies. The first strategy added is
// outermost: it observes the execution first and sees the final outcome
// last. Each strategy receives the execution context and a callback for the
// next layer, and must invoke that callback at most once.
//
//	┌──────────────────────────────────────────────┐
//	│                  Pipeline                    │
//	│  ┌────────────────────────────────────────┐  │
//	│  │ CircuitBreaker                         │  │
//	│  │  ┌──────────────────────────────────┐  │  │
//	│  │  │ Timeout                          │  │  │
//	│  │  │  ┌────────────────────────────┐  │  │  │
//	│  │  │  │ user callback              │  │  │  │
//	│  │  │  └────────────────────────────┘  │  │  │
//	│  │  └──────────────────────────────────┘  │  │
//	│  └────────────────────────────────────────┘  │
//	└──────────────────────────────────────────────┘
//
// # Quick Start
//
//	p, err := strata.NewBuilder("payments").
//	    AddStrategy(breaker.New(breaker.Options{
//	        FailureThreshold: 3,
//	        BreakDuration:    10 * time.Second,
//	    })).
//	    AddStrategy(timeout.New(timeout.Options{
//	        Timeout: 2 * time.Second,
//	    })).
//	    Build()
//	if err != nil {
//	    return err
//	}
//
//	result, err := strata.Execute(ctx, p, func(rc *strata.Context) (string, error) {
//	    return callService(rc.Cancellation())
//	})
//
// # Execution Context
//
// Every execution runs with a pooled [Context] carrying the cancellation
// signal, a typed property bag, and the resilience events reported by
// strategies. [Execute] and [Run] manage the context automatically;
// [Pipeline.ExecuteOutcome] accepts a caller-managed context acquired with
// [AcquireContext] and returned with [ReleaseContext].
//
// # Telemetry
//
// Strategies report named events through a [TelemetrySource] bound to the
// builder's [TelemetryListener]. Each top-level execution additionally emits
// [EventPipelineExecuted] with its duration and health: an execution is
// healthy when its context's event list is empty afterwards. The telemetry
// package provides
// an OpenTelemetry-backed listener.
//
// # Thread Safety
//
// A built [Pipeline] is immutable and safe for concurrent use. A [Context]
// belongs to a single execution; only its event list tolerates concurrent
// appends. The context and builder types are not safe for concurrent
// mutation.
//
// # Error Handling
//
// Strategies pass user failures through unchanged. The strategy packages
// return typed errors for their own verdicts (use errors.As):
//
//   - timeout.TimeoutRejectedError: the strategy's own timer elapsed
//   - breaker.BrokenCircuitError: the breaker blocked the call
//
// Outer cancellation always propagates as the context's own error. Option
// validation failures surface from [Builder.Build] as [*OptionError].
package strata
