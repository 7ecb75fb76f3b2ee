package strata

// EventHookFailure is reported when a user hook registered on a strategy
// event returns an error. The hook's failure is swallowed after the report.
const EventHookFailure = "HookFailure"

// HookFailureArguments carries the details of a failed strategy hook.
type HookFailureArguments struct {
	// EventName is the event whose hook failed.
	EventName string

	// Err is the error the hook returned.
	Err error
}

// TelemetryEvent is what strategies emit through a TelemetrySource. It binds
// the reporting strategy's identity to the event payload.
type TelemetryEvent struct {
	// BuilderName is the name of the pipeline builder that created the
	// reporting strategy.
	BuilderName string

	// BuilderProperties are the builder-level properties, shared by every
	// strategy in the pipeline. May be nil.
	BuilderProperties *Properties

	// StrategyName is the instance name of the reporting strategy.
	StrategyName string

	// StrategyType is the kind of the reporting strategy.
	StrategyType string

	// EventName identifies the event, e.g. "OnTimeout".
	EventName string

	// Context is the execution context the event occurred in.
	Context *Context

	// Arguments is the event-specific payload.
	Arguments any

	// Outcome is the outcome associated with the event, nil when the event
	// carries none.
	Outcome *Outcome
}

// TelemetryListener receives telemetry events. Implementations are the
// bridge to logging and metric backends.
//
// Contract:
//   - Concurrency: Write must be safe for concurrent use.
//   - Write must not block beyond its own synchronous dispatch; slow backends
//     belong behind the listener, not in it.
//   - Write must not panic.
type TelemetryListener interface {
	Write(event TelemetryEvent)
}

// TelemetrySource is the narrow sink a strategy reports through. Each source
// is bound to one strategy within one built pipeline.
type TelemetrySource struct {
	builderName  string
	builderProps *Properties
	strategyName string
	strategyType string
	listener     TelemetryListener
}

// NewTelemetrySource binds builder and strategy identity to a listener. The
// listener may be nil, in which case reports only append to the execution
// context.
func NewTelemetrySource(builderName string, builderProps *Properties, strategyName, strategyType string, listener TelemetryListener) *TelemetrySource {
	return &TelemetrySource{
		builderName:  builderName,
		builderProps: builderProps,
		strategyName: strategyName,
		strategyType: strategyType,
		listener:     listener,
	}
}

// Report records eventName on the execution context and fans the event out
// to the listener.
func (t *TelemetrySource) Report(eventName string, rc *Context, args any) {
	t.write(eventName, rc, args, nil)
}

// ReportOutcome is Report with the outcome the event was observed for.
func (t *TelemetrySource) ReportOutcome(eventName string, rc *Context, args any, outcome Outcome) {
	t.write(eventName, rc, args, &outcome)
}

func (t *TelemetrySource) write(eventName string, rc *Context, args any, outcome *Outcome) {
	rc.AddResilienceEvent(ReportedResilienceEvent{EventName: eventName})
	if t.listener == nil {
		return
	}
	t.listener.Write(TelemetryEvent{
		BuilderName:       t.builderName,
		BuilderProperties: t.builderProps,
		StrategyName:      t.strategyName,
		StrategyType:      t.strategyType,
		EventName:         eventName,
		Context:           rc,
		Arguments:         args,
		Outcome:           outcome,
	})
}
