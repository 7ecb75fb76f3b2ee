package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/strata"
)

// MetricExecutionDuration is the histogram recorded once per top-level
// pipeline execution.
const MetricExecutionDuration = "strategy-execution-duration"

// Attribute keys on the execution duration histogram.
const (
	AttrBuilderName     = "builder-name"
	AttrStrategyKey     = "strategy-key"
	AttrResultType      = "result-type"
	AttrExceptionName   = "exception-name"
	AttrExecutionHealth = "execution-health"
)

// EnrichmentContext collects the tags for one metric record. Enrichers add
// to it before the metric is recorded.
type EnrichmentContext struct {
	// Event is the telemetry event being recorded.
	Event strata.TelemetryEvent

	tags []attribute.KeyValue
}

// AddTag appends a tag to the metric record.
func (ec *EnrichmentContext) AddTag(kv attribute.KeyValue) {
	ec.tags = append(ec.tags, kv)
}

// Tags returns the tags accumulated so far.
func (ec *EnrichmentContext) Tags() []attribute.KeyValue {
	return ec.tags
}

// Enricher adds tags to an execution metric before it is recorded.
// Enrichers run synchronously on the reporting goroutine.
type Enricher func(*EnrichmentContext)

// Consumer is a strata.TelemetryListener backed by OpenTelemetry metrics
// and a structured logger. Pipeline execution events become the
// MetricExecutionDuration histogram; every other strategy event is logged.
type Consumer struct {
	logger       Logger
	durationHist metric.Float64Histogram
	enrichers    []Enricher
}

var _ strata.TelemetryListener = (*Consumer)(nil)

// NewConsumer creates a Consumer recording through meter and logging
// through logger. A nil logger discards log output.
func NewConsumer(meter metric.Meter, logger Logger, enrichers ...Enricher) (*Consumer, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	hist, err := meter.Float64Histogram(
		MetricExecutionDuration,
		metric.WithDescription("Resilience pipeline execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		logger:       logger,
		durationHist: hist,
		enrichers:    enrichers,
	}, nil
}

// Write implements strata.TelemetryListener.
func (c *Consumer) Write(e strata.TelemetryEvent) {
	if e.EventName == strata.EventPipelineExecuted {
		c.recordExecution(e)
		return
	}
	c.logEvent(e)
}

func (c *Consumer) recordExecution(e strata.TelemetryEvent) {
	args, ok := e.Arguments.(strata.PipelineExecutedArguments)
	if !ok {
		return
	}

	health := "Healthy"
	if !args.Healthy {
		health = "Unhealthy"
	}

	ec := &EnrichmentContext{
		Event: e,
		tags: []attribute.KeyValue{
			attribute.String(AttrBuilderName, e.BuilderName),
			attribute.String(AttrStrategyKey, e.StrategyName),
			attribute.String(AttrResultType, e.Context.ResultType()),
			attribute.String(AttrExceptionName, exceptionName(e.Outcome)),
			attribute.String(AttrExecutionHealth, health),
		},
	}
	for _, enrich := range c.enrichers {
		enrich(ec)
	}

	// The execution's own cancellation may already be canceled, which must
	// not suppress the record.
	c.durationHist.Record(
		context.Background(),
		float64(args.Duration)/float64(time.Millisecond),
		metric.WithAttributes(ec.Tags()...),
	)
}

func (c *Consumer) logEvent(e strata.TelemetryEvent) {
	lg := c.logger.WithStrategy(e.BuilderName, e.StrategyName, e.StrategyType)

	fields := []Field{{Key: "event", Value: e.EventName}}
	if e.Outcome != nil && e.Outcome.Err != nil {
		fields = append(fields, Field{Key: "error", Value: e.Outcome.Err.Error()})
	}

	ctx := context.Background()
	switch e.EventName {
	case "OnTimeout", "OnCircuitOpened", strata.EventHookFailure:
		lg.Warn(ctx, "resilience event", fields...)
	default:
		lg.Info(ctx, "resilience event", fields...)
	}
}


func exceptionName(out *strata.Outcome) string {
	if out == nil || out.Err == nil {
		return ""
	}
	return fmt.Sprintf("%T", out.Err)
}
