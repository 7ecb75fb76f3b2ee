package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonwraymond/strata"
)

// Middleware wraps pipeline executions with a trace span and a structured
// log line. Metrics are recorded separately by the Consumer listening on
// the pipeline.
//
// Contract:
//   - Concurrency: Run and ExecuteTraced are safe for concurrent use.
//   - Errors from the wrapped execution are recorded on the span and
//     propagated unchanged.
type Middleware struct {
	tracer trace.Tracer
	logger Logger
}

// NewMiddleware creates a Middleware from a tracer and logger.
func NewMiddleware(tracer trace.Tracer, logger Logger) *Middleware {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Middleware{tracer: tracer, logger: logger}
}

// MiddlewareFromProvider is a convenience constructor for the common case.
func MiddlewareFromProvider(p Provider) *Middleware {
	return NewMiddleware(p.Tracer(), p.Logger())
}

// Run executes fn through the pipeline inside a span named
// "pipeline.exec.<pipeline name>".
func (m *Middleware) Run(ctx context.Context, p *strata.Pipeline, fn func(rc *strata.Context) error) error {
	ctx, span := m.startSpan(ctx, p)
	start := time.Now()

	err := strata.Run(ctx, p, fn)

	m.endSpan(span, err)
	m.logExecution(ctx, p, time.Since(start), err)
	return err
}

// ExecuteTraced executes fn through the pipeline inside a span and returns
// its typed result.
func ExecuteTraced[T any](ctx context.Context, m *Middleware, p *strata.Pipeline, fn func(rc *strata.Context) (T, error)) (T, error) {
	ctx, span := m.startSpan(ctx, p)
	start := time.Now()

	result, err := strata.Execute(ctx, p, fn)

	m.endSpan(span, err)
	m.logExecution(ctx, p, time.Since(start), err)
	return result, err
}

func (m *Middleware) startSpan(ctx context.Context, p *strata.Pipeline) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("pipeline.name", p.Name()),
	}
	if p.InstanceName() != "" {
		attrs = append(attrs, attribute.String("pipeline.instance", p.InstanceName()))
	}
	return m.tracer.Start(ctx, "pipeline.exec."+p.Name(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (m *Middleware) endSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (m *Middleware) logExecution(ctx context.Context, p *strata.Pipeline, d time.Duration, err error) {
	lg := m.logger.WithStrategy(p.Name(), p.InstanceName(), "Pipeline")
	fields := []Field{
		{Key: "duration_ms", Value: float64(d.Milliseconds())},
	}
	if err != nil {
		fields = append(fields, Field{Key: "error", Value: err.Error()})
		lg.Error(ctx, "pipeline execution failed", fields...)
		return
	}
	lg.Info(ctx, "pipeline execution completed", fields...)
}
