// Package telemetry turns strata telemetry events into OpenTelemetry
// metrics, trace spans, and structured logs.
//
// The [Consumer] is a strata.TelemetryListener: attach it to a pipeline
// builder and every top-level execution is recorded on the
// strategy-execution-duration histogram, tagged with the builder name,
// strategy key, result type, exception name and execution health; strategy
// events (timeouts, circuit transitions) become log lines. [Enricher]
// functions add custom tags before a metric is recorded.
//
//	prov, err := telemetry.NewProvider(ctx, telemetry.Config{
//	    ServiceName: "payments",
//	    Metrics:     telemetry.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//	    Logging:     telemetry.LoggingConfig{Enabled: true, Level: "info"},
//	})
//	if err != nil {
//	    return err
//	}
//	defer prov.Shutdown(ctx)
//
//	consumer, err := telemetry.NewConsumerFromProvider(prov)
//	if err != nil {
//	    return err
//	}
//
//	p, err := strata.NewBuilder("payments").
//	    WithTelemetryListener(consumer).
//	    AddStrategy(timeout.New(timeout.Options{Timeout: 2 * time.Second})).
//	    Build()
//
// [Middleware] additionally wraps executions in trace spans for callers
// that want per-call spans rather than aggregate metrics.
package telemetry
