// Package health exposes circuit breaker state as health checks.
//
// A [CircuitChecker] reads a breaker.StateProvider and maps circuit state
// to component health: a closed circuit is healthy, a half-open circuit is
// degraded while it probes recovery, and an open or isolated circuit is
// unhealthy. Checkers register on an [Aggregator], whose rollup feeds the
// HTTP handlers for Kubernetes-style probes.
//
//	provider := breaker.NewStateProvider()
//	// ... build a pipeline with breaker.Options{StateProvider: provider}
//
//	agg := health.NewAggregator()
//	agg.Register("payments-circuit", health.NewCircuitChecker("payments-circuit", provider))
//
//	mux.Handle("/readyz", health.ReadinessHandler(agg))
//	mux.Handle("/health", health.DetailedHandler(agg))
//
// Arbitrary checks plug in through [Checker] or [NewCheckerFunc].
package health
