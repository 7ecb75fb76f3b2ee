package breaker

// behavior decides when the circuit should break. Implementations are called
// under the controller's lock and need no synchronization of their own.
type behavior interface {
	// onActionSuccess records a successful call observed in state s.
	onActionSuccess(s State)

	// onActionFailure records a handled failure observed in state s and
	// reports whether the circuit should break.
	onActionFailure(s State) (shouldBreak bool)

	// onCircuitClosed resets the behavior's bookkeeping after the circuit
	// closes.
	onCircuitClosed()
}

// consecutiveBehavior breaks after a run of handled failures with no
// intervening success.
type consecutiveBehavior struct {
	threshold int
	failures  int
}

func (b *consecutiveBehavior) onActionSuccess(s State) {
	if s == StateClosed {
		b.failures = 0
	}
}

func (b *consecutiveBehavior) onActionFailure(s State) bool {
	if s != StateClosed {
		return false
	}
	b.failures++
	return b.failures >= b.threshold
}

func (b *consecutiveBehavior) onCircuitClosed() {
	b.failures = 0
}

// samplingBehavior breaks when the failure rate over the sampling window
// reaches the configured ratio, once enough throughput has been observed.
type samplingBehavior struct {
	metrics           healthMetrics
	failureRatio      float64
	minimumThroughput int
}

func (b *samplingBehavior) onActionSuccess(State) {
	b.metrics.incrementSuccess()
}

func (b *samplingBehavior) onActionFailure(s State) bool {
	b.metrics.incrementFailure()
	if s != StateClosed {
		return false
	}
	info := b.metrics.healthInfo()
	return info.Throughput >= b.minimumThroughput && info.FailureRate >= b.failureRatio
}

func (b *samplingBehavior) onCircuitClosed() {
	b.metrics.reset()
}

func (b *samplingBehavior) healthInfo() HealthInfo {
	return b.metrics.healthInfo()
}
