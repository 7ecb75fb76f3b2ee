package breaker

import (
	"time"

	"github.com/jonwraymond/strata/clock"
)

// HealthInfo is a point-in-time aggregate of the calls observed in the
// sampling window.
type HealthInfo struct {
	// Throughput is the number of calls in the window.
	Throughput int

	// FailureCount is the number of handled failures in the window. Never
	// exceeds Throughput.
	FailureCount int

	// FailureRate is FailureCount over Throughput, 0 when the window is
	// empty.
	FailureRate float64
}

func newHealthInfo(successes, failures int) HealthInfo {
	info := HealthInfo{
		Throughput:   successes + failures,
		FailureCount: failures,
	}
	if info.Throughput > 0 {
		info.FailureRate = float64(info.FailureCount) / float64(info.Throughput)
	}
	return info
}

const (
	windowCount     = 10
	timerResolution = 20 * time.Millisecond
)

// healthMetrics tracks call outcomes over the sampling duration. All methods
// are called under the controller's lock.
type healthMetrics interface {
	incrementSuccess()
	incrementFailure()
	reset()
	healthInfo() HealthInfo
}

// newHealthMetrics picks the implementation for the sampling duration:
// durations too short to split into windowCount buckets of at least the
// timer resolution use a single window.
func newHealthMetrics(samplingDuration time.Duration, clk clock.Clock) healthMetrics {
	if samplingDuration < windowCount*timerResolution {
		return &singleHealthMetrics{
			clk:              clk,
			samplingDuration: samplingDuration,
			start:            clk.Now(),
		}
	}
	return &rollingHealthMetrics{
		clk:              clk,
		samplingDuration: samplingDuration,
		windowDuration:   samplingDuration / windowCount,
	}
}

// singleHealthMetrics keeps one counter pair and starts over when the
// window expires.
type singleHealthMetrics struct {
	clk              clock.Clock
	samplingDuration time.Duration

	start     time.Time
	successes int
	failures  int
}

func (m *singleHealthMetrics) incrementSuccess() {
	m.refresh()
	m.successes++
}

func (m *singleHealthMetrics) incrementFailure() {
	m.refresh()
	m.failures++
}

func (m *singleHealthMetrics) reset() {
	m.start = m.clk.Now()
	m.successes = 0
	m.failures = 0
}

func (m *singleHealthMetrics) healthInfo() HealthInfo {
	m.refresh()
	return newHealthInfo(m.successes, m.failures)
}

func (m *singleHealthMetrics) refresh() {
	if m.clk.Since(m.start) >= m.samplingDuration {
		m.reset()
	}
}

// rollingHealthMetrics divides the sampling duration into windowCount
// sub-windows and aggregates the ones still inside the sampling duration.
type rollingHealthMetrics struct {
	clk              clock.Clock
	samplingDuration time.Duration
	windowDuration   time.Duration

	windows []*healthWindow
	current *healthWindow
}

type healthWindow struct {
	start     time.Time
	successes int
	failures  int
}

func (m *rollingHealthMetrics) incrementSuccess() {
	m.advance().successes++
}

func (m *rollingHealthMetrics) incrementFailure() {
	m.advance().failures++
}

func (m *rollingHealthMetrics) reset() {
	m.windows = nil
	m.current = nil
}

func (m *rollingHealthMetrics) healthInfo() HealthInfo {
	m.discardExpired(m.clk.Now())

	var successes, failures int
	for _, w := range m.windows {
		successes += w.successes
		failures += w.failures
	}
	return newHealthInfo(successes, failures)
}

// advance returns the sub-window for the current time, opening a new one
// when the previous has aged past the window duration, and discards
// sub-windows older than the sampling duration.
func (m *rollingHealthMetrics) advance() *healthWindow {
	now := m.clk.Now()
	if m.current == nil || now.Sub(m.current.start) >= m.windowDuration {
		m.current = &healthWindow{start: now}
		m.windows = append(m.windows, m.current)
	}
	m.discardExpired(now)
	return m.current
}

func (m *rollingHealthMetrics) discardExpired(now time.Time) {
	keep := m.windows[:0]
	for _, w := range m.windows {
		if now.Sub(w.start) < m.samplingDuration {
			keep = append(keep, w)
		}
	}
	m.windows = keep
	if len(m.windows) == 0 {
		m.current = nil
	}
}
