package breaker

import "github.com/jonwraymond/strata"

// Telemetry event names reported by the breaker.
const (
	// EventOnOpened is reported when the circuit transitions to open or
	// isolated.
	EventOnOpened = "OnCircuitOpened"

	// EventOnClosed is reported when the circuit transitions to closed.
	EventOnClosed = "OnCircuitClosed"

	// EventOnHalfOpened is reported when an expired break lets a probe
	// through.
	EventOnHalfOpened = "OnCircuitHalfOpened"
)

// BrokenCircuitError is returned when the breaker blocks an execution.
type BrokenCircuitError struct {
	// Outcome is the outcome that caused the circuit to break. Zero when
	// the circuit was isolated manually before any break.
	Outcome strata.Outcome

	// Isolated reports whether the circuit was opened manually.
	Isolated bool
}

func (e *BrokenCircuitError) Error() string {
	if e.Isolated {
		return "breaker: circuit is isolated"
	}
	return "breaker: circuit is open"
}

// Unwrap exposes the breaking outcome's failure so errors.Is can see the
// original error through the broken-circuit verdict.
func (e *BrokenCircuitError) Unwrap() error {
	return e.Outcome.Err
}
