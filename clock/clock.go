// Package clock provides an injectable time source for strategies that need
// to read the current time or arm timers.
//
// Production code uses [System], which delegates to the time package. Tests
// use [Fake], which only moves when advanced, making timeout and sampling
// behavior deterministic.
package clock

import "time"

// Timer is a handle to a pending callback armed with AfterFunc.
//
// Contract:
// - Stop reports whether it prevented the callback from firing.
// - Stop is safe to call multiple times and after the callback has fired.
type Timer interface {
	Stop() bool
}

// Clock abstracts time reads and timer arming.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - AfterFunc runs f once d has elapsed. The system clock runs f in its own
//   goroutine; [Fake] runs it synchronously inside Advance.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Since returns the time elapsed since t.
	Since(t time.Time) time.Duration

	// AfterFunc arms f to run after d and returns a handle to cancel it.
	AfterFunc(d time.Duration, f func()) Timer
}

// System returns a Clock backed by the time package.
func System() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return systemTimer{t: time.AfterFunc(d, f)}
}

type systemTimer struct {
	t *time.Timer
}

func (st systemTimer) Stop() bool {
	return st.t.Stop()
}
