package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced Clock for tests.
//
// Timers armed with AfterFunc fire synchronously inside Advance, in deadline
// order, once the fake time reaches their deadline. Callbacks run without the
// internal lock held, so they may re-arm timers or read the clock.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

// NewFake returns a Fake positioned at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the current fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Since returns the fake time elapsed since t.
func (f *Fake) Since(t time.Time) time.Duration {
	return f.Now().Sub(t)
}

// AfterFunc arms fn to run once the fake clock has advanced by d from now.
func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	ft := &fakeTimer{
		clock:    f,
		deadline: f.now.Add(d),
		fn:       fn,
	}
	f.timers = append(f.timers, ft)
	return ft
}

// Advance moves the fake time forward by d, firing expired timers in
// deadline order before returning.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)

	for {
		ft := f.nextExpiredLocked(target)
		if ft == nil {
			break
		}
		// Fire at the timer's own deadline so re-armed timers see a
		// consistent clock.
		if ft.deadline.After(f.now) {
			f.now = ft.deadline
		}
		ft.fired = true
		fn := ft.fn
		f.mu.Unlock()
		fn()
		f.mu.Lock()
	}

	f.now = target
	f.mu.Unlock()
}

// nextExpiredLocked removes and returns the unfired timer with the earliest
// deadline at or before target, or nil when none remain.
func (f *Fake) nextExpiredLocked(target time.Time) *fakeTimer {
	sort.SliceStable(f.timers, func(i, j int) bool {
		return f.timers[i].deadline.Before(f.timers[j].deadline)
	})
	for i, ft := range f.timers {
		if ft.fired || ft.stopped {
			continue
		}
		if ft.deadline.After(target) {
			return nil
		}
		f.timers = append(f.timers[:i], f.timers[i+1:]...)
		return ft
	}
	return nil
}

type fakeTimer struct {
	clock    *Fake
	deadline time.Time
	fn       func()
	fired    bool
	stopped  bool
}

func (ft *fakeTimer) Stop() bool {
	ft.clock.mu.Lock()
	defer ft.clock.mu.Unlock()

	if ft.fired || ft.stopped {
		return false
	}
	ft.stopped = true
	return true
}
