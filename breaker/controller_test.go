package breaker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/strata"
	"github.com/jonwraymond/strata/clock"
)

// TestController_EventOrderMatchesTransitions hammers one breaker from many
// goroutines and then replays the observed event stream through the circuit
// state machine. Any reordering of emitted events relative to the internal
// transitions would produce an impossible sequence.
func TestController_EventOrderMatchesTransitions(t *testing.T) {
	f := newFixture(t, Options{FailureThreshold: 1, BreakDuration: time.Second})

	for round := 0; round < 25; round++ {
		var g errgroup.Group
		for w := 0; w < 4; w++ {
			g.Go(func() error {
				for i := 0; i < 10; i++ {
					// Broken-circuit verdicts are expected here.
					_ = f.call(errService)
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())

		// Let the break expire, then probe: success on even rounds,
		// failure on odd ones.
		f.clk.Advance(time.Second)
		if round%2 == 0 {
			_ = f.call(nil)
		} else {
			_ = f.call(errService)
		}
	}

	requireValidEventSequence(t, f.listener.names())
}

// requireValidEventSequence replays events through the allowed transition
// graph: opened from closed/half-open, half-opened from open, closed from
// half-open.
func requireValidEventSequence(t *testing.T, names []string) {
	t.Helper()

	state := StateClosed
	for i, name := range names {
		switch name {
		case EventOnOpened:
			require.Contains(t, []State{StateClosed, StateHalfOpen}, state,
				"event %d (%s) emitted from %s", i, name, state)
			state = StateOpen
		case EventOnHalfOpened:
			require.Equal(t, StateOpen, state,
				"event %d (%s) emitted from %s", i, name, state)
			state = StateHalfOpen
		case EventOnClosed:
			require.Equal(t, StateHalfOpen, state,
				"event %d (%s) emitted from %s", i, name, state)
			state = StateClosed
		default:
			t.Fatalf("unexpected event %q", name)
		}
	}
}

// TestController_HalfOpenEmittedOnce verifies the open-to-half-open
// transition fires its event exactly once even when many executions race
// past the expired break.
func TestController_HalfOpenEmittedOnce(t *testing.T) {
	f := newFixture(t, Options{FailureThreshold: 1, BreakDuration: time.Second})

	require.Error(t, f.call(errService))
	f.clk.Advance(time.Second)

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			return f.call(nil)
		})
	}
	require.NoError(t, g.Wait())

	halfOpened := 0
	for _, name := range f.listener.names() {
		if name == EventOnHalfOpened {
			halfOpened++
		}
	}
	require.Equal(t, 1, halfOpened)
}

// TestController_ConcurrentExecutions is a race smoke test mixing
// executions with manual control.
func TestController_ConcurrentExecutions(t *testing.T) {
	mc := NewManualControl()
	f := newFixture(t, Options{
		FailureThreshold: 2,
		BreakDuration:    time.Second,
		ManualControl:    mc,
	})

	var g errgroup.Group
	for w := 0; w < 4; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < 200; i++ {
				var err error
				if (i+w)%3 == 0 {
					err = errService
				}
				_ = f.call(err)
			}
			return nil
		})
	}
	g.Go(func() error {
		for i := 0; i < 20; i++ {
			mc.Isolate(context.Background())
			mc.Reset(context.Background())
		}
		return nil
	})
	require.NoError(t, g.Wait())

	// The provider must land on a coherent state.
	final := f.provider.State()
	require.Contains(t, []State{StateClosed, StateOpen, StateHalfOpen, StateIsolated}, final)
}

// TestManualControl_MultipleBreakers attaches one control to several
// breakers and isolates them together.
func TestManualControl_MultipleBreakers(t *testing.T) {
	mc := NewManualControl()

	var providers []*StateProvider
	for i := 0; i < 3; i++ {
		provider := NewStateProvider()
		providers = append(providers, provider)

		_, err := strata.NewBuilder(fmt.Sprintf("b%d", i)).
			WithClock(clock.NewFake(time.Unix(0, 0))).
			AddStrategy(New(Options{
				ManualControl: mc,
				StateProvider: provider,
			})).
			Build()
		require.NoError(t, err)
	}

	mc.Isolate(context.Background())
	for _, p := range providers {
		require.Equal(t, StateIsolated, p.State())
	}

	mc.Reset(context.Background())
	for _, p := range providers {
		require.Equal(t, StateClosed, p.State())
	}
}
