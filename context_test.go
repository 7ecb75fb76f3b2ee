package strata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// requireDefaults asserts the contract every freshly acquired context must
// satisfy.
func requireDefaults(t *testing.T, rc *Context) {
	t.Helper()
	require.NotNil(t, rc)
	assert.False(t, rc.IsInitialized())
	assert.Equal(t, UnknownResultType, rc.ResultType())
	assert.False(t, rc.IsVoid())
	assert.False(t, rc.IsSynchronous())
	assert.NoError(t, rc.Cancellation().Err())
	assert.Zero(t, rc.Properties().Len())
	assert.Empty(t, rc.ResilienceEvents())
}

func TestAcquireContext_Defaults(t *testing.T) {
	rc := AcquireContext(nil)
	defer ReleaseContext(rc)

	requireDefaults(t, rc)
}

func TestAcquireContext_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rc := AcquireContext(ctx)
	defer ReleaseContext(rc)

	assert.Equal(t, ctx, rc.Cancellation())
}

func TestInitialize(t *testing.T) {
	rc := AcquireContext(nil)
	defer ReleaseContext(rc)

	Initialize[string](rc, true)

	assert.True(t, rc.IsInitialized())
	assert.Equal(t, "string", rc.ResultType())
	assert.False(t, rc.IsVoid())
	assert.True(t, rc.IsSynchronous())
}

func TestInitialize_Void(t *testing.T) {
	rc := AcquireContext(nil)
	defer ReleaseContext(rc)

	Initialize[VoidResult](rc, false)

	assert.True(t, rc.IsVoid())
	assert.False(t, rc.IsSynchronous())
}

func TestReleaseContext_RestoresDefaults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Dirty every field, release, and require defaults on every
	// subsequent acquire. The pool may or may not hand back the same
	// instance; the contract holds either way.
	for i := 0; i < 100; i++ {
		rc := AcquireContext(ctx)
		Initialize[int](rc, true)
		SetProperty(rc.Properties(), NewPropertyKey[string]("tenant"), "acme")
		rc.AddResilienceEvent(ReportedResilienceEvent{EventName: "OnTimeout"})
		ReleaseContext(rc)

		next := AcquireContext(nil)
		requireDefaults(t, next)
		ReleaseContext(next)
	}
}

func TestReleaseContext_NilPanics(t *testing.T) {
	require.Panics(t, func() {
		ReleaseContext(nil)
	})
}

func TestContextPool_ConcurrentAcquireRelease(t *testing.T) {
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			for j := 0; j < 1000; j++ {
				rc := AcquireContext(context.Background())
				Initialize[string](rc, true)
				rc.AddResilienceEvent(ReportedResilienceEvent{EventName: "OnTimeout"})
				ReleaseContext(rc)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	rc := AcquireContext(nil)
	defer ReleaseContext(rc)
	requireDefaults(t, rc)
}

func TestResilienceEvents_Snapshot(t *testing.T) {
	rc := AcquireContext(nil)
	defer ReleaseContext(rc)

	rc.AddResilienceEvent(ReportedResilienceEvent{EventName: "a"})
	rc.AddResilienceEvent(ReportedResilienceEvent{EventName: "b"})

	events := rc.ResilienceEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].EventName)
	assert.Equal(t, "b", events[1].EventName)

	// Mutating the snapshot must not affect the context.
	events[0].EventName = "mutated"
	assert.Equal(t, "a", rc.ResilienceEvents()[0].EventName)
}

func TestReportedResilienceEvent_EqualityByName(t *testing.T) {
	assert.Equal(t,
		ReportedResilienceEvent{EventName: "OnTimeout"},
		ReportedResilienceEvent{EventName: "OnTimeout"},
	)
}
