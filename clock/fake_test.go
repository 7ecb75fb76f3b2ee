package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystem_Now(t *testing.T) {
	clk := System()
	before := time.Now()
	now := clk.Now()
	assert.False(t, now.Before(before))
}

func TestFake_AdvanceMovesTime(t *testing.T) {
	start := time.Unix(0, 0)
	clk := NewFake(start)

	clk.Advance(3 * time.Second)

	assert.Equal(t, start.Add(3*time.Second), clk.Now())
	assert.Equal(t, 3*time.Second, clk.Since(start))
}

func TestFake_AfterFuncFiresOnAdvance(t *testing.T) {
	clk := NewFake(time.Unix(0, 0))

	fired := false
	clk.AfterFunc(100*time.Millisecond, func() { fired = true })

	clk.Advance(50 * time.Millisecond)
	assert.False(t, fired)

	clk.Advance(50 * time.Millisecond)
	assert.True(t, fired)
}

func TestFake_AfterFuncOrder(t *testing.T) {
	clk := NewFake(time.Unix(0, 0))

	var order []string
	clk.AfterFunc(200*time.Millisecond, func() { order = append(order, "late") })
	clk.AfterFunc(100*time.Millisecond, func() { order = append(order, "early") })

	clk.Advance(time.Second)

	assert.Equal(t, []string{"early", "late"}, order)
}

func TestFake_StopPreventsFiring(t *testing.T) {
	clk := NewFake(time.Unix(0, 0))

	fired := false
	timer := clk.AfterFunc(100*time.Millisecond, func() { fired = true })

	require.True(t, timer.Stop())
	clk.Advance(time.Second)

	assert.False(t, fired)
	assert.False(t, timer.Stop())
}

func TestFake_StopAfterFire(t *testing.T) {
	clk := NewFake(time.Unix(0, 0))

	timer := clk.AfterFunc(10*time.Millisecond, func() {})
	clk.Advance(20 * time.Millisecond)

	assert.False(t, timer.Stop())
}

func TestFake_CallbackSeesDeadlineClock(t *testing.T) {
	start := time.Unix(0, 0)
	clk := NewFake(start)

	var seen time.Time
	clk.AfterFunc(100*time.Millisecond, func() { seen = clk.Now() })

	clk.Advance(time.Second)

	assert.Equal(t, start.Add(100*time.Millisecond), seen)
}
