package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock records scheduled callbacks so a test can fire them explicitly.
type fakeClock struct {
	scheduled []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *fakeClock) after(d time.Duration, f func()) Timer {
	t := &fakeTimer{d: d, f: f}
	c.scheduled = append(c.scheduled, t)
	return t
}

func (c *fakeClock) fireAll() {
	for _, t := range c.scheduled {
		t.f()
	}
}

func TestTriggerTwiceRunsOnce(t *testing.T) {
	clock := &fakeClock{}
	d := NewWithTimer(500*time.Millisecond, clock.after)

	calls := 0
	d.Trigger(func() { calls++ })
	d.Trigger(func() { calls += 10 })

	require.Len(t, clock.scheduled, 2)
	assert.True(t, clock.scheduled[0].stopped)
	assert.Equal(t, 500*time.Millisecond, clock.scheduled[1].d)
	assert.True(t, d.Pending())

	// even if the stale timer fires anyway, only the last callback runs
	clock.fireAll()
	assert.Equal(t, 10, calls)
	assert.False(t, d.Pending())
}

func TestCancelDropsPendingCall(t *testing.T) {
	clock := &fakeClock{}
	d := NewWithTimer(time.Second, clock.after)

	called := false
	d.Trigger(func() { called = true })
	d.Cancel()
	clock.fireAll()

	assert.False(t, called)
	assert.False(t, d.Pending())
}

func TestRealTimerFires(t *testing.T) {
	d := New(10 * time.Millisecond)
	var n atomic.Int32
	d.Trigger(func() { n.Add(1) })
	d.Trigger(func() { n.Add(1) })

	assert.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), n.Load())
}
