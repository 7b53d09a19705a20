package playback

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	d       time.Duration
	fire    func()
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	was := !f.stopped
	f.stopped = true
	return was
}

// manualCue returns a cue whose timers only fire when the test says so.
func manualCue(window time.Duration, onExpire func()) (*Cue, *[]*fakeTimer) {
	timers := &[]*fakeTimer{}
	c := NewCue(window, onExpire)
	c.after = func(d time.Duration, f func()) stopper {
		t := &fakeTimer{d: d, fire: f}
		*timers = append(*timers, t)
		return t
	}
	return c, timers
}

func TestCueTriggerAndExpire(t *testing.T) {
	expired := 0
	c, timers := manualCue(0, func() { expired++ })

	c.Trigger()
	assert.True(t, c.Active())
	require.Len(t, *timers, 1)
	assert.Equal(t, DefaultCueWindow, (*timers)[0].d)

	(*timers)[0].fire()
	assert.False(t, c.Active())
	assert.Equal(t, 1, expired)
}

func TestCueRetriggerRearmsWindow(t *testing.T) {
	expired := 0
	c, timers := manualCue(2*time.Second, func() { expired++ })

	c.Trigger()
	c.Trigger()
	require.Len(t, *timers, 2)
	assert.True(t, (*timers)[0].stopped)

	// a superseded timer firing late must not clear the newer cue
	(*timers)[0].fire()
	assert.True(t, c.Active())
	assert.Zero(t, expired)

	(*timers)[1].fire()
	assert.False(t, c.Active())
	assert.Equal(t, 1, expired)
}

func TestCueClear(t *testing.T) {
	c, timers := manualCue(time.Second, nil)
	c.Trigger()
	c.Clear()
	assert.False(t, c.Active())
	assert.True(t, (*timers)[0].stopped)

	(*timers)[0].fire()
	assert.False(t, c.Active())
}

func TestCueRealTimer(t *testing.T) {
	var expired atomic.Int32
	c := NewCue(50*time.Millisecond, func() { expired.Add(1) })

	c.Trigger()
	assert.True(t, c.Active())
	assert.Eventually(t, func() bool { return !c.Active() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), expired.Load())
}
