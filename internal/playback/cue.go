package playback

import (
	"sync"
	"time"
)

// DefaultCueWindow is how long the "Drink!" cue stays up.
const DefaultCueWindow = 2 * time.Second

type stopper interface {
	Stop() bool
}

func realAfter(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

// Cue is the drink-cue flag. Trigger raises it and (re)arms a one-shot timer
// that lowers it after the window; a trigger inside the window restarts the
// window instead of stacking. onExpire runs on the timer goroutine, with no
// lock held, after the timer lowers the flag.
type Cue struct {
	mu       sync.Mutex
	window   time.Duration
	active   bool
	gen      uint64
	timer    stopper
	after    func(time.Duration, func()) stopper
	onExpire func()
}

func NewCue(window time.Duration, onExpire func()) *Cue {
	if window <= 0 {
		window = DefaultCueWindow
	}
	return &Cue{window: window, after: realAfter, onExpire: onExpire}
}

func (c *Cue) Trigger() {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.after(c.window, func() { c.expire(gen) })
	c.active = true
	c.mu.Unlock()
}

// expire lowers the flag unless a newer trigger superseded this timer.
func (c *Cue) expire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.timer = nil
	c.mu.Unlock()

	if c.onExpire != nil {
		c.onExpire()
	}
}

func (c *Cue) Clear() {
	c.mu.Lock()
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.active = false
	c.mu.Unlock()
}

func (c *Cue) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
