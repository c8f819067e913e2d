// Package clock turns wall time into per-frame elapsed/delta pairs.
package clock

import (
	"math"
	"time"
)

// TimeProvider supplies the current time.
type TimeProvider interface {
	Now() time.Time
}

// SystemTime reads the real monotonic clock.
type SystemTime struct{}

func (SystemTime) Now() time.Time { return time.Now() }

// Frame is one clock reading in seconds.
type Frame struct {
	Elapsed float64
	Delta   float64
}

// Clock accumulates scaled elapsed time. Deltas are clamped to MaxDelta so a
// stalled process does not fast-forward every animation in one frame.
type Clock struct {
	src       TimeProvider
	last      time.Time
	started   bool
	elapsed   float64
	TimeScale float64
	MaxDelta  float64
}

// New returns a clock reading from p. A nil p uses SystemTime.
func New(p TimeProvider) *Clock {
	if p == nil {
		p = SystemTime{}
	}
	return &Clock{src: p, TimeScale: 1, MaxDelta: 0.1}
}

// Tick reads the provider and returns the frame since the previous Tick.
// The first Tick has a zero delta.
func (c *Clock) Tick() Frame {
	now := c.src.Now()
	if !c.started {
		c.started = true
		c.last = now
		return Frame{Elapsed: c.elapsed}
	}
	d := now.Sub(c.last).Seconds()
	c.last = now
	return c.Step(d)
}

// Step advances by a caller-chosen delta, as the headless simulator does.
func (c *Clock) Step(delta float64) Frame {
	if delta < 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		delta = 0
	}
	if c.MaxDelta > 0 && delta > c.MaxDelta {
		delta = c.MaxDelta
	}
	scale := c.TimeScale
	if scale == 0 {
		scale = 1
	}
	delta *= scale
	c.elapsed += delta
	return Frame{Elapsed: c.elapsed, Delta: delta}
}

// Elapsed is the scaled time accumulated so far.
func (c *Clock) Elapsed() float64 { return c.elapsed }

// Reset zeroes elapsed time; the next Tick has a zero delta.
func (c *Clock) Reset() {
	c.elapsed = 0
	c.started = false
}
