// Package loop provides the frame clock and the cancellable animation loop.
package loop

import "time"

// NowFunc returns the current time. Tests substitute a fake.
type NowFunc func() time.Time

// Clock measures elapsed time since it was created.
type Clock struct {
	now   NowFunc
	start time.Time
}

// NewClock starts a clock. A nil now uses time.Now.
func NewClock(now NowFunc) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now, start: now()}
}

// Now reads the clock's time source.
func (c *Clock) Now() time.Time {
	return c.now()
}

// Elapsed returns seconds since the clock started.
func (c *Clock) Elapsed() float64 {
	return c.now().Sub(c.start).Seconds()
}

// Delta returns the seconds between then and now, never negative.
func Delta(then, now time.Time) float64 {
	ms := float64(now.Sub(then)) / float64(time.Millisecond)
	if ms < 0 {
		return 0
	}
	return ms * 0.001
}
