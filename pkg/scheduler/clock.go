package scheduler

import (
	"time"

	"k8s.io/utils/clock"
	testingclock "k8s.io/utils/clock/testing"
)

// Ensure TickClock implements [clock.PassiveClock].
var _ clock.PassiveClock = (*TickClock)(nil)

// TickClock is a simulated clock that moves forward by a fixed tick every time
// it is read, so each scheduler iteration observes exactly one tick.
type TickClock struct {
	fake *testingclock.FakePassiveClock
	tick time.Duration
}

// NewTickClock creates a clock positioned at start.
func NewTickClock(start time.Time, tick time.Duration) *TickClock {
	return &TickClock{
		fake: testingclock.NewFakePassiveClock(start),
		tick: tick,
	}
}

// Now advances the clock by one tick and returns the new time.
func (c *TickClock) Now() time.Time {
	t := c.fake.Now().Add(c.tick)
	c.fake.SetTime(t)
	return t
}

// Since returns the time elapsed between ts and the current position, without
// advancing the clock.
func (c *TickClock) Since(ts time.Time) time.Duration {
	return c.fake.Now().Sub(ts)
}

// Current returns the current position without advancing the clock.
func (c *TickClock) Current() time.Time {
	return c.fake.Now()
}

// Tick returns the step applied by Now.
func (c *TickClock) Tick() time.Duration {
	return c.tick
}

// Jump moves the clock so that the next call to Now returns t. Jumps backwards
// are ignored.
func (c *TickClock) Jump(t time.Time) {
	target := t.Add(-c.tick)
	if target.After(c.fake.Now()) {
		c.fake.SetTime(target)
	}
}
