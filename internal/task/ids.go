package task

import (
	"math/rand/v2"
	"time"
)

// IDSource hands out task IDs.
type IDSource interface {
	NextID() int64
}

// ClockIDs derives IDs from the millisecond clock times 1000 plus a random
// tiebreaker, forced strictly above the previous ID. Values stay below 2^53
// so they survive a round trip through JSON numbers.
type ClockIDs struct {
	now  func() time.Time
	last int64
}

func NewClockIDs(now func() time.Time) *ClockIDs {
	if now == nil {
		now = time.Now
	}
	return &ClockIDs{now: now}
}

func (c *ClockIDs) NextID() int64 {
	id := c.now().UnixMilli()*1000 + rand.Int64N(1000)
	if id <= c.last {
		id = c.last + 1
	}
	c.last = id
	return id
}

// CounterIDs issues 1, 2, 3, ...
type CounterIDs struct {
	n int64
}

func (c *CounterIDs) NextID() int64 {
	c.n++
	return c.n
}
