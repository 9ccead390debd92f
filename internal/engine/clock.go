package engine

import "sync/atomic"

// Clock numbers ticks. Each tick is stamped with the next value, so log
// lines from consecutive ticks order without wall-clock time.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first tick is 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next tick number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last tick number handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
