package binding

import "sync/atomic"

// Sequencer hands out strictly increasing sequence numbers for trace events.
// Implemented by Clock (production) and testutil.StepClock (tests).
type Sequencer interface {
	Next() int64
}

// Clock is a monotonic logical clock.
//
// Every trace event is stamped with Next(). Wall-clock time is never used,
// so replaying the same operations yields the same sequence numbers.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations), which
// lets several binders share one clock and produce a single total order.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes after start. Used when appending
// to an existing journal.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
