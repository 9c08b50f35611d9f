package testutil

import "sync"

// StepClock is a resettable logical clock that stamps trace events in tests.
// It satisfies binding.Sequencer.
//
// Reset lets one clock drive several runs of a scenario with identical
// sequence numbers, which keeps golden traces byte-stable.
type StepClock struct {
	mu  sync.Mutex
	seq int64
}

// NewStepClock returns a clock whose first Next is 1.
func NewStepClock() *StepClock {
	return &StepClock{}
}

// Next advances the clock.
func (c *StepClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the last value handed out, or 0.
func (c *StepClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds to 0.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
