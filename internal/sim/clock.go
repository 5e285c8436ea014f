package sim

import "sync/atomic"

// Clock is the monotonic logical clock stamping committed operations.
//
// Every action record carries a strictly increasing seq from this clock.
// This ensures:
// - Deterministic ordering (no wall-clock race conditions)
// - Replay produces identical order
// - Log order matches commit order
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// In practice the engine allocates seqs under its commit lock, so calls
// are already serialized.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific sequence number.
// Used when reopening an existing log to resume after the last record.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
