package testutil

import (
	"sync"
	"time"

	"fresh-go/internal/fresh"
)

// StubClock returns a fixed time. Safe for concurrent use.
type StubClock struct {
	mu  sync.Mutex
	now fresh.Timestamp
}

// NewStubClock creates a StubClock set to the given time.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: fresh.FromTime(t)}
}

// FixedClock returns a StubClock set to 2024-01-15 10:30:00 UTC.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
}

func (c *StubClock) Current() fresh.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = fresh.FromTime(c.now.Time().Add(d))
}

// Stamp returns the timestamp for a UTC wall-clock time, for readable test
// fixtures.
func Stamp(year int, month time.Month, day, hour, min, sec int) fresh.Timestamp {
	return fresh.FromTime(time.Date(year, month, day, hour, min, sec, 0, time.UTC))
}
