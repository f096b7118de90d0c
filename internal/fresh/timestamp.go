package fresh

import (
	"fmt"
	"time"
)

// Timestamp is a point in time with second and nanosecond resolution.
// The zero value means "unknown or absent": the epoch itself is never used
// as a real file time.
type Timestamp struct {
	Secs  int64
	Nsecs int32
}

// NewTimestamp creates a Timestamp from its components.
func NewTimestamp(secs int64, nsecs int32) Timestamp {
	return Timestamp{Secs: secs, Nsecs: nsecs}
}

// FromTime converts a time.Time into a Timestamp.
func FromTime(t time.Time) Timestamp {
	return Timestamp{Secs: t.Unix(), Nsecs: int32(t.Nanosecond())}
}

// Clear resets the timestamp to the empty value.
func (t *Timestamp) Clear() {
	t.Secs = 0
	t.Nsecs = 0
}

// IsEmpty reports whether t is the empty timestamp.
func (t Timestamp) IsEmpty() bool {
	return t.Secs == 0 && t.Nsecs == 0
}

// Time returns t as a UTC time.Time.
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Secs, int64(t.Nsecs)).UTC()
}

// Compare returns a negative number when a is before b, zero when they are
// equal, and a positive number when a is after b.
func Compare(a, b Timestamp) int {
	switch {
	case a.Secs < b.Secs:
		return -1
	case a.Secs > b.Secs:
		return 1
	case a.Nsecs < b.Nsecs:
		return -1
	case a.Nsecs > b.Nsecs:
		return 1
	default:
		return 0
	}
}

// Max returns the later of a and b.
func Max(a, b Timestamp) Timestamp {
	if Compare(a, b) > 0 {
		return a
	}
	return b
}

// Before reports whether t is earlier than u.
func (t Timestamp) Before(u Timestamp) bool { return Compare(t, u) < 0 }

// After reports whether t is later than u.
func (t Timestamp) After(u Timestamp) bool { return Compare(t, u) > 0 }

// Equal reports whether t and u are the same instant.
func (t Timestamp) Equal(u Timestamp) bool { return Compare(t, u) == 0 }

// Format renders t as "YYYY-MM-DD HH:MM:SS.nnnnnnnnn +0000" in UTC.
func (t Timestamp) Format() string {
	u := time.Unix(t.Secs, 0).UTC()
	return fmt.Sprintf("%s.%09d +0000", u.Format("2006-01-02 15:04:05"), t.Nsecs)
}

// String returns Format().
func (t Timestamp) String() string {
	return t.Format()
}
