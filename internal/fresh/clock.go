package fresh

// Clock abstracts acquisition of the current time so callers are
// deterministic in tests.
type Clock interface {
	Current() Timestamp
}

// SystemClock reads the host clock. The platform-specific read lives in
// clock_unix.go, clock_windows.go and clock_other.go.
type SystemClock struct{}

func (SystemClock) Current() Timestamp { return currentTime() }

// Seconds between 1601-01-01 and 1970-01-01.
const filetimeEpochOffset = 11644473600

// ticksPerSecond is the FILETIME resolution: 100ns ticks.
const ticksPerSecond = 10000000

// FromFiletime converts a Windows FILETIME tick count (100ns units since
// 1601-01-01) into a Timestamp.
func FromFiletime(ticks uint64) Timestamp {
	return Timestamp{
		Secs:  int64(ticks/ticksPerSecond) - filetimeEpochOffset,
		Nsecs: int32(ticks%ticksPerSecond) * 100,
	}
}

// FromTimespec converts a seconds/nanoseconds pair since the Unix epoch,
// carrying any nanosecond overflow or negative remainder into seconds.
func FromTimespec(sec, nsec int64) Timestamp {
	sec += nsec / 1e9
	nsec %= 1e9
	if nsec < 0 {
		nsec += 1e9
		sec--
	}
	return Timestamp{Secs: sec, Nsecs: int32(nsec)}
}
