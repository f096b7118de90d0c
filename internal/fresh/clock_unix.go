//go:build linux || darwin || freebsd || netbsd || openbsd

package fresh

import (
	"time"

	"golang.org/x/sys/unix"
)

func currentTime() Timestamp {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_REALTIME, &ts); err != nil {
		return FromTime(time.Now())
	}
	sec, nsec := ts.Unix()
	return FromTimespec(sec, nsec)
}
