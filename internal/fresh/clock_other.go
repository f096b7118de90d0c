//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows

package fresh

import "time"

func currentTime() Timestamp { return FromTime(time.Now()) }
