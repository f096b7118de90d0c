//go:build linux || darwin || freebsd || netbsd || openbsd

package fs

import (
	"golang.org/x/sys/unix"

	"fresh-go/internal/fresh"
)

// statTimestamp reads the nanosecond modification time of path.
func statTimestamp(path string) (fresh.Timestamp, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fresh.Timestamp{}, err
	}
	sec, nsec := st.Mtim.Unix()
	return fresh.FromTimespec(sec, nsec), nil
}
