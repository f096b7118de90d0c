//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package fs

import (
	"os"

	"fresh-go/internal/fresh"
)

// statTimestamp reads the modification time of path.
func statTimestamp(path string) (fresh.Timestamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fresh.Timestamp{}, err
	}
	return fresh.FromTime(info.ModTime()), nil
}
