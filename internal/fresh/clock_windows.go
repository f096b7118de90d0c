//go:build windows

package fresh

import "golang.org/x/sys/windows"

// GetSystemTimeAsFileTime resolution is about 15ms on older Windows
// releases and under a millisecond on newer ones.
func currentTime() Timestamp {
	var ft windows.Filetime
	windows.GetSystemTimeAsFileTime(&ft)
	return FromFiletime(uint64(ft.HighDateTime)<<32 | uint64(ft.LowDateTime))
}
