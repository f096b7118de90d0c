package fresh

import "errors"

// ErrUnsupportedArchive is returned by scanners for archive formats they
// cannot enumerate.
var ErrUnsupportedArchive = errors.New("unsupported archive format")

// EntryFunc receives one entry discovered by a directory or archive scan.
// hasTime reports whether t carries the entry's modification time; when it
// is false the entry exists but must be probed for its time.
type EntryFunc func(path string, hasTime bool, t Timestamp)

// Scanner enumerates directories and archives and probes single files.
type Scanner interface {
	// ScanDirectory calls enter once for each immediate entry of dir.
	// An empty dir names the current directory.
	ScanDirectory(dir string, enter EntryFunc) error

	// ScanArchive calls enter once for each member of the archive, with
	// paths of the form "archive(member)".
	ScanArchive(archive string, enter EntryFunc) error

	// ProbeTimestamp returns the modification time of a single path.
	ProbeTimestamp(path string) (Timestamp, error)
}
