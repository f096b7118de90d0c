package fs

import (
	"fmt"
	"os"
	"strings"

	"fresh-go/internal/fresh"
)

// OSScanner is the real filesystem implementation of fresh.Scanner.
type OSScanner struct{}

// NewOSScanner creates a scanner that reads the local filesystem.
func NewOSScanner() *OSScanner {
	return &OSScanner{}
}

// ScanDirectory reports every immediate entry of dir with its modification
// time. Entries are named by appending to dir as given, without cleaning it,
// so they match the keys of the paths that asked for the scan. Symlinks and
// entries whose metadata can not be read are reported without a time so they
// are probed, and the probe follows links.
func (s *OSScanner) ScanDirectory(dir string, enter fresh.EntryFunc) error {
	readDir := dir
	if readDir == "" {
		readDir = "."
	}

	// ReadDir returns the entries it read before failing.
	entries, err := os.ReadDir(readDir)
	for _, entry := range entries {
		path := entryPath(dir, entry.Name())
		if entry.Type()&os.ModeSymlink != 0 {
			enter(path, false, fresh.Timestamp{})
			continue
		}
		info, infoErr := entry.Info()
		if infoErr != nil {
			enter(path, false, fresh.Timestamp{})
			continue
		}
		enter(path, true, fresh.FromTime(info.ModTime()))
	}
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", readDir, err)
	}
	return nil
}

// entryPath joins dir and name with one separator.
func entryPath(dir, name string) string {
	if dir == "" {
		return name
	}
	if os.IsPathSeparator(dir[len(dir)-1]) {
		return dir + name
	}
	return dir + string(os.PathSeparator) + name
}

// ScanArchive reports every member of the archive at path.
func (s *OSScanner) ScanArchive(path string, enter fresh.EntryFunc) error {
	return ScanArchiveFile(path, path, enter)
}

// ProbeTimestamp returns the modification time of path. A path naming an
// archive member that is not itself a file is timed by its archive.
func (s *OSScanner) ProbeTimestamp(path string) (fresh.Timestamp, error) {
	t, err := statTimestamp(path)
	if err == nil {
		return t, nil
	}
	if archive, ok := memberArchive(path); ok {
		if t, aerr := statTimestamp(archive); aerr == nil {
			return t, nil
		}
	}
	return fresh.Timestamp{}, fmt.Errorf("probing %s: %w", path, err)
}

// memberArchive returns the archive part of "archive(member)".
func memberArchive(path string) (string, bool) {
	if !strings.HasSuffix(path, ")") {
		return "", false
	}
	open := strings.LastIndexByte(path, '(')
	if open <= 0 {
		return "", false
	}
	return path[:open], true
}

// Compile-time check that OSScanner implements fresh.Scanner interface
var _ fresh.Scanner = (*OSScanner)(nil)
