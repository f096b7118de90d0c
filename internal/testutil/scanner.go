package testutil

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"fresh-go/internal/fresh"
)

// MockEntry is one file, directory or archive member in the mock scanner.
type MockEntry struct {
	Time fresh.Timestamp
	// Untimed entries are reported by scans without a time and must be
	// probed.
	Untimed bool
	// Unreadable entries are reported by scans but fail to probe.
	Unreadable bool
}

// MockScanner is an in-memory fresh.Scanner that counts its calls.
// Paths use '/' separators; the directory "" is the current directory.
type MockScanner struct {
	entries  map[string]*MockEntry
	archives map[string]map[string]*MockEntry
	failDirs map[string]error

	DirectoryScans map[string]int
	ArchiveScans   map[string]int
	Probes         map[string]int
}

// NewMockScanner creates an empty mock scanner.
func NewMockScanner() *MockScanner {
	return &MockScanner{
		entries:        make(map[string]*MockEntry),
		archives:       make(map[string]map[string]*MockEntry),
		failDirs:       make(map[string]error),
		DirectoryScans: make(map[string]int),
		ArchiveScans:   make(map[string]int),
		Probes:         make(map[string]int),
	}
}

// AddFile adds a file with the given modification time.
func (m *MockScanner) AddFile(p string, t fresh.Timestamp) *MockEntry {
	e := &MockEntry{Time: t}
	m.entries[p] = e
	return e
}

// AddArchive adds an archive file; add its members with AddMember.
func (m *MockScanner) AddArchive(p string, t fresh.Timestamp) {
	m.AddFile(p, t)
	if _, ok := m.archives[p]; !ok {
		m.archives[p] = make(map[string]*MockEntry)
	}
}

// AddMember adds a member to an archive added with AddArchive. A member with
// an empty time is reported without one, like a deterministic ar archive.
func (m *MockScanner) AddMember(archive, member string, t fresh.Timestamp) *MockEntry {
	members, ok := m.archives[archive]
	if !ok {
		panic(fmt.Sprintf("archive %s not added", archive))
	}
	e := &MockEntry{Time: t, Untimed: t.IsEmpty()}
	members[member] = e
	return e
}

// FailDirectory makes scans of dir report err after listing its entries.
func (m *MockScanner) FailDirectory(dir string, err error) {
	m.failDirs[dir] = err
}

// TotalScans returns the number of directory and archive scans performed.
func (m *MockScanner) TotalScans() int {
	n := 0
	for _, c := range m.DirectoryScans {
		n += c
	}
	for _, c := range m.ArchiveScans {
		n += c
	}
	return n
}

// TotalProbes returns the number of timestamp probes performed.
func (m *MockScanner) TotalProbes() int {
	n := 0
	for _, c := range m.Probes {
		n += c
	}
	return n
}

func parentDir(p string) string {
	d := path.Dir(p)
	if d == "." {
		return ""
	}
	return d
}

func (m *MockScanner) ScanDirectory(dir string, enter fresh.EntryFunc) error {
	m.DirectoryScans[dir]++

	var names []string
	for p := range m.entries {
		if parentDir(p) == dir && p != dir {
			names = append(names, p)
		}
	}
	sort.Strings(names)
	for _, p := range names {
		e := m.entries[p]
		if e.Untimed {
			enter(p, false, fresh.Timestamp{})
		} else {
			enter(p, true, e.Time)
		}
	}
	return m.failDirs[dir]
}

func (m *MockScanner) ScanArchive(archive string, enter fresh.EntryFunc) error {
	m.ArchiveScans[archive]++

	members, ok := m.archives[archive]
	if !ok {
		return fmt.Errorf("%w: %s", fresh.ErrUnsupportedArchive, archive)
	}
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e := members[name]
		enter(archive+"("+name+")", !e.Untimed, e.Time)
	}
	return nil
}

func (m *MockScanner) ProbeTimestamp(p string) (fresh.Timestamp, error) {
	m.Probes[p]++

	if e, ok := m.entries[p]; ok {
		if e.Unreadable {
			return fresh.Timestamp{}, fmt.Errorf("permission denied: %s", p)
		}
		return e.Time, nil
	}
	if strings.HasSuffix(p, ")") {
		if open := strings.LastIndexByte(p, '('); open > 0 {
			archive, member := p[:open], p[open+1:len(p)-1]
			if e, ok := m.archives[archive][member]; ok && !e.Unreadable {
				if a, ok := m.entries[archive]; ok {
					return a.Time, nil
				}
			}
		}
	}
	return fresh.Timestamp{}, fmt.Errorf("file not found: %s", p)
}

// Compile-time check
var _ fresh.Scanner = (*MockScanner)(nil)
