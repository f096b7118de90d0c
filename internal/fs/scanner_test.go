package fs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"fresh-go/internal/fresh"
	"fresh-go/internal/pathsys"
)

// entry is one call to a fresh.EntryFunc.
type entry struct {
	path    string
	hasTime bool
	time    fresh.Timestamp
}

func collect(entries *[]entry) fresh.EntryFunc {
	return func(path string, hasTime bool, t fresh.Timestamp) {
		*entries = append(*entries, entry{path: path, hasTime: hasTime, time: t})
	}
}

func writeFile(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("setting times on %s: %v", path, err)
	}
}

func TestOSScanner_ScanDirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	aTime := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	bTime := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	writeFile(t, filepath.Join(dir, "a.txt"), aTime)
	writeFile(t, filepath.Join(dir, "b.txt"), bTime)
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	var got []entry
	if err := NewOSScanner().ScanDirectory(dir, collect(&got)); err != nil {
		t.Fatalf("ScanDirectory() error = %v", err)
	}

	byPath := make(map[string]entry)
	for _, e := range got {
		byPath[e.path] = e
	}
	if len(byPath) != 3 {
		t.Fatalf("ScanDirectory() reported %d entries, want 3: %v", len(byPath), got)
	}

	for name, want := range map[string]time.Time{"a.txt": aTime, "b.txt": bTime} {
		e, ok := byPath[filepath.Join(dir, name)]
		if !ok {
			t.Errorf("%s not reported", name)
			continue
		}
		if !e.hasTime || e.time != fresh.FromTime(want) {
			t.Errorf("%s reported as (%v, %v), want (true, %v)", name, e.hasTime, e.time, fresh.FromTime(want))
		}
	}
	if e := byPath[filepath.Join(dir, "sub")]; !e.hasTime {
		t.Error("directory entry reported without a time")
	}
}

func TestOSScanner_ScanDirectoryMissing(t *testing.T) {
	t.Parallel()

	var got []entry
	err := NewOSScanner().ScanDirectory(filepath.Join(t.TempDir(), "nope"), collect(&got))
	if err == nil {
		t.Fatal("ScanDirectory() of a missing directory should fail")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
	if len(got) != 0 {
		t.Errorf("reported %d entries, want 0", len(got))
	}
}

func TestOSScanner_ProbeTimestamp(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	fileTime := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)
	file := filepath.Join(dir, "a.txt")
	writeFile(t, file, fileTime)

	archiveTime := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	archive := filepath.Join(dir, "lib.a")
	writeFile(t, archive, archiveTime)

	s := NewOSScanner()

	got, err := s.ProbeTimestamp(file)
	if err != nil {
		t.Fatalf("ProbeTimestamp(file) error = %v", err)
	}
	// Filesystems differ in timestamp resolution; seconds always survive.
	if got.Secs != fileTime.Unix() {
		t.Errorf("ProbeTimestamp(file) = %v, want %v", got, fresh.FromTime(fileTime))
	}

	got, err = s.ProbeTimestamp(archive + "(x.o)")
	if err != nil {
		t.Fatalf("ProbeTimestamp(member) error = %v", err)
	}
	if got != fresh.FromTime(archiveTime) {
		t.Errorf("ProbeTimestamp(member) = %v, want archive time %v", got, fresh.FromTime(archiveTime))
	}

	if _, err := s.ProbeTimestamp(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("ProbeTimestamp(missing) should fail")
	}
	if _, err := s.ProbeTimestamp(filepath.Join(dir, "missing.a(x.o)")); err == nil {
		t.Error("ProbeTimestamp(member of missing archive) should fail")
	}
}

func TestMemberArchive(t *testing.T) {
	tests := []struct {
		path    string
		archive string
		ok      bool
	}{
		{path: "lib.a(x.o)", archive: "lib.a", ok: true},
		{path: "/d/lib(v2).a(x.o)", archive: "/d/lib(v2).a", ok: true},
		{path: "lib.a", ok: false},
		{path: "(x.o)", ok: false},
	}

	for _, tt := range tests {
		archive, ok := memberArchive(tt.path)
		if archive != tt.archive || ok != tt.ok {
			t.Errorf("memberArchive(%q) = (%q, %v), want (%q, %v)", tt.path, archive, ok, tt.archive, tt.ok)
		}
	}
}

func TestEntryPath(t *testing.T) {
	sep := string(os.PathSeparator)

	tests := []struct {
		dir, name string
		want      string
	}{
		{dir: "", name: "a.txt", want: "a.txt"},
		{dir: ".", name: "a.txt", want: "." + sep + "a.txt"},
		{dir: "sub" + sep + ".", name: "a.txt", want: "sub" + sep + "." + sep + "a.txt"},
		{dir: sep, name: "a.txt", want: sep + "a.txt"},
		{dir: sep + sep + "sub", name: "a.txt", want: sep + sep + "sub" + sep + "a.txt"},
	}

	for _, tt := range tests {
		if got := entryPath(tt.dir, tt.name); got != tt.want {
			t.Errorf("entryPath(%q, %q) = %q, want %q", tt.dir, tt.name, got, tt.want)
		}
	}
}

func newOSCache() *fresh.Cache {
	return fresh.NewCache(pathsys.NewUnix(), NewOSScanner(), nil)
}

func TestOSScanner_ResolveUncleanDirectories(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix path spellings")
	}
	t.Parallel()
	dir := t.TempDir()

	mtime := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "x"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "sub", "a.txt"), mtime)

	for _, path := range []string{
		dir + "/sub/a.txt",
		dir + "/sub/./a.txt",
		dir + "//sub/a.txt",
		dir + "/x/../sub/a.txt",
	} {
		c := newOSCache()
		if got := c.Resolve(path); got != fresh.FromTime(mtime) {
			t.Errorf("Resolve(%q) = %v, want %v", path, got, fresh.FromTime(mtime))
		}
		if got := c.Progress(path); got != fresh.ProgressFound {
			t.Errorf("Progress(%q) = %v, want FOUND", path, got)
		}
	}
}

func TestOSScanner_ResolveRelativeToWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	writeFile(t, filepath.Join(dir, "a.txt"), mtime)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	c := fresh.NewCache(pathsys.New(string(os.PathSeparator)), NewOSScanner(), nil)
	for _, path := range []string{"a.txt", "." + string(os.PathSeparator) + "a.txt"} {
		if got := c.Resolve(path); got != fresh.FromTime(mtime) {
			t.Errorf("Resolve(%q) = %v, want %v", path, got, fresh.FromTime(mtime))
		}
	}
	if got := c.Stats().Probes; got != 0 {
		t.Errorf("probes = %d, want 0", got)
	}
}

func TestOSScanner_Symlinks(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	targetTime := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	target := filepath.Join(dir, "real.h")
	writeFile(t, target, targetTime)

	link := filepath.Join(dir, "link.h")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	dangling := filepath.Join(dir, "dangling.h")
	if err := os.Symlink(filepath.Join(dir, "gone.h"), dangling); err != nil {
		t.Fatal(err)
	}

	var got []entry
	if err := NewOSScanner().ScanDirectory(dir, collect(&got)); err != nil {
		t.Fatalf("ScanDirectory() error = %v", err)
	}
	for _, e := range got {
		if (e.path == link || e.path == dangling) && e.hasTime {
			t.Errorf("symlink %s reported with time %v, want untimed", e.path, e.time)
		}
	}

	c := fresh.NewCache(pathsys.New(string(os.PathSeparator)), NewOSScanner(), nil)
	if got := c.Resolve(link); got != fresh.FromTime(targetTime) {
		t.Errorf("Resolve(link) = %v, want target time %v", got, fresh.FromTime(targetTime))
	}
	if got := c.Resolve(dangling); !got.IsEmpty() {
		t.Errorf("Resolve(dangling) = %v, want empty", got)
	}
	if got := c.Progress(dangling); got != fresh.ProgressMissing {
		t.Errorf("Progress(dangling) = %v, want MISSING", got)
	}
}
