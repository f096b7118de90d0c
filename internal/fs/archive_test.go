package fs

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"fresh-go/internal/fresh"
)

var (
	memberOne = time.Date(2024, 1, 2, 3, 4, 6, 0, time.UTC)
	memberTwo = time.Date(2024, 5, 6, 7, 8, 10, 0, time.UTC)
)

// arMember writes one ar member header followed by its padded data.
func arMember(buf *bytes.Buffer, name string, mtime int64, data []byte) {
	fmt.Fprintf(buf, "%-16s%-12d%-6d%-6d%-8s%-10d`\n", name, mtime, 0, 0, "100644", len(data))
	buf.Write(data)
	if len(data)%2 == 1 {
		buf.WriteByte('\n')
	}
}

func buildAr(t *testing.T, path string) {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString(arMagic)
	arMember(&buf, "/", 0, []byte{0, 0, 0, 0})
	arMember(&buf, "//", 0, []byte("a_very_long_member_name.o/\n"))
	arMember(&buf, "short.o/", memberOne.Unix(), []byte("abc"))
	arMember(&buf, "/0", memberTwo.Unix(), []byte("xy"))
	arMember(&buf, "det.o/", 0, []byte("z"))
	// BSD long name: the name is stored at the start of the data.
	arMember(&buf, "#1/12", memberOne.Unix(), []byte("bsd_member.o\x00\x00data"))

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeTar(t *testing.T, w io.Writer) {
	t.Helper()
	tw := tar.NewWriter(w)
	for _, m := range []struct {
		name  string
		mtime time.Time
	}{
		{name: "./one.txt", mtime: memberOne},
		{name: "dir/two.txt", mtime: memberTwo},
	} {
		data := []byte("data")
		if err := tw.WriteHeader(&tar.Header{Name: m.name, Mode: 0644, Size: int64(len(data)), ModTime: m.mtime}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
}

func buildTar(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	writeTar(t, f)
}

func buildTarGz(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gw := gzip.NewWriter(f)
	writeTar(t, gw)
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
}

func buildTarZst(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	writeTar(t, zw)
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func buildZip(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	for _, m := range []struct {
		name  string
		mtime time.Time
	}{
		{name: "one.txt", mtime: memberOne},
		{name: "dir/two.txt", mtime: memberTwo},
	} {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: m.name, Method: zip.Deflate, Modified: m.mtime})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte("data")); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestScanArchive_Ar(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "libfoo.a")
	buildAr(t, path)

	var got []entry
	if err := NewOSScanner().ScanArchive(path, collect(&got)); err != nil {
		t.Fatalf("ScanArchive() error = %v", err)
	}

	want := []entry{
		{path: path + "(short.o)", hasTime: true, time: fresh.FromTime(memberOne)},
		{path: path + "(a_very_long_member_name.o)", hasTime: true, time: fresh.FromTime(memberTwo)},
		{path: path + "(det.o)", hasTime: false},
		{path: path + "(bsd_member.o)", hasTime: true, time: fresh.FromTime(memberOne)},
	}
	if len(got) != len(want) {
		t.Fatalf("ScanArchive() reported %d members, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("member %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestScanArchive_Formats(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		build func(*testing.T, string)
	}{
		{name: "tar", file: "bundle.tar", build: buildTar},
		{name: "tar.gz", file: "bundle.tar.gz", build: buildTarGz},
		{name: "tgz", file: "bundle.tgz", build: buildTarGz},
		{name: "tar.zst", file: "bundle.tar.zst", build: buildTarZst},
		{name: "zip", file: "bundle.zip", build: buildZip},
		{name: "jar", file: "bundle.jar", build: buildZip},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), tt.file)
			tt.build(t, path)

			var got []entry
			if err := NewOSScanner().ScanArchive(path, collect(&got)); err != nil {
				t.Fatalf("ScanArchive() error = %v", err)
			}

			want := map[string]time.Time{
				path + "(one.txt)":     memberOne,
				path + "(dir/two.txt)": memberTwo,
			}
			if len(got) != len(want) {
				t.Fatalf("ScanArchive() reported %d members, want %d: %+v", len(got), len(want), got)
			}
			for _, e := range got {
				mtime, ok := want[e.path]
				if !ok {
					t.Errorf("unexpected member %q", e.path)
					continue
				}
				if !e.hasTime || e.time.Secs != mtime.Unix() {
					t.Errorf("%s = (%v, %v), want (true, %v)", e.path, e.hasTime, e.time, fresh.FromTime(mtime))
				}
			}
		})
	}
}

func TestScanArchiveFile_RemoteName(t *testing.T) {
	t.Parallel()
	local := filepath.Join(t.TempDir(), "download-123")
	buildTar(t, local)

	var got []entry
	if err := ScanArchiveFile(local, "s3://bucket/bundle.tar", collect(&got)); err != nil {
		t.Fatalf("ScanArchiveFile() error = %v", err)
	}
	if len(got) != 2 || got[0].path != "s3://bucket/bundle.tar(one.txt)" {
		t.Errorf("ScanArchiveFile() = %+v, want members named after the remote archive", got)
	}
}

func TestScanArchive_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	notAr := filepath.Join(dir, "fake.a")
	if err := os.WriteFile(notAr, []byte("plain text, not an archive"), 0644); err != nil {
		t.Fatal(err)
	}
	unknown := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(unknown, []byte("text"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		path        string
		unsupported bool
	}{
		{name: "bad ar magic", path: notAr, unsupported: true},
		{name: "unknown suffix", path: unknown, unsupported: true},
		{name: "missing file", path: filepath.Join(dir, "missing.zip")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []entry
			err := NewOSScanner().ScanArchive(tt.path, collect(&got))
			if err == nil {
				t.Fatal("ScanArchive() should fail")
			}
			if errors.Is(err, fresh.ErrUnsupportedArchive) != tt.unsupported {
				t.Errorf("errors.Is(ErrUnsupportedArchive) = %v, want %v (err = %v)", !tt.unsupported, tt.unsupported, err)
			}
			if len(got) != 0 {
				t.Errorf("reported %d members, want 0", len(got))
			}
		})
	}
}

func TestParseArHeader(t *testing.T) {
	var buf bytes.Buffer
	arMember(&buf, "x.o/", 1700000000, []byte("1234"))
	h, err := parseArHeader(buf.Bytes()[:arHeaderSize])
	if err != nil {
		t.Fatalf("parseArHeader() error = %v", err)
	}
	if h.name != "x.o/" || h.mtime != 1700000000 || h.size != 4 {
		t.Errorf("parseArHeader() = %+v", h)
	}

	bad := append([]byte(nil), buf.Bytes()[:arHeaderSize]...)
	copy(bad[58:], "xx")
	if _, err := parseArHeader(bad); err == nil {
		t.Error("parseArHeader() accepted a bad terminator")
	}
}

func TestIsArchive(t *testing.T) {
	for name, want := range map[string]bool{
		"libc.a":         true,
		"kernel32.lib":   true,
		"app.jar":        true,
		"src.tar.gz":     true,
		"src.tar.zst":    true,
		"main.c":         false,
		"archive.tar.xz": false,
	} {
		if got := IsArchive(name); got != want {
			t.Errorf("IsArchive(%q) = %v, want %v", name, got, want)
		}
	}
}
