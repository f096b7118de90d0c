package fs

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"fresh-go/internal/fresh"
)

// ArchiveExtensions lists the archive suffixes ScanArchiveFile can enumerate.
func ArchiveExtensions() []string {
	return []string{".a", ".lib", ".zip", ".jar", ".tar", ".tar.gz", ".tgz", ".tar.zst"}
}

// IsArchive returns true if name has a supported archive suffix.
func IsArchive(name string) bool {
	for _, ext := range ArchiveExtensions() {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// ScanArchiveFile reads the archive stored at file and reports each member
// as "name(member)". The format is chosen from the suffix of name, so a
// local copy of a remote archive can be scanned under its remote name.
func ScanArchiveFile(file, name string, enter fresh.EntryFunc) error {
	member := func(m string, mtime fresh.Timestamp) {
		enter(name+"("+m+")", !mtime.IsEmpty(), mtime)
	}

	switch {
	case strings.HasSuffix(name, ".a"), strings.HasSuffix(name, ".lib"):
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer f.Close()
		return scanAr(f, member)

	case strings.HasSuffix(name, ".zip"), strings.HasSuffix(name, ".jar"):
		return scanZip(file, member)

	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer f.Close()
		gzr, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzr.Close()
		return scanTar(gzr, member)

	case strings.HasSuffix(name, ".tar.zst"):
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer f.Close()
		zr, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer zr.Close()
		return scanTar(zr, member)

	case strings.HasSuffix(name, ".tar"):
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer f.Close()
		return scanTar(f, member)

	default:
		return fmt.Errorf("%w: %s", fresh.ErrUnsupportedArchive, name)
	}
}

func scanZip(file string, member func(string, fresh.Timestamp)) error {
	r, err := zip.OpenReader(file)
	if err != nil {
		return fmt.Errorf("failed to open zip archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		var mtime fresh.Timestamp
		if !f.Modified.IsZero() {
			mtime = fresh.FromTime(f.Modified)
		}
		member(f.Name, mtime)
	}
	return nil
}

func scanTar(r io.Reader, member func(string, fresh.Timestamp)) error {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}
		var mtime fresh.Timestamp
		if !header.ModTime.IsZero() {
			mtime = fresh.FromTime(header.ModTime)
		}
		member(strings.TrimPrefix(header.Name, "./"), mtime)
	}
}

const (
	arMagic      = "!<arch>\n"
	arHeaderSize = 60
	arFileMagic  = "`\n"
)

// arHeader is one 60-byte member header of a Unix ar archive.
type arHeader struct {
	name  string
	mtime int64
	size  int64
}

func parseArHeader(buf []byte) (arHeader, error) {
	if string(buf[58:60]) != arFileMagic {
		return arHeader{}, errors.New("bad ar member header")
	}
	field := func(lo, hi int) string { return strings.TrimSpace(string(buf[lo:hi])) }

	var h arHeader
	h.name = field(0, 16)
	if s := field(16, 28); s != "" {
		mtime, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return arHeader{}, fmt.Errorf("bad ar member mtime %q: %w", s, err)
		}
		h.mtime = mtime
	}
	size, err := strconv.ParseInt(field(48, 58), 10, 64)
	if err != nil || size < 0 {
		return arHeader{}, fmt.Errorf("bad ar member size %q", field(48, 58))
	}
	h.size = size
	return h, nil
}

// scanAr enumerates a Unix ar archive, handling both the GNU ("name/",
// "//" long-name table, "/offset") and BSD ("#1/len") name conventions.
// Symbol tables are skipped. Deterministic archives store a zero mtime,
// which is reported as "no time".
func scanAr(r io.Reader, member func(string, fresh.Timestamp)) error {
	br := bufio.NewReader(r)

	magic := make([]byte, len(arMagic))
	if _, err := io.ReadFull(br, magic); err != nil || string(magic) != arMagic {
		return fmt.Errorf("%w: missing ar magic", fresh.ErrUnsupportedArchive)
	}

	var longNames []byte
	buf := make([]byte, arHeaderSize)
	for {
		if _, err := io.ReadFull(br, buf); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("failed to read ar header: %w", err)
		}
		h, err := parseArHeader(buf)
		if err != nil {
			return err
		}

		body := h.size
		name := h.name
		switch {
		case name == "/" || name == "/SYM64/" || strings.HasPrefix(name, "__.SYMDEF"):
			name = ""

		case name == "//":
			longNames = make([]byte, h.size)
			if _, err := io.ReadFull(br, longNames); err != nil {
				return fmt.Errorf("failed to read ar name table: %w", err)
			}
			body = 0
			name = ""

		case strings.HasPrefix(name, "#1/"):
			n, err := strconv.Atoi(name[3:])
			if err != nil || n < 0 || int64(n) > h.size {
				return fmt.Errorf("bad BSD ar name %q", name)
			}
			raw := make([]byte, n)
			if _, err := io.ReadFull(br, raw); err != nil {
				return fmt.Errorf("failed to read ar member name: %w", err)
			}
			name = string(bytes.TrimRight(raw, "\x00"))
			body -= int64(n)

		case strings.HasPrefix(name, "/"):
			off, err := strconv.Atoi(name[1:])
			if err != nil || off < 0 || off >= len(longNames) {
				return fmt.Errorf("bad GNU ar name reference %q", name)
			}
			end := bytes.IndexByte(longNames[off:], '\n')
			if end < 0 {
				end = len(longNames) - off
			}
			name = strings.TrimSuffix(string(longNames[off:off+end]), "/")

		default:
			name = strings.TrimSuffix(name, "/")
		}

		if name != "" {
			var mtime fresh.Timestamp
			if h.mtime != 0 {
				mtime = fresh.NewTimestamp(h.mtime, 0)
			}
			member(name, mtime)
		}

		// Member data is padded to an even length.
		if h.size%2 == 1 {
			body++
		}
		if _, err := br.Discard(int(body)); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("failed to skip ar member: %w", err)
		}
	}
}
