// Package pathsys parses and builds the logical paths used by the timestamp
// cache:
//
//	<grist>dir/base.suffix(member)
//
// The grist is an opaque decoration that distinguishes otherwise identical
// target names. The member names an entry inside an archive.
package pathsys

import (
	"strings"

	"golang.org/x/text/cases"

	"fresh-go/internal/fresh"
)

// PathSystem implements fresh.PathSystem for one separator convention.
type PathSystem struct {
	sep      byte
	altSep   byte // also accepted as a separator; 0 when none
	caseFold bool
	folder   cases.Caser
}

var _ fresh.PathSystem = (*PathSystem)(nil)

// Option configures a PathSystem.
type Option func(*PathSystem)

// WithCaseFold makes keys case-insensitive, for filesystems that ignore case.
func WithCaseFold(enabled bool) Option {
	return func(p *PathSystem) { p.caseFold = enabled }
}

// NewUnix returns a PathSystem using '/' separators.
func NewUnix(opts ...Option) *PathSystem {
	return newPathSystem('/', 0, opts)
}

// NewWindows returns a PathSystem that accepts both '\' and '/' and builds
// paths with '\'.
func NewWindows(opts ...Option) *PathSystem {
	return newPathSystem('\\', '/', opts)
}

// New returns the PathSystem for a separator name: "/" or "unix" selects
// NewUnix, "\\" or "windows" selects NewWindows.
func New(separator string, opts ...Option) *PathSystem {
	switch separator {
	case "\\", "windows":
		return NewWindows(opts...)
	default:
		return NewUnix(opts...)
	}
}

func newPathSystem(sep, altSep byte, opts []Option) *PathSystem {
	p := &PathSystem{sep: sep, altSep: altSep, folder: cases.Fold()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PathSystem) isSep(c byte) bool {
	return c == p.sep || (p.altSep != 0 && c == p.altSep)
}

// Key returns the normalized lookup form of path. Alternate separators are
// rewritten to the primary one, and case is folded when enabled.
func (p *PathSystem) Key(path string) string {
	if p.altSep != 0 {
		path = strings.ReplaceAll(path, string(p.altSep), string(p.sep))
	}
	if p.caseFold {
		path = p.folder.String(path)
	}
	return path
}

// Parse splits path into grist, directory, base, suffix and member.
func (p *PathSystem) Parse(path string) fresh.PathParts {
	var parts fresh.PathParts

	// <grist>
	if strings.HasPrefix(path, "<") {
		if end := strings.IndexByte(path, '>'); end >= 0 {
			parts.Grist = path[:end+1]
			path = path[end+1:]
		}
	}

	// (member)
	if strings.HasSuffix(path, ")") {
		if open := strings.LastIndexByte(path, '('); open >= 0 {
			parts.Member = path[open+1 : len(path)-1]
			path = path[:open]
		}
	}

	// dir/base
	if i := p.lastSep(path); i >= 0 {
		parts.Dir = path[:i]
		// "/file" and "C:\file" keep the root, separator included, as
		// their directory.
		if i == 0 || (p.altSep != 0 && i == 2 && path[1] == ':') {
			parts.Dir = path[:i+1]
		}
		path = path[i+1:]
	}

	// base.suffix
	if dot := strings.LastIndexByte(path, '.'); dot > 0 {
		parts.Suffix = path[dot:]
		path = path[:dot]
	}
	parts.Base = path

	return parts
}

func (p *PathSystem) lastSep(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if p.isSep(s[i]) {
			return i
		}
	}
	return -1
}

// isRooted reports whether dir starts at a filesystem root, including
// Windows drive roots such as "C:".
func (p *PathSystem) isRooted(dir string) bool {
	if dir == "" {
		return false
	}
	if p.isSep(dir[0]) {
		return true
	}
	return p.altSep != 0 && len(dir) >= 2 && dir[1] == ':'
}

// Build rebuilds a path string from parts.
func (p *PathSystem) Build(parts fresh.PathParts) string {
	var b strings.Builder

	if g := parts.Grist; g != "" {
		if g[0] != '<' {
			b.WriteByte('<')
		}
		b.WriteString(g)
		if g[len(g)-1] != '>' {
			b.WriteByte('>')
		}
	}

	if parts.Root != "" && !p.isRooted(parts.Dir) && parts.Root != "." {
		b.WriteString(parts.Root)
		if !p.isSep(parts.Root[len(parts.Root)-1]) {
			b.WriteByte(p.sep)
		}
	}

	if parts.Dir != "" {
		b.WriteString(parts.Dir)
	}

	if parts.Base != "" || parts.Suffix != "" {
		// The root directory already ends in a separator.
		if parts.Dir != "" && !p.isSep(parts.Dir[len(parts.Dir)-1]) {
			b.WriteByte(p.sep)
		}
		b.WriteString(parts.Base)
		b.WriteString(parts.Suffix)
	}

	if parts.Member != "" {
		b.WriteByte('(')
		b.WriteString(parts.Member)
		b.WriteByte(')')
	}

	return b.String()
}
