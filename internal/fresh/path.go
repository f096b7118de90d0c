package fresh

// PathParts is the structural decomposition of a logical path:
//
//	<grist>root/dir/base.suffix(member)
type PathParts struct {
	Grist  string
	Root   string
	Dir    string
	Base   string
	Suffix string
	Member string
}

// Parent returns the parts naming the directory that contains p. The base,
// suffix and member are dropped.
func (p PathParts) Parent() PathParts {
	p.Base = ""
	p.Suffix = ""
	p.Member = ""
	return p
}

// PathSystem parses, builds and normalizes paths. Implementations must be
// deterministic: the same input always yields the same parts and key.
type PathSystem interface {
	// Key returns the normalized form of path used for cache lookups.
	Key(path string) string

	// Parse decomposes path into its structural parts.
	Parse(path string) PathParts

	// Build rebuilds a path string from parts.
	Build(parts PathParts) string
}
