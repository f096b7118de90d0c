package fresh

// Stats counts the work a Cache has done since it was created or last shut down.
type Stats struct {
	DirectoryScans int
	ArchiveScans   int
	Probes         int
	ScanErrors     int
	ProbeFailures  int
	Bindings       int
}

// Cache answers "when was this path last modified" for a single build run.
// It scans each directory and archive at most once and remembers every
// entry it sees, so repeated queries are map lookups.
//
// A Cache is not safe for concurrent use; callers that evaluate targets in
// parallel must serialize access.
type Cache struct {
	paths   PathSystem
	scanner Scanner
	logger  Logger
	trace   bool

	store *BindingStore
	stats Stats
}

// Option configures a Cache.
type Option func(*Cache)

// WithTrace logs every entry folded in by a scan at debug level.
func WithTrace(enabled bool) Option {
	return func(c *Cache) { c.trace = enabled }
}

// NewCache creates an empty Cache backed by the given collaborators.
func NewCache(paths PathSystem, scanner Scanner, logger Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = NewNopLogger()
	}
	c := &Cache{
		paths:   paths,
		scanner: scanner,
		logger:  logger,
		store:   NewBindingStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// bind returns the binding for an already-normalized key, initializing it
// on first sight.
func (c *Cache) bind(key string) *Binding {
	b, existing := c.store.FindOrInsert(key)
	if !existing {
		*b = newBinding(key)
	}
	return b
}

// Resolve returns the modification time of path, or the empty Timestamp if
// the path does not exist or its time can not be determined.
func (c *Cache) Resolve(path string) Timestamp {
	key := c.paths.Key(path)
	b := c.bind(key)

	if b.Progress == ProgressInit {
		b.Progress = ProgressNoEntry
		c.discover(key)
	}

	if b.Progress == ProgressSpotted {
		c.stats.Probes++
		t, err := c.scanner.ProbeTimestamp(b.Name)
		if err != nil || t.IsEmpty() {
			c.stats.ProbeFailures++
			c.logger.Debug("timestamp probe failed", "path", b.Name, "error", err)
			b.Progress = ProgressMissing
			b.Time.Clear()
		} else {
			b.Progress = ProgressFound
			b.Time = t
		}
	}

	if b.Progress == ProgressFound {
		return b.Time
	}
	return Timestamp{}
}

// discover scans the directory containing key and, for archive members, the
// containing archive, unless they were scanned earlier in the run.
func (c *Cache) discover(key string) {
	parts := c.paths.Parse(key)

	dir := parts.Parent()
	dir.Grist = ""
	dirName := c.paths.Build(dir)
	if db := c.bind(c.paths.Key(dirName)); !db.Scanned {
		c.stats.DirectoryScans++
		if err := c.scanner.ScanDirectory(dirName, c.enter); err != nil {
			c.stats.ScanErrors++
			c.logger.Debug("directory scan failed", "dir", dirName, "error", err)
		}
		db.Scanned = true
	}

	if parts.Member == "" {
		return
	}

	archive := parts
	archive.Grist = ""
	archive.Member = ""
	archiveName := c.paths.Build(archive)
	if ab := c.bind(c.paths.Key(archiveName)); !ab.Scanned {
		c.stats.ArchiveScans++
		if err := c.scanner.ScanArchive(archiveName, c.enter); err != nil {
			c.stats.ScanErrors++
			c.logger.Debug("archive scan failed", "archive", archiveName, "error", err)
		}
		ab.Scanned = true
	}
}

// enter folds one scanned entry into the store. It is handed to the
// scanner as an EntryFunc.
func (c *Cache) enter(path string, hasTime bool, t Timestamp) {
	key := c.paths.Key(path)
	b, existing := c.store.FindOrInsert(key)
	if !existing {
		*b = newBinding(key)
	}

	b.Time = t
	if hasTime {
		b.Progress = ProgressFound
	} else {
		b.Progress = ProgressSpotted
	}

	if c.trace {
		c.logger.Debug("time", "path", key, "progress", b.Progress.String())
	}
}

// ResolveAll resolves each path in order.
func (c *Cache) ResolveAll(paths []string) []Timestamp {
	out := make([]Timestamp, len(paths))
	for i, p := range paths {
		out[i] = c.Resolve(p)
	}
	return out
}

// Newest returns the latest timestamp among paths. Absent paths contribute
// the empty Timestamp.
func (c *Cache) Newest(paths []string) Timestamp {
	var newest Timestamp
	for _, p := range paths {
		newest = Max(newest, c.Resolve(p))
	}
	return newest
}

// Progress reports the discovery state of path without doing any work.
func (c *Cache) Progress(path string) Progress {
	if b, ok := c.store.Lookup(c.paths.Key(path)); ok {
		return b.Progress
	}
	return ProgressInit
}

// Stats returns the work counters.
func (c *Cache) Stats() Stats {
	s := c.stats
	s.Bindings = c.store.Len()
	return s
}

// Bindings returns a copy of every binding in key order.
func (c *Cache) Bindings() []Binding {
	out := make([]Binding, 0, c.store.Len())
	c.store.ForEach(func(key string, b *Binding) {
		c.store.check(key, b)
		out = append(out, *b)
	})
	return out
}

// Shutdown releases every binding. The cache can be used again afterwards
// and behaves as if newly created. It must not be called while a Resolve is
// in progress.
func (c *Cache) Shutdown() {
	if c.store.Len() == 0 {
		c.stats = Stats{}
		return
	}
	n := 0
	c.store.ForEach(func(key string, b *Binding) {
		c.store.check(key, b)
		b.Name = ""
		n++
	})
	c.store.Clear()
	c.stats = Stats{}
	c.logger.Debug("timestamp cache released", "bindings", n)
}
