package app

import (
	"context"
	"fmt"
	"os"

	"fresh-go/internal/config"
	"fresh-go/internal/database"
	"fresh-go/internal/fresh"
	"fresh-go/internal/fs"
	"fresh-go/internal/pathsys"
	"fresh-go/internal/remote"
)

// FreshApp is the application layer between the CLI and the timestamp cache.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw path strings, and manages the run lifecycle on Close.
type FreshApp struct {
	cfg     *config.Config
	paths   fresh.PathSystem
	cache   *fresh.Cache
	journal fresh.Journal
	clock   fresh.Clock
	logger  fresh.Logger
	run     *Run
	logFile *os.File
}

// Result is the answer for one queried path.
type Result struct {
	Path     string
	Time     fresh.Timestamp
	Progress fresh.Progress
}

// Exists reports whether the path was found with a timestamp.
func (r Result) Exists() bool {
	return !r.Time.IsEmpty()
}

// NewFreshApp creates a fully wired FreshApp from the given config.
// operation identifies the CLI command being run (e.g. "Resolve", "Changed").
// The caller must call Close when done.
func NewFreshApp(cfg *config.Config, operation string) (*FreshApp, error) {
	run := NewRun(operation)

	logger, logFile, err := newLogger(cfg.LogDir, run.ID, parseLevel(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	var s3 fresh.Scanner
	if cfg.S3.Enabled {
		s3, err = remote.NewS3ScannerFromConfig(context.Background(), cfg.S3)
		if err != nil {
			logFile.Close()
			return nil, fmt.Errorf("creating s3 scanner: %w", err)
		}
	}
	scanner := remote.NewRouter(fs.NewOSScanner(), s3)

	journal, err := database.NewJournalFromConfig(cfg.Journal)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating journal: %w", err)
	}

	a := newFreshApp(cfg, run, scanner, journal, &slogAdapter{l: logger}, fresh.SystemClock{})
	a.logFile = logFile
	return a, nil
}

// newFreshApp wires an app from already-built collaborators.
func newFreshApp(cfg *config.Config, run *Run, scanner fresh.Scanner, journal fresh.Journal, logger fresh.Logger, clock fresh.Clock) *FreshApp {
	paths := pathsys.New(cfg.Paths.Separator, pathsys.WithCaseFold(cfg.Paths.CaseFold))
	return &FreshApp{
		cfg:     cfg,
		paths:   paths,
		cache:   fresh.NewCache(paths, scanner, logger, fresh.WithTrace(cfg.Scan.Trace)),
		journal: journal,
		clock:   clock,
		logger:  logger,
		run:     run,
	}
}

// Resolve returns the timestamp of a single path.
func (a *FreshApp) Resolve(rawPath string) Result {
	a.run.MarkRecorded()
	t := a.cache.Resolve(rawPath)
	return Result{Path: rawPath, Time: t, Progress: a.cache.Progress(rawPath)}
}

// ResolveAll returns the timestamps of paths, in order.
func (a *FreshApp) ResolveAll(rawPaths []string) []Result {
	results := make([]Result, len(rawPaths))
	for i, p := range rawPaths {
		results[i] = a.Resolve(p)
	}
	return results
}

// Newest returns the most recently modified of paths. ok is false when none
// of them exist.
func (a *FreshApp) Newest(rawPaths []string) (newest Result, ok bool) {
	for _, r := range a.ResolveAll(rawPaths) {
		if !r.Exists() {
			continue
		}
		if !ok || r.Time.After(newest.Time) {
			newest, ok = r, true
		}
	}
	return newest, ok
}

// Now returns the current time from the app's clock.
func (a *FreshApp) Now() fresh.Timestamp {
	return a.clock.Current()
}

// Stats returns the cache's work counters for this run.
func (a *FreshApp) Stats() fresh.Stats {
	return a.cache.Stats()
}

// History returns the most recently journaled runs.
func (a *FreshApp) History(limit int) ([]*fresh.JournalRun, error) {
	if a.journal == nil {
		return nil, fmt.Errorf("no journal configured")
	}
	return a.journal.Runs(limit)
}

// Close records the run in the journal if it resolved anything, releases
// the cache and closes all resources.
func (a *FreshApp) Close() error {
	var firstErr error

	if a.journal != nil && a.run.Recorded() {
		bindings := a.cache.Bindings()
		if err := a.journal.Record(a.run.ID, a.clock.Current(), bindings); err != nil {
			firstErr = fmt.Errorf("recording run: %w", err)
		} else {
			a.logger.Debug("run recorded", "operation", a.run.Operation, "bindings", len(bindings))
		}
	}

	stats := a.cache.Stats()
	a.logger.Debug("cache stats",
		"directory_scans", stats.DirectoryScans,
		"archive_scans", stats.ArchiveScans,
		"probes", stats.Probes,
		"scan_errors", stats.ScanErrors,
		"bindings", stats.Bindings,
	)
	a.cache.Shutdown()

	if a.journal != nil {
		if err := a.journal.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing journal: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
