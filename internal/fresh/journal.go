package fresh

// JournalEntry is the last recorded state of one path.
type JournalEntry struct {
	Path     string
	RunID    string
	Progress Progress
	Time     Timestamp
}

// JournalRun describes one recorded run.
type JournalRun struct {
	ID         string
	RecordedAt Timestamp
	Bindings   int
}

// Journal persists the resolved bindings of a run so a later run can tell
// which paths changed in between.
type Journal interface {
	// Record stores every settled binding (found, missing or absent) under
	// runID, replacing what earlier runs recorded for the same paths.
	Record(runID string, at Timestamp, bindings []Binding) error

	// Lookup returns the last recorded entry for a normalized path, or nil
	// if the path was never recorded.
	Lookup(path string) (*JournalEntry, error)

	// Runs returns the most recent runs, newest first.
	Runs(limit int) ([]*JournalRun, error)

	Close() error
}

// Settled reports whether a binding carries an answer worth recording.
func (b Binding) Settled() bool {
	switch b.Progress {
	case ProgressNoEntry, ProgressMissing, ProgressFound:
		return true
	default:
		return false
	}
}
