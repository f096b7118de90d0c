package testutil

import (
	"path/filepath"
	"testing"

	"fresh-go/internal/database"
)

// NewTestJournal creates a new in-memory SQLite journal with the schema
// applied. The journal is automatically closed when the test completes.
func NewTestJournal(t *testing.T) *database.SQLiteJournal {
	t.Helper()

	j, err := database.NewSQLiteJournal(":memory:")
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}

	t.Cleanup(func() {
		j.Close()
	})

	return j
}

// OpenFileJournal opens a SQLite journal file inside dir. Unlike
// NewTestJournal the caller owns the journal and must close it, so that
// several journals can be opened on the same file in turn.
func OpenFileJournal(t *testing.T, dir string) *database.SQLiteJournal {
	t.Helper()

	j, err := database.NewSQLiteJournal(filepath.Join(dir, "journal.db"))
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	return j
}
