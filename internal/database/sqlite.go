package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fresh-go/internal/database/migrations"
	"fresh-go/internal/fresh"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteJournal implements the fresh.Journal interface using SQLite.
type SQLiteJournal struct {
	db   *sql.DB
	path string
}

// NewSQLiteJournal opens the journal at path, creating and migrating it as
// needed. path can be a file path or ":memory:" for an in-memory journal.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating journal: %w", err)
	}

	return &SQLiteJournal{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// This is exported for use in tests that need a properly configured SQLite connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database, and the journal
	// has a single writer anyway.
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Record stores the settled bindings of a run in a single transaction.
func (s *SQLiteJournal) Record(runID string, at fresh.Timestamp, bindings []fresh.Binding) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	settled := 0
	for _, b := range bindings {
		if b.Settled() {
			settled++
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (id, recorded_secs, recorded_nsecs, bindings) VALUES (?, ?, ?, ?)",
		runID, at.Secs, at.Nsecs, settled,
	); err != nil {
		return fmt.Errorf("creating run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stamps (path, run_id, progress, secs, nsecs) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			run_id = excluded.run_id,
			progress = excluded.progress,
			secs = excluded.secs,
			nsecs = excluded.nsecs`)
	if err != nil {
		return fmt.Errorf("preparing stamp insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bindings {
		if !b.Settled() {
			continue
		}
		t := b.Time
		if b.Progress != fresh.ProgressFound {
			t.Clear()
		}
		if _, err := stmt.ExecContext(ctx, b.Name, runID, b.Progress.String(), t.Secs, t.Nsecs); err != nil {
			return fmt.Errorf("recording stamp for %s: %w", b.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

func (s *SQLiteJournal) Lookup(path string) (*fresh.JournalEntry, error) {
	var (
		entry    fresh.JournalEntry
		progress string
	)
	err := s.db.QueryRowContext(context.Background(),
		"SELECT path, run_id, progress, secs, nsecs FROM stamps WHERE path = ?", path,
	).Scan(&entry.Path, &entry.RunID, &progress, &entry.Time.Secs, &entry.Time.Nsecs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("looking up stamp: %w", err)
	}

	entry.Progress, err = fresh.ParseProgress(progress)
	if err != nil {
		return nil, fmt.Errorf("stamp for %s: %w", path, err)
	}
	return &entry, nil
}

func (s *SQLiteJournal) Runs(limit int) ([]*fresh.JournalRun, error) {
	rows, err := s.db.QueryContext(context.Background(),
		"SELECT id, recorded_secs, recorded_nsecs, bindings FROM runs ORDER BY recorded_secs DESC, recorded_nsecs DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*fresh.JournalRun
	for rows.Next() {
		var r fresh.JournalRun
		if err := rows.Scan(&r.ID, &r.RecordedAt.Secs, &r.RecordedAt.Nsecs, &r.Bindings); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteJournal) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteJournal) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Close closes the database connection.
func (s *SQLiteJournal) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteJournal implements fresh.Journal interface
var _ fresh.Journal = (*SQLiteJournal)(nil)
