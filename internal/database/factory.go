package database

import (
	"fmt"
	"path/filepath"

	"fresh-go/internal/config"
	"fresh-go/internal/fresh"
)

// NewJournalFromConfig creates a Journal implementation based on the journal
// config type. It returns nil for type "none": the run is not recorded.
func NewJournalFromConfig(cfg config.JournalConfig) (fresh.Journal, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite journal")
		}
		j, err := NewSQLiteJournal(filepath.Join(cfg.DataDir, "journal.db"))
		if err != nil {
			return nil, err
		}
		return j, nil
	case "memory":
		j, err := NewSQLiteJournal(":memory:")
		if err != nil {
			return nil, err
		}
		return j, nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown journal type: %s", cfg.Type)
	}
}
