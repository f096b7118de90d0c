package app

import (
	"fmt"

	"fresh-go/internal/fresh"
)

// ChangeStatus describes how a path differs from the last recorded run.
type ChangeStatus string

const (
	ChangeNew       ChangeStatus = "new"       // exists now, absent or unrecorded before
	ChangeRemoved   ChangeStatus = "removed"   // existed before, absent now
	ChangeModified  ChangeStatus = "modified"  // exists in both, timestamps differ
	ChangeUnchanged ChangeStatus = "unchanged" // same timestamp, or absent both times
)

// Change compares one path against the journal.
type Change struct {
	Path   string
	Before fresh.Timestamp
	After  fresh.Timestamp
	// RunID is the run that recorded Before; empty if never recorded.
	RunID  string
	Status ChangeStatus
}

// Changed resolves each path and compares it with the timestamp recorded by
// the most recent run that saw it.
func (a *FreshApp) Changed(rawPaths []string) ([]*Change, error) {
	if a.journal == nil {
		return nil, fmt.Errorf("no journal configured")
	}

	changes := make([]*Change, 0, len(rawPaths))
	for _, p := range rawPaths {
		prev, err := a.journal.Lookup(a.paths.Key(p))
		if err != nil {
			return nil, fmt.Errorf("looking up %s: %w", p, err)
		}

		c := &Change{Path: p, After: a.Resolve(p).Time}
		if prev != nil {
			c.RunID = prev.RunID
			if prev.Progress == fresh.ProgressFound {
				c.Before = prev.Time
			}
		}
		c.Status = classify(c.Before, c.After)
		changes = append(changes, c)
	}
	return changes, nil
}

func classify(before, after fresh.Timestamp) ChangeStatus {
	switch {
	case before.IsEmpty() && after.IsEmpty():
		return ChangeUnchanged
	case before.IsEmpty():
		return ChangeNew
	case after.IsEmpty():
		return ChangeRemoved
	case before.Equal(after):
		return ChangeUnchanged
	default:
		return ChangeModified
	}
}
