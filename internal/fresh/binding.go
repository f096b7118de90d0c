package fresh

import "fmt"

// Progress tracks what is known about a binding.
type Progress int

const (
	ProgressInit    Progress = iota // never seen
	ProgressNoEntry                 // timestamp requested but file never found
	ProgressSpotted                 // file found but not timed yet
	ProgressMissing                 // file found but its timestamp can not be read
	ProgressFound                   // file found and timestamped
)

var progressNames = [...]string{"INIT", "NOENTRY", "SPOTTED", "MISSING", "FOUND"}

func (p Progress) String() string {
	if p < 0 || int(p) >= len(progressNames) {
		return "UNKNOWN"
	}
	return progressNames[p]
}

// Binding is the cached discovery record for one normalized path.
type Binding struct {
	Name string
	// Scanned is set once the children of a directory or archive binding
	// have been enumerated. It never goes back to false within a run.
	Scanned  bool
	Progress Progress
	// Time is meaningful only when Progress is ProgressFound.
	Time Timestamp
}

func newBinding(name string) Binding {
	return Binding{Name: name, Progress: ProgressInit}
}

// ParseProgress returns the Progress named by s, as produced by String.
func ParseProgress(s string) (Progress, error) {
	for i, name := range progressNames {
		if name == s {
			return Progress(i), nil
		}
	}
	return ProgressInit, fmt.Errorf("unknown progress %q", s)
}
