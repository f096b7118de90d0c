package remote

import (
	"errors"

	"fresh-go/internal/fresh"
)

// ErrS3Disabled is returned for s3:// paths when no S3 scanner is configured.
var ErrS3Disabled = errors.New("s3 paths are not enabled")

// Router sends s3:// paths to an S3 scanner and everything else to a local
// scanner.
type Router struct {
	local fresh.Scanner
	s3    fresh.Scanner
}

var _ fresh.Scanner = (*Router)(nil)

// NewRouter creates a Router. s3 may be nil, in which case S3 paths fail
// to scan and probe and so resolve as absent.
func NewRouter(local, s3 fresh.Scanner) *Router {
	return &Router{local: local, s3: s3}
}

func (r *Router) pick(path string) (fresh.Scanner, error) {
	if !IsS3Path(path) {
		return r.local, nil
	}
	if r.s3 == nil {
		return nil, ErrS3Disabled
	}
	return r.s3, nil
}

func (r *Router) ScanDirectory(dir string, enter fresh.EntryFunc) error {
	s, err := r.pick(dir)
	if err != nil {
		return err
	}
	return s.ScanDirectory(dir, enter)
}

func (r *Router) ScanArchive(archive string, enter fresh.EntryFunc) error {
	s, err := r.pick(archive)
	if err != nil {
		return err
	}
	return s.ScanArchive(archive, enter)
}

func (r *Router) ProbeTimestamp(path string) (fresh.Timestamp, error) {
	s, err := r.pick(path)
	if err != nil {
		return fresh.Timestamp{}, err
	}
	return s.ProbeTimestamp(path)
}
