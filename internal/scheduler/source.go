package scheduler

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/zeebo/blake3"
)

// ErrNoSource is returned when no schedule file is configured.
var ErrNoSource = errors.New("scheduler: no schedule file configured")

// Source tracks one schedule file on disk and reports when its content
// really changed. A Source must not be used by two goroutines at once.
type Source struct {
	path    string
	modTime time.Time
	digest  [32]byte
	loaded  bool
}

// NewSource returns a Source for path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Path returns the file path the source watches.
func (s *Source) Path() string { return s.path }

// Refresh is the outcome of a Check.
type Refresh struct {
	Changed bool
	File    File
	Digest  [32]byte
}

// Check stats the file and, when its modification time moved, reads it and
// compares content digests. Only a digest change is reported as Changed,
// so a file that was touched without edits is not reloaded. The first
// successful check always reports Changed.
func (s *Source) Check() (Refresh, error) {
	if s == nil || s.path == "" {
		return Refresh{}, ErrNoSource
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return Refresh{}, fmt.Errorf("stat schedule: %w", err)
	}
	if s.loaded && info.ModTime().Equal(s.modTime) {
		return Refresh{Digest: s.digest}, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return Refresh{}, fmt.Errorf("read schedule: %w", err)
	}
	digest := blake3.Sum256(data)
	if s.loaded && digest == s.digest {
		s.modTime = info.ModTime()
		return Refresh{Digest: digest}, nil
	}

	f, err := Parse(s.path, data)
	if err != nil {
		return Refresh{}, err
	}
	s.modTime = info.ModTime()
	s.digest = digest
	s.loaded = true
	return Refresh{Changed: true, File: f, Digest: digest}, nil
}
