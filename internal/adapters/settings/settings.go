// Package settings persists the tour-seen flags in an INI settings
// file, so a completed or skipped tour does not re-trigger on the next
// launch.
package settings

import (
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/ini.v1"

	"github.com/guidepost-io/guidepost/internal/ports"
)

const (
	sectionTour  = "tour"
	keyCompleted = "completed"
	keySkipped   = "skipped"
)

// Store reads and writes tour flags in an INI file. Other sections of
// the file are preserved untouched, so hosts can share their existing
// settings file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store with the default path under the user's home
// directory.
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Store{path: filepath.Join(home, ".guidepost", "settings.ini")}, nil
}

// NewStoreWithPath creates a store at a custom path.
func NewStoreWithPath(path string) *Store {
	return &Store{path: path}
}

// Path returns the storage path.
func (s *Store) Path() string {
	return s.path
}

// Completed reports whether a previous session finished the tour.
func (s *Store) Completed() bool {
	return s.flag(keyCompleted)
}

// Skipped reports whether a previous session skipped the tour.
func (s *Store) Skipped() bool {
	return s.flag(keySkipped)
}

// MarkCompleted records tour completion.
func (s *Store) MarkCompleted() error {
	return s.setFlag(keyCompleted, true)
}

// MarkSkipped records a tour skip.
func (s *Store) MarkSkipped() error {
	return s.setFlag(keySkipped, true)
}

// Reset clears both flags.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}
	f.Section(sectionTour).DeleteKey(keyCompleted)
	f.Section(sectionTour).DeleteKey(keySkipped)
	return s.save(f)
}

func (s *Store) flag(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return false
	}
	return f.Section(sectionTour).Key(key).MustBool(false)
}

func (s *Store) setFlag(key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}
	if value {
		f.Section(sectionTour).Key(key).SetValue("true")
	} else {
		f.Section(sectionTour).DeleteKey(key)
	}
	return s.save(f)
}

func (s *Store) load() (*ini.File, error) {
	f, err := ini.LooseLoad(s.path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Store) save(f *ini.File) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return f.SaveTo(s.path)
}

// Ensure Store implements the port.
var _ ports.Settings = (*Store)(nil)
