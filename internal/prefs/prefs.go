// Package prefs persists small user preferences between dashboard sessions.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/statdash/internal/errors"
)

// AutoRefresh is the key for the auto-refresh toggle.
const AutoRefresh = "auto_refresh"

// Store is a YAML file of scalar preferences. Reads never fail: a missing or
// unparseable file, or a value of the wrong type, yields the caller's default.
type Store struct {
	path string
	mu   sync.Mutex
}

// New returns a store backed by path. The file is created on first write.
func New(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns ~/.config/statdash/prefs.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "statdash", "prefs.yaml")
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Bool returns the stored value for key, or def.
func (s *Store) Bool(key string, def bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := s.load()
	v, ok := values[key].(bool)
	if !ok {
		return def
	}
	return v
}

// SetBool stores value under key, keeping any other keys in the file.
func (s *Store) SetBool(key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := s.load()
	if values == nil {
		values = make(map[string]interface{})
	}
	values[key] = value

	data, err := yaml.Marshal(values)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't encode preferences", "")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't create %s", filepath.Dir(s.path)), "")
	}

	// Write to a temp file first so a crash mid-write can't corrupt prefs.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't write %s", s.path), "")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't write %s", s.path), "")
	}
	return nil
}

// load returns nil when the file is missing or unreadable.
func (s *Store) load() map[string]interface{} {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var values map[string]interface{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil
	}
	return values
}
