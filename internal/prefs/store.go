// Package prefs persists small user preferences (such as the language
// override) in a JSON file.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Store is a file-backed string key-value store. The document is cached
// after the first read and edited in place, so keys written by other tools
// survive a Set or Remove.
type Store struct {
	path   string
	doc    []byte
	loaded bool
	mu     sync.Mutex
}

// NewStore creates a Store backed by path. The file is created on first write.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Get returns the value for key and whether it was set.
func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return "", false, err
	}
	r := gjson.GetBytes(s.doc, gjson.Escape(key))
	if !r.Exists() {
		return "", false, nil
	}
	return r.String(), true, nil
}

// Set stores value under key.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	doc, err := sjson.SetBytes(s.doc, gjson.Escape(key), value)
	if err != nil {
		return fmt.Errorf("failed to set preference %s: %w", key, err)
	}
	return s.save(doc)
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	path := gjson.Escape(key)
	if !gjson.GetBytes(s.doc, path).Exists() {
		return nil
	}
	doc, err := sjson.DeleteBytes(s.doc, path)
	if err != nil {
		return fmt.Errorf("failed to remove preference %s: %w", key, err)
	}
	return s.save(doc)
}

// load reads the file once. Caller must hold s.mu.
func (s *Store) load() error {
	if s.loaded {
		return nil
	}
	doc := []byte("{}")

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("failed to read preferences: %w", err)
	case len(data) > 0:
		if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
			return fmt.Errorf("failed to parse preferences %s: not a JSON object", s.path)
		}
		doc = data
	}

	s.doc = doc
	s.loaded = true
	return nil
}

// save writes doc atomically and caches it. Caller must hold s.mu.
func (s *Store) save(doc []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, doc, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	s.doc = doc
	return nil
}
