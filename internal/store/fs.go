package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
)

// FS implements Provider backed by a single JSON file.
type FS struct {
	path string
}

// NewFS creates an FS provider for the database file at path, creating the
// file with an empty store on first use.
func NewFS(path string) (*FS, error) {
	f := &FS{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := f.Save(New()); err != nil {
			return nil, fmt.Errorf("store: create default database: %w", err)
		}
	}
	return f, nil
}

// Path returns the database file location.
func (f *FS) Path() string { return f.path }

// Ephemeral always reports false for the filesystem provider.
func (f *FS) Ephemeral() bool { return false }

// Load reads and decodes the whole database. Corruption falls back to an
// empty store: a damaged history must never block a scan.
func (f *FS) Load() (Store, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return New(), nil
	}
	var s Store
	if err := json.Unmarshal(data, &s); err != nil {
		return New(), nil
	}
	if s.Projects == nil {
		s.Projects = New().Projects
	}
	return s, nil
}

// Save serializes the whole store and atomically replaces the file
// (write temp, then rename), so an interrupted save never corrupts it.
func (f *FS) Save(s Store) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode database: %w", err)
	}
	if err := atomic.WriteFile(f.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("store: write %s: %w", f.path, err)
	}
	return nil
}
