// Package store persists the per-user projects database: a mapping from
// project key to its codemarks, loaded and saved as a whole document.
package store

import (
	"github.com/starford/codemarks/internal/mark"
)

// FileName is the projects database file name under the codemarks directory.
const FileName = "projects.json"

// Store is the persisted collection, keyed by project.
type Store struct {
	Projects map[string][]mark.Codemark `json:"projects"`
}

// New returns an empty store.
func New() Store {
	return Store{Projects: map[string][]mark.Codemark{}}
}

// Unresolved counts unresolved codemarks across every project.
func (s Store) Unresolved() int {
	n := 0
	for _, marks := range s.Projects {
		n += mark.CountUnresolved(marks)
	}
	return n
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (s Store) Clone() Store {
	out := New()
	for key, marks := range s.Projects {
		cp := make([]mark.Codemark, len(marks))
		copy(cp, marks)
		out.Projects[key] = cp
	}
	return out
}

// Provider loads and saves the projects database. Every mutation is
// load whole store, change in memory, save whole store.
type Provider interface {
	// Load returns the persisted store. A missing or corrupt database
	// yields an empty store, never an error that blocks scanning.
	Load() (Store, error)
	// Save replaces the persisted store with s.
	Save(s Store) error
	// Ephemeral reports whether this provider discards all writes.
	Ephemeral() bool
	// Path describes where the store lives, for display only.
	Path() string
}
