// Package testutil provides shared test helpers for building scan trees
// and seeded stores.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/codemarks/internal/mark"
	"github.com/starford/codemarks/internal/store"
)

// WriteTree creates a temporary directory populated with files. Keys are
// slash-separated paths relative to the returned root.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// Matcher returns a Matcher for the default annotation pattern.
func Matcher(t *testing.T) *mark.Matcher {
	t.Helper()
	m, err := mark.NewMatcher(mark.DefaultPattern)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// SeededStore returns an in-memory provider pre-populated with s.
func SeededStore(t *testing.T, s store.Store) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	if err := m.Save(s); err != nil {
		t.Fatal(err)
	}
	return m
}
