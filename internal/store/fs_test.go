package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/codemarks/internal/mark"
)

func testStore() Store {
	s := New()
	s.Projects["demo"] = []mark.Codemark{
		{File: "a.go", Line: 2, Text: "fix X"},
		{File: "b.go", Line: 9, Text: "fix Y", Resolved: true},
	}
	return s
}

func TestFS_CreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if _, err := NewFS(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("default database not created: %v", err)
	}
	if string(data) == "" {
		t.Error("default database is empty")
	}
}

func TestFS_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	f, err := NewFS(path)
	if err != nil {
		t.Fatal(err)
	}

	want := testStore()
	if err := f.Save(want); err != nil {
		t.Fatal(err)
	}
	got, err := f.Load()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestFS_MissingFileIsEmptyStore(t *testing.T) {
	f := &FS{path: filepath.Join(t.TempDir(), "nope", FileName)}
	got, err := f.Load()
	if err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	if len(got.Projects) != 0 {
		t.Errorf("got %d projects, want 0", len(got.Projects))
	}
}

func TestFS_CorruptFileIsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := &FS{path: path}
	got, err := f.Load()
	if err != nil {
		t.Fatalf("corrupt file must not fail: %v", err)
	}
	if len(got.Projects) != 0 {
		t.Errorf("got %d projects, want 0", len(got.Projects))
	}
}

func TestFS_JSONFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	f, err := NewFS(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Save(testStore()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"projects"`, `"file"`, `"line_number"`, `"description"`, `"resolved"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("persisted JSON missing %s", field)
		}
	}
}

func TestMemory_RetainsSaves(t *testing.T) {
	m := NewMemory()
	if err := m.Save(testStore()); err != nil {
		t.Fatal(err)
	}
	got, err := m.Load()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(testStore(), got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestMemory_LoadIsACopy(t *testing.T) {
	m := NewMemory()
	if err := m.Save(testStore()); err != nil {
		t.Fatal(err)
	}
	first, _ := m.Load()
	first.Projects["demo"][0].Resolved = true

	second, _ := m.Load()
	if second.Projects["demo"][0].Resolved {
		t.Error("mutating a loaded store leaked back into the provider")
	}
}

func TestEphemeral_DiscardsSaves(t *testing.T) {
	m := NewEphemeral()
	if !m.Ephemeral() {
		t.Fatal("Ephemeral() = false")
	}
	if err := m.Save(testStore()); err != nil {
		t.Fatal(err)
	}
	got, err := m.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Projects) != 0 {
		t.Errorf("ephemeral load returned %d projects, want 0", len(got.Projects))
	}
}

func TestStore_Unresolved(t *testing.T) {
	s := testStore()
	s.Projects["other"] = []mark.Codemark{{File: "c.go", Line: 1, Text: "z"}}
	if got := s.Unresolved(); got != 2 {
		t.Errorf("Unresolved = %d, want 2", got)
	}
}
