package scan

import (
	"log/slog"
	"os"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRules_SkipDir(t *testing.T) {
	r := NewRules("demo", nil, testLogger())

	for _, name := range []string{".git", ".svn", "node_modules", "target", "__pycache__"} {
		if !r.SkipDir(name) {
			t.Errorf("SkipDir(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"src", "internal", "docs"} {
		if r.SkipDir(name) {
			t.Errorf("SkipDir(%q) = true, want false", name)
		}
	}
}

func TestRules_SkipFile_Defaults(t *testing.T) {
	r := NewRules("demo", nil, testLogger())

	skipped := []string{
		".env",
		"img/logo.png",
		"release.ZIP",
		"Cargo.lock",
		"demo", // extensionless artifact matching the project key
	}
	for _, rel := range skipped {
		if !r.SkipFile(rel) {
			t.Errorf("SkipFile(%q) = false, want true", rel)
		}
	}

	kept := []string{"main.go", "src/lib.rs", "README.md", "Makefile"}
	for _, rel := range kept {
		if r.SkipFile(rel) {
			t.Errorf("SkipFile(%q) = true, want false", rel)
		}
	}
}

func TestRules_CustomPatterns(t *testing.T) {
	r := NewRules("demo", []string{"*.gen.go", "fixtures"}, testLogger())

	if !r.SkipFile("api.gen.go") {
		t.Error("glob on base name should match")
	}
	if !r.SkipFile("deep/nested/api.gen.go") {
		t.Error("glob should match the base of nested paths")
	}
	if !r.SkipFile("fixtures/sample.go") {
		t.Error("substring pattern should match path components")
	}
	if r.SkipFile("api.go") {
		t.Error("unrelated file should not match")
	}
}

func TestRules_MalformedPatternDropped(t *testing.T) {
	r := NewRules("demo", []string{"[bad", "*.png"}, testLogger())

	if len(r.patterns) != 1 {
		t.Fatalf("kept %d patterns, want 1 (malformed dropped)", len(r.patterns))
	}
	if !r.SkipFile("x.png") {
		t.Error("valid pattern should survive a malformed sibling")
	}
}
