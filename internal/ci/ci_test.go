package ci

import (
	"bytes"
	"strings"
	"testing"

	"github.com/starford/codemarks/internal/mark"
	"github.com/starford/codemarks/internal/testutil"
)

func TestRun_ReportsMatches(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"a.go":     "package main\n// TODO: fix this\n",
		"sub/b.py": "# HACK: workaround\n",
	})

	var out bytes.Buffer
	n, err := Run(root, testutil.Matcher(t), nil, &out, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("found = %d, want 2", n)
	}
	got := out.String()
	if !strings.Contains(got, "a.go:2: fix this") {
		t.Errorf("missing a.go row in output:\n%s", got)
	}
	if !strings.Contains(got, "sub/b.py:1: workaround") {
		t.Errorf("missing b.py row in output:\n%s", got)
	}
}

func TestRun_CleanTree(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"a.go": "package main\n",
	})

	var out bytes.Buffer
	n, err := Run(root, testutil.Matcher(t), nil, &out, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("found = %d, want 0", n)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestRun_HonorsIgnorePatterns(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"a.go":       "// TODO: keep\n",
		"gen/out.go": "// TODO: skip\n",
	})

	var out bytes.Buffer
	n, err := Run(root, testutil.Matcher(t), []string{"gen"}, &out, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("found = %d, want 1:\n%s", n, out.String())
	}
}

func TestRun_CustomPattern(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"a.go": "// NOTE: custom marker\n// TODO: default marker\n",
	})
	m, err := mark.NewMatcher(`//\s*NOTE:\s*(.*)$`)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	n, err := Run(root, m, nil, &out, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("found = %d, want 1 (custom pattern only)", n)
	}
	if !strings.Contains(out.String(), "custom marker") {
		t.Errorf("output:\n%s", out.String())
	}
}
