// Package ci implements the stateless CI gate: scan a tree and report
// every match without reading or writing any persisted state.
package ci

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/codemarks/internal/mark"
	"github.com/starford/codemarks/internal/project"
	"github.com/starford/codemarks/internal/scan"
)

// Run scans dir and writes one "file:line: text" row per match to out.
// It returns the number of matches; exit-code semantics (matches found is
// the failure outcome) are the caller's job.
func Run(dir string, matcher *mark.Matcher, ignorePatterns []string, out io.Writer, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("ci: resolve %s: %w", dir, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return 0, fmt.Errorf("ci: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("ci: %s is not a directory", root)
	}

	rules := scan.NewRules(project.Detect(root), ignorePatterns, logger)
	found := scan.Tree(root, matcher, rules, logger)
	for _, c := range found {
		fmt.Fprintf(out, "%s:%d: %s\n", c.File, c.Line, c.Text)
	}
	return len(found), nil
}
