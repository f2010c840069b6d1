// Package scan walks a source tree, matches annotation lines, and
// reconciles the findings against the persisted store.
package scan

import (
	"bufio"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/starford/codemarks/internal/config"
	"github.com/starford/codemarks/internal/mark"
	"github.com/starford/codemarks/internal/project"
	"github.com/starford/codemarks/internal/store"
)

// Options tunes a full-tree scan.
type Options struct {
	// Ignore holds caller-supplied ignore patterns, merged with any from
	// the workspace config file at the scanned root.
	Ignore []string
	Logger *slog.Logger
}

// Scan performs a full scan of dir: walk, match, reconcile, persist.
// The returned count is the number of unresolved annotations across the
// entire store, not just this project.
func Scan(dir string, matcher *mark.Matcher, prov store.Provider, opts Options) (int, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("scan: resolve %s: %w", dir, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return 0, fmt.Errorf("scan: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("scan: %s is not a directory", root)
	}

	key := project.Detect(root)

	patterns := opts.Ignore
	if ws, wsErr := config.LoadWorkspace(root); wsErr != nil {
		logger.Warn("scan: workspace config ignored",
			slog.String("root", root),
			slog.String("error", wsErr.Error()))
	} else {
		patterns = append(ws.Ignore, patterns...)
	}
	rules := NewRules(key, patterns, logger)

	fresh := Tree(root, matcher, rules, logger)

	s, err := prov.Load()
	if err != nil {
		return 0, fmt.Errorf("scan: load store: %w", err)
	}
	s.Projects[key] = mark.Reconcile(s.Projects[key], fresh)
	if err := prov.Save(s); err != nil {
		return 0, fmt.Errorf("scan: save store: %w", err)
	}
	return s.Unresolved(), nil
}

// Tree walks root and returns the fresh annotation set, file paths
// relative to root. Unreadable files are skipped, never fatal.
func Tree(root string, matcher *mark.Matcher, rules *Rules, logger *slog.Logger) []mark.Codemark {
	var fresh []mark.Codemark
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			logger.Debug("scan: walk error", slog.String("path", p), slog.String("error", walkErr.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != root && rules.SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rules.SkipFile(rel) {
			return nil
		}
		marks, readErr := File(p, rel, matcher)
		if readErr != nil {
			logger.Debug("scan: skipping unreadable file",
				slog.String("path", rel),
				slog.String("error", readErr.Error()))
			return nil
		}
		fresh = append(fresh, marks...)
		return nil
	})
	return fresh
}

// File scans one file line by line and returns its codemarks with File set
// to rel. Lines that are not valid UTF-8 are skipped.
func File(path, rel string, matcher *mark.Matcher) ([]mark.Codemark, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var marks []mark.Codemark
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if !utf8.ValidString(text) {
			continue
		}
		if captured, ok := matcher.MatchLine(text); ok {
			marks = append(marks, mark.Codemark{File: rel, Line: line, Text: captured})
		}
	}
	// An over-long line aborts the scanner; keep whatever matched so far.
	return marks, nil
}
