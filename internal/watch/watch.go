// Package watch implements live-watch mode: a single-consumer loop over
// debounced filesystem events that keeps one project's codemarks current
// without rescanning the whole tree.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/codemarks/internal/config"
	"github.com/starford/codemarks/internal/mark"
	"github.com/starford/codemarks/internal/project"
	"github.com/starford/codemarks/internal/scan"
	"github.com/starford/codemarks/internal/store"
)

// DefaultDebounce is the minimum quiet interval per path before an event
// is processed again.
const DefaultDebounce = 500 * time.Millisecond

// prunedMapSize caps the debounce map before stale entries are swept.
const prunedMapSize = 1024

// Options tunes the watch loop.
type Options struct {
	// Debounce overrides the per-path quiet interval. Zero means the
	// workspace config value, or DefaultDebounce.
	Debounce time.Duration
	Ignore   []string
	Logger   *slog.Logger
}

// Run starts an fsnotify watcher on dir and processes file change events
// until ctx is cancelled. New directories created at runtime are added to
// the watch list automatically. Events are debounced per path: at most one
// update per path per debounce window.
func Run(ctx context.Context, dir string, matcher *mark.Matcher, prov store.Provider, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("watch: resolve %s: %w", dir, err)
	}
	key := project.Detect(root)

	patterns := opts.Ignore
	ws := &config.Workspace{}
	if loaded, wsErr := config.LoadWorkspace(root); wsErr != nil {
		logger.Warn("watch: workspace config ignored",
			slog.String("root", root),
			slog.String("error", wsErr.Error()))
	} else {
		ws = loaded
		patterns = append(ws.Ignore, patterns...)
	}
	debounce := effectiveDebounce(opts.Debounce, ws)
	rules := scan.NewRules(key, patterns, logger)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	if err := addDirsRecursive(w, root, rules); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	logger.Info("watch: started",
		slog.String("root", root),
		slog.String("project", key),
		slog.Duration("debounce", debounce))

	lastSeen := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if rules.SkipDir(filepath.Base(ev.Name)) {
						continue
					}
					if addErr := addDirsRecursive(w, ev.Name, rules); addErr != nil {
						logger.Warn("watch: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
						continue
					}
					updateDir(ev.Name, root, key, matcher, rules, prov, logger)
					continue
				}
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			now := time.Now()
			if t, seen := lastSeen[ev.Name]; seen && now.Sub(t) < debounce {
				continue
			}
			lastSeen[ev.Name] = now
			if len(lastSeen) > prunedMapSize {
				for p, t := range lastSeen {
					if now.Sub(t) > 2*debounce {
						delete(lastSeen, p)
					}
				}
			}

			n, updErr := UpdateFile(ev.Name, root, key, matcher, rules, prov)
			if updErr != nil {
				logger.Warn("watch: update failed",
					slog.String("path", ev.Name),
					slog.String("error", updErr.Error()))
				continue
			}
			if n > 0 {
				logger.Info("watch: updated",
					slog.String("path", ev.Name),
					slog.Int("annotations", n))
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch: error", slog.String("error", watchErr.Error()))
		}
	}
}

// effectiveDebounce resolves the per-path quiet interval: an explicit
// option wins, then the workspace debounce_ms override, then the default.
func effectiveDebounce(opt time.Duration, ws *config.Workspace) time.Duration {
	if opt > 0 {
		return opt
	}
	if ws.DebounceMS > 0 {
		return time.Duration(ws.DebounceMS) * time.Millisecond
	}
	return DefaultDebounce
}

// UpdateFile reconciles a single file's annotations against the store: all
// of the project's stored entries for that file are replaced by the freshly
// matched set. Resolution history for the file is rebuilt from scratch; the
// rest of the project is untouched. An ignored, deleted, or unreadable file
// returns 0 without touching the store.
func UpdateFile(path, root, projectKey string, matcher *mark.Matcher, rules *scan.Rules, prov store.Provider) (int, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0, nil
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || strings.HasPrefix(rel, "../") {
		return 0, nil
	}
	if rules.SkipFile(rel) {
		return 0, nil
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return 0, nil
	}
	fresh, readErr := scan.File(path, rel, matcher)
	if readErr != nil {
		return 0, nil
	}

	s, err := prov.Load()
	if err != nil {
		return 0, fmt.Errorf("watch: load store: %w", err)
	}
	existing, known := s.Projects[projectKey]
	if !known && len(fresh) == 0 {
		return 0, nil
	}

	kept := make([]mark.Codemark, 0, len(existing)+len(fresh))
	for _, c := range existing {
		if c.File != rel {
			kept = append(kept, c)
		}
	}
	removed := len(existing) - len(kept)
	kept = append(kept, fresh...)
	if removed == 0 && len(fresh) == 0 {
		return 0, nil
	}

	s.Projects[projectKey] = kept
	if err := prov.Save(s); err != nil {
		return 0, fmt.Errorf("watch: save store: %w", err)
	}
	return len(fresh), nil
}

// updateDir runs UpdateFile for every file already inside a newly created
// directory, since their individual create events may have been missed.
func updateDir(dirPath, root, projectKey string, matcher *mark.Matcher, rules *scan.Rules, prov store.Provider, logger *slog.Logger) {
	_ = filepath.WalkDir(dirPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if _, updErr := UpdateFile(p, root, projectKey, matcher, rules, prov); updErr != nil {
			logger.Warn("watch: update from new dir failed",
				slog.String("path", p),
				slog.String("error", updErr.Error()))
		}
		return nil
	})
}

// addDirsRecursive adds root and all its non-ignored subdirectories to the
// watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string, rules *scan.Rules) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && rules.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
