// Package clean permanently removes resolved codemarks from the store.
package clean

import (
	"fmt"
	"sort"

	"github.com/starford/codemarks/internal/mark"
	"github.com/starford/codemarks/internal/store"
)

// Result reports what a cleanup removed, or would remove in dry-run mode.
type Result struct {
	// Removed maps project key to how many resolved entries were dropped.
	Removed map[string]int
	// Dropped lists projects removed entirely because every entry resolved.
	Dropped []string
	// Total is the overall number of removed entries.
	Total int
}

// Clean drops every annotation whose resolved flag is set. When
// projectFilter is non-empty only that project is touched; all others are
// carried over untouched. A project left with no entries disappears from
// the store. In dry-run mode the result is computed but nothing is saved.
func Clean(prov store.Provider, projectFilter string, dryRun bool) (Result, error) {
	s, err := prov.Load()
	if err != nil {
		return Result{}, fmt.Errorf("clean: load store: %w", err)
	}

	res := Result{Removed: map[string]int{}}
	next := store.New()

	keys := make([]string, 0, len(s.Projects))
	for key := range s.Projects {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		marks := s.Projects[key]
		if projectFilter != "" && key != projectFilter {
			next.Projects[key] = marks
			continue
		}

		kept := make([]mark.Codemark, 0, len(marks))
		for _, c := range marks {
			if !c.Resolved {
				kept = append(kept, c)
			}
		}
		removed := len(marks) - len(kept)
		if removed > 0 {
			res.Removed[key] = removed
			res.Total += removed
		}
		if len(kept) > 0 {
			next.Projects[key] = kept
		} else if removed > 0 {
			res.Dropped = append(res.Dropped, key)
		}
	}

	if !dryRun && res.Total > 0 {
		if err := prov.Save(next); err != nil {
			return Result{}, fmt.Errorf("clean: save store: %w", err)
		}
	}
	return res, nil
}
