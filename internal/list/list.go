// Package list renders the stored codemarks grouped by project.
package list

import (
	"fmt"
	"io"
	"sort"

	"github.com/starford/codemarks/internal/store"
)

// Render writes every project's codemarks to w, resolved entries marked
// with a check. Projects are printed in sorted order so output is stable.
func Render(w io.Writer, s store.Store) {
	if empty(s) {
		fmt.Fprintln(w, "No code annotations found. Run 'codemarks scan' first to scan for annotations.")
		return
	}

	keys := make([]string, 0, len(s.Projects))
	for key := range s.Projects {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		marks := s.Projects[key]
		if len(marks) == 0 {
			continue
		}
		fmt.Fprintln(w, key)
		for _, c := range marks {
			prefix := "   "
			if c.Resolved {
				prefix = "✅ "
			}
			fmt.Fprintf(w, "%s%s:%d %s\n", prefix, c.File, c.Line, c.Text)
		}
		if len(s.Projects) > 1 {
			fmt.Fprintln(w)
		}
	}
}

func empty(s store.Store) bool {
	for _, marks := range s.Projects {
		if len(marks) > 0 {
			return false
		}
	}
	return true
}
