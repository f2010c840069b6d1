package mark

// Reconcile merges a fresh scan of a project against its previously stored
// codemarks and returns the next stored state.
//
// Every existing entry starts out marked resolved; a fresh entry with the
// same (file, text) identity rescues it, clearing the flag and updating the
// line number to the freshly observed position. Fresh entries with no match
// are appended as new. Existing entries nothing rescued stay resolved,
// recording annotations that have since been removed from source.
//
// Each fresh entry consumes at most one existing entry, so duplicated
// comment lines within one scan survive as distinct entries instead of
// collapsing into one.
func Reconcile(existing, fresh []Codemark) []Codemark {
	out := make([]Codemark, len(existing))
	copy(out, existing)
	for i := range out {
		out[i].Resolved = true
	}

	// Match only against the original existing entries: entries appended
	// for earlier fresh duplicates must never be rescue targets.
	consumed := make(map[int]bool, len(existing))
	for _, f := range fresh {
		idx := -1
		for i := 0; i < len(existing); i++ {
			if consumed[i] {
				continue
			}
			if out[i].File == f.File && out[i].Text == f.Text {
				idx = i
				break
			}
		}
		if idx < 0 {
			f.Resolved = false
			out = append(out, f)
			continue
		}
		out[idx].Resolved = false
		out[idx].Line = f.Line
		consumed[idx] = true
	}
	return out
}
