// Package mark defines codemarks (matched inline code annotations), the
// line matcher that discovers them, and the reconciliation that merges a
// fresh scan against previously stored entries.
package mark

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPattern matches TODO, FIXME and HACK markers after a comment
// leader, case-insensitively, capturing the remainder of the line.
const DefaultPattern = `(?i)(?://|#|<!--|\*)\s*(?:TODO|FIXME|HACK)\s*:?\s*(.*)$`

// maxTextLen bounds the captured remainder; anything longer is almost
// certainly minified or binary content, not a human-written annotation.
const maxTextLen = 200

// Codemark is one matched annotation. Line is 1-based and reflects the
// position at the most recent scan that saw the annotation. Identity for
// reconciliation is (File, Text); Line is allowed to drift.
type Codemark struct {
	File     string `json:"file"`
	Line     int    `json:"line_number"`
	Text     string `json:"description"`
	Resolved bool   `json:"resolved"`
}

// Matcher applies a compiled annotation pattern to single lines of text.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles pattern. An invalid pattern is a configuration
// error and must be surfaced before any scanning starts.
func NewMatcher(pattern string) (*Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("mark: invalid annotation pattern %q: %w", pattern, err)
	}
	return &Matcher{re: re}, nil
}

// Pattern returns the source text of the compiled pattern.
func (m *Matcher) Pattern() string {
	return m.re.String()
}

// MatchLine reports whether line carries an annotation and returns the
// captured remainder, trimmed. Lines that reproduce the pattern's own
// syntax are discarded as false positives so that scanning this tool's
// source, or a file quoting an example pattern, does not self-match.
func (m *Matcher) MatchLine(line string) (string, bool) {
	if strings.Contains(line, `TODO\s*:?\s*(.*)`) {
		return "", false
	}
	sub := m.re.FindStringSubmatch(line)
	if sub == nil {
		return "", false
	}
	var text string
	if len(sub) > 1 {
		text = strings.TrimSpace(sub[1])
	}
	if strings.Contains(text, `\s*`) || len(text) > maxTextLen {
		return "", false
	}
	return text, true
}

// CountUnresolved returns how many of marks are not resolved.
func CountUnresolved(marks []Codemark) int {
	n := 0
	for _, c := range marks {
		if !c.Resolved {
			n++
		}
	}
	return n
}
