package scan

import (
	"log/slog"
	"path"
	"path/filepath"
	"strings"
)

// defaultIgnoreDirs are build-output and dependency directories never worth
// scanning. Version-control metadata is covered by the hidden-entry rule.
var defaultIgnoreDirs = map[string]bool{
	"node_modules": true,
	"target":       true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"obj":          true,
	"__pycache__":  true,
	"vendor":       true,
}

// binaryExts is the skip list of known binary or otherwise non-source
// formats.
var binaryExts = map[string]bool{
	"exe": true, "bin": true, "dll": true, "so": true, "dylib": true,
	"o": true, "a": true, "img": true, "iso": true,
	"png": true, "jpg": true, "jpeg": true, "gif": true, "bmp": true,
	"ico": true, "svg": true, "pdf": true,
	"doc": true, "docx": true, "xls": true, "xlsx": true, "ppt": true, "pptx": true,
	"zip": true, "tar": true, "gz": true, "rar": true, "7z": true,
	"mp3": true, "wav": true, "mp4": true, "avi": true, "mov": true,
	"lock": true, "log": true,
}

// Rules decides which directories and files a scan skips.
type Rules struct {
	artifact string
	patterns []string
}

// NewRules builds skip rules for one scanned tree. artifact is the project
// key, used to skip extensionless files that resemble the project's own
// build output. Malformed custom patterns are dropped with a warning
// instead of aborting the scan.
func NewRules(artifact string, patterns []string, logger *slog.Logger) *Rules {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Rules{artifact: artifact}
	for _, p := range patterns {
		if _, err := path.Match(p, "probe"); err != nil {
			logger.Warn("scan: invalid ignore pattern dropped",
				slog.String("pattern", p),
				slog.String("error", err.Error()))
			continue
		}
		r.patterns = append(r.patterns, p)
	}
	return r
}

// SkipDir reports whether a directory named name should be pruned.
func (r *Rules) SkipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return defaultIgnoreDirs[name]
}

// SkipFile reports whether the file at rel (slash-separated, relative to
// the scanned root) should be skipped.
func (r *Rules) SkipFile(rel string) bool {
	base := path.Base(rel)
	if strings.HasPrefix(base, ".") {
		return true
	}

	for _, p := range r.patterns {
		if strings.Contains(rel, p) {
			return true
		}
		if ok, _ := path.Match(p, base); ok {
			return true
		}
		if ok, _ := path.Match(p, rel); ok {
			return true
		}
	}

	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	if ext != "" {
		return binaryExts[strings.ToLower(ext)]
	}

	// Extensionless files that resemble the project's own build artifact
	// (e.g. the compiled binary dropped at the repo root).
	return r.artifact != "" && strings.Contains(base, r.artifact)
}
