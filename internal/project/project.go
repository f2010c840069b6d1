// Package project infers a stable project key for a scanned directory by
// probing well-known build manifests, falling back to the directory name.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Detect returns the project key for dir. Manifests are probed in order of
// preference; the last path component of dir is the fallback.
func Detect(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}

	if name := keyValueField(filepath.Join(abs, "Cargo.toml"), "name"); name != "" {
		return name
	}
	if name := jsonField(filepath.Join(abs, "package.json"), "name"); name != "" {
		return name
	}
	if name := goModule(filepath.Join(abs, "go.mod")); name != "" {
		return name
	}
	if name := sbtName(filepath.Join(abs, "build.sbt")); name != "" {
		return name
	}
	if name := mavenArtifactID(filepath.Join(abs, "pom.xml")); name != "" {
		return name
	}
	for _, gradle := range []string{"build.gradle", "build.gradle.kts", "settings.gradle", "settings.gradle.kts"} {
		if name := gradleRootProject(filepath.Join(abs, gradle)); name != "" {
			return name
		}
	}
	if name := mixApp(filepath.Join(abs, "mix.exs")); name != "" {
		return name
	}
	if name := keyValueField(filepath.Join(abs, "pyproject.toml"), "name"); name != "" {
		return name
	}
	if name := setupPyName(filepath.Join(abs, "setup.py")); name != "" {
		return name
	}

	base := filepath.Base(abs)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "unknown"
	}
	return base
}

// keyValueField scans a line-oriented manifest for `key = "value"`.
func keyValueField(path, key string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, key) || !strings.Contains(line, "=") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if value != "" {
			return value
		}
	}
	return ""
}

func jsonField(path, field string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var doc map[string]any
	if err := json.Unmarshal(content, &doc); err != nil {
		return ""
	}
	if v, ok := doc[field].(string); ok {
		return v
	}
	return ""
}

// goModule returns the last element of the module path declared in go.mod.
func goModule(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		module := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		if idx := strings.LastIndex(module, "/"); idx >= 0 {
			module = module[idx+1:]
		}
		return module
	}
	return ""
}

func sbtName(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "name :=") {
			continue
		}
		parts := strings.SplitN(line, ":=", 2)
		if len(parts) != 2 {
			continue
		}
		if value := strings.Trim(strings.TrimSpace(parts[1]), `"`); value != "" {
			return value
		}
	}
	return ""
}

func mavenArtifactID(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	s := string(content)
	start := strings.Index(s, "<artifactId>")
	if start < 0 {
		return ""
	}
	rest := s[start+len("<artifactId>"):]
	end := strings.Index(rest, "</artifactId>")
	if end <= 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

func gradleRootProject(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "rootProject.name") || !strings.Contains(line, "=") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if value := strings.Trim(strings.TrimSpace(parts[1]), `"'`); value != "" {
			return value
		}
	}
	return ""
}

// mixApp looks for `app: :project_name` in an Elixir mix.exs.
func mixApp(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "app:") {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, "app:"))
		value = strings.TrimSuffix(value, ",")
		if app, ok := strings.CutPrefix(value, ":"); ok && app != "" {
			return app
		}
	}
	return ""
}

// setupPyName extracts name="..." from a setup() call.
func setupPyName(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	s := string(content)
	idx := strings.Index(s, "name=")
	if idx < 0 {
		return ""
	}
	rest := s[idx+len("name="):]
	if rest == "" {
		return ""
	}
	quote := rest[0]
	if quote != '"' && quote != '\'' {
		return ""
	}
	rest = rest[1:]
	end := strings.IndexByte(rest, quote)
	if end <= 0 {
		return ""
	}
	return rest[:end]
}
