// Package config manages the per-user codemarks configuration: the global
// annotation pattern persisted as JSON, and optional per-tree scan defaults
// loaded from a workspace YAML file.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/natefinch/atomic"

	"github.com/starford/codemarks/internal/mark"
)

// FileName is the global configuration file name under the codemarks
// directory.
const FileName = "config.json"

// Config is the persisted global configuration.
type Config struct {
	AnnotationPattern string `json:"annotation_pattern"`
}

// Validate validates the configuration. An annotation pattern that does
// not compile is a configuration error, surfaced before any scanning.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AnnotationPattern, validation.Required, validation.By(compilable)),
	)
}

func compilable(value interface{}) error {
	pattern, _ := value.(string)
	if _, err := regexp.Compile(pattern); err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	return nil
}

// Default returns a Config with the compiled-in annotation pattern.
func Default() *Config {
	return &Config{AnnotationPattern: mark.DefaultPattern}
}

// Provider loads and saves the global configuration.
type Provider interface {
	// Load returns the stored configuration, falling back to the default
	// when the file is missing or unreadable.
	Load() *Config
	// Save persists cfg.
	Save(cfg *Config) error
	// Path describes where the configuration lives, for display only.
	Path() string
}

// FS implements Provider backed by a JSON file.
type FS struct {
	path string
}

// NewFS creates an FS provider for the config file at path, writing the
// default configuration on first use.
func NewFS(path string) (*FS, error) {
	f := &FS{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := f.Save(Default()); err != nil {
			return nil, fmt.Errorf("config: create default file: %w", err)
		}
	}
	return f, nil
}

// Path returns the config file location.
func (f *FS) Path() string { return f.path }

// Load reads the stored configuration. Unknown or missing fields fall back
// to the compiled-in default; so does a missing or corrupt file.
func (f *FS) Load() *Config {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return Default()
	}
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return Default()
	}
	if cfg.AnnotationPattern == "" {
		cfg.AnnotationPattern = mark.DefaultPattern
	}
	return cfg
}

// Save atomically writes cfg to the config file.
func (f *FS) Save(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := atomic.WriteFile(f.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("config: write %s: %w", f.path, err)
	}
	return nil
}

// Memory implements Provider for ephemeral mode and tests: Load returns
// the held configuration and Save only updates it in memory.
type Memory struct {
	cfg *Config
}

// NewMemory returns a Memory provider holding the default configuration.
func NewMemory() *Memory {
	return &Memory{cfg: Default()}
}

// Load returns the held configuration.
func (m *Memory) Load() *Config {
	cp := *m.cfg
	return &cp
}

// Save replaces the held configuration.
func (m *Memory) Save(cfg *Config) error {
	cp := *cfg
	m.cfg = &cp
	return nil
}

// Path describes the provider for display.
func (m *Memory) Path() string { return "(ephemeral)" }
