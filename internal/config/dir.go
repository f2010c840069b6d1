package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the per-user directory holding the config and projects files.
const DirName = ".codemarks"

// ErrNoHome signals that the user's home directory cannot be resolved.
// Commands touching persisted state must treat this as fatal.
var ErrNoHome = errors.New("config: home directory not set")

// Dir resolves the per-user codemarks directory and creates it if absent.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", ErrNoHome
	}
	dir := filepath.Join(home, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("config: create %s: %w", dir, err)
	}
	return dir, nil
}
