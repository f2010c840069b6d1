package config

import (
	"errors"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	pkgconfig "github.com/starford/codemarks/pkg/config"
)

// WorkspaceFileName is the optional per-tree configuration file looked up
// at the scanned root.
const WorkspaceFileName = ".codemarks.yaml"

// Workspace holds per-tree scan defaults. All fields are optional; ignore
// patterns are merged with (not replaced by) patterns given on the command
// line.
type Workspace struct {
	Ignore     []string `yaml:"ignore"`
	DebounceMS int      `yaml:"debounce_ms"`
}

// Validate validates the workspace configuration.
func (w *Workspace) Validate() error {
	return validation.ValidateStruct(w,
		validation.Field(&w.DebounceMS, validation.Min(0)),
	)
}

// LoadWorkspace reads the workspace file under root. A missing file is not
// an error and yields an empty Workspace.
func LoadWorkspace(root string) (*Workspace, error) {
	path := filepath.Join(root, WorkspaceFileName)
	ws := &Workspace{}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return ws, nil
	}
	if err := pkgconfig.Load(path, ws); err != nil {
		return nil, err
	}
	return ws, nil
}
