package store

// Memory implements Provider without touching the filesystem. The zero
// value is not usable; construct with NewMemory or NewEphemeral.
type Memory struct {
	ephemeral bool
	current   Store
}

// NewMemory returns an in-memory provider that retains saves, for tests.
func NewMemory() *Memory {
	return &Memory{current: New()}
}

// NewEphemeral returns the no-storage provider: Load is always empty and
// Save discards everything, so repeated scans leave no trace anywhere.
func NewEphemeral() *Memory {
	return &Memory{ephemeral: true, current: New()}
}

// Load returns a copy of the retained store, or an empty store in
// ephemeral mode.
func (m *Memory) Load() (Store, error) {
	if m.ephemeral {
		return New(), nil
	}
	return m.current.Clone(), nil
}

// Save retains a copy of s; a no-op in ephemeral mode.
func (m *Memory) Save(s Store) error {
	if m.ephemeral {
		return nil
	}
	m.current = s.Clone()
	return nil
}

// Ephemeral reports whether writes are discarded.
func (m *Memory) Ephemeral() bool { return m.ephemeral }

// Path describes the provider for display.
func (m *Memory) Path() string {
	if m.ephemeral {
		return "(ephemeral)"
	}
	return "(memory)"
}
