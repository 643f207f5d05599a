package learning

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Environment variable selecting the learning-state location, and the
// default filename used when it is unset.
const (
	StorageEnv         = "BOM_LEARNING_PATH"
	DefaultStorageFile = "learning_state.json"
)

// Store persists learning state between process runs. Save is called
// synchronously after every feedback batch.
type Store interface {
	Load() (*State, error)
	Save(state *State) error
}

// DefaultPath resolves the learning-state file path from the
// environment, falling back to the default filename in the working
// directory.
func DefaultPath() string {
	if path := os.Getenv(StorageEnv); path != "" {
		return path
	}
	return DefaultStorageFile
}

// FileStore keeps the state as a JSON document on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the state file. A missing file yields an empty state; a
// corrupt one yields an error so the caller can decide to start fresh.
func (s *FileStore) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read learning state: %w", err)
	}

	state := NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("decode learning state: %w", err)
	}
	if state.FeatureStats == nil {
		state.FeatureStats = make(map[string]*Counter)
	}
	if state.Version == 0 {
		state.Version = 1
	}
	return state, nil
}

// Save writes the whole state, creating parent directories as needed.
func (s *FileStore) Save(state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode learning state: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write learning state: %w", err)
	}
	return nil
}

// MemoryStore keeps the state in memory. It is intended for tests and
// for running without durability.
type MemoryStore struct {
	state *State
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the held state, or an empty state.
func (s *MemoryStore) Load() (*State, error) {
	if s.state == nil {
		return NewState(), nil
	}
	return s.state.Clone(), nil
}

// Save keeps a copy of the state.
func (s *MemoryStore) Save(state *State) error {
	s.state = state.Clone()
	return nil
}
