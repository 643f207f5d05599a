package learning

import (
	"os"
	"path/filepath"
	"testing"
)

func sampleState() *State {
	state := NewState()
	state.TotalPositive = 3
	state.TotalNegative = 1
	state.FeatureStats["source::table"] = &Counter{Positive: 2, Negative: 1}
	state.FeatureStats["has_quantity"] = &Counter{Positive: 1}
	return state
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path)

	if err := store.Save(sampleState()); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if loaded.TotalPositive != 3 || loaded.TotalNegative != 1 {
		t.Errorf("expected totals 3/1, got %v/%v", loaded.TotalPositive, loaded.TotalNegative)
	}
	counter := loaded.FeatureStats["source::table"]
	if counter == nil || counter.Positive != 2 || counter.Negative != 1 {
		t.Errorf("expected source::table counter 2/1, got %+v", counter)
	}
	if loaded.Version != 1 {
		t.Errorf("expected version 1, got %d", loaded.Version)
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	state, err := store.Load()
	if err != nil {
		t.Fatalf("expected missing file to yield empty state, got error: %v", err)
	}
	if state.TotalPositive != 0 || len(state.FeatureStats) != 0 {
		t.Errorf("expected empty state, got %+v", state)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStore(path).Load(); err == nil {
		t.Error("expected error for corrupt state file")
	}
}

func TestFileStoreCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")

	if err := NewFileStore(path).Save(sampleState()); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected state file to exist: %v", err)
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	state := sampleState()
	if err := store.Save(state); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	// Mutations after Save must not leak into the store.
	state.TotalPositive = 99
	state.FeatureStats["source::table"].Positive = 99

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if loaded.TotalPositive != 3 {
		t.Errorf("expected stored total 3, got %v", loaded.TotalPositive)
	}
	if loaded.FeatureStats["source::table"].Positive != 2 {
		t.Errorf("expected stored counter 2, got %v", loaded.FeatureStats["source::table"].Positive)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(StorageEnv, "/tmp/custom-state.json")
	if got := DefaultPath(); got != "/tmp/custom-state.json" {
		t.Errorf("expected env override, got %q", got)
	}

	t.Setenv(StorageEnv, "")
	if got := DefaultPath(); got != DefaultStorageFile {
		t.Errorf("expected default filename, got %q", got)
	}
}
