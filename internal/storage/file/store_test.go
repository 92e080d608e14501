package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"chosenoffset.com/deepruins/internal/storage"
)

func TestSaveLoad(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "saves"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "default", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	got, err := store.Load(ctx, "default")
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("Expected saved blob, got %s", got)
	}

	entries, _ := os.ReadDir(store.dir)
	if len(entries) != 1 {
		t.Errorf("Expected only the slot file to remain, got %d entries", len(entries))
	}
}

func TestLoadMissing(t *testing.T) {
	store, _ := Open(t.TempDir())
	if _, err := store.Load(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRejectsPathTraversal(t *testing.T) {
	store, _ := Open(t.TempDir())
	if err := store.Save(context.Background(), "../escape", []byte("x")); err == nil {
		t.Error("Expected invalid slot name to be rejected")
	}
}

func TestDeleteMissingIsNotError(t *testing.T) {
	store, _ := Open(t.TempDir())
	if err := store.Delete(context.Background(), "never"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
