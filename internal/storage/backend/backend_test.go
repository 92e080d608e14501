package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"chosenoffset.com/deepruins/internal/config"
	"chosenoffset.com/deepruins/internal/storage"
)

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()
	paths := map[string]string{
		config.BackendFile:   filepath.Join(dir, "saves"),
		config.BackendSQLite: filepath.Join(dir, "saves.db"),
	}
	for kind, path := range paths {
		t.Run(kind, func(t *testing.T) {
			store, err := Open(kind, path)
			if err != nil {
				t.Fatalf("Failed to open %s store: %v", kind, err)
			}
			defer store.Close()

			ctx := context.Background()
			if _, err := store.Load(ctx, "slot1"); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("Expected ErrNotFound, got %v", err)
			}
			if err := store.Save(ctx, "slot1", []byte(`{"ok":true}`)); err != nil {
				t.Fatalf("Failed to save: %v", err)
			}
			got, err := store.Load(ctx, "slot1")
			if err != nil {
				t.Fatalf("Failed to load: %v", err)
			}
			if string(got) != `{"ok":true}` {
				t.Errorf("Expected saved blob, got %s", got)
			}
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("redis", "x"); err == nil {
		t.Error("Expected error for unknown backend")
	}
}
