package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"chosenoffset.com/deepruins/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "default", []byte(`{"player":{"level":2}}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx, "default")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"player":{"level":2}}` {
		t.Errorf("data = %s", got)
	}

	if err := store.Save(ctx, "default", []byte(`{}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = store.Load(ctx, "default")
	if string(got) != `{}` {
		t.Errorf("expected overwrite, got %s", got)
	}
}

func TestLoadMissingSlot(t *testing.T) {
	store := openTempStore(t)
	if _, err := store.Load(context.Background(), "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	_ = store.Save(ctx, "a", []byte("x"))
	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "a"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "a"); err != nil {
		t.Errorf("expected deleting missing slot to succeed, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = store.Save(context.Background(), "slot", []byte("kept"))
	_ = store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	got, err := store.Load(context.Background(), "slot")
	if err != nil || string(got) != "kept" {
		t.Errorf("expected kept, got %q (%v)", got, err)
	}
}

func TestCancelledContext(t *testing.T) {
	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Save(ctx, "x", []byte("y")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
