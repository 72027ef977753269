package storage

import (
	"context"
	"errors"
	"os"
	"testing"

	"chatbot-platform/internal/config"
)

func TestLocalStoreSaveAndDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "a.txt", []byte("hello"), "text/plain"); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(store.Path("a.txt"))
	if err != nil || string(data) != "hello" {
		t.Fatalf("read back: data=%q err=%v", data, err)
	}

	if err := store.Delete(ctx, "a.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "a.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestLocalStoreRejectsPathNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}
	for _, name := range []string{"", "../escape", "dir/file", ".."} {
		if err := store.Save(context.Background(), name, []byte("x"), ""); err == nil {
			t.Fatalf("expected error for name %q", name)
		}
	}
}

func TestNewSelectsDriver(t *testing.T) {
	store, err := New(context.Background(), config.StorageConfig{Driver: "local"}, t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	if _, ok := store.(*LocalStore); !ok {
		t.Fatalf("expected *LocalStore, got %T", store)
	}
	if _, err := New(context.Background(), config.StorageConfig{Driver: "gcs"}, t.TempDir()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
	if _, err := NewLocalStore("  "); err == nil {
		t.Fatalf("expected error for empty base path")
	}
}
