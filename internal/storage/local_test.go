package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocal_PutAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(dir, "/assets/")
	ctx := context.Background()

	url, err := store.Put(ctx, "avatars/abc.jpg", []byte("jpeg bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "/assets/avatars/abc.jpg" {
		t.Errorf("url = %q, want %q", url, "/assets/avatars/abc.jpg")
	}

	// File lands under the nested key path
	path := filepath.Join(dir, "avatars", "abc.jpg")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "jpeg bytes" {
		t.Errorf("stored content = %q, want %q", data, "jpeg bytes")
	}

	if err := store.Delete(ctx, "avatars/abc.jpg"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should be gone after Delete")
	}
}

func TestLocal_DeleteMissingIsNoop(t *testing.T) {
	store := NewLocal(t.TempDir(), "/assets")

	if err := store.Delete(context.Background(), "posts/never-existed.jpg"); err != nil {
		t.Errorf("Delete of missing key should succeed, got: %v", err)
	}
}

func TestLocal_Overwrite(t *testing.T) {
	store := NewLocal(t.TempDir(), "/assets")
	ctx := context.Background()

	if _, err := store.Put(ctx, "posts/p.jpg", []byte("v1"), "image/jpeg"); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	url, err := store.Put(ctx, "posts/p.jpg", []byte("v2"), "image/jpeg")
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if url != "/assets/posts/p.jpg" {
		t.Errorf("url = %q, want stable key URL", url)
	}
}
