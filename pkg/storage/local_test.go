package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/registropol/registropol-backend/pkg/config"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(context.Background(), config.StorageConfig{
		UploadDir:     t.TempDir(),
		PublicBaseURL: "/uploads",
	}, nil)
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}
	return store
}

func TestSavePreservesExtension(t *testing.T) {
	store := newTestStore(t)

	url, err := store.Save(context.Background(), "", "photo.JPG", strings.NewReader("image-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") {
		t.Fatalf("expected public url prefix, got %q", url)
	}
	if !strings.HasSuffix(url, ".jpg") {
		t.Fatalf("expected lowercase extension, got %q", url)
	}
	if strings.Contains(url, "photo") {
		t.Fatalf("original filename must not leak into url: %q", url)
	}

	object := strings.TrimPrefix(url, "/uploads/")
	data, err := os.ReadFile(filepath.Join(store.Dir(), object))
	if err != nil {
		t.Fatalf("read stored object: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Fatalf("stored content mismatch: %q", data)
	}
}

func TestSaveWithPrefix(t *testing.T) {
	store := newTestStore(t)

	url, err := store.Save(context.Background(), "detainees", "cedula.pdf", strings.NewReader("doc"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/detainees/") {
		t.Fatalf("expected prefixed url, got %q", url)
	}
}

func TestSaveRejectsTraversalPrefix(t *testing.T) {
	store := newTestStore(t)

	url, err := store.Save(context.Background(), "../../etc", "x.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if strings.Contains(url, "..") {
		t.Fatalf("traversal prefix leaked into url: %q", url)
	}
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Save(ctx, "", "same.png", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := store.Save(ctx, "", "same.png", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct object names, got %q twice", first)
	}
}

func TestPing(t *testing.T) {
	store := newTestStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	var nilStore *LocalStore
	if err := nilStore.Ping(context.Background()); err == nil {
		t.Fatal("expected error for uninitialized store")
	}
}
