package capturestore

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStoreSaveGetDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "vnclog")

	payload := []byte("capture bytes")
	relPath, err := store.Save("session-1", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Ext(relPath) != ".vnclog" {
		t.Fatalf("got ext %q, want .vnclog", filepath.Ext(relPath))
	}

	rc, err := store.Get(relPath)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}

	if err := store.Delete(relPath); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(relPath); err == nil {
		t.Fatal("expected error reading a deleted capture")
	}
}

func TestLocalStoreDeleteMissingIsNotError(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "vnclog")
	if err := store.Delete("2026/01/nonexistent.vnclog"); err != nil {
		t.Fatalf("Delete of missing file should not error, got %v", err)
	}
}

func TestLocalStoreRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "vnclog")

	if _, err := store.Get("../../../../etc/passwd"); err == nil {
		t.Fatal("expected path traversal rejection")
	}
	if err := store.Delete("../outside.vnclog"); err == nil {
		t.Fatal("expected path traversal rejection on delete")
	}
}

func TestLocalStoreSaveCleansCallerSuppliedID(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "vnclog")

	relPath, err := store.Save("../../escape", bytes.NewReader([]byte("x")))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	absBase, _ := filepath.Abs(dir)
	absPath, _ := filepath.Abs(filepath.Join(dir, relPath))
	if _, err := os.Stat(absPath); err != nil {
		t.Fatalf("expected file to exist at %s: %v", absPath, err)
	}
	if len(absPath) < len(absBase) {
		t.Fatalf("resolved path escaped base dir: %s", absPath)
	}
}
