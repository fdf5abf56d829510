package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"pantrycore/internal/blob/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestStore_PutGetHeadListDelete(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	info, err := store.Put(ctx, "receipts/r1/scan.jpg", bytes.NewReader([]byte("hello")), core.PutOptions{ContentType: "image/jpeg", Metadata: map[string]string{"store": "Giant"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "receipts/r1/scan.jpg" || info.Size != 5 {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "receipts/r1/scan.jpg", bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate failure")
	}
	h, err := store.Head(ctx, "receipts/r1/scan.jpg")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	g, rc, err := store.Get(ctx, "receipts/r1/scan.jpg")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if string(b) != "hello" || g.ETag != h.ETag {
		t.Fatalf("unexpected get artifacts")
	}
	list, err := store.List(ctx, "receipts/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "receipts/r1/scan.jpg" {
		t.Fatalf("unexpected list %+v", list)
	}
	ok, err := store.Delete(ctx, "receipts/r1/scan.jpg")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = store.Delete(ctx, "receipts/r1/scan.jpg")
	if err != nil || ok {
		t.Fatalf("second delete should be false")
	}
}

func TestStore_PathTraversal(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for _, key := range []string{"", "../escape.txt", "/abs.txt", "a/../b"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
			t.Fatalf("expected rejection for key %q", key)
		}
	}
}

func TestStore_SidecarPersistsContentType(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "exports/snapshot.json", bytes.NewReader([]byte(`{}`)), core.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	_, sidecarPath, _ := store.pathFor("exports/snapshot.json")
	b, err := os.ReadFile(sidecarPath)
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	if !bytes.Contains(b, []byte("application/json")) {
		t.Fatalf("sidecar missing content type: %s", b)
	}
	// Without the sidecar the object is unreadable.
	if err := os.Remove(sidecarPath); err != nil {
		t.Fatalf("rm sidecar: %v", err)
	}
	if _, _, err := store.Get(ctx, "exports/snapshot.json"); err == nil {
		t.Fatalf("expected get error without sidecar")
	}
}

type errorReader struct{}

func (errorReader) Read(p []byte) (int, error) { return 0, errors.New("boom") }

func TestStore_PutReaderError(t *testing.T) {
	store := newTempStore(t)
	if _, err := store.Put(context.Background(), "bad.bin", errorReader{}, core.PutOptions{}); err == nil {
		t.Fatalf("expected copy error")
	}
}

func TestStore_ListSortedAndPresign(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for _, key := range []string{"receipts/r2/scan.jpg", "receipts/r1/scan.jpg"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("data")), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := store.List(ctx, "")
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}
	if list[0].Key != "receipts/r1/scan.jpg" {
		t.Fatalf("expected sorted order, got %+v", list)
	}
	if url, err := store.PresignURL(ctx, "receipts/r1/scan.jpg", core.SignedURLOptions{Method: "get"}); err != nil || url == "" {
		t.Fatalf("presign: %v %s", err, url)
	}
	if _, err := store.PresignURL(ctx, "receipts/r1/scan.jpg", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected unsupported for PUT, got %v", err)
	}
}
