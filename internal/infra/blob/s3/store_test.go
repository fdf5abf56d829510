package s3

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"

	"pantrycore/internal/blob/core"
)

func TestStore_MockedBasicFlow(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()
	if store.Driver() != core.DriverS3 {
		t.Fatalf("expected DriverS3")
	}
	info, err := store.Put(ctx, "receipts/r1/scan.jpg", bytes.NewReader([]byte("hello")), core.PutOptions{ContentType: "image/jpeg"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "receipts/r1/scan.jpg" || info.ContentType != "image/jpeg" || info.Size < 5 {
		t.Fatalf("unexpected info %#v", info)
	}
	if _, err := store.Put(ctx, "receipts/r1/scan.jpg", bytes.NewReader([]byte("ignored")), core.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate put error")
	}
	if _, err := store.Head(ctx, "receipts/r1/scan.jpg"); err != nil {
		t.Fatalf("head: %v", err)
	}
	_, rc, err := store.Get(ctx, "receipts/r1/scan.jpg")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "hello" {
		t.Fatalf("get mismatch: %q", string(data))
	}
	list, err := store.List(ctx, "receipts/")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %+v", err, list)
	}
	if url, err := store.PresignURL(ctx, "receipts/r1/scan.jpg", core.SignedURLOptions{Expiry: 30 * time.Second}); err != nil || url == "" {
		t.Fatalf("presign: %v %s", err, url)
	}
	if ok, err := store.Delete(ctx, "receipts/r1/scan.jpg"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
}

func TestStore_ErrorPaths(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()
	if _, err := store.Head(ctx, "nope"); err == nil {
		t.Fatalf("expected head error for missing key")
	}
	if _, _, err := store.Get(ctx, "nope"); err == nil {
		t.Fatalf("expected get error for missing key")
	}
	if _, err := store.PresignURL(ctx, "k", core.SignedURLOptions{Method: "PUT"}); err == nil {
		t.Fatalf("expected presign unsupported error")
	}
	if _, err := New(ctx, Config{}); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
}

func TestStore_OpenFromEnv(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "SECRET")
	t.Setenv("PANTRYCORE_BLOB_S3_BUCKET", "")
	if _, err := OpenFromEnv(context.Background()); err == nil {
		t.Fatalf("expected error without bucket")
	}
	t.Setenv("PANTRYCORE_BLOB_S3_BUCKET", "env-bucket")
	t.Setenv("PANTRYCORE_BLOB_S3_REGION", "us-east-1")
	if _, err := OpenFromEnv(context.Background()); err != nil {
		t.Fatalf("OpenFromEnv: %v", err)
	}
}

func TestObjectInfoNilFields(t *testing.T) {
	store := NewMockForTests()
	info := store.objectInfo("k", aws.Int64(10), nil, aws.String("\"etagval\""), map[string]string{"x": "y"}, nil)
	if info.ETag != "etagval" || info.ContentType != "" || info.Key != "k" || info.Size != 10 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestDecodeAWSChunked(t *testing.T) {
	if _, ok := decodeAWSChunked([]byte("not-chunked")); ok {
		t.Fatalf("expected failure for plain body")
	}
	if _, ok := decodeAWSChunked([]byte("5\r\nabc\r\n0\r\n")); ok {
		t.Fatalf("size mismatch should fail")
	}
	if b, ok := decodeAWSChunked([]byte("5\r\nhello\r\n0\r\n")); !ok || string(b) != "hello" {
		t.Fatalf("expected decode hello")
	}
}

func TestMockTransportUnsupportedMethod(t *testing.T) {
	rt := &mockTransport{objects: make(map[string]mockObject)}
	req, _ := http.NewRequest(http.MethodPatch, "https://mock.s3.local/bucket/key", nil)
	resp, _ := rt.RoundTrip(req)
	if resp.StatusCode != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", resp.StatusCode)
	}
}
