package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pantrycore/internal/blob"
	core "pantrycore/internal/core"
	domain "pantrycore/pkg/domain"
)

// TestIntegrationSmoke exercises a minimal end-to-end shopping cycle for each
// supported in-process storage and document adapter. It intentionally keeps
// scope tiny so it can act as a fast CI health check.
func TestIntegrationSmoke(t *testing.T) {
	ctx := context.Background()

	storeVariants := []struct {
		name string
		open func(t *testing.T) domain.PersistentStore
	}{
		{
			name: "memory-store",
			open: func(_ *testing.T) domain.PersistentStore {
				return core.NewMemoryStore(core.NewDefaultRulesEngine())
			},
		},
		{
			name: "sqlite-store",
			open: func(t *testing.T) domain.PersistentStore {
				path := filepath.Join(t.TempDir(), "pantry.db")
				s, err := core.NewSQLiteStore(path, core.NewDefaultRulesEngine())
				if err != nil {
					t.Fatalf("new sqlite store: %v", err)
				}
				return s
			},
		},
		{
			name: "jsonfile-store",
			open: func(t *testing.T) domain.PersistentStore {
				s, err := core.NewJSONFileStore(t.TempDir(), core.NewDefaultRulesEngine())
				if err != nil {
					t.Fatalf("new jsonfile store: %v", err)
				}
				return s
			},
		},
	}

	blobVariants := []struct {
		name string
		open func(t *testing.T) blob.Store
	}{
		{
			name: "memory-blob",
			open: func(_ *testing.T) blob.Store { return blob.NewMemory() },
		},
		{
			name: "filesystem-blob",
			open: func(t *testing.T) blob.Store {
				fs, err := blob.NewFilesystem(t.TempDir())
				if err != nil {
					t.Fatalf("new filesystem blob: %v", err)
				}
				return fs
			},
		},
		{
			name: "mock-s3-blob",
			open: func(_ *testing.T) blob.Store { return blob.NewMockS3ForTests() },
		},
	}

	today := domain.NewDate(2026, time.April, 15)

	for _, sv := range storeVariants {
		t.Run(sv.name, func(t *testing.T) {
			store := sv.open(t)
			metricsRecorder := core.NewExpvarMetricsRecorder("")
			var traceBuffer bytes.Buffer
			tracer := core.NewJSONTracer(&traceBuffer)
			svc := core.NewService(
				store,
				core.WithMetrics(metricsRecorder),
				core.WithTracer(tracer),
				core.WithClock(func() time.Time { return today.Time() }),
				core.WithDocumentStore(blob.NewMemory()),
			)

			item, res, err := svc.AddItem(ctx, core.AddItemInput{Name: "Milk", Store: "Giant"})
			if err != nil {
				t.Fatalf("add item: %v", err)
			}
			if res.HasBlocking() {
				t.Fatalf("unexpected blocking violations: %+v", res.Violations)
			}

			result, _, err := svc.ProcessReceipt(ctx, core.ReceiptInput{
				StoreName:       "Giant",
				TransactionDate: today,
				LineItems: []core.LineItem{
					{ItemName: "Whole Milk 2%", Quantity: 1, UnitPrice: 3.99, TotalPrice: 3.99},
				},
				Total: 3.99,
			})
			if err != nil {
				t.Fatalf("process receipt: %v", err)
			}
			if result.MatchedItems != 1 {
				t.Fatalf("expected the milk line to reconcile, got %+v", result)
			}

			got, ok := store.GetItem(item.ID.String())
			if !ok || got.Status != domain.StatusBought {
				t.Fatalf("expected item bought after reconciliation, got %+v", got)
			}
			if len(store.ListReceipts()) != 1 {
				t.Fatalf("expected one persisted receipt")
			}

			info, err := svc.ExportSnapshot(ctx)
			if err != nil {
				t.Fatalf("export snapshot: %v", err)
			}
			if info.Size == 0 {
				t.Fatalf("expected non-empty export, got %+v", info)
			}

			snapshot := metricsRecorder.Snapshot()
			if len(snapshot.DurationsMS) == 0 {
				t.Fatalf("expected metrics durations for operations, got empty")
			}
			if snapshot.Results["process_receipt"]["success"] == 0 {
				t.Fatalf("expected process_receipt success metric recorded: %+v", snapshot.Results)
			}
			if traceBuffer.Len() == 0 {
				t.Fatalf("expected trace exporter to emit spans")
			}
			var foundSpan bool
			for _, entry := range tracer.Entries() {
				if entry.Operation == "add_item" && entry.Status == "success" {
					foundSpan = true
					break
				}
			}
			if !foundSpan {
				t.Fatalf("expected trace entry for add_item, entries=%+v", tracer.Entries())
			}
		})
	}

	for _, bv := range blobVariants {
		t.Run(bv.name, func(t *testing.T) {
			bs := bv.open(t)
			key := "receipts/smoke/scan.txt"
			payload := []byte("hello")
			info, err := bs.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{ContentType: "text/plain"})
			if err != nil {
				t.Fatalf("blob put: %v", err)
			}
			if info.Key != key || info.Size <= 0 {
				t.Fatalf("unexpected blob info: %+v", info)
			}
			_, rc, err := bs.Get(ctx, key)
			if err != nil {
				t.Fatalf("blob get: %v", err)
			}
			var buf bytes.Buffer
			if _, err := buf.ReadFrom(rc); err != nil {
				t.Fatalf("read payload: %v", err)
			}
			_ = rc.Close()
			if buf.String() != string(payload) {
				t.Fatalf("payload mismatch got=%q want=%q", buf.String(), payload)
			}
			if ok, err := bs.Delete(ctx, key); err != nil || !ok {
				t.Fatalf("blob delete: %v ok=%v", err, ok)
			}
		})
	}

	// Guard against test-induced env leakage into other packages.
	if os.Getenv("PANTRYCORE_BLOB_DRIVER") != "" || os.Getenv("PANTRYCORE_STORAGE_DRIVER") != "" {
		t.Fatalf("expected no test-induced env leakage")
	}
}
