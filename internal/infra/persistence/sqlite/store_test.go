package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pantrycore/pkg/domain"
)

func TestSQLitePersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pantry.db")
	ctx := context.Background()

	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateItem(domain.GroceryItem{
			Name:     "Coffee",
			Quantity: domain.NumericQuantity(1),
			Category: "Beverages",
			Priority: domain.PriorityHigh,
			Status:   domain.StatusToBuy,
		}); err != nil {
			return err
		}
		return tx.AppendPurchase("Coffee", "Beverages", domain.PurchaseRecord{
			Date:     domain.NewDate(2026, time.August, 1),
			Quantity: 1,
			Store:    "FreshMart",
		})
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	items := reopened.ListItems()
	if len(items) != 1 || items[0].Name != "Coffee" {
		t.Fatalf("items did not survive reload: %+v", items)
	}
	err = reopened.View(ctx, func(view domain.TransactionView) error {
		f, ok := view.Frequency("Coffee")
		if !ok || len(f.PurchaseHistory) != 1 {
			t.Fatalf("frequency did not survive reload: %+v", f)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestSQLiteStateTableHoldsAllBuckets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pantry.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.SaveBudget(domain.BudgetTracking{Month: "2026-08", MonthlyLimit: 450})
		return err
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&count); err != nil {
		t.Fatalf("count buckets: %v", err)
	}
	if count != len(bucketOrder) {
		t.Fatalf("expected %d buckets persisted, got %d", len(bucketOrder), count)
	}
}
