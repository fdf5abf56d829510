package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"pantrycore/pkg/domain"
)

func TestCreateAndGetItem(t *testing.T) {
	store := NewStore(nil)
	var created GroceryItem
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		created, err = tx.CreateItem(GroceryItem{
			Name:     "Milk",
			Quantity: domain.NumericQuantity(1),
			Category: "Dairy",
			Priority: domain.PriorityMedium,
			Status:   domain.StatusToBuy,
		})
		return err
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if created.AddedAt.IsZero() {
		t.Fatal("expected added_at to be stamped")
	}
	got, ok := store.GetItem(created.ID.String())
	if !ok {
		t.Fatal("item not found after commit")
	}
	if got.Name != "Milk" || got.Status != domain.StatusToBuy {
		t.Fatalf("unexpected item %+v", got)
	}
}

func TestTransactionRollbackOnError(t *testing.T) {
	store := NewStore(nil)
	boom := errors.New("boom")
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.CreateItem(GroceryItem{Name: "Bread", Quantity: domain.NumericQuantity(1), Status: domain.StatusToBuy, Priority: domain.PriorityLow}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected propagated error, got %v", err)
	}
	if items := store.ListItems(); len(items) != 0 {
		t.Fatalf("rollback leaked %d items", len(items))
	}
}

type blockEverything struct{}

func (blockEverything) Name() string { return "block_everything" }

func (blockEverything) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	if len(changes) == 0 {
		return domain.Result{}, nil
	}
	return domain.Result{Violations: []domain.Violation{{
		Rule:     "block_everything",
		Severity: domain.SeverityBlock,
		Message:  "no mutations allowed",
	}}}, nil
}

func TestBlockingRulePreventsCommit(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockEverything{})
	store := NewStore(engine)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateItem(GroceryItem{Name: "Eggs", Quantity: domain.NumericQuantity(12), Status: domain.StatusToBuy, Priority: domain.PriorityHigh})
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if items := store.ListItems(); len(items) != 0 {
		t.Fatal("blocked transaction must not commit")
	}
}

func TestUpdateItemNotFound(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.UpdateItem(uuid.NewString(), func(i *GroceryItem) error { return nil })
		return err
	})
	var nf domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestAppendPricePointAccumulates(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	for i, price := range []float64{3.49, 3.99} {
		_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.AppendPricePoint("Whole Milk", "FreshMart", domain.PricePoint{
				Date:  domain.NewDate(2026, time.January, 1+i*7),
				Price: price,
			})
		})
		if err != nil {
			t.Fatalf("append point %d: %v", i, err)
		}
	}
	err := store.View(ctx, func(view TransactionView) error {
		h, ok := view.PriceHistory("Whole Milk", "FreshMart")
		if !ok {
			t.Fatal("history missing")
		}
		if len(h.PricePoints) != 2 {
			t.Fatalf("expected 2 points, got %d", len(h.PricePoints))
		}
		if h.CurrentPrice() != 3.99 {
			t.Fatalf("current price %.2f", h.CurrentPrice())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestAppendPurchaseKeepsCategory(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		if err := tx.AppendPurchase("Bananas", "Produce", domain.PurchaseRecord{Date: domain.NewDate(2026, time.May, 1), Quantity: 1}); err != nil {
			return err
		}
		return tx.AppendPurchase("Bananas", "", domain.PurchaseRecord{Date: domain.NewDate(2026, time.May, 8), Quantity: 2})
	})
	if err != nil {
		t.Fatalf("append purchases: %v", err)
	}
	err = store.View(ctx, func(view TransactionView) error {
		f, ok := view.Frequency("Bananas")
		if !ok {
			t.Fatal("frequency missing")
		}
		if f.Category != "Produce" {
			t.Fatalf("category lost: %q", f.Category)
		}
		if len(f.PurchaseHistory) != 2 {
			t.Fatalf("expected 2 purchases, got %d", len(f.PurchaseHistory))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		if _, err := tx.CreateItem(GroceryItem{Name: "Apples", Quantity: domain.NumericQuantity(6), Status: domain.StatusToBuy, Priority: domain.PriorityMedium}); err != nil {
			return err
		}
		if _, err := tx.SaveBudget(BudgetTracking{Month: "2026-08", MonthlyLimit: 400}); err != nil {
			return err
		}
		_, err := tx.SavePreferences(UserPreferences{User: "sam", FavoriteItems: []string{"Apples"}})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	snapshot := store.ExportState()
	restored := NewStore(nil)
	restored.ImportState(snapshot)

	if items := restored.ListItems(); len(items) != 1 || items[0].Name != "Apples" {
		t.Fatalf("items did not survive round trip: %+v", items)
	}
	err = restored.View(ctx, func(view TransactionView) error {
		if _, ok := view.Budget("2026-08"); !ok {
			t.Fatal("budget missing after import")
		}
		if _, ok := view.UserPreferences("sam"); !ok {
			t.Fatal("preferences missing after import")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestMigrateSnapshotDropsDanglingMatches(t *testing.T) {
	itemID := uuid.New()
	ghostID := uuid.New()
	snapshot := Snapshot{
		List: []GroceryItem{{ID: itemID, Name: "Milk", Quantity: domain.NumericQuantity(1)}},
		Receipts: []Receipt{{
			ID:              uuid.New(),
			StoreName:       "FreshMart",
			TransactionDate: domain.NewDate(2026, time.June, 1),
			LineItems: []domain.LineItem{
				{ItemName: "Milk", Quantity: 1, UnitPrice: 3.49, TotalPrice: 3.49, MatchedListItemID: &itemID},
				{ItemName: "Gum", Quantity: 1, UnitPrice: 1.29, TotalPrice: 1.29, MatchedListItemID: &ghostID},
			},
		}},
	}
	store := NewStore(nil)
	store.ImportState(snapshot)
	receipts := store.ListReceipts()
	if len(receipts) != 1 {
		t.Fatalf("expected 1 receipt, got %d", len(receipts))
	}
	lines := receipts[0].LineItems
	if lines[0].MatchedListItemID == nil {
		t.Fatal("valid match reference was dropped")
	}
	if lines[1].MatchedListItemID != nil {
		t.Fatal("dangling match reference survived migration")
	}
	items := store.ListItems()
	if len(items) != 1 || items[0].Status != domain.StatusToBuy || items[0].Priority != domain.PriorityMedium {
		t.Fatalf("migration defaults not applied: %+v", items)
	}
}

func TestViewIsolation(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.CreateItem(GroceryItem{Name: "Rice", Quantity: domain.NumericQuantity(1), Status: domain.StatusToBuy, Priority: domain.PriorityLow})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	err = store.View(ctx, func(view TransactionView) error {
		items := view.ListItems()
		items[0].Name = "mutated"
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if got := store.ListItems()[0].Name; got != "Rice" {
		t.Fatalf("view mutation leaked into store: %q", got)
	}
}
