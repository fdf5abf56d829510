package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBudgetStatusRecomputesFromReceipts(t *testing.T) {
	svc := newTestService(day(time.April, 15))
	ctx := context.Background()

	if _, _, err := svc.SetBudget(ctx, 500, map[string]float64{CategoryDairy: 50}, "2026-04"); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	processReceipt(t, svc, ReceiptInput{
		StoreName:       "Giant",
		TransactionDate: day(time.April, 3),
		LineItems: []LineItem{
			{ItemName: "Whole Milk", Quantity: 1, UnitPrice: 3.99, TotalPrice: 3.99},
			{ItemName: "Bananas", Quantity: 2, UnitPrice: 1.50, TotalPrice: 3.00},
		},
		Total: 9.48,
	})
	// Other months never count against this budget.
	processReceipt(t, svc, ReceiptInput{
		StoreName:       "Giant",
		TransactionDate: day(time.March, 28),
		LineItems:       []LineItem{{ItemName: "Coffee", Quantity: 1, UnitPrice: 12.99, TotalPrice: 12.99}},
		Total:           12.99,
	})

	status, err := svc.BudgetStatus(ctx, "2026-04")
	if err != nil {
		t.Fatalf("budget status: %v", err)
	}
	if status.TotalSpent != 9.48 {
		t.Fatalf("spent = %.2f, want 9.48", status.TotalSpent)
	}
	if status.TotalRemaining != 490.52 {
		t.Fatalf("remaining = %.2f, want 490.52", status.TotalRemaining)
	}
	if status.TotalPercentageUsed != 1.9 {
		t.Fatalf("percentage = %.1f, want 1.9", status.TotalPercentageUsed)
	}
	if len(status.CategoryBudgets) != 1 || status.CategoryBudgets[0].Spent != 3.99 {
		t.Fatalf("category budgets = %+v, want dairy spend 3.99", status.CategoryBudgets)
	}
}

func TestBudgetStatusOverspendGoesNegative(t *testing.T) {
	svc := newTestService(day(time.April, 15))
	ctx := context.Background()

	if _, _, err := svc.SetBudget(ctx, 10, nil, "2026-04"); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	processReceipt(t, svc, ReceiptInput{
		StoreName:       "Giant",
		TransactionDate: day(time.April, 3),
		LineItems:       []LineItem{{ItemName: "Steak", Quantity: 1, UnitPrice: 24.99, TotalPrice: 24.99}},
		Total:           24.99,
	})

	status, err := svc.BudgetStatus(ctx, "2026-04")
	if err != nil {
		t.Fatalf("budget status: %v", err)
	}
	if status.TotalRemaining != -14.99 {
		t.Fatalf("remaining = %.2f, want -14.99", status.TotalRemaining)
	}
}

func TestBudgetStatusUnknownMonth(t *testing.T) {
	svc := newTestService(day(time.April, 15))
	var nfe NotFoundError
	if _, err := svc.BudgetStatus(context.Background(), "2026-01"); !errors.As(err, &nfe) {
		t.Fatalf("expected not found, got %v", err)
	}
	if nfe.Entity != EntityBudget {
		t.Fatalf("entity = %q, want budget", nfe.Entity)
	}
}

func TestNearBudgetLimit(t *testing.T) {
	svc := newTestService(day(time.April, 15))
	ctx := context.Background()

	if _, _, err := svc.SetBudget(ctx, 100, nil, "2026-04"); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	processReceipt(t, svc, ReceiptInput{
		StoreName:       "Giant",
		TransactionDate: day(time.April, 3),
		LineItems:       []LineItem{{ItemName: "Groceries", Quantity: 1, UnitPrice: 85, TotalPrice: 85}},
		Total:           85,
	})

	near, err := svc.NearBudgetLimit(ctx, "2026-04", 0)
	if err != nil {
		t.Fatalf("near limit: %v", err)
	}
	if near {
		t.Fatal("85% spent should be under the default 90% threshold")
	}

	processReceipt(t, svc, ReceiptInput{
		StoreName:       "Giant",
		TransactionDate: day(time.April, 10),
		LineItems:       []LineItem{{ItemName: "Snacks", Quantity: 1, UnitPrice: 10, TotalPrice: 10}},
		Total:           10,
	})
	near, err = svc.NearBudgetLimit(ctx, "2026-04", 0)
	if err != nil {
		t.Fatalf("near limit: %v", err)
	}
	if !near {
		t.Fatal("95% spent should cross the default threshold")
	}
}
