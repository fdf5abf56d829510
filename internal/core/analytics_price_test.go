package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func appendPrice(t *testing.T, svc *Service, itemName, store string, date Date, price float64) {
	t.Helper()
	_, err := svc.Store().RunInTransaction(context.Background(), func(tx Transaction) error {
		return tx.AppendPricePoint(itemName, store, PricePoint{Date: date, Price: price})
	})
	if err != nil {
		t.Fatalf("append price %s@%s: %v", itemName, store, err)
	}
}

func TestComparePricesAcrossStores(t *testing.T) {
	svc := newTestService(day(time.April, 15))
	ctx := context.Background()

	appendPrice(t, svc, "Milk", "Giant", day(time.April, 10), 5.49)
	appendPrice(t, svc, "Milk", "Safeway", day(time.April, 12), 4.99)

	comparison, err := svc.ComparePrices(ctx, "Milk")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if comparison.CheapestStore != "Safeway" || comparison.CheapestPrice != 4.99 {
		t.Fatalf("cheapest = %s at %.2f, want Safeway at 4.99", comparison.CheapestStore, comparison.CheapestPrice)
	}
	if comparison.Savings != 0.50 {
		t.Fatalf("savings = %.2f, want 0.50", comparison.Savings)
	}
	if comparison.Stores["Giant"] != 5.49 {
		t.Fatalf("stores = %+v", comparison.Stores)
	}
}

func TestComparePricesSingleStoreHasNoSavings(t *testing.T) {
	svc := newTestService(day(time.April, 15))
	appendPrice(t, svc, "Milk", "Giant", day(time.April, 10), 3.99)

	comparison, err := svc.ComparePrices(context.Background(), "Milk")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if comparison.Savings != 0 {
		t.Fatalf("savings = %.2f, want 0 for a single store", comparison.Savings)
	}
}

func TestComparePricesMergesNameVariants(t *testing.T) {
	svc := newTestService(day(time.April, 15))

	appendPrice(t, svc, "Whole Milk 2%", "Giant", day(time.April, 10), 3.99)
	appendPrice(t, svc, "whole   milk", "Safeway", day(time.April, 12), 3.49)

	comparison, err := svc.ComparePrices(context.Background(), "milk")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if len(comparison.Stores) != 2 {
		t.Fatalf("stores = %+v, want both variants merged", comparison.Stores)
	}
	if comparison.CheapestStore != "Safeway" {
		t.Fatalf("cheapest = %q, want Safeway", comparison.CheapestStore)
	}
}

func TestComparePricesUsesLatestPerStore(t *testing.T) {
	svc := newTestService(day(time.April, 15))

	appendPrice(t, svc, "Milk", "Giant", day(time.April, 1), 2.99)
	appendPrice(t, svc, "Milk", "Giant", day(time.April, 12), 3.79)

	comparison, err := svc.ComparePrices(context.Background(), "Milk")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if comparison.Stores["Giant"] != 3.79 {
		t.Fatalf("current price = %.2f, want the latest 3.79", comparison.Stores["Giant"])
	}
}

func TestComparePricesTrailingAverages(t *testing.T) {
	svc := newTestService(day(time.April, 15))

	// Inside the 30-day window.
	appendPrice(t, svc, "Milk", "Giant", day(time.April, 1), 3.00)
	appendPrice(t, svc, "Milk", "Giant", day(time.April, 12), 4.00)
	// Older than 30 days but inside 90.
	appendPrice(t, svc, "Milk", "Giant", day(time.February, 1), 2.00)

	comparison, err := svc.ComparePrices(context.Background(), "Milk")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if comparison.Average30d == nil || *comparison.Average30d != 3.50 {
		t.Fatalf("30d average = %v, want 3.50", comparison.Average30d)
	}
	if comparison.Average90d == nil || *comparison.Average90d != 3.00 {
		t.Fatalf("90d average = %v, want 3.00", comparison.Average90d)
	}
	// Latest price 4.00 vs the window averages.
	if comparison.DeltaVs30dPct == nil || *comparison.DeltaVs30dPct != 14.3 {
		t.Fatalf("30d delta = %v, want 14.3", comparison.DeltaVs30dPct)
	}
	if comparison.DeltaVs90dPct == nil || *comparison.DeltaVs90dPct != 33.3 {
		t.Fatalf("90d delta = %v, want 33.3", comparison.DeltaVs90dPct)
	}
}

func TestComparePricesUnknownItem(t *testing.T) {
	svc := newTestService(day(time.April, 15))
	var nfe NotFoundError
	if _, err := svc.ComparePrices(context.Background(), "Dragonfruit"); !errors.As(err, &nfe) {
		t.Fatalf("expected not found, got %v", err)
	}
	if nfe.Entity != EntityPriceHistory {
		t.Fatalf("entity = %q, want price history", nfe.Entity)
	}
}
