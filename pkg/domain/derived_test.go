package domain

import (
	"testing"
	"time"
)

func day(m time.Month, d int) Date { return NewDate(2026, m, d) }

func TestPriceHistoryAggregates(t *testing.T) {
	h := PriceHistory{
		ItemName: "milk",
		Store:    "FreshMart",
		PricePoints: []PricePoint{
			{Date: day(time.January, 5), Price: 3.50},
			{Date: day(time.February, 2), Price: 4.00},
			{Date: day(time.January, 20), Price: 3.00},
		},
	}
	if got := h.CurrentPrice(); got != 4.00 {
		t.Fatalf("CurrentPrice = %.2f, want 4.00", got)
	}
	if got := h.AveragePrice(); got != 3.50 {
		t.Fatalf("AveragePrice = %.2f, want 3.50", got)
	}
	if h.LowestPrice() != 3.00 || h.HighestPrice() != 4.00 {
		t.Fatalf("range %.2f-%.2f", h.LowestPrice(), h.HighestPrice())
	}
}

func TestPriceHistoryEmpty(t *testing.T) {
	var h PriceHistory
	if h.LatestPoint() != nil || h.CurrentPrice() != 0 || h.AveragePrice() != 0 {
		t.Fatal("empty history should report zeros")
	}
}

func TestFrequencyAverageInterval(t *testing.T) {
	f := FrequencyData{
		ItemName: "coffee",
		PurchaseHistory: []PurchaseRecord{
			{Date: day(time.January, 15), Quantity: 1},
			{Date: day(time.January, 1), Quantity: 1},
			{Date: day(time.January, 29), Quantity: 1},
		},
	}
	if got := f.AverageDaysBetweenPurchases(); got != 14 {
		t.Fatalf("average interval = %.1f, want 14", got)
	}
	if got := f.LastPurchased(); !got.Equal(day(time.January, 29)) {
		t.Fatalf("last purchased %s", got)
	}
	next := f.NextExpectedPurchase()
	if !next.Equal(day(time.February, 12)) {
		t.Fatalf("next expected %s", next)
	}
	if got := f.DaysSinceLastPurchase(day(time.February, 5)); got != 7 {
		t.Fatalf("days since = %d, want 7", got)
	}
}

func TestFrequencyNextExpectedRoundsInterval(t *testing.T) {
	// Intervals 7, 6, 7 average to 6.67; the projection advances 7 days,
	// not a truncated 6.
	f := FrequencyData{
		ItemName: "yogurt",
		PurchaseHistory: []PurchaseRecord{
			{Date: day(time.March, 1), Quantity: 1},
			{Date: day(time.March, 8), Quantity: 1},
			{Date: day(time.March, 14), Quantity: 1},
			{Date: day(time.March, 21), Quantity: 1},
		},
	}
	if next := f.NextExpectedPurchase(); !next.Equal(day(time.March, 28)) {
		t.Fatalf("next expected %s, want March 28", next)
	}
}

func TestFrequencySinglePurchase(t *testing.T) {
	f := FrequencyData{PurchaseHistory: []PurchaseRecord{{Date: day(time.March, 1), Quantity: 1}}}
	if f.AverageDaysBetweenPurchases() != 0 {
		t.Fatal("single purchase should yield zero interval")
	}
	if !f.NextExpectedPurchase().IsZero() {
		t.Fatal("single purchase should not project a next date")
	}
	var empty FrequencyData
	if got := empty.DaysSinceLastPurchase(day(time.March, 1)); got != -1 {
		t.Fatalf("empty history days since = %d, want -1", got)
	}
}

func TestInventoryExpiration(t *testing.T) {
	exp := day(time.April, 10)
	item := InventoryItem{ItemName: "yogurt", Quantity: 2, LowStockThreshold: 1, ExpirationDate: &exp}
	if item.IsExpired(day(time.April, 9)) {
		t.Fatal("not yet expired")
	}
	if !item.IsExpired(day(time.April, 11)) {
		t.Fatal("should be expired")
	}
	left, ok := item.DaysUntilExpiration(day(time.April, 7))
	if !ok || left != 3 {
		t.Fatalf("days until expiration = %d ok=%v", left, ok)
	}
	if item.IsLowStock() {
		t.Fatal("quantity above threshold")
	}
	item.Quantity = 1
	if !item.IsLowStock() {
		t.Fatal("quantity at threshold should be low")
	}
}

func TestBudgetRemaining(t *testing.T) {
	b := BudgetTracking{Month: "2026-04", MonthlyLimit: 500, TotalSpent: 420}
	if b.Remaining() != 80 || b.OverBudget() {
		t.Fatalf("remaining %.2f over=%v", b.Remaining(), b.OverBudget())
	}
	b.TotalSpent = 600
	if b.Remaining() != 0 || !b.OverBudget() {
		t.Fatalf("overspent budget: remaining %.2f over=%v", b.Remaining(), b.OverBudget())
	}
}

func TestLineItemSavings(t *testing.T) {
	reg := 4.99
	li := LineItem{ItemName: "cheese", UnitPrice: 3.99, DiscountAmount: 0.50, CouponAmount: 0.25, RegularUnitPrice: &reg}
	if !li.OnSale() {
		t.Fatal("discounted line should read as sale")
	}
	if got := li.LineSavings(); got != 0.75 {
		t.Fatalf("line savings = %.2f, want 0.75", got)
	}
	plain := LineItem{ItemName: "bread", UnitPrice: 2.49}
	if plain.OnSale() || plain.LineSavings() != 0 {
		t.Fatal("plain line should not read as sale")
	}
}
