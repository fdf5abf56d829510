package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedStoreHistory(t *testing.T, svc *Service, itemName, store string, prices []float64, latest Date) {
	t.Helper()
	for i, price := range prices {
		appendPrice(t, svc, itemName, store, latest.AddDays(-7*(len(prices)-1-i)), price)
	}
}

func TestRecommendItemRanksStores(t *testing.T) {
	svc := newTestService(day(time.April, 30))
	ctx := context.Background()

	// Safeway is consistently cheaper with the same depth and freshness.
	seedStoreHistory(t, svc, "Milk", "Giant", []float64{3.99, 4.09, 3.99, 4.19}, day(time.April, 28))
	seedStoreHistory(t, svc, "Milk", "Safeway", []float64{3.49, 3.59, 3.49, 3.39}, day(time.April, 28))

	recommendation, err := svc.RecommendItem(ctx, "Milk", DefaultRecommendationConfidence)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if recommendation == nil {
		t.Fatal("expected a recommendation")
	}
	if recommendation.RecommendedStore != "Safeway" {
		t.Fatalf("recommended %q, want Safeway", recommendation.RecommendedStore)
	}
	if len(recommendation.RankedStores) != 2 {
		t.Fatalf("ranked %d stores, want 2", len(recommendation.RankedStores))
	}
	top := recommendation.RankedStores[0]
	if top.Rank != 1 || top.CurrentPrice != 3.39 || top.Samples != 4 {
		t.Fatalf("unexpected top store %+v", top)
	}
	if recommendation.ConfidenceScore < DefaultRecommendationConfidence {
		t.Fatalf("confidence %.2f below threshold", recommendation.ConfidenceScore)
	}
}

func TestRecommendItemPenalizesOutOfStock(t *testing.T) {
	svc := newTestService(day(time.April, 30))
	ctx := context.Background()

	// Identical price data, but Giant keeps running out.
	seedStoreHistory(t, svc, "Milk", "Giant", []float64{3.49, 3.49, 3.49}, day(time.April, 28))
	seedStoreHistory(t, svc, "Milk", "Safeway", []float64{3.49, 3.49, 3.49}, day(time.April, 28))
	for i := 0; i < 3; i++ {
		if _, _, err := svc.ReportOutOfStock(ctx, "Milk", "Giant", "", ""); err != nil {
			t.Fatalf("report: %v", err)
		}
	}

	recommendation, err := svc.RecommendItem(ctx, "Milk", 0)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if recommendation.RecommendedStore != "Safeway" {
		t.Fatalf("recommended %q, want Safeway over the unreliable store", recommendation.RecommendedStore)
	}
	for _, ranked := range recommendation.RankedStores {
		if ranked.Store == "Giant" && ranked.OutOfStockCount != 3 {
			t.Fatalf("giant out-of-stock count = %d, want 3", ranked.OutOfStockCount)
		}
	}
}

func TestRecommendItemBelowConfidence(t *testing.T) {
	svc := newTestService(day(time.April, 30))

	// One stale observation at one store: confidence collapses.
	appendPrice(t, svc, "Saffron", "Giant", day(time.January, 5), 12.99)

	recommendation, err := svc.RecommendItem(context.Background(), "Saffron", DefaultRecommendationConfidence)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if recommendation != nil {
		t.Fatalf("expected nil below confidence, got %+v", recommendation)
	}
}

func TestRecommendItemUnknown(t *testing.T) {
	svc := newTestService(day(time.April, 30))
	var nfe NotFoundError
	if _, err := svc.RecommendItem(context.Background(), "Dragonfruit", 0); !errors.As(err, &nfe) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPlanShoppingRouteEmptyList(t *testing.T) {
	svc := newTestService(day(time.April, 30))
	route, err := svc.PlanShoppingRoute(context.Background())
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if route.TotalItems != 0 || len(route.Stops) != 0 {
		t.Fatalf("unexpected route %+v", route)
	}
}

func TestPlanShoppingRouteAssignment(t *testing.T) {
	svc := newTestService(day(time.April, 30))
	ctx := context.Background()

	// Explicit store preference wins over everything.
	mustAddItem(t, svc, AddItemInput{Name: "Milk", Store: "Costco"})
	// No store on the item, but price history drives an assignment.
	seedStoreHistory(t, svc, "Coffee", "Safeway", []float64{8.99, 8.49, 8.99}, day(time.April, 28))
	item := mustAddItem(t, svc, AddItemInput{Name: "Coffee"})
	blank := ""
	if _, _, err := svc.UpdateItem(ctx, item.ID.String(), ItemUpdate{Store: &blank}); err != nil {
		t.Fatalf("clear store: %v", err)
	}
	// Nothing known about this one at all.
	unknown := mustAddItem(t, svc, AddItemInput{Name: "Zucchini Relish"})
	if _, _, err := svc.UpdateItem(ctx, unknown.ID.String(), ItemUpdate{Store: &blank}); err != nil {
		t.Fatalf("clear store: %v", err)
	}

	route, err := svc.PlanShoppingRoute(ctx)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if route.TotalItems != 3 {
		t.Fatalf("total items = %d, want 3", route.TotalItems)
	}
	if len(route.Stops) != 2 {
		t.Fatalf("stops = %+v, want Costco and Safeway", route.Stops)
	}
	bySource := make(map[string]string)
	for _, stop := range route.Stops {
		for _, stopItem := range stop.Items {
			bySource[stopItem.ItemName] = stopItem.Source
		}
	}
	if bySource["Milk"] != "list_preference" {
		t.Fatalf("milk source = %q, want list_preference", bySource["Milk"])
	}
	if src := bySource["Coffee"]; src != "recommendation" && src != "price_history" {
		t.Fatalf("coffee source = %q, want history-driven assignment", src)
	}
	if len(route.Unassigned) != 1 || route.Unassigned[0].ItemName != "Zucchini Relish" {
		t.Fatalf("unassigned = %+v, want the unknown item", route.Unassigned)
	}
}

func TestPlanShoppingRouteStopOrdering(t *testing.T) {
	svc := newTestService(day(time.April, 30))
	ctx := context.Background()

	mustAddItem(t, svc, AddItemInput{Name: "Milk", Store: "Safeway"})
	mustAddItem(t, svc, AddItemInput{Name: "Eggs", Store: "Safeway"})
	mustAddItem(t, svc, AddItemInput{Name: "Bread", Store: "Costco"})

	route, err := svc.PlanShoppingRoute(ctx)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if len(route.Stops) != 2 {
		t.Fatalf("stops = %+v", route.Stops)
	}
	// Larger stop first, then alphabetical.
	if route.Stops[0].Store != "Safeway" || route.Stops[0].ItemCount != 2 {
		t.Fatalf("first stop = %+v, want Safeway with 2 items", route.Stops[0])
	}
	if route.Stops[1].Store != "Costco" || route.Stops[1].StopNumber != 2 {
		t.Fatalf("second stop = %+v, want Costco", route.Stops[1])
	}
}

func TestPlanShoppingRouteItemOrderingWithinStop(t *testing.T) {
	svc := newTestService(day(time.April, 30))
	ctx := context.Background()

	mustAddItem(t, svc, AddItemInput{Name: "Milk", Store: "Giant", Priority: PriorityLow})
	mustAddItem(t, svc, AddItemInput{Name: "Eggs", Store: "Giant", Priority: PriorityHigh})
	mustAddItem(t, svc, AddItemInput{Name: "Apples", Store: "Giant", Priority: PriorityHigh})

	route, err := svc.PlanShoppingRoute(ctx)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if len(route.Stops) != 1 {
		t.Fatalf("stops = %+v", route.Stops)
	}
	items := route.Stops[0].Items
	if items[0].ItemName != "Apples" || items[1].ItemName != "Eggs" || items[2].ItemName != "Milk" {
		t.Fatalf("item order = %v, want high-priority first then name", itemNames(items))
	}
}

func itemNames(items []RouteItem) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.ItemName
	}
	return names
}
