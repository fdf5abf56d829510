package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"pantrycore/pkg/normalize"
)

// DefaultRecommendationConfidence is the minimum composite confidence a
// recommendation needs before it is surfaced.
const DefaultRecommendationConfidence = 0.45

// RecommendItem ranks the stores an item has been seen at, combining price,
// data recency, sample depth, and out-of-stock history into one score. It
// returns nil when aggregate confidence falls below minConfidence, and
// NotFoundError when the item has no price history at all.
func (s *Service) RecommendItem(ctx context.Context, itemName string, minConfidence float64) (*ItemRecommendation, error) {
	ctx, done := s.instrument(ctx, "recommend_item")
	var recommendation *ItemRecommendation
	err := s.store.View(ctx, func(view TransactionView) error {
		var err error
		recommendation, err = s.recommendItemFrom(view, itemName, minConfidence)
		return err
	})
	done(err)
	if err != nil {
		return nil, err
	}
	return recommendation, nil
}

type storeStats struct {
	store       string
	points      []PricePoint
	current     float64
	average     float64
	samples     int
	recencyDays int
	oosCount    int
	score       float64
}

func (s *Service) recommendItemFrom(view TransactionView, itemName string, minConfidence float64) (*ItemRecommendation, error) {
	canonical := normalize.Canonical(itemName)
	today := s.today()

	grouped := groupPriceHistories(view.PriceHistories())
	item := grouped[canonical]
	if item == nil {
		return nil, NotFoundError{Entity: EntityPriceHistory, Key: itemName}
	}

	oosByStore := make(map[string]int)
	oosRecords := view.OutOfStockRecords()
	for _, record := range oosRecords {
		if normalize.Canonical(record.ItemName) == canonical {
			oosByStore[record.Store]++
		}
	}

	var stats []*storeStats
	for _, store := range sortedCanonicalKeys(item.stores) {
		points := item.stores[store]
		latest := latestPoint(points)
		if latest == nil {
			continue
		}
		recency := today.DaysSince(latest.Date)
		if recency < 0 {
			recency = 0
		}
		var sum float64
		for _, p := range points {
			sum += p.Price
		}
		stats = append(stats, &storeStats{
			store:       store,
			points:      points,
			current:     latest.Price,
			average:     round2(sum / float64(len(points))),
			samples:     len(points),
			recencyDays: recency,
			oosCount:    oosByStore[store],
		})
	}
	if len(stats) == 0 {
		return nil, NotFoundError{Entity: EntityPriceHistory, Key: itemName}
	}

	minPrice, maxPrice := stats[0].current, stats[0].current
	for _, st := range stats[1:] {
		if st.current < minPrice {
			minPrice = st.current
		}
		if st.current > maxPrice {
			maxPrice = st.current
		}
	}

	for _, st := range stats {
		priceScore := 0.7
		if maxPrice > minPrice {
			priceScore = (maxPrice - st.current) / (maxPrice - minPrice)
		}
		recencyScore := clamp01(1.0 - float64(st.recencyDays)/90.0)
		sampleScore := clamp01(float64(st.samples) / 6.0)
		availabilityScore := clamp01(1.0 - float64(minInt(st.oosCount, 5))/5.0)
		st.score = round4(0.5*priceScore + 0.2*recencyScore + 0.15*sampleScore + 0.15*availabilityScore)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].score != stats[j].score {
			return stats[i].score > stats[j].score
		}
		if stats[i].current != stats[j].current {
			return stats[i].current < stats[j].current
		}
		if stats[i].oosCount != stats[j].oosCount {
			return stats[i].oosCount < stats[j].oosCount
		}
		return strings.ToLower(stats[i].store) < strings.ToLower(stats[j].store)
	})

	totalSamples := 0
	var freshness, availability float64
	for _, st := range stats {
		totalSamples += st.samples
		freshness += clamp01(1.0 - float64(st.recencyDays)/90.0)
		availability += clamp01(1.0 - float64(minInt(st.oosCount, 5))/5.0)
	}
	n := float64(len(stats))
	confidenceScore := round2(0.3*clamp01(n/3.0) +
		0.35*clamp01(float64(totalSamples)/12.0) +
		0.2*freshness/n +
		0.15*availability/n)
	if confidenceScore < minConfidence {
		return nil, nil
	}

	confidence := "medium"
	if confidenceScore >= 0.75 {
		confidence = "high"
	}

	ranked := make([]StoreScore, 0, len(stats))
	for rank, st := range stats {
		var rationale []string
		if st.current == minPrice {
			rationale = append(rationale, "Lowest current price.")
		}
		if st.oosCount == 0 {
			rationale = append(rationale, "No out-of-stock reports.")
		} else {
			rationale = append(rationale, fmt.Sprintf("%d out-of-stock reports.", st.oosCount))
		}
		if st.recencyDays <= 14 {
			rationale = append(rationale, "Recent price data.")
		} else if st.recencyDays > 60 {
			rationale = append(rationale, "Price data is stale.")
		}
		ranked = append(ranked, StoreScore{
			Store:           st.store,
			Rank:            rank + 1,
			Score:           st.score,
			CurrentPrice:    st.current,
			AveragePrice:    st.average,
			OutOfStockCount: st.oosCount,
			Samples:         st.samples,
			RecencyDays:     st.recencyDays,
			Rationale:       rationale,
		})
	}

	substitutions := substitutionRecommendations(canonical, oosRecords)
	rationale := []string{
		"Ranking uses price, recency, sample depth, and out-of-stock history.",
	}
	if len(stats) > 1 && maxPrice > minPrice {
		rationale = append(rationale, fmt.Sprintf("Current price spread across stores: $%.2f.", maxPrice-minPrice))
	}
	if len(substitutions) > 0 {
		rationale = append(rationale, fmt.Sprintf("Common substitute: %s.", substitutions[0].ItemName))
	}

	return &ItemRecommendation{
		ItemName:         normalize.DisplayName(item.displayName),
		Confidence:       confidence,
		ConfidenceScore:  confidenceScore,
		RecommendedStore: ranked[0].Store,
		RankedStores:     ranked,
		Substitutions:    substitutions,
		Rationale:        rationale,
	}, nil
}

// PlanShoppingRoute assigns every pending list item to a store stop. Store
// precedence per item: explicit list preference, then recommendation engine
// output, then the cheapest recent-price store, else unassigned. Stops are
// ordered by item count descending, then store name ascending.
func (s *Service) PlanShoppingRoute(ctx context.Context) (ShoppingRoute, error) {
	ctx, done := s.instrument(ctx, "plan_shopping_route")
	var route ShoppingRoute
	err := s.store.View(ctx, func(view TransactionView) error {
		var pending []GroceryItem
		for _, item := range view.ListItems() {
			if item.Status != StatusBought {
				pending = append(pending, item)
			}
		}
		if len(pending) == 0 {
			route = ShoppingRoute{Rationale: []string{"No pending grocery list items to route."}}
			return nil
		}

		grouped := groupPriceHistories(view.PriceHistories())
		assignments := make(map[string][]RouteItem)
		var unassigned []RouteItem

		for _, item := range pending {
			entry := RouteItem{
				ItemName:       item.Name,
				Quantity:       item.Quantity,
				Category:       item.Category,
				Priority:       item.Priority,
				EstimatedPrice: item.EstimatedPrice,
				Source:         "unassigned",
			}
			switch {
			case item.Store != "":
				entry.AssignedStore = item.Store
				entry.Source = "list_preference"
				entry.Rationale = []string{"Uses the store set on the grocery list item."}
				if entry.EstimatedPrice == nil {
					entry.EstimatedPrice = latestStorePrice(grouped, item.Name, item.Store)
				}
			default:
				recommendation, err := s.recommendItemFrom(view, item.Name, 0)
				if err == nil && recommendation != nil && recommendation.RecommendedStore != "" {
					entry.AssignedStore = recommendation.RecommendedStore
					entry.Source = "recommendation"
					entry.Rationale = []string{"Assigned from historical price and availability scoring."}
					if entry.EstimatedPrice == nil {
						for _, ranked := range recommendation.RankedStores {
							if ranked.Store == recommendation.RecommendedStore {
								price := ranked.CurrentPrice
								entry.EstimatedPrice = &price
								break
							}
						}
					}
				} else if store, price := cheapestRecentStore(grouped, item.Name, s.today()); store != "" {
					entry.AssignedStore = store
					entry.Source = "price_history"
					entry.Rationale = []string{"Assigned to the lowest recent-price store."}
					if entry.EstimatedPrice == nil {
						entry.EstimatedPrice = &price
					}
				}
			}
			if entry.AssignedStore == "" {
				unassigned = append(unassigned, entry)
			} else {
				assignments[entry.AssignedStore] = append(assignments[entry.AssignedStore], entry)
			}
		}

		storeNames := make([]string, 0, len(assignments))
		for store := range assignments {
			storeNames = append(storeNames, store)
		}
		sort.Slice(storeNames, func(i, j int) bool {
			ci, cj := len(assignments[storeNames[i]]), len(assignments[storeNames[j]])
			if ci != cj {
				return ci > cj
			}
			return storeNames[i] < storeNames[j]
		})

		var stops []RouteStop
		var totalCost float64
		for stopNumber, store := range storeNames {
			items := assignments[store]
			sortRouteItems(items)
			var estimated float64
			for _, item := range items {
				if item.EstimatedPrice != nil {
					estimated += *item.EstimatedPrice
				}
			}
			estimated = round2(estimated)
			totalCost += estimated

			var rationale []string
			if routeHasSource(items, "list_preference") {
				rationale = append(rationale, "Contains explicit store preferences from the list.")
			}
			if routeHasSource(items, "recommendation") {
				rationale = append(rationale, "Contains history-based store recommendations.")
			}
			stops = append(stops, RouteStop{
				StopNumber:     stopNumber + 1,
				Store:          store,
				Items:          items,
				ItemCount:      len(items),
				EstimatedTotal: estimated,
				Rationale:      rationale,
			})
		}

		sortRouteItems(unassigned)
		rationale := []string{
			"Store order is deterministic: item count, then store name.",
		}
		if len(unassigned) > 0 {
			rationale = append(rationale, fmt.Sprintf("%d item(s) are unassigned due to missing store and history.", len(unassigned)))
		}
		route = ShoppingRoute{
			TotalItems:         len(pending),
			TotalEstimatedCost: round2(totalCost),
			Stops:              stops,
			Unassigned:         unassigned,
			Rationale:          rationale,
		}
		return nil
	})
	done(err)
	return route, err
}

// sortRouteItems orders a stop's items by priority (high first) then name.
func sortRouteItems(items []RouteItem) {
	sort.Slice(items, func(i, j int) bool {
		ri, rj := priorityRank(items[i].Priority), priorityRank(items[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(items[i].ItemName) < strings.ToLower(items[j].ItemName)
	})
}

func routeHasSource(items []RouteItem, source string) bool {
	for _, item := range items {
		if item.Source == source {
			return true
		}
	}
	return false
}

// latestStorePrice finds the most recent price for an item at one store,
// matching the store name case-insensitively.
func latestStorePrice(grouped map[string]*groupedPrices, itemName, store string) *float64 {
	item := grouped[normalize.Canonical(itemName)]
	if item == nil {
		return nil
	}
	latest := latestPoint(item.storeNamed(store))
	if latest == nil {
		return nil
	}
	price := latest.Price
	return &price
}

// cheapestRecentStore picks the store with the lowest latest price for an
// item, ties broken by fresher data, deeper history, then store name.
func cheapestRecentStore(grouped map[string]*groupedPrices, itemName string, today Date) (string, float64) {
	item := grouped[normalize.Canonical(itemName)]
	if item == nil {
		return "", 0
	}

	type candidate struct {
		store   string
		price   float64
		recency int
		samples int
	}
	var candidates []candidate
	for store, points := range item.stores {
		latest := latestPoint(points)
		if latest == nil {
			continue
		}
		recency := today.DaysSince(latest.Date)
		if recency < 0 {
			recency = 0
		}
		candidates = append(candidates, candidate{store, latest.Price, recency, len(points)})
	}
	if len(candidates) == 0 {
		return "", 0
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].price != candidates[j].price {
			return candidates[i].price < candidates[j].price
		}
		if candidates[i].recency != candidates[j].recency {
			return candidates[i].recency < candidates[j].recency
		}
		if candidates[i].samples != candidates[j].samples {
			return candidates[i].samples > candidates[j].samples
		}
		return strings.ToLower(candidates[i].store) < strings.ToLower(candidates[j].store)
	})
	return candidates[0].store, candidates[0].price
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
