package core

import (
	"context"
	"sort"
	"strings"

	"pantrycore/pkg/normalize"
)

// ComparePrices compares current prices for one canonical item across
// stores. Raw-name variants sharing the same canonical identity are merged
// before comparison. Returns NotFoundError when no history exists.
func (s *Service) ComparePrices(ctx context.Context, itemName string) (PriceComparison, error) {
	ctx, done := s.instrument(ctx, "price_comparison")
	var comparison PriceComparison
	err := s.store.View(ctx, func(view TransactionView) error {
		canonical := normalize.Canonical(itemName)

		var matchedKeys []string
		seenKeys := make(map[string]bool)
		latestByStore := make(map[string]PricePoint)
		var allPoints []PricePoint
		for _, history := range view.PriceHistories() {
			if normalize.Canonical(history.ItemName) != canonical {
				continue
			}
			if !seenKeys[history.ItemName] {
				seenKeys[history.ItemName] = true
				matchedKeys = append(matchedKeys, history.ItemName)
			}
			allPoints = append(allPoints, history.PricePoints...)
			latest := history.LatestPoint()
			if latest == nil {
				continue
			}
			if prior, ok := latestByStore[history.Store]; !ok || latest.Date.After(prior.Date) {
				latestByStore[history.Store] = *latest
			}
		}
		if len(latestByStore) == 0 {
			return NotFoundError{Entity: EntityPriceHistory, Key: itemName}
		}

		stores := make(map[string]float64, len(latestByStore))
		storeNames := make([]string, 0, len(latestByStore))
		for store, point := range latestByStore {
			stores[store] = point.Price
			storeNames = append(storeNames, store)
		}
		sort.Strings(storeNames)

		cheapestStore := storeNames[0]
		highest := stores[cheapestStore]
		for _, store := range storeNames {
			if stores[store] < stores[cheapestStore] {
				cheapestStore = store
			}
			if stores[store] > highest {
				highest = stores[store]
			}
		}
		savings := 0.0
		if len(stores) > 1 {
			savings = round2(highest - stores[cheapestStore])
		}

		comparison = PriceComparison{
			ItemName:      chooseDisplayName(itemName, matchedKeys),
			Stores:        stores,
			CheapestStore: cheapestStore,
			CheapestPrice: stores[cheapestStore],
			Savings:       savings,
		}

		latest := latestPoint(allPoints)
		today := s.today()
		if avg := windowAverage(allPoints, 30, today); avg != nil {
			comparison.Average30d = avg
			if latest != nil && *avg > 0 {
				delta := round1((latest.Price - *avg) / *avg * 100)
				comparison.DeltaVs30dPct = &delta
			}
		}
		if avg := windowAverage(allPoints, 90, today); avg != nil {
			comparison.Average90d = avg
			if latest != nil && *avg > 0 {
				delta := round1((latest.Price - *avg) / *avg * 100)
				comparison.DeltaVs90dPct = &delta
			}
		}
		return nil
	})
	done(err)
	return comparison, err
}

func latestPoint(points []PricePoint) *PricePoint {
	var latest *PricePoint
	for i := range points {
		p := &points[i]
		if latest == nil || p.Date.After(latest.Date) {
			latest = p
		}
	}
	return latest
}

// windowAverage returns the mean price over the trailing window ending
// today, or nil when the window holds no observations.
func windowAverage(points []PricePoint, days int, today Date) *float64 {
	cutoff := today.AddDays(-(days - 1))
	var sum float64
	var n int
	for _, p := range points {
		if p.Date.Before(cutoff) {
			continue
		}
		sum += p.Price
		n++
	}
	if n == 0 {
		return nil
	}
	avg := round2(sum / float64(n))
	return &avg
}

// groupedPrices merges raw-name price histories by canonical identity.
type groupedPrices struct {
	displayName string
	stores      map[string][]PricePoint
}

func groupPriceHistories(histories []PriceHistory) map[string]*groupedPrices {
	grouped := make(map[string]*groupedPrices)
	for _, history := range histories {
		canonical := normalize.Canonical(history.ItemName)
		g := grouped[canonical]
		if g == nil {
			g = &groupedPrices{
				displayName: history.ItemName,
				stores:      make(map[string][]PricePoint),
			}
			grouped[canonical] = g
		}
		g.stores[history.Store] = append(g.stores[history.Store], history.PricePoints...)
	}
	return grouped
}

func sortedCanonicalKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// storeNamed does a case-insensitive store lookup in a grouped history.
func (g *groupedPrices) storeNamed(store string) []PricePoint {
	for name, points := range g.stores {
		if strings.EqualFold(name, store) {
			return points
		}
	}
	return nil
}
