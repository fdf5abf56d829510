package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"pantrycore/pkg/normalize"
)

// Suggestions aggregates the restock, seasonal, price-alert, and
// out-of-stock generators, sorted by priority (high first, stable within a
// tier).
func (s *Service) Suggestions(ctx context.Context) ([]Suggestion, error) {
	ctx, done := s.instrument(ctx, "get_suggestions")
	var suggestions []Suggestion
	err := s.store.View(ctx, func(view TransactionView) error {
		today := s.today()
		suggestions = append(suggestions, restockSuggestions(view, today)...)
		suggestions = append(suggestions, seasonalSuggestions(view, today)...)
		suggestions = append(suggestions, priceAlertSuggestions(view)...)
		suggestions = append(suggestions, outOfStockSuggestions(view)...)
		return nil
	})
	done(err)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return priorityRank(suggestions[i].Priority) < priorityRank(suggestions[j].Priority)
	})
	return suggestions, nil
}

func priorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

// mergedFrequencies groups raw-name purchase logs by canonical identity,
// keeping the first raw name seen as the display name.
func mergedFrequencies(view TransactionView) map[string]FrequencyData {
	grouped := make(map[string]FrequencyData)
	for _, freq := range view.FrequencyData() {
		canonical := normalize.Canonical(freq.ItemName)
		merged, ok := grouped[canonical]
		if !ok {
			merged = FrequencyData{ItemName: freq.ItemName, Category: freq.Category}
		}
		merged.PurchaseHistory = append(merged.PurchaseHistory, freq.PurchaseHistory...)
		grouped[canonical] = merged
	}
	return grouped
}

// restockSuggestions flags items bought at least twice whose usual interval
// has elapsed. Overdue by more than half the interval raises the priority.
func restockSuggestions(view TransactionView, today Date) []Suggestion {
	grouped := mergedFrequencies(view)
	var out []Suggestion
	for _, canonical := range sortedCanonicalKeys(grouped) {
		merged := grouped[canonical]
		if len(merged.PurchaseHistory) < 2 {
			continue
		}
		avg := merged.AverageDaysBetweenPurchases()
		if avg <= 0 {
			continue
		}
		daysSince := merged.DaysSinceLastPurchase(today)
		if float64(daysSince) < avg {
			continue
		}
		priority := PriorityMedium
		if float64(daysSince)-avg > avg*0.5 {
			priority = PriorityHigh
		}
		out = append(out, Suggestion{
			Type:     "restock",
			ItemName: merged.ItemName,
			Message:  fmt.Sprintf("Usually buy every %.0f days, last purchase %d days ago", avg, daysSince),
			Priority: priority,
		})
	}
	return out
}

// seasonalSuggestions proposes items whose season is in progress. Year-round
// items, low-confidence patterns, off-peak months, and recent purchases are
// skipped.
func seasonalSuggestions(view TransactionView, today Date) []Suggestion {
	grouped := mergedFrequencies(view)
	currentMonth := int(today.Month())
	var out []Suggestion
	for _, canonical := range sortedCanonicalKeys(grouped) {
		merged := grouped[canonical]
		if len(merged.PurchaseHistory) == 0 {
			continue
		}
		pattern := buildSeasonalPattern(merged.ItemName, merged.PurchaseHistory)
		if pattern.YearRound || pattern.Confidence == "low" {
			continue
		}
		if !containsInt(pattern.PeakMonths, currentMonth) {
			continue
		}
		if days := merged.DaysSinceLastPurchase(today); days >= 0 && days < 30 {
			continue
		}
		message := fmt.Sprintf("%s is in season", monthName(currentMonth))
		if pattern.SeasonRange != "" {
			message = fmt.Sprintf("Usually bought in %s", pattern.SeasonRange)
		}
		out = append(out, Suggestion{
			Type:     "seasonal",
			ItemName: merged.ItemName,
			Message:  message,
			Priority: PriorityLow,
		})
	}
	return out
}

// priceAlertSuggestions flags (item, store) pairs whose current price sits
// at least 15% above the store's historical average. Requires three price
// points.
func priceAlertSuggestions(view TransactionView) []Suggestion {
	grouped := groupPriceHistories(view.PriceHistories())
	var out []Suggestion
	for _, canonical := range sortedCanonicalKeys(grouped) {
		item := grouped[canonical]
		stores := make([]string, 0, len(item.stores))
		for store := range item.stores {
			stores = append(stores, store)
		}
		sort.Strings(stores)
		for _, store := range stores {
			points := item.stores[store]
			if len(points) < 3 {
				continue
			}
			latest := latestPoint(points)
			if latest == nil {
				continue
			}
			var sum float64
			for _, p := range points {
				sum += p.Price
			}
			avg := sum / float64(len(points))
			if avg <= 0 {
				continue
			}
			changePct := (latest.Price - avg) / avg * 100
			if changePct < 15 {
				continue
			}
			out = append(out, Suggestion{
				Type:     "price_alert",
				ItemName: item.displayName,
				Message: fmt.Sprintf("Price at %s is $%.2f (%+.0f%% vs avg $%.2f)",
					store, latest.Price, changePct, avg),
				Priority: PriorityMedium,
				Store:    store,
			})
		}
	}
	return out
}

// outOfStockSuggestions flags (item, store) pairs reported out of stock at
// least twice, with observed substitutions ranked by report count.
func outOfStockSuggestions(view TransactionView) []Suggestion {
	records := view.OutOfStockRecords()

	type pair struct{ canonical, store string }
	counts := make(map[pair]int)
	displayNames := make(map[string]string)
	var order []pair
	for _, record := range records {
		canonical := normalize.Canonical(record.ItemName)
		if _, ok := displayNames[canonical]; !ok {
			displayNames[canonical] = record.ItemName
		}
		key := pair{canonical, record.Store}
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].canonical != order[j].canonical {
			return order[i].canonical < order[j].canonical
		}
		return order[i].store < order[j].store
	})

	var out []Suggestion
	for _, key := range order {
		count := counts[key]
		if count < 2 {
			continue
		}
		substitutions := substitutionRecommendations(key.canonical, records)
		message := fmt.Sprintf("Out of stock %d times at %s", count, key.store)
		if len(substitutions) > 0 {
			message += fmt.Sprintf("; try %s", substitutions[0].ItemName)
		}
		out = append(out, Suggestion{
			Type:          "out_of_stock",
			ItemName:      displayNames[key.canonical],
			Message:       message,
			Priority:      PriorityLow,
			Store:         key.store,
			Substitutions: substitutions,
		})
	}
	return out
}

// substitutionRecommendations ranks the substitutions recorded for an item,
// by report count then alphabetically, capped at three.
func substitutionRecommendations(canonicalItem string, records []OutOfStockRecord) []Substitution {
	counts := make(map[string]int)
	names := make(map[string]string)
	stores := make(map[string]map[string]bool)
	for _, record := range records {
		if normalize.Canonical(record.ItemName) != canonicalItem {
			continue
		}
		if record.Substitution == "" {
			continue
		}
		canonical := normalize.Canonical(record.Substitution)
		if canonical == "" {
			continue
		}
		counts[canonical]++
		if _, ok := names[canonical]; !ok {
			names[canonical] = normalize.DisplayName(record.Substitution)
		}
		if stores[canonical] == nil {
			stores[canonical] = make(map[string]bool)
		}
		stores[canonical][record.Store] = true
	}

	ranked := make([]Substitution, 0, len(counts))
	for canonical, count := range counts {
		var storeNames []string
		for store := range stores[canonical] {
			storeNames = append(storeNames, store)
		}
		sort.Strings(storeNames)
		ranked = append(ranked, Substitution{
			ItemName: names[canonical],
			Count:    count,
			Stores:   storeNames,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return strings.ToLower(ranked[i].ItemName) < strings.ToLower(ranked[j].ItemName)
	})
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	return ranked
}

func containsInt(values []int, v int) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
