package core

import (
	"context"
	"fmt"
	"math"
	"sort"

	"pantrycore/pkg/normalize"
)

// FrequencySummary merges the purchase logs of all raw-name variants of an
// item into one chronological history. Returns NotFoundError when the item
// has never been purchased.
func (s *Service) FrequencySummary(ctx context.Context, itemName string) (FrequencyData, error) {
	ctx, done := s.instrument(ctx, "frequency_summary")
	var merged FrequencyData
	err := s.store.View(ctx, func(view TransactionView) error {
		var found bool
		merged, found = mergedFrequency(view.FrequencyData(), itemName)
		if !found {
			return NotFoundError{Entity: EntityFrequency, Key: itemName}
		}
		return nil
	})
	done(err)
	return merged, err
}

func mergedFrequency(all []FrequencyData, itemName string) (FrequencyData, bool) {
	canonical := normalize.Canonical(itemName)
	var merged FrequencyData
	var found bool
	for _, freq := range all {
		if normalize.Canonical(freq.ItemName) != canonical {
			continue
		}
		if !found {
			found = true
			merged.ItemName = freq.ItemName
			merged.Category = CategoryOther
		}
		if merged.Category == CategoryOther && freq.Category != "" && freq.Category != CategoryOther {
			merged.Category = freq.Category
		}
		merged.PurchaseHistory = append(merged.PurchaseHistory, freq.PurchaseHistory...)
	}
	if !found {
		return FrequencyData{}, false
	}
	sort.Slice(merged.PurchaseHistory, func(i, j int) bool {
		return merged.PurchaseHistory[i].Date.Before(merged.PurchaseHistory[j].Date)
	})
	return merged, true
}

// SeasonalPattern buckets an item's purchase history by calendar month and
// classifies its seasonality. Returns NotFoundError when the item has no
// purchase history.
func (s *Service) SeasonalPattern(ctx context.Context, itemName string) (SeasonalPattern, error) {
	ctx, done := s.instrument(ctx, "seasonal_pattern")
	var pattern SeasonalPattern
	err := s.store.View(ctx, func(view TransactionView) error {
		merged, found := mergedFrequency(view.FrequencyData(), itemName)
		if !found || len(merged.PurchaseHistory) == 0 {
			return NotFoundError{Entity: EntityFrequency, Key: itemName}
		}
		pattern = buildSeasonalPattern(merged.ItemName, merged.PurchaseHistory)
		return nil
	})
	done(err)
	return pattern, err
}

// buildSeasonalPattern classifies seasonality from month buckets. Items
// purchased in nine or more distinct months count as year-round; otherwise
// peak months are those within 60% of the busiest month, grouped into
// contiguous ranges without wrapping across the year boundary.
func buildSeasonalPattern(displayName string, history []PurchaseRecord) SeasonalPattern {
	counts := make(map[int]int)
	for _, record := range history {
		counts[int(record.Date.Month())]++
	}

	total := len(history)
	months := make([]SeasonalMonth, 0, len(counts))
	for month := 1; month <= 12; month++ {
		count, ok := counts[month]
		if !ok {
			continue
		}
		months = append(months, SeasonalMonth{
			Month:         month,
			MonthName:     monthName(month),
			PurchaseCount: count,
			Percentage:    round1(float64(count) / float64(total) * 100),
		})
	}

	pattern := SeasonalPattern{
		ItemName:       displayName,
		TotalPurchases: total,
		Months:         months,
		Confidence:     seasonalConfidence(total),
	}

	if len(months) >= 9 {
		pattern.YearRound = true
		return pattern
	}

	maxCount := 0
	for _, m := range months {
		if m.PurchaseCount > maxCount {
			maxCount = m.PurchaseCount
		}
	}
	threshold := int(math.Ceil(0.6 * float64(maxCount)))
	for _, m := range months {
		if m.PurchaseCount >= threshold {
			pattern.PeakMonths = append(pattern.PeakMonths, m.Month)
		} else {
			pattern.LowMonths = append(pattern.LowMonths, m.Month)
		}
	}
	pattern.SeasonRange = bestSeasonRange(pattern.PeakMonths, counts)
	return pattern
}

// SeasonalPatterns classifies every purchased item, merging raw-name variants
// into one pattern per canonical name. Patterns are ordered by item name.
func (s *Service) SeasonalPatterns(ctx context.Context) ([]SeasonalPattern, error) {
	ctx, done := s.instrument(ctx, "seasonal_patterns")
	var patterns []SeasonalPattern
	err := s.store.View(ctx, func(view TransactionView) error {
		all := view.FrequencyData()
		seen := make(map[string]bool, len(all))
		for _, freq := range all {
			canonical := normalize.Canonical(freq.ItemName)
			if seen[canonical] {
				continue
			}
			seen[canonical] = true
			merged, found := mergedFrequency(all, freq.ItemName)
			if !found || len(merged.PurchaseHistory) == 0 {
				continue
			}
			patterns = append(patterns, buildSeasonalPattern(merged.ItemName, merged.PurchaseHistory))
		}
		sort.Slice(patterns, func(i, j int) bool {
			return patterns[i].ItemName < patterns[j].ItemName
		})
		return nil
	})
	done(err)
	return patterns, err
}

func seasonalConfidence(total int) string {
	switch {
	case total >= 10:
		return "high"
	case total >= 5:
		return "medium"
	default:
		return "low"
	}
}

// bestSeasonRange groups contiguous peak months and labels the strongest
// range, scored by total purchase count, then length, then earliest start.
func bestSeasonRange(peaks []int, counts map[int]int) string {
	if len(peaks) == 0 {
		return ""
	}

	type span struct {
		start, end, count int
	}
	var spans []span
	current := span{start: peaks[0], end: peaks[0], count: counts[peaks[0]]}
	for _, month := range peaks[1:] {
		if month == current.end+1 {
			current.end = month
			current.count += counts[month]
			continue
		}
		spans = append(spans, current)
		current = span{start: month, end: month, count: counts[month]}
	}
	spans = append(spans, current)

	best := spans[0]
	for _, candidate := range spans[1:] {
		if candidate.count != best.count {
			if candidate.count > best.count {
				best = candidate
			}
			continue
		}
		candidateLen := candidate.end - candidate.start
		bestLen := best.end - best.start
		if candidateLen != bestLen {
			if candidateLen > bestLen {
				best = candidate
			}
			continue
		}
		if candidate.start < best.start {
			best = candidate
		}
	}

	if best.start == best.end {
		return monthName(best.start)
	}
	return fmt.Sprintf("%s-%s", monthName(best.start), monthName(best.end))
}
