package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// LogWasteInput carries the fields for one waste-log entry.
type LogWasteInput struct {
	ItemName             string
	Quantity             float64
	Unit                 string
	Reason               WasteReason
	EstimatedCost        float64
	OriginalPurchaseDate *Date
	LoggedBy             string
}

// LogWaste appends an entry to the waste log.
func (s *Service) LogWaste(ctx context.Context, input LogWasteInput) (WasteRecord, Result, error) {
	ctx, done := s.instrument(ctx, "log_waste")
	var created WasteRecord
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		if strings.TrimSpace(input.ItemName) == "" {
			return ValidationError{Field: "item_name", Message: "item name is required"}
		}
		quantity := input.Quantity
		if quantity == 0 {
			quantity = 1
		}
		reason := input.Reason
		if reason == "" {
			reason = WasteOther
		}
		switch reason {
		case WasteSpoiled, WasteNeverUsed, WasteOverripe, WasteOther:
		default:
			return ValidationError{Field: "reason", Message: "unknown waste reason"}
		}
		var err error
		created, err = tx.AddWasteRecord(WasteRecord{
			ItemName:             strings.TrimSpace(input.ItemName),
			Quantity:             quantity,
			Unit:                 input.Unit,
			OriginalPurchaseDate: input.OriginalPurchaseDate,
			WasteLoggedDate:      s.today(),
			Reason:               reason,
			EstimatedCost:        input.EstimatedCost,
			LoggedBy:             input.LoggedBy,
		})
		return err
	})
	done(err)
	return created, res, err
}

// WasteSummary aggregates the waste log over a reporting period.
func (s *Service) WasteSummary(ctx context.Context, period string) (WasteSummary, error) {
	ctx, done := s.instrument(ctx, "waste_summary")
	var summary WasteSummary
	err := s.store.View(ctx, func(view TransactionView) error {
		start, end, err := periodWindow(period, s.today())
		if err != nil {
			return err
		}
		if period == "" {
			period = PeriodMonthly
		}

		var totalCost float64
		var total int
		byReason := make(map[WasteReason]int)
		itemCounts := make(map[string]int)
		for _, record := range view.WasteRecords() {
			if !inWindow(record.WasteLoggedDate, start, end) {
				continue
			}
			total++
			totalCost += record.EstimatedCost
			byReason[record.Reason]++
			itemCounts[record.ItemName]++
		}

		mostWasted := make([]WastedItem, 0, len(itemCounts))
		for item, count := range itemCounts {
			mostWasted = append(mostWasted, WastedItem{Item: item, Count: count})
		}
		sort.Slice(mostWasted, func(i, j int) bool {
			if mostWasted[i].Count != mostWasted[j].Count {
				return mostWasted[i].Count > mostWasted[j].Count
			}
			return mostWasted[i].Item < mostWasted[j].Item
		})
		if len(mostWasted) > 5 {
			mostWasted = mostWasted[:5]
		}

		summary = WasteSummary{
			Period:           period,
			StartDate:        start,
			EndDate:          end,
			TotalItemsWasted: total,
			TotalCost:        round2(totalCost),
			ByReason:         byReason,
			MostWasted:       mostWasted,
		}
		return nil
	})
	done(err)
	return summary, err
}

// WasteInsights turns the waste log into reduction nudges: repeat offenders
// get a callout, and a spoilage-dominated log gets a storage hint.
func (s *Service) WasteInsights(ctx context.Context) ([]string, error) {
	ctx, done := s.instrument(ctx, "waste_insights")
	var insights []string
	err := s.store.View(ctx, func(view TransactionView) error {
		records := view.WasteRecords()
		if len(records) == 0 {
			return nil
		}

		itemCounts := make(map[string]int)
		itemCosts := make(map[string]float64)
		var itemOrder []string
		for _, record := range records {
			if itemCounts[record.ItemName] == 0 {
				itemOrder = append(itemOrder, record.ItemName)
			}
			itemCounts[record.ItemName]++
			itemCosts[record.ItemName] += record.EstimatedCost
		}
		sort.Strings(itemOrder)

		for _, item := range itemOrder {
			count := itemCounts[item]
			switch {
			case count >= 3:
				msg := fmt.Sprintf("You've wasted %s %d times", item, count)
				if cost := itemCosts[item]; cost > 0 {
					msg += fmt.Sprintf(" ($%.2f total)", cost)
				}
				insights = append(insights, msg+", consider buying less")
			case count >= 2:
				insights = append(insights, fmt.Sprintf("%s wasted %d times, buy smaller quantities?", item, count))
			}
		}

		reasonCounts := make(map[WasteReason]int)
		for _, record := range records {
			reasonCounts[record.Reason]++
		}
		topReason, topCount := WasteReason(""), 0
		for reason, count := range reasonCounts {
			if count > topCount || (count == topCount && reason < topReason) {
				topReason, topCount = reason, count
			}
		}
		if topReason == WasteSpoiled && topCount >= 3 {
			insights = append(insights, fmt.Sprintf("%d items spoiled, check fridge temperature or buy less perishables", topCount))
		}
		return nil
	})
	done(err)
	return insights, err
}
