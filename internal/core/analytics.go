package core

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"pantrycore/pkg/domain"
	"pantrycore/pkg/normalize"
)

// Reporting periods accepted by the summary operations.
const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// periodWindow resolves a reporting period to its start day. Weekly starts
// on the Monday of the current week, monthly on the 1st, yearly on Jan 1.
func periodWindow(period string, today Date) (Date, Date, error) {
	switch period {
	case PeriodWeekly:
		sinceMonday := (int(today.Time().Weekday()) + 6) % 7
		return today.AddDays(-sinceMonday), today, nil
	case PeriodMonthly, "":
		return domain.NewDate(today.Year(), today.Month(), 1), today, nil
	case PeriodYearly:
		return domain.NewDate(today.Year(), time.January, 1), today, nil
	default:
		return Date{}, Date{}, ValidationError{Field: "period", Message: "period must be weekly, monthly, or yearly"}
	}
}

func inWindow(d, start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func monthName(month int) string {
	return time.Month(month).String()
}

// SpendingSummary aggregates receipt spending for a period, with a category
// breakdown and half-window category inflation. A positive budget limit adds
// remaining/percentage figures.
func (s *Service) SpendingSummary(ctx context.Context, period string, budgetLimit *float64) (SpendingSummary, error) {
	ctx, done := s.instrument(ctx, "spending_summary")
	var summary SpendingSummary
	err := s.store.View(ctx, func(view TransactionView) error {
		start, end, err := periodWindow(period, s.today())
		if err != nil {
			return err
		}
		if period == "" {
			period = PeriodMonthly
		}

		var receipts []Receipt
		for _, r := range view.ListReceipts() {
			if inWindow(r.TransactionDate, start, end) {
				receipts = append(receipts, r)
			}
		}

		var totalSpending float64
		var itemCount int
		categoryTotals := make(map[string]float64)
		categoryCounts := make(map[string]int)
		for _, r := range receipts {
			totalSpending += r.Total
			itemCount += len(r.LineItems)
			for _, line := range r.LineItems {
				category := GuessCategory(line.ItemName)
				categoryTotals[category] += line.TotalPrice
				categoryCounts[category]++
			}
		}

		var categories []CategorySpending
		for category, total := range categoryTotals {
			pct := 0.0
			if totalSpending > 0 {
				pct = round1(total / totalSpending * 100)
			}
			categories = append(categories, CategorySpending{
				Category:   category,
				Total:      round2(total),
				Percentage: pct,
				ItemCount:  categoryCounts[category],
			})
		}
		sort.Slice(categories, func(i, j int) bool {
			if categories[i].Total != categories[j].Total {
				return categories[i].Total > categories[j].Total
			}
			return categories[i].Category < categories[j].Category
		})

		summary = SpendingSummary{
			Period:            period,
			StartDate:         start,
			EndDate:           end,
			TotalSpending:     round2(totalSpending),
			ReceiptCount:      len(receipts),
			ItemCount:         itemCount,
			Categories:        categories,
			CategoryInflation: categoryInflation(receipts, start, end),
		}
		if budgetLimit != nil && *budgetLimit > 0 {
			remaining := round2(*budgetLimit - totalSpending)
			pct := round1(totalSpending / *budgetLimit * 100)
			summary.BudgetLimit = budgetLimit
			summary.BudgetRemaining = &remaining
			summary.BudgetPercentage = &pct
		}
		return nil
	})
	done(err)
	return summary, err
}

// categoryInflation compares average unit prices between the baseline and
// current halves of the period. Categories lacking samples in either half
// are omitted.
func categoryInflation(receipts []Receipt, start, end Date) []CategoryInflation {
	totalDays := end.DaysSince(start)
	if totalDays < 1 || len(receipts) == 0 {
		return nil
	}

	midpoint := start.AddDays(totalDays / 2)
	currentStart := midpoint.AddDays(1)
	if currentStart.After(end) {
		currentStart = end
	}

	type window struct{ baseline, current []float64 }
	prices := make(map[string]*window)
	for _, r := range receipts {
		for _, line := range r.LineItems {
			if line.UnitPrice <= 0 {
				continue
			}
			category := GuessCategory(line.ItemName)
			w := prices[category]
			if w == nil {
				w = &window{}
				prices[category] = w
			}
			if !r.TransactionDate.After(midpoint) {
				w.baseline = append(w.baseline, line.UnitPrice)
			} else {
				w.current = append(w.current, line.UnitPrice)
			}
		}
	}

	var inflation []CategoryInflation
	for category, w := range prices {
		if len(w.baseline) == 0 || len(w.current) == 0 {
			continue
		}
		baselineAvg := round2(mean(w.baseline))
		currentAvg := round2(mean(w.current))
		entry := CategoryInflation{
			Category:         category,
			BaselineStart:    start,
			BaselineEnd:      midpoint,
			CurrentStart:     currentStart,
			CurrentEnd:       end,
			BaselineAvgPrice: baselineAvg,
			CurrentAvgPrice:  currentAvg,
			BaselineSamples:  len(w.baseline),
			CurrentSamples:   len(w.current),
		}
		if baselineAvg > 0 {
			delta := round1((currentAvg - baselineAvg) / baselineAvg * 100)
			entry.DeltaPct = &delta
		}
		inflation = append(inflation, entry)
	}
	sort.Slice(inflation, func(i, j int) bool {
		di, dj := -1.0, -1.0
		if inflation[i].DeltaPct != nil {
			di = math.Abs(*inflation[i].DeltaPct)
		}
		if inflation[j].DeltaPct != nil {
			dj = math.Abs(*inflation[j].DeltaPct)
		}
		if di != dj {
			return di > dj
		}
		return inflation[i].Category < inflation[j].Category
	})
	return inflation
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SavingsSummary aggregates the savings records recorded within a period.
func (s *Service) SavingsSummary(ctx context.Context, period string) (SavingsSummary, error) {
	ctx, done := s.instrument(ctx, "savings_summary")
	var summary SavingsSummary
	err := s.store.View(ctx, func(view TransactionView) error {
		start, end, err := periodWindow(period, s.today())
		if err != nil {
			return err
		}
		if period == "" {
			period = PeriodMonthly
		}

		var records []SavingsRecord
		receiptIDs := make(map[string]bool)
		var total float64
		for _, record := range view.SavingsRecords() {
			if !inWindow(record.TransactionDate, start, end) {
				continue
			}
			records = append(records, record)
			receiptIDs[record.ReceiptID.String()] = true
			total += record.SavingsAmount
		}

		summary = SavingsSummary{
			Period:        period,
			StartDate:     start,
			EndDate:       end,
			TotalSavings:  round2(total),
			ReceiptCount:  len(receiptIDs),
			RecordCount:   len(records),
			TopItems:      savingsContributors(records, func(r SavingsRecord) string { return r.ItemName }),
			TopStores:     savingsContributors(records, func(r SavingsRecord) string { return r.Store }),
			TopCategories: savingsContributors(records, func(r SavingsRecord) string { return r.Category }),
			BySource:      savingsContributors(records, func(r SavingsRecord) string { return string(r.Source) }),
		}
		return nil
	})
	done(err)
	return summary, err
}

// savingsContributors ranks savings totals by bucket, largest first, ties
// broken by record count then name.
func savingsContributors(records []SavingsRecord, key func(SavingsRecord) string) []SavingsContributor {
	totals := make(map[string]float64)
	counts := make(map[string]int)
	for _, record := range records {
		bucket := key(record)
		if bucket == "" {
			continue
		}
		totals[bucket] += record.SavingsAmount
		counts[bucket]++
	}

	contributors := make([]SavingsContributor, 0, len(totals))
	for name, total := range totals {
		contributors = append(contributors, SavingsContributor{
			Name:         name,
			TotalSavings: round2(total),
			RecordCount:  counts[name],
		})
	}
	sort.Slice(contributors, func(i, j int) bool {
		if contributors[i].TotalSavings != contributors[j].TotalSavings {
			return contributors[i].TotalSavings > contributors[j].TotalSavings
		}
		if contributors[i].RecordCount != contributors[j].RecordCount {
			return contributors[i].RecordCount > contributors[j].RecordCount
		}
		return strings.ToLower(contributors[i].Name) < strings.ToLower(contributors[j].Name)
	})
	if len(contributors) > 5 {
		contributors = contributors[:5]
	}
	return contributors
}

// chooseDisplayName prefers a stored raw name that equals the queried name
// case-insensitively, falling back to the first stored variant.
func chooseDisplayName(queried string, keys []string) string {
	for _, key := range keys {
		if strings.EqualFold(key, queried) {
			return key
		}
	}
	if len(keys) > 0 {
		return keys[0]
	}
	return normalize.DisplayName(queried)
}
