package domain

import "math"

// Derived accessors over the append-only logs. These never mutate the
// underlying records; aggregates are computed at read time.

// LatestPoint returns the most recent price point by date, or nil when empty.
func (h PriceHistory) LatestPoint() *PricePoint {
	var latest *PricePoint
	for i := range h.PricePoints {
		p := &h.PricePoints[i]
		if latest == nil || p.Date.After(latest.Date) {
			latest = p
		}
	}
	return latest
}

// CurrentPrice returns the most recent observed price, or 0 when no points
// exist.
func (h PriceHistory) CurrentPrice() float64 {
	if p := h.LatestPoint(); p != nil {
		return p.Price
	}
	return 0
}

// AveragePrice returns the mean over all observed prices.
func (h PriceHistory) AveragePrice() float64 {
	if len(h.PricePoints) == 0 {
		return 0
	}
	var sum float64
	for _, p := range h.PricePoints {
		sum += p.Price
	}
	return sum / float64(len(h.PricePoints))
}

// LowestPrice returns the minimum observed price, or 0 when empty.
func (h PriceHistory) LowestPrice() float64 {
	if len(h.PricePoints) == 0 {
		return 0
	}
	low := h.PricePoints[0].Price
	for _, p := range h.PricePoints[1:] {
		if p.Price < low {
			low = p.Price
		}
	}
	return low
}

// HighestPrice returns the maximum observed price, or 0 when empty.
func (h PriceHistory) HighestPrice() float64 {
	var high float64
	for _, p := range h.PricePoints {
		if p.Price > high {
			high = p.Price
		}
	}
	return high
}

// LastPurchased returns the most recent purchase date, or the zero date when
// the history is empty.
func (f FrequencyData) LastPurchased() Date {
	var last Date
	for _, r := range f.PurchaseHistory {
		if last.IsZero() || r.Date.After(last) {
			last = r.Date
		}
	}
	return last
}

// AverageDaysBetweenPurchases returns the mean interval between consecutive
// purchases in chronological order. It returns 0 with fewer than two records.
func (f FrequencyData) AverageDaysBetweenPurchases() float64 {
	if len(f.PurchaseHistory) < 2 {
		return 0
	}
	dates := make([]Date, len(f.PurchaseHistory))
	for i, r := range f.PurchaseHistory {
		dates[i] = r.Date
	}
	for i := 1; i < len(dates); i++ {
		for j := i; j > 0 && dates[j].Before(dates[j-1]); j-- {
			dates[j], dates[j-1] = dates[j-1], dates[j]
		}
	}
	var total int
	for i := 1; i < len(dates); i++ {
		total += dates[i].DaysSince(dates[i-1])
	}
	return float64(total) / float64(len(dates)-1)
}

// DaysSinceLastPurchase returns the whole days from the most recent purchase
// to today, or -1 when the history is empty.
func (f FrequencyData) DaysSinceLastPurchase(today Date) int {
	last := f.LastPurchased()
	if last.IsZero() {
		return -1
	}
	return today.DaysSince(last)
}

// NextExpectedPurchase projects the next purchase date from the average
// interval rounded to whole days, or the zero date with fewer than two
// records.
func (f FrequencyData) NextExpectedPurchase() Date {
	avg := f.AverageDaysBetweenPurchases()
	if avg == 0 {
		return Date{}
	}
	return f.LastPurchased().AddDays(int(math.Round(avg)))
}

// IsExpired reports whether the inventory item's expiration date has passed.
func (i InventoryItem) IsExpired(today Date) bool {
	return i.ExpirationDate != nil && i.ExpirationDate.Before(today)
}

// DaysUntilExpiration returns the days remaining before expiration, negative
// when already expired. The second return is false when no date is set.
func (i InventoryItem) DaysUntilExpiration(today Date) (int, bool) {
	if i.ExpirationDate == nil {
		return 0, false
	}
	return i.ExpirationDate.DaysSince(today), true
}

// IsLowStock reports whether quantity is at or below the low-stock threshold.
func (i InventoryItem) IsLowStock() bool {
	return i.LowStockThreshold > 0 && i.Quantity <= i.LowStockThreshold
}

// Remaining returns the unspent portion of the monthly limit, floored at
// zero. Budgets are advisory; overspend is reported separately.
func (b BudgetTracking) Remaining() float64 {
	rem := b.MonthlyLimit - b.TotalSpent
	if rem < 0 {
		return 0
	}
	return rem
}

// OverBudget reports whether spending exceeded the monthly limit.
func (b BudgetTracking) OverBudget() bool {
	return b.MonthlyLimit > 0 && b.TotalSpent > b.MonthlyLimit
}
