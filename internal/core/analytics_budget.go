package core

import "context"

// DefaultBudgetAlertThreshold is the spend fraction at which a budget is
// considered close to its limit.
const DefaultBudgetAlertThreshold = 0.9

// BudgetStatus returns the budget for a month ("YYYY-MM", defaulting to the
// current month) with spending recomputed from that month's receipts.
// Returns NotFoundError when no budget has been set for the month.
func (s *Service) BudgetStatus(ctx context.Context, month string) (BudgetStatus, error) {
	ctx, done := s.instrument(ctx, "budget_status")
	var status BudgetStatus
	err := s.store.View(ctx, func(view TransactionView) error {
		if month == "" {
			month = s.today().MonthKey()
		}
		budget, ok := view.Budget(month)
		if !ok {
			return NotFoundError{Entity: EntityBudget, Key: month}
		}

		var totalSpent float64
		categoryTotals := make(map[string]float64)
		for _, receipt := range view.ListReceipts() {
			if receipt.TransactionDate.MonthKey() != month {
				continue
			}
			totalSpent += receipt.Total
			for _, line := range receipt.LineItems {
				categoryTotals[GuessCategory(line.ItemName)] += line.TotalPrice
			}
		}

		budget.TotalSpent = round2(totalSpent)
		for i := range budget.CategoryBudgets {
			budget.CategoryBudgets[i].Spent = round2(categoryTotals[budget.CategoryBudgets[i].Category])
		}

		status = BudgetStatus{
			BudgetTracking:      budget,
			TotalRemaining:      round2(budget.MonthlyLimit - budget.TotalSpent),
			TotalPercentageUsed: percentageUsed(budget.TotalSpent, budget.MonthlyLimit),
		}
		return nil
	})
	done(err)
	return status, err
}

// NearBudgetLimit reports whether the month's spending has crossed the alert
// threshold fraction of its limit.
func (s *Service) NearBudgetLimit(ctx context.Context, month string, threshold float64) (bool, error) {
	if threshold <= 0 {
		threshold = DefaultBudgetAlertThreshold
	}
	status, err := s.BudgetStatus(ctx, month)
	if err != nil {
		return false, err
	}
	if status.MonthlyLimit <= 0 {
		return false, nil
	}
	return status.TotalSpent >= status.MonthlyLimit*threshold, nil
}

func percentageUsed(spent, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return round1(spent / limit * 100)
}
