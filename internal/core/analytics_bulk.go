package core

import (
	"context"
	"fmt"
	"strings"
)

// BulkComparisonInput describes the two pack options of one item to compare.
// MonthlyUsage is expressed in standard-pack units; when nil, usage is
// estimated from the item's purchase frequency history.
type BulkComparisonInput struct {
	ItemName         string
	StandardQuantity float64
	StandardPrice    float64
	StandardUnit     string
	BulkQuantity     float64
	BulkPrice        float64
	BulkUnit         string
	MonthlyUsage     *float64
}

// unitScale maps a pack unit onto a comparable family and base unit.
type unitScale struct {
	family string
	factor float64
	base   string
}

func normalizeUnit(unit string) (unitScale, bool) {
	cleaned := strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(unit, ".", ""))), " ")
	switch cleaned {
	case "count", "ct", "ea", "each", "item", "items", "piece", "pieces", "unit":
		return unitScale{family: "count", factor: 1, base: "count"}, true
	case "g", "gram", "grams":
		return unitScale{family: "weight", factor: 1, base: "g"}, true
	case "kg", "kilogram", "kilograms":
		return unitScale{family: "weight", factor: 1000, base: "g"}, true
	case "oz", "ounce", "ounces":
		return unitScale{family: "weight", factor: 28.3495, base: "g"}, true
	case "lb", "lbs", "pound", "pounds":
		return unitScale{family: "weight", factor: 453.592, base: "g"}, true
	case "ml", "milliliter", "milliliters":
		return unitScale{family: "volume", factor: 1, base: "ml"}, true
	case "l", "liter", "liters":
		return unitScale{family: "volume", factor: 1000, base: "ml"}, true
	case "fl oz", "floz", "fluid ounce", "fluid ounces":
		return unitScale{family: "volume", factor: 29.5735, base: "ml"}, true
	}
	return unitScale{}, false
}

// BulkBuyingAnalysis compares a standard pack against a bulk pack on
// normalized per-unit price. The comparison degrades gracefully: unknown or
// mismatched units yield a non-comparable result with an explanatory status
// instead of an error.
func (s *Service) BulkBuyingAnalysis(ctx context.Context, input BulkComparisonInput) (BulkBuyingAnalysis, error) {
	ctx, done := s.instrument(ctx, "bulk_buying_analysis")
	var analysis BulkBuyingAnalysis
	err := s.store.View(ctx, func(view TransactionView) error {
		analysis = buildBulkAnalysis(view, input)
		return nil
	})
	done(err)
	return analysis, err
}

func buildBulkAnalysis(view TransactionView, input BulkComparisonInput) BulkBuyingAnalysis {
	assumptions := []string{
		"Unit-price comparison assumes both pack options are for the same product quality.",
		"Projected monthly savings are directional and based on recent usage estimates.",
	}

	standard := BulkPackOption{
		Name:      "standard",
		Quantity:  input.StandardQuantity,
		Unit:      input.StandardUnit,
		PackPrice: input.StandardPrice,
	}
	bulk := BulkPackOption{
		Name:      "bulk",
		Quantity:  input.BulkQuantity,
		Unit:      input.BulkUnit,
		PackPrice: input.BulkPrice,
	}
	analysis := BulkBuyingAnalysis{
		ItemName:       input.ItemName,
		StandardOption: standard,
		BulkOption:     bulk,
	}

	standardScale, okStandard := normalizeUnit(input.StandardUnit)
	bulkScale, okBulk := normalizeUnit(input.BulkUnit)
	if !okStandard || !okBulk {
		analysis.ComparisonStatus = "unknown_unit"
		analysis.Recommendation = "Unable to compare pack options because one or more units are unknown."
		analysis.Assumptions = append(assumptions, "Unknown unit detected; comparison skipped for safety.")
		return analysis
	}
	if standardScale.family != bulkScale.family {
		analysis.ComparisonStatus = "unit_mismatch"
		analysis.Recommendation = "Unable to compare pack options because units are not compatible."
		analysis.Assumptions = append(assumptions, "Unit families differ (for example weight vs volume).")
		return analysis
	}

	standardQty := round4(input.StandardQuantity * standardScale.factor)
	bulkQty := round4(input.BulkQuantity * bulkScale.factor)
	analysis.StandardOption.NormalizedQuantity = standardQty
	analysis.StandardOption.NormalizedUnit = standardScale.base
	analysis.BulkOption.NormalizedQuantity = bulkQty
	analysis.BulkOption.NormalizedUnit = bulkScale.base

	if standardQty <= 0 || bulkQty <= 0 {
		analysis.ComparisonStatus = "invalid_quantity"
		analysis.Recommendation = "Unable to compare pack options due to invalid quantity."
		analysis.Assumptions = append(assumptions, "Pack quantity must be greater than zero for safe comparison.")
		return analysis
	}

	analysis.Comparable = true
	analysis.ComparisonStatus = "ok"
	analysis.StandardOption.UnitPrice = round4(input.StandardPrice / standardQty)
	analysis.BulkOption.UnitPrice = round4(input.BulkPrice / bulkQty)

	savingsPerUnit := round4(analysis.StandardOption.UnitPrice - analysis.BulkOption.UnitPrice)
	analysis.RecommendedOption = "standard"
	analysis.Recommendation = "Standard pack is equal or cheaper per unit."
	if savingsPerUnit > 0 {
		analysis.RecommendedOption = "bulk"
		if input.BulkPrice <= input.StandardPrice {
			zero := 0.0
			analysis.BreakEvenUnits = &zero
			analysis.BreakEvenStandardPacks = &zero
			analysis.Recommendation = "Bulk is immediately cheaper per unit and per pack."
		} else {
			breakEvenUnits := round2((input.BulkPrice - input.StandardPrice) / savingsPerUnit)
			breakEvenPacks := round2(breakEvenUnits / standardQty)
			analysis.BreakEvenUnits = &breakEvenUnits
			analysis.BreakEvenStandardPacks = &breakEvenPacks
			analysis.Recommendation = fmt.Sprintf(
				"Bulk breaks even after ~%g %s (~%g standard pack(s)).",
				breakEvenUnits, standardScale.base, breakEvenPacks)
		}
	}

	var usageUnits *float64
	if input.MonthlyUsage != nil {
		units := round2(*input.MonthlyUsage * standardScale.factor)
		usageUnits = &units
		assumptions = append(assumptions,
			fmt.Sprintf("Monthly usage provided directly: %g %s.", *input.MonthlyUsage, input.StandardUnit))
	} else if packs, ok := estimateMonthlyPackUsage(view, input.ItemName); ok {
		units := round2(packs * standardQty)
		usageUnits = &units
		assumptions = append(assumptions,
			"Monthly usage estimated from purchase frequency history (pack counts projected to 30 days).")
	} else {
		assumptions = append(assumptions,
			"Monthly usage unavailable from history; monthly savings not projected.")
	}
	analysis.MonthlyUsageUnits = usageUnits
	if usageUnits != nil {
		projected := round2(savingsPerUnit * *usageUnits)
		analysis.ProjectedMonthlySavings = &projected
	}
	analysis.Assumptions = assumptions
	return analysis
}

// estimateMonthlyPackUsage projects pack purchases per 30 days from the
// item's merged purchase history. Needs at least two purchases and a positive
// total quantity.
func estimateMonthlyPackUsage(view TransactionView, itemName string) (float64, bool) {
	merged, found := mergedFrequency(view.FrequencyData(), itemName)
	if !found || len(merged.PurchaseHistory) < 2 {
		return 0, false
	}
	// mergedFrequency returns the history already date-ordered.
	history := merged.PurchaseHistory
	daySpan := history[len(history)-1].Date.DaysSince(history[0].Date)
	if daySpan < 1 {
		daySpan = 1
	}
	var totalQuantity float64
	for _, record := range history {
		if record.Quantity > 0 {
			totalQuantity += record.Quantity
		}
	}
	if totalQuantity <= 0 {
		return 0, false
	}
	return round2(totalQuantity / float64(daySpan) * 30), true
}
