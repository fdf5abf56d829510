package core

import (
	"context"
	"testing"
	"time"
)

func TestBulkBuyingAnalysisRecommendsBulk(t *testing.T) {
	svc := newTestService(day(time.April, 15))

	// Two pack purchases 30 days apart project four packs per month.
	appendPurchase(t, svc, "Paper Towels", CategoryHousehold, day(time.January, 1))
	appendPurchase(t, svc, "Paper Towels", CategoryHousehold, day(time.January, 31))
	_, err := svc.Store().RunInTransaction(context.Background(), func(tx Transaction) error {
		return tx.AppendPurchase("paper towels", CategoryHousehold, PurchaseRecord{
			Date: day(time.January, 16), Quantity: 2,
		})
	})
	if err != nil {
		t.Fatalf("seed purchases: %v", err)
	}

	analysis, err := svc.BulkBuyingAnalysis(context.Background(), BulkComparisonInput{
		ItemName:         "Paper Towels",
		StandardQuantity: 12,
		StandardPrice:    6.00,
		StandardUnit:     "count",
		BulkQuantity:     48,
		BulkPrice:        12.00,
		BulkUnit:         "ct",
	})
	if err != nil {
		t.Fatalf("bulk analysis: %v", err)
	}
	if !analysis.Comparable || analysis.ComparisonStatus != "ok" {
		t.Fatalf("expected comparable result, got %+v", analysis)
	}
	if analysis.StandardOption.UnitPrice != 0.5 || analysis.BulkOption.UnitPrice != 0.25 {
		t.Fatalf("unit prices = %.4f / %.4f, want 0.5 / 0.25",
			analysis.StandardOption.UnitPrice, analysis.BulkOption.UnitPrice)
	}
	if analysis.RecommendedOption != "bulk" {
		t.Fatalf("recommended = %q, want bulk", analysis.RecommendedOption)
	}
	// Upfront delta 6.00 at 0.25 savings per unit breaks even at 24 units,
	// two standard packs.
	if analysis.BreakEvenUnits == nil || *analysis.BreakEvenUnits != 24 {
		t.Fatalf("break-even units = %v, want 24", analysis.BreakEvenUnits)
	}
	if analysis.BreakEvenStandardPacks == nil || *analysis.BreakEvenStandardPacks != 2 {
		t.Fatalf("break-even packs = %v, want 2", analysis.BreakEvenStandardPacks)
	}
	// Four packs per month of twelve count each is 48 units, saving 12.00.
	if analysis.MonthlyUsageUnits == nil || *analysis.MonthlyUsageUnits != 48 {
		t.Fatalf("monthly usage = %v, want 48", analysis.MonthlyUsageUnits)
	}
	if analysis.ProjectedMonthlySavings == nil || *analysis.ProjectedMonthlySavings != 12 {
		t.Fatalf("projected savings = %v, want 12", analysis.ProjectedMonthlySavings)
	}
}

func TestBulkBuyingAnalysisDirectUsageAndCheaperPack(t *testing.T) {
	svc := newTestService(day(time.April, 15))

	analysis, err := svc.BulkBuyingAnalysis(context.Background(), BulkComparisonInput{
		ItemName:         "Oats",
		StandardQuantity: 1,
		StandardPrice:    4.00,
		StandardUnit:     "kg",
		BulkQuantity:     2,
		BulkPrice:        3.50,
		BulkUnit:         "kg",
		MonthlyUsage:     floatPtr(1.5),
	})
	if err != nil {
		t.Fatalf("bulk analysis: %v", err)
	}
	if analysis.RecommendedOption != "bulk" {
		t.Fatalf("recommended = %q, want bulk", analysis.RecommendedOption)
	}
	// Bulk is cheaper per pack outright, so it breaks even immediately.
	if analysis.BreakEvenUnits == nil || *analysis.BreakEvenUnits != 0 {
		t.Fatalf("break-even units = %v, want 0", analysis.BreakEvenUnits)
	}
	if analysis.MonthlyUsageUnits == nil || *analysis.MonthlyUsageUnits != 1500 {
		t.Fatalf("monthly usage = %v, want 1500 g", analysis.MonthlyUsageUnits)
	}
}

func TestBulkBuyingAnalysisStandardWins(t *testing.T) {
	svc := newTestService(day(time.April, 15))

	analysis, err := svc.BulkBuyingAnalysis(context.Background(), BulkComparisonInput{
		ItemName:         "Milk",
		StandardQuantity: 1,
		StandardPrice:    2.00,
		StandardUnit:     "l",
		BulkQuantity:     2,
		BulkPrice:        4.50,
		BulkUnit:         "l",
	})
	if err != nil {
		t.Fatalf("bulk analysis: %v", err)
	}
	if analysis.RecommendedOption != "standard" {
		t.Fatalf("recommended = %q, want standard", analysis.RecommendedOption)
	}
	if analysis.BreakEvenUnits != nil || analysis.ProjectedMonthlySavings != nil {
		t.Fatalf("standard-wins result should not project break-even or savings: %+v", analysis)
	}
}

func TestBulkBuyingAnalysisDegradedStatuses(t *testing.T) {
	svc := newTestService(day(time.April, 15))
	ctx := context.Background()

	cases := []struct {
		name  string
		input BulkComparisonInput
		want  string
	}{
		{
			name: "unknown unit",
			input: BulkComparisonInput{
				ItemName: "Rice", StandardQuantity: 1, StandardPrice: 3, StandardUnit: "bag",
				BulkQuantity: 4, BulkPrice: 10, BulkUnit: "bag",
			},
			want: "unknown_unit",
		},
		{
			name: "unit family mismatch",
			input: BulkComparisonInput{
				ItemName: "Juice", StandardQuantity: 1, StandardPrice: 3, StandardUnit: "lb",
				BulkQuantity: 2, BulkPrice: 5, BulkUnit: "l",
			},
			want: "unit_mismatch",
		},
		{
			name: "invalid quantity",
			input: BulkComparisonInput{
				ItemName: "Flour", StandardQuantity: 0, StandardPrice: 3, StandardUnit: "kg",
				BulkQuantity: 2, BulkPrice: 5, BulkUnit: "kg",
			},
			want: "invalid_quantity",
		},
	}
	for _, tc := range cases {
		analysis, err := svc.BulkBuyingAnalysis(ctx, tc.input)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if analysis.Comparable || analysis.ComparisonStatus != tc.want {
			t.Errorf("%s: status = %q comparable=%v, want %q", tc.name, analysis.ComparisonStatus, analysis.Comparable, tc.want)
		}
		if analysis.Recommendation == "" || len(analysis.Assumptions) == 0 {
			t.Errorf("%s: degraded result should explain itself: %+v", tc.name, analysis)
		}
	}
}

func TestNormalizeUnitAliases(t *testing.T) {
	cases := []struct {
		unit   string
		family string
		base   string
	}{
		{"Fl. Oz", "volume", "ml"},
		{"  pounds ", "weight", "g"},
		{"each", "count", "count"},
	}
	for _, tc := range cases {
		scale, ok := normalizeUnit(tc.unit)
		if !ok || scale.family != tc.family || scale.base != tc.base {
			t.Errorf("normalizeUnit(%q) = %+v ok=%v, want %s/%s", tc.unit, scale, ok, tc.family, tc.base)
		}
	}
	if _, ok := normalizeUnit("crate"); ok {
		t.Error("crate should not normalize")
	}
}
