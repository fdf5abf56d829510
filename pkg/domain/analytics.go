package domain

import "github.com/google/uuid"

// Computed analytics payloads. These are derived views over the stored
// buckets and are never persisted themselves.

// CategorySpending is one category's share of a spending summary.
type CategorySpending struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
	ItemCount  int     `json:"item_count"`
}

// CategoryInflation compares a category's average unit price between the
// baseline and current halves of a summary period.
type CategoryInflation struct {
	Category         string   `json:"category"`
	BaselineStart    Date     `json:"baseline_start"`
	BaselineEnd      Date     `json:"baseline_end"`
	CurrentStart     Date     `json:"current_start"`
	CurrentEnd       Date     `json:"current_end"`
	BaselineAvgPrice float64  `json:"baseline_avg_price"`
	CurrentAvgPrice  float64  `json:"current_avg_price"`
	DeltaPct         *float64 `json:"delta_pct,omitempty"`
	BaselineSamples  int      `json:"baseline_samples"`
	CurrentSamples   int      `json:"current_samples"`
}

// SpendingSummary aggregates receipt spending over a reporting period.
type SpendingSummary struct {
	Period            string              `json:"period"`
	StartDate         Date                `json:"start_date"`
	EndDate           Date                `json:"end_date"`
	TotalSpending     float64             `json:"total_spending"`
	ReceiptCount      int                 `json:"receipt_count"`
	ItemCount         int                 `json:"item_count"`
	Categories        []CategorySpending  `json:"categories"`
	CategoryInflation []CategoryInflation `json:"category_inflation,omitempty"`
	BudgetLimit       *float64            `json:"budget_limit,omitempty"`
	BudgetRemaining   *float64            `json:"budget_remaining,omitempty"`
	BudgetPercentage  *float64            `json:"budget_percentage,omitempty"`
}

// PriceComparison ranks stores by current price for one canonical item.
// Window averages cover trailing 30/90 day spans; deltas compare the most
// recent observed price against each window.
type PriceComparison struct {
	ItemName      string             `json:"item_name"`
	Stores        map[string]float64 `json:"stores"`
	CheapestStore string             `json:"cheapest_store"`
	CheapestPrice float64            `json:"cheapest_price"`
	Savings       float64            `json:"savings"`
	Average30d    *float64           `json:"average_price_30d,omitempty"`
	Average90d    *float64           `json:"average_price_90d,omitempty"`
	DeltaVs30dPct *float64           `json:"delta_vs_30d_pct,omitempty"`
	DeltaVs90dPct *float64           `json:"delta_vs_90d_pct,omitempty"`
}

// SeasonalMonth is one calendar month's purchase count in a seasonal pattern.
type SeasonalMonth struct {
	Month         int     `json:"month"`
	MonthName     string  `json:"month_name"`
	PurchaseCount int     `json:"purchase_count"`
	Percentage    float64 `json:"percentage"`
}

// SeasonalPattern classifies an item's purchase seasonality. Peak months are
// those within 60% of the busiest month; the season range labels the best
// contiguous peak run (no year wrap).
type SeasonalPattern struct {
	ItemName       string          `json:"item_name"`
	TotalPurchases int             `json:"total_purchases"`
	Months         []SeasonalMonth `json:"months"`
	PeakMonths     []int           `json:"peak_purchase_months,omitempty"`
	LowMonths      []int           `json:"low_purchase_months,omitempty"`
	SeasonRange    string          `json:"season_range,omitempty"`
	YearRound      bool            `json:"year_round"`
	Confidence     string          `json:"confidence"`
}

// Substitution is one ranked replacement observed for an out-of-stock item.
type Substitution struct {
	ItemName string   `json:"item_name"`
	Count    int      `json:"count"`
	Stores   []string `json:"stores,omitempty"`
}

// Suggestion proposes a shopping action derived from the stored history.
type Suggestion struct {
	Type          string         `json:"type"`
	ItemName      string         `json:"item_name"`
	Message       string         `json:"message"`
	Priority      Priority       `json:"priority"`
	Store         string         `json:"store,omitempty"`
	Substitutions []Substitution `json:"substitutions,omitempty"`
}

// StoreScore is one store's ranking entry in an item recommendation.
type StoreScore struct {
	Store           string   `json:"store"`
	Rank            int      `json:"rank"`
	Score           float64  `json:"score"`
	CurrentPrice    float64  `json:"current_price"`
	AveragePrice    float64  `json:"average_price"`
	OutOfStockCount int      `json:"out_of_stock_count"`
	Samples         int      `json:"samples"`
	RecencyDays     int      `json:"recency_days"`
	Rationale       []string `json:"rationale,omitempty"`
}

// ItemRecommendation names the best store to buy an item and why.
type ItemRecommendation struct {
	ItemName         string         `json:"item_name"`
	Confidence       string         `json:"confidence"`
	ConfidenceScore  float64        `json:"confidence_score"`
	RecommendedStore string         `json:"recommended_store,omitempty"`
	RankedStores     []StoreScore   `json:"ranked_stores"`
	Substitutions    []Substitution `json:"substitutions,omitempty"`
	Rationale        []string       `json:"rationale,omitempty"`
}

// RouteItem is one pending list item assigned to a route stop.
type RouteItem struct {
	ItemName       string   `json:"item_name"`
	Quantity       Quantity `json:"quantity"`
	Category       string   `json:"category"`
	Priority       Priority `json:"priority"`
	AssignedStore  string   `json:"assigned_store,omitempty"`
	EstimatedPrice *float64 `json:"estimated_price,omitempty"`
	Source         string   `json:"assignment_source"`
	Rationale      []string `json:"rationale,omitempty"`
}

// RouteStop is one store visit in a planned shopping route.
type RouteStop struct {
	StopNumber     int         `json:"stop_number"`
	Store          string      `json:"store"`
	Items          []RouteItem `json:"items"`
	ItemCount      int         `json:"item_count"`
	EstimatedTotal float64     `json:"estimated_total"`
	Rationale      []string    `json:"rationale,omitempty"`
}

// ShoppingRoute orders store visits to cover the active list.
type ShoppingRoute struct {
	TotalItems         int         `json:"total_items"`
	TotalEstimatedCost float64     `json:"total_estimated_cost"`
	Stops              []RouteStop `json:"stops"`
	Unassigned         []RouteItem `json:"unassigned_items,omitempty"`
	Rationale          []string    `json:"rationale,omitempty"`
}

// BulkPackOption is one pack size in a bulk-buying comparison. Normalized
// fields are filled only when the option's unit resolves to a known family.
type BulkPackOption struct {
	Name               string  `json:"name"`
	Quantity           float64 `json:"quantity"`
	Unit               string  `json:"unit"`
	PackPrice          float64 `json:"pack_price"`
	NormalizedQuantity float64 `json:"normalized_quantity,omitempty"`
	NormalizedUnit     string  `json:"normalized_unit,omitempty"`
	UnitPrice          float64 `json:"unit_price,omitempty"`
}

// BulkBuyingAnalysis compares a standard and a bulk pack of the same item on
// normalized per-unit price, with a break-even point and projected monthly
// savings when usage can be established.
type BulkBuyingAnalysis struct {
	ItemName                string         `json:"item_name"`
	Comparable              bool           `json:"comparable"`
	ComparisonStatus        string         `json:"comparison_status"`
	StandardOption          BulkPackOption `json:"standard_option"`
	BulkOption              BulkPackOption `json:"bulk_option"`
	RecommendedOption       string         `json:"recommended_option,omitempty"`
	BreakEvenUnits          *float64       `json:"break_even_units,omitempty"`
	BreakEvenStandardPacks  *float64       `json:"break_even_standard_packs,omitempty"`
	MonthlyUsageUnits       *float64       `json:"monthly_usage_units,omitempty"`
	ProjectedMonthlySavings *float64       `json:"projected_monthly_savings,omitempty"`
	Recommendation          string         `json:"break_even_recommendation"`
	Assumptions             []string       `json:"assumptions,omitempty"`
}

// SavingsContributor is one name's share of realized savings.
type SavingsContributor struct {
	Name         string  `json:"name"`
	TotalSavings float64 `json:"total_savings"`
	RecordCount  int     `json:"record_count"`
}

// SavingsSummary aggregates realized discount savings over a period.
type SavingsSummary struct {
	Period        string               `json:"period"`
	StartDate     Date                 `json:"start_date"`
	EndDate       Date                 `json:"end_date"`
	TotalSavings  float64              `json:"total_savings"`
	ReceiptCount  int                  `json:"receipt_count"`
	RecordCount   int                  `json:"record_count"`
	TopItems      []SavingsContributor `json:"top_items,omitempty"`
	TopStores     []SavingsContributor `json:"top_stores,omitempty"`
	TopCategories []SavingsContributor `json:"top_categories,omitempty"`
	BySource      []SavingsContributor `json:"by_source,omitempty"`
}

// WastedItem is one item's waste occurrence count in a summary.
type WastedItem struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// WasteSummary aggregates the waste log over a reporting period.
type WasteSummary struct {
	Period           string              `json:"period"`
	StartDate        Date                `json:"start_date"`
	EndDate          Date                `json:"end_date"`
	TotalItemsWasted int                 `json:"total_items_wasted"`
	TotalCost        float64             `json:"total_cost"`
	ByReason         map[WasteReason]int `json:"by_reason"`
	MostWasted       []WastedItem        `json:"most_wasted"`
}

// BudgetStatus is a budget record with spending recomputed from receipts.
type BudgetStatus struct {
	BudgetTracking
	TotalRemaining      float64 `json:"total_remaining"`
	TotalPercentageUsed float64 `json:"total_percentage_used"`
}

// UseItUpItem is one expiring inventory entry in a use-it-up payload.
type UseItUpItem struct {
	ItemName            string            `json:"item_name"`
	Quantity            float64           `json:"quantity"`
	Unit                string            `json:"unit,omitempty"`
	Category            string            `json:"category"`
	Location            InventoryLocation `json:"location"`
	ExpirationDate      Date              `json:"expiration_date"`
	DaysUntilExpiration int               `json:"days_until_expiration"`
	PriorityRank        int               `json:"priority_rank"`
}

// UseItUpPayload lists inventory expiring within the horizon, most urgent
// first, for downstream meal planning.
type UseItUpPayload struct {
	GeneratedOn         Date          `json:"generated_on"`
	HorizonDays         int           `json:"horizon_days"`
	Items               []UseItUpItem `json:"items"`
	DietaryRestrictions []string      `json:"dietary_restrictions,omitempty"`
	Allergens           []string      `json:"allergens,omitempty"`
}

// ReconciliationResult reports the outcome of processing one receipt against
// the open shopping list.
type ReconciliationResult struct {
	ReceiptID      uuid.UUID `json:"receipt_id"`
	MatchedItems   int       `json:"matched_items"`
	StillNeeded    []string  `json:"still_needed"`
	NewlyBought    []string  `json:"newly_bought"`
	TotalSpent     float64   `json:"total_spent"`
	ItemsPurchased int       `json:"items_purchased"`
}
