package core

import "pantrycore/pkg/domain"

type (
	EntityType         = domain.EntityType
	ItemStatus         = domain.ItemStatus
	Priority           = domain.Priority
	Severity           = domain.Severity
	InventoryLocation  = domain.InventoryLocation
	WasteReason        = domain.WasteReason
	SavingsSource      = domain.SavingsSource
	GroceryItem        = domain.GroceryItem
	Receipt            = domain.Receipt
	LineItem           = domain.LineItem
	PriceHistory       = domain.PriceHistory
	PricePoint         = domain.PricePoint
	FrequencyData      = domain.FrequencyData
	PurchaseRecord     = domain.PurchaseRecord
	OutOfStockRecord   = domain.OutOfStockRecord
	InventoryItem      = domain.InventoryItem
	WasteRecord        = domain.WasteRecord
	BudgetTracking     = domain.BudgetTracking
	CategoryBudget     = domain.CategoryBudget
	SavingsRecord      = domain.SavingsRecord
	UserPreferences    = domain.UserPreferences
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	RulesEngine        = domain.RulesEngine
	Rule               = domain.Rule
	Date               = domain.Date
	Quantity           = domain.Quantity

	ValidationError    = domain.ValidationError
	NotFoundError      = domain.NotFoundError
	DuplicateItemError = domain.DuplicateItemError

	CategorySpending     = domain.CategorySpending
	CategoryInflation    = domain.CategoryInflation
	SpendingSummary      = domain.SpendingSummary
	PriceComparison      = domain.PriceComparison
	SeasonalMonth        = domain.SeasonalMonth
	SeasonalPattern      = domain.SeasonalPattern
	Substitution         = domain.Substitution
	Suggestion           = domain.Suggestion
	StoreScore           = domain.StoreScore
	ItemRecommendation   = domain.ItemRecommendation
	RouteItem            = domain.RouteItem
	RouteStop            = domain.RouteStop
	ShoppingRoute        = domain.ShoppingRoute
	BulkPackOption       = domain.BulkPackOption
	BulkBuyingAnalysis   = domain.BulkBuyingAnalysis
	SavingsContributor   = domain.SavingsContributor
	SavingsSummary       = domain.SavingsSummary
	WastedItem           = domain.WastedItem
	WasteSummary         = domain.WasteSummary
	BudgetStatus         = domain.BudgetStatus
	UseItUpItem          = domain.UseItUpItem
	UseItUpPayload       = domain.UseItUpPayload
	ReconciliationResult = domain.ReconciliationResult
)

const (
	EntityGroceryItem   = domain.EntityGroceryItem
	EntityReceipt       = domain.EntityReceipt
	EntityPriceHistory  = domain.EntityPriceHistory
	EntityFrequency     = domain.EntityFrequency
	EntityOutOfStock    = domain.EntityOutOfStock
	EntityInventoryItem = domain.EntityInventoryItem
	EntityWasteRecord   = domain.EntityWasteRecord
	EntityBudget        = domain.EntityBudget
	EntitySavingsRecord = domain.EntitySavingsRecord
	EntityPreferences   = domain.EntityPreferences
)

const (
	StatusToBuy       = domain.StatusToBuy
	StatusBought      = domain.StatusBought
	StatusStillNeeded = domain.StatusStillNeeded
)

const (
	PriorityHigh   = domain.PriorityHigh
	PriorityMedium = domain.PriorityMedium
	PriorityLow    = domain.PriorityLow
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionAppend = domain.ActionAppend
	ActionDelete = domain.ActionDelete
)

const (
	LocationPantry  = domain.LocationPantry
	LocationFridge  = domain.LocationFridge
	LocationFreezer = domain.LocationFreezer
)

const (
	WasteSpoiled   = domain.WasteSpoiled
	WasteNeverUsed = domain.WasteNeverUsed
	WasteOverripe  = domain.WasteOverripe
	WasteOther     = domain.WasteOther
)

const (
	SavingsLineItemDiscount = domain.SavingsLineItemDiscount
	SavingsReceiptDiscount  = domain.SavingsReceiptDiscount
)
