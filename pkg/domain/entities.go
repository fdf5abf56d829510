// Package domain defines the core persistent entities, value types, and rule
// evaluation primitives used by pantrycore.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityGroceryItem identifies a shopping-list item record.
	EntityGroceryItem EntityType = "grocery_item"
	// EntityReceipt identifies a processed receipt record.
	EntityReceipt EntityType = "receipt"
	// EntityPriceHistory identifies the per-(item, store) price log.
	EntityPriceHistory EntityType = "price_history"
	// EntityFrequency identifies the per-item purchase frequency log.
	EntityFrequency EntityType = "frequency_data"
	// EntityOutOfStock identifies an out-of-stock report record.
	EntityOutOfStock EntityType = "out_of_stock_record"
	// EntityInventoryItem identifies a household inventory record.
	EntityInventoryItem EntityType = "inventory_item"
	// EntityWasteRecord identifies a waste-log entry.
	EntityWasteRecord EntityType = "waste_record"
	// EntityBudget identifies a monthly budget record.
	EntityBudget EntityType = "budget"
	// EntitySavingsRecord identifies a discount/savings record.
	EntitySavingsRecord EntityType = "savings_record"
	// EntityPreferences identifies a per-user preferences record.
	EntityPreferences EntityType = "user_preferences"
)

// Priority ranks shopping-list items.
type Priority string

// Item priority levels.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ItemStatus captures the shopping-list lifecycle of an item. Allowed
// transitions are to_buy -> bought (via match or explicit mark) and
// to_buy/bought -> still_needed; removal is terminal.
type ItemStatus string

// Canonical shopping-list statuses.
const (
	StatusToBuy       ItemStatus = "to_buy"
	StatusBought      ItemStatus = "bought"
	StatusStillNeeded ItemStatus = "still_needed"
)

// InventoryLocation enumerates household storage locations.
type InventoryLocation string

// Canonical inventory storage locations.
const (
	LocationPantry  InventoryLocation = "pantry"
	LocationFridge  InventoryLocation = "fridge"
	LocationFreezer InventoryLocation = "freezer"
)

// WasteReason enumerates why a wasted item was discarded.
type WasteReason string

// Canonical waste reasons.
const (
	WasteSpoiled   WasteReason = "spoiled"
	WasteNeverUsed WasteReason = "never_used"
	WasteOverripe  WasteReason = "overripe"
	WasteOther     WasteReason = "other"
)

// SavingsSource distinguishes how a savings record was derived.
type SavingsSource string

// Savings record sources.
const (
	// SavingsLineItemDiscount marks savings attributed to a single line item.
	SavingsLineItemDiscount SavingsSource = "line_item_discount"
	// SavingsReceiptDiscount marks receipt-level savings not attributed to a line.
	SavingsReceiptDiscount SavingsSource = "receipt_discount"
)

// CategoryOther is the fallback category when the keyword heuristic misses.
const CategoryOther = "Other"

// GroceryItem is a shopping-list entry.
type GroceryItem struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Quantity        Quantity   `json:"quantity"`
	Unit            string     `json:"unit,omitempty"`
	Category        string     `json:"category"`
	Store           string     `json:"store,omitempty"`
	Aisle           string     `json:"aisle,omitempty"`
	BrandPreference string     `json:"brand_preference,omitempty"`
	EstimatedPrice  *float64   `json:"estimated_price,omitempty"`
	Priority        Priority   `json:"priority"`
	AddedBy         string     `json:"added_by,omitempty"`
	AddedAt         time.Time  `json:"added_at"`
	Notes           string     `json:"notes,omitempty"`
	Status          ItemStatus `json:"status"`
}

// GroceryList is the persisted collection wrapper for list items. The version
// and last_updated fields are part of the on-disk wire format.
type GroceryList struct {
	Version     string        `json:"version"`
	LastUpdated time.Time     `json:"last_updated"`
	Items       []GroceryItem `json:"items"`
}

// LineItem is a single purchased line on a receipt. It is immutable once the
// receipt is saved except for matched_list_item_id and category, which
// reconciliation backfills.
type LineItem struct {
	ItemName          string     `json:"item_name"`
	Quantity          float64    `json:"quantity"`
	UnitPrice         float64    `json:"unit_price"`
	TotalPrice        float64    `json:"total_price"`
	DiscountAmount    float64    `json:"discount_amount,omitempty"`
	CouponAmount      float64    `json:"coupon_amount,omitempty"`
	RegularUnitPrice  *float64   `json:"regular_unit_price,omitempty"`
	Sale              bool       `json:"sale,omitempty"`
	Category          string     `json:"category,omitempty"`
	MatchedListItemID *uuid.UUID `json:"matched_list_item_id,omitempty"`
}

// OnSale reports whether the line should be flagged as a sale price, either
// explicitly or inferred from discounts and the regular price.
func (li LineItem) OnSale() bool {
	if li.Sale || li.DiscountAmount > 0 || li.CouponAmount > 0 {
		return true
	}
	return li.RegularUnitPrice != nil && *li.RegularUnitPrice > li.UnitPrice
}

// LineSavings returns the explicit savings attributed to the line item.
func (li LineItem) LineSavings() float64 {
	var savings float64
	if li.DiscountAmount > 0 {
		savings += li.DiscountAmount
	}
	if li.CouponAmount > 0 {
		savings += li.CouponAmount
	}
	return savings
}

// Receipt is a processed receipt owning its line items.
type Receipt struct {
	ID              uuid.UUID  `json:"id"`
	StoreName       string     `json:"store_name"`
	StoreLocation   string     `json:"store_location,omitempty"`
	TransactionDate Date       `json:"transaction_date"`
	TransactionTime string     `json:"transaction_time,omitempty"`
	PurchasedBy     string     `json:"purchased_by,omitempty"`
	LineItems       []LineItem `json:"line_items"`
	Subtotal        float64    `json:"subtotal"`
	Tax             float64    `json:"tax"`
	DiscountTotal   float64    `json:"discount_total,omitempty"`
	CouponTotal     float64    `json:"coupon_total,omitempty"`
	Total           float64    `json:"total"`
	PaymentMethod   string     `json:"payment_method,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// PricePoint is a single price observation at a store.
type PricePoint struct {
	Date      Date       `json:"date"`
	Price     float64    `json:"price"`
	Unit      string     `json:"unit,omitempty"`
	Sale      bool       `json:"sale,omitempty"`
	ReceiptID *uuid.UUID `json:"receipt_id,omitempty"`
}

// PriceHistory is the append-only price log for one (item_name, store) pair.
// Keys are raw item names as written; canonical grouping happens at read time.
type PriceHistory struct {
	ItemName    string       `json:"item_name"`
	Store       string       `json:"store"`
	PricePoints []PricePoint `json:"price_points"`
}

// PurchaseRecord is a single purchase occurrence for frequency tracking.
type PurchaseRecord struct {
	Date     Date    `json:"date"`
	Quantity float64 `json:"quantity"`
	Store    string  `json:"store,omitempty"`
}

// FrequencyData is the append-only purchase log for one raw item name.
type FrequencyData struct {
	ItemName        string           `json:"item_name"`
	Category        string           `json:"category"`
	PurchaseHistory []PurchaseRecord `json:"purchase_history"`
}

// OutOfStockRecord reports an item missing from a store's shelves.
type OutOfStockRecord struct {
	ID           uuid.UUID `json:"id"`
	ItemName     string    `json:"item_name"`
	Store        string    `json:"store"`
	RecordedDate Date      `json:"recorded_date"`
	Substitution string    `json:"substitution,omitempty"`
	ReportedBy   string    `json:"reported_by,omitempty"`
}

// InventoryItem is a household stock entity.
type InventoryItem struct {
	ID                uuid.UUID         `json:"id"`
	ItemName          string            `json:"item_name"`
	Category          string            `json:"category"`
	Quantity          float64           `json:"quantity"`
	Unit              string            `json:"unit,omitempty"`
	Location          InventoryLocation `json:"location"`
	ExpirationDate    *Date             `json:"expiration_date,omitempty"`
	OpenedDate        *Date             `json:"opened_date,omitempty"`
	LowStockThreshold float64           `json:"low_stock_threshold"`
	PurchasedDate     Date              `json:"purchased_date"`
	ReceiptID         *uuid.UUID        `json:"receipt_id,omitempty"`
	AddedBy           string            `json:"added_by,omitempty"`
}

// WasteRecord is an append-only food waste log entry.
type WasteRecord struct {
	ID                   uuid.UUID   `json:"id"`
	ItemName             string      `json:"item_name"`
	Quantity             float64     `json:"quantity"`
	Unit                 string      `json:"unit,omitempty"`
	OriginalPurchaseDate *Date       `json:"original_purchase_date,omitempty"`
	WasteLoggedDate      Date        `json:"waste_logged_date"`
	Reason               WasteReason `json:"reason"`
	EstimatedCost        float64     `json:"estimated_cost,omitempty"`
	LoggedBy             string      `json:"logged_by,omitempty"`
}

// CategoryBudget allocates part of a monthly budget to one category. The
// spent field is recomputed from receipts at query time, never accumulated.
type CategoryBudget struct {
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
	Spent    float64 `json:"spent"`
}

// BudgetTracking is the budget record for one month, keyed "YYYY-MM".
type BudgetTracking struct {
	Month           string           `json:"month"`
	MonthlyLimit    float64          `json:"monthly_limit"`
	CategoryBudgets []CategoryBudget `json:"category_budgets,omitempty"`
	TotalSpent      float64          `json:"total_spent"`
}

// SavingsRecord is an append-only record of realized discount savings.
type SavingsRecord struct {
	ID               uuid.UUID     `json:"id"`
	ReceiptID        uuid.UUID     `json:"receipt_id"`
	TransactionDate  Date          `json:"transaction_date"`
	Store            string        `json:"store"`
	ItemName         string        `json:"item_name,omitempty"`
	Category         string        `json:"category"`
	SavingsAmount    float64       `json:"savings_amount"`
	Source           SavingsSource `json:"source"`
	Quantity         float64       `json:"quantity,omitempty"`
	PaidUnitPrice    float64       `json:"paid_unit_price,omitempty"`
	RegularUnitPrice *float64      `json:"regular_unit_price,omitempty"`
}

// UserPreferences holds per-user settings consumed by suggestion payloads.
type UserPreferences struct {
	User                string            `json:"user"`
	BrandPreferences    map[string]string `json:"brand_preferences,omitempty"`
	DietaryRestrictions []string          `json:"dietary_restrictions,omitempty"`
	Allergens           []string          `json:"allergens,omitempty"`
	FavoriteItems       []string          `json:"favorite_items,omitempty"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported mutations captured for rule evaluation.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	// ActionAppend indicates an append-only log grew.
	ActionAppend Action = "append"
	ActionDelete Action = "delete"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
