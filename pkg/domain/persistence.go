package domain

import "context"

// Transaction exposes the domain mutations that a persistence implementation
// must support within an atomic scope. Append operations grow their log and
// never rewrite prior entries.
type Transaction interface {
	Snapshot() TransactionView
	CreateItem(GroceryItem) (GroceryItem, error)
	UpdateItem(id string, mutator func(*GroceryItem) error) (GroceryItem, error)
	DeleteItem(id string) error
	FindItem(id string) (GroceryItem, bool)
	SaveReceipt(Receipt) (Receipt, error)
	AppendPricePoint(itemName, store string, point PricePoint) error
	AppendPurchase(itemName, category string, record PurchaseRecord) error
	AddOutOfStock(OutOfStockRecord) (OutOfStockRecord, error)
	CreateInventoryItem(InventoryItem) (InventoryItem, error)
	UpdateInventoryItem(id string, mutator func(*InventoryItem) error) (InventoryItem, error)
	DeleteInventoryItem(id string) error
	AddWasteRecord(WasteRecord) (WasteRecord, error)
	SaveBudget(BudgetTracking) (BudgetTracking, error)
	AddSavingsRecord(SavingsRecord) (SavingsRecord, error)
	SavePreferences(UserPreferences) (UserPreferences, error)
}

// TransactionView provides read-only access to snapshot data for rules and
// analytics.
type TransactionView interface {
	ListItems() []GroceryItem
	FindItem(id string) (GroceryItem, bool)
	ListReceipts() []Receipt
	FindReceipt(id string) (Receipt, bool)
	PriceHistories() []PriceHistory
	PriceHistory(itemName, store string) (PriceHistory, bool)
	FrequencyData() []FrequencyData
	Frequency(itemName string) (FrequencyData, bool)
	OutOfStockRecords() []OutOfStockRecord
	InventoryItems() []InventoryItem
	FindInventoryItem(id string) (InventoryItem, bool)
	WasteRecords() []WasteRecord
	Budget(month string) (BudgetTracking, bool)
	Budgets() []BudgetTracking
	SavingsRecords() []SavingsRecord
	UserPreferences(user string) (UserPreferences, bool)
	Preferences() []UserPreferences
}

// PersistentStore is a minimal abstraction over durable backends. Every
// mutation flows through RunInTransaction; reads outside a transaction use
// View or the convenience listings.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetItem(id string) (GroceryItem, bool)
	ListItems() []GroceryItem
	ListReceipts() []Receipt
}
