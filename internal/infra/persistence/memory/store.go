// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pantrycore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain
// persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// GroceryItem aliases domain.GroceryItem for in-memory persistence operations.
	GroceryItem = domain.GroceryItem
	// Receipt aliases domain.Receipt.
	Receipt = domain.Receipt
	// PriceHistory aliases domain.PriceHistory.
	PriceHistory = domain.PriceHistory
	// FrequencyData aliases domain.FrequencyData.
	FrequencyData = domain.FrequencyData
	// OutOfStockRecord aliases domain.OutOfStockRecord.
	OutOfStockRecord = domain.OutOfStockRecord
	// InventoryItem aliases domain.InventoryItem.
	InventoryItem = domain.InventoryItem
	// WasteRecord aliases domain.WasteRecord.
	WasteRecord = domain.WasteRecord
	// BudgetTracking aliases domain.BudgetTracking.
	BudgetTracking = domain.BudgetTracking
	// SavingsRecord aliases domain.SavingsRecord.
	SavingsRecord = domain.SavingsRecord
	// UserPreferences aliases domain.UserPreferences.
	UserPreferences = domain.UserPreferences
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

const priceKeySep = "\x1f"

func priceKey(itemName, store string) string {
	return itemName + priceKeySep + store
}

type memoryState struct {
	items      map[string]GroceryItem
	receipts   map[string]Receipt
	prices     map[string]PriceHistory
	frequency  map[string]FrequencyData
	outOfStock map[string]OutOfStockRecord
	inventory  map[string]InventoryItem
	waste      map[string]WasteRecord
	budgets    map[string]BudgetTracking
	savings    map[string]SavingsRecord
	prefs      map[string]UserPreferences
}

// Snapshot captures a point-in-time clone of the store state. Slices are kept
// in deterministic order so encoded snapshots diff cleanly.
type Snapshot struct {
	List        []GroceryItem      `json:"list"`
	Receipts    []Receipt          `json:"receipts"`
	Prices      []PriceHistory     `json:"price_history"`
	Frequency   []FrequencyData    `json:"frequency"`
	OutOfStock  []OutOfStockRecord `json:"out_of_stock"`
	Inventory   []InventoryItem    `json:"inventory"`
	WasteLog    []WasteRecord      `json:"waste_log"`
	Budgets     []BudgetTracking   `json:"budgets"`
	Savings     []SavingsRecord    `json:"savings"`
	Preferences []UserPreferences  `json:"preferences"`
}

func newMemoryState() memoryState {
	return memoryState{
		items:      make(map[string]GroceryItem),
		receipts:   make(map[string]Receipt),
		prices:     make(map[string]PriceHistory),
		frequency:  make(map[string]FrequencyData),
		outOfStock: make(map[string]OutOfStockRecord),
		inventory:  make(map[string]InventoryItem),
		waste:      make(map[string]WasteRecord),
		budgets:    make(map[string]BudgetTracking),
		savings:    make(map[string]SavingsRecord),
		prefs:      make(map[string]UserPreferences),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	var s Snapshot
	for _, v := range state.items {
		s.List = append(s.List, cloneItem(v))
	}
	sort.Slice(s.List, func(i, j int) bool { return s.List[i].ID.String() < s.List[j].ID.String() })
	for _, v := range state.receipts {
		s.Receipts = append(s.Receipts, cloneReceipt(v))
	}
	sort.Slice(s.Receipts, func(i, j int) bool { return s.Receipts[i].ID.String() < s.Receipts[j].ID.String() })
	for _, v := range state.prices {
		s.Prices = append(s.Prices, clonePriceHistory(v))
	}
	sort.Slice(s.Prices, func(i, j int) bool {
		if s.Prices[i].ItemName != s.Prices[j].ItemName {
			return s.Prices[i].ItemName < s.Prices[j].ItemName
		}
		return s.Prices[i].Store < s.Prices[j].Store
	})
	for _, v := range state.frequency {
		s.Frequency = append(s.Frequency, cloneFrequency(v))
	}
	sort.Slice(s.Frequency, func(i, j int) bool { return s.Frequency[i].ItemName < s.Frequency[j].ItemName })
	for _, v := range state.outOfStock {
		s.OutOfStock = append(s.OutOfStock, v)
	}
	sort.Slice(s.OutOfStock, func(i, j int) bool { return s.OutOfStock[i].ID.String() < s.OutOfStock[j].ID.String() })
	for _, v := range state.inventory {
		s.Inventory = append(s.Inventory, cloneInventory(v))
	}
	sort.Slice(s.Inventory, func(i, j int) bool { return s.Inventory[i].ID.String() < s.Inventory[j].ID.String() })
	for _, v := range state.waste {
		s.WasteLog = append(s.WasteLog, cloneWaste(v))
	}
	sort.Slice(s.WasteLog, func(i, j int) bool { return s.WasteLog[i].ID.String() < s.WasteLog[j].ID.String() })
	for _, v := range state.budgets {
		s.Budgets = append(s.Budgets, cloneBudget(v))
	}
	sort.Slice(s.Budgets, func(i, j int) bool { return s.Budgets[i].Month < s.Budgets[j].Month })
	for _, v := range state.savings {
		s.Savings = append(s.Savings, v)
	}
	sort.Slice(s.Savings, func(i, j int) bool { return s.Savings[i].ID.String() < s.Savings[j].ID.String() })
	for _, v := range state.prefs {
		s.Preferences = append(s.Preferences, clonePreferences(v))
	}
	sort.Slice(s.Preferences, func(i, j int) bool { return s.Preferences[i].User < s.Preferences[j].User })
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for _, v := range s.List {
		state.items[v.ID.String()] = cloneItem(v)
	}
	for _, v := range s.Receipts {
		state.receipts[v.ID.String()] = cloneReceipt(v)
	}
	for _, v := range s.Prices {
		state.prices[priceKey(v.ItemName, v.Store)] = clonePriceHistory(v)
	}
	for _, v := range s.Frequency {
		state.frequency[v.ItemName] = cloneFrequency(v)
	}
	for _, v := range s.OutOfStock {
		state.outOfStock[v.ID.String()] = v
	}
	for _, v := range s.Inventory {
		state.inventory[v.ID.String()] = cloneInventory(v)
	}
	for _, v := range s.WasteLog {
		state.waste[v.ID.String()] = cloneWaste(v)
	}
	for _, v := range s.Budgets {
		state.budgets[v.Month] = cloneBudget(v)
	}
	for _, v := range s.Savings {
		state.savings[v.ID.String()] = v
	}
	for _, v := range s.Preferences {
		state.prefs[v.User] = clonePreferences(v)
	}
	return state
}

// migrateSnapshot normalizes snapshots loaded from older files: entries
// without a usable key are dropped, missing item defaults are filled, and
// dangling matched_list_item_id references are cleared.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	itemExists := make(map[string]bool, len(snapshot.List))
	list := snapshot.List[:0]
	for _, item := range snapshot.List {
		if item.ID == uuid.Nil || item.Name == "" {
			continue
		}
		if item.Status == "" {
			item.Status = domain.StatusToBuy
		}
		if item.Priority == "" {
			item.Priority = domain.PriorityMedium
		}
		itemExists[item.ID.String()] = true
		list = append(list, item)
	}
	snapshot.List = list

	receipts := snapshot.Receipts[:0]
	for _, r := range snapshot.Receipts {
		if r.ID == uuid.Nil {
			continue
		}
		for i := range r.LineItems {
			li := &r.LineItems[i]
			if li.MatchedListItemID != nil && !itemExists[li.MatchedListItemID.String()] {
				li.MatchedListItemID = nil
			}
		}
		receipts = append(receipts, r)
	}
	snapshot.Receipts = receipts

	prices := snapshot.Prices[:0]
	for _, h := range snapshot.Prices {
		if h.ItemName == "" || h.Store == "" {
			continue
		}
		prices = append(prices, h)
	}
	snapshot.Prices = prices

	frequency := snapshot.Frequency[:0]
	for _, f := range snapshot.Frequency {
		if f.ItemName == "" {
			continue
		}
		frequency = append(frequency, f)
	}
	snapshot.Frequency = frequency

	budgets := snapshot.Budgets[:0]
	for _, b := range snapshot.Budgets {
		if b.Month == "" {
			continue
		}
		budgets = append(budgets, b)
	}
	snapshot.Budgets = budgets

	prefs := snapshot.Preferences[:0]
	for _, p := range snapshot.Preferences {
		if p.User == "" {
			continue
		}
		prefs = append(prefs, p)
	}
	snapshot.Preferences = prefs
	return snapshot
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.items {
		cloned.items[k] = cloneItem(v)
	}
	for k, v := range s.receipts {
		cloned.receipts[k] = cloneReceipt(v)
	}
	for k, v := range s.prices {
		cloned.prices[k] = clonePriceHistory(v)
	}
	for k, v := range s.frequency {
		cloned.frequency[k] = cloneFrequency(v)
	}
	for k, v := range s.outOfStock {
		cloned.outOfStock[k] = v
	}
	for k, v := range s.inventory {
		cloned.inventory[k] = cloneInventory(v)
	}
	for k, v := range s.waste {
		cloned.waste[k] = cloneWaste(v)
	}
	for k, v := range s.budgets {
		cloned.budgets[k] = cloneBudget(v)
	}
	for k, v := range s.savings {
		cloned.savings[k] = v
	}
	for k, v := range s.prefs {
		cloned.prefs[k] = clonePreferences(v)
	}
	return cloned
}

func cloneItem(i GroceryItem) GroceryItem {
	cp := i
	if i.EstimatedPrice != nil {
		p := *i.EstimatedPrice
		cp.EstimatedPrice = &p
	}
	return cp
}

func cloneReceipt(r Receipt) Receipt {
	cp := r
	cp.LineItems = make([]domain.LineItem, len(r.LineItems))
	for i, li := range r.LineItems {
		lineCopy := li
		if li.RegularUnitPrice != nil {
			p := *li.RegularUnitPrice
			lineCopy.RegularUnitPrice = &p
		}
		if li.MatchedListItemID != nil {
			id := *li.MatchedListItemID
			lineCopy.MatchedListItemID = &id
		}
		cp.LineItems[i] = lineCopy
	}
	return cp
}

func clonePriceHistory(h PriceHistory) PriceHistory {
	cp := h
	cp.PricePoints = append([]domain.PricePoint(nil), h.PricePoints...)
	return cp
}

func cloneFrequency(f FrequencyData) FrequencyData {
	cp := f
	cp.PurchaseHistory = append([]domain.PurchaseRecord(nil), f.PurchaseHistory...)
	return cp
}

func cloneInventory(i InventoryItem) InventoryItem {
	cp := i
	if i.ExpirationDate != nil {
		d := *i.ExpirationDate
		cp.ExpirationDate = &d
	}
	if i.OpenedDate != nil {
		d := *i.OpenedDate
		cp.OpenedDate = &d
	}
	if i.ReceiptID != nil {
		id := *i.ReceiptID
		cp.ReceiptID = &id
	}
	return cp
}

func cloneWaste(w WasteRecord) WasteRecord {
	cp := w
	if w.OriginalPurchaseDate != nil {
		d := *w.OriginalPurchaseDate
		cp.OriginalPurchaseDate = &d
	}
	return cp
}

func cloneBudget(b BudgetTracking) BudgetTracking {
	cp := b
	cp.CategoryBudgets = append([]domain.CategoryBudget(nil), b.CategoryBudgets...)
	return cp
}

func clonePreferences(p UserPreferences) UserPreferences {
	cp := p
	if p.BrandPreferences != nil {
		cp.BrandPreferences = make(map[string]string, len(p.BrandPreferences))
		for k, v := range p.BrandPreferences {
			cp.BrandPreferences[k] = v
		}
	}
	cp.DietaryRestrictions = append([]string(nil), p.DietaryRestrictions...)
	cp.Allergens = append([]string(nil), p.Allergens...)
	cp.FavoriteItems = append([]string(nil), p.FavoriteItems...)
	return cp
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

type transaction struct {
	state   memoryState
	changes []Change
	now     time.Time
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListItems returns all list items in the snapshot ordered by added time,
// then name for stability.
func (v transactionView) ListItems() []GroceryItem {
	out := make([]GroceryItem, 0, len(v.state.items))
	for _, i := range v.state.items {
		out = append(out, cloneItem(i))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.Before(out[j].AddedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// FindItem retrieves a list item by ID from the snapshot.
func (v transactionView) FindItem(id string) (GroceryItem, bool) {
	i, ok := v.state.items[id]
	if !ok {
		return GroceryItem{}, false
	}
	return cloneItem(i), true
}

// ListReceipts returns all receipts ordered by transaction date.
func (v transactionView) ListReceipts() []Receipt {
	out := make([]Receipt, 0, len(v.state.receipts))
	for _, r := range v.state.receipts {
		out = append(out, cloneReceipt(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TransactionDate.Equal(out[j].TransactionDate) {
			return out[i].TransactionDate.Before(out[j].TransactionDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// FindReceipt retrieves a receipt by ID from the snapshot.
func (v transactionView) FindReceipt(id string) (Receipt, bool) {
	r, ok := v.state.receipts[id]
	if !ok {
		return Receipt{}, false
	}
	return cloneReceipt(r), true
}

// PriceHistories returns every price log in the snapshot.
func (v transactionView) PriceHistories() []PriceHistory {
	out := make([]PriceHistory, 0, len(v.state.prices))
	for _, h := range v.state.prices {
		out = append(out, clonePriceHistory(h))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemName != out[j].ItemName {
			return out[i].ItemName < out[j].ItemName
		}
		return out[i].Store < out[j].Store
	})
	return out
}

// PriceHistory retrieves the price log for one (item, store) pair.
func (v transactionView) PriceHistory(itemName, store string) (PriceHistory, bool) {
	h, ok := v.state.prices[priceKey(itemName, store)]
	if !ok {
		return PriceHistory{}, false
	}
	return clonePriceHistory(h), true
}

// FrequencyData returns every purchase frequency log in the snapshot.
func (v transactionView) FrequencyData() []FrequencyData {
	out := make([]FrequencyData, 0, len(v.state.frequency))
	for _, f := range v.state.frequency {
		out = append(out, cloneFrequency(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemName < out[j].ItemName })
	return out
}

// Frequency retrieves the purchase log for one raw item name.
func (v transactionView) Frequency(itemName string) (FrequencyData, bool) {
	f, ok := v.state.frequency[itemName]
	if !ok {
		return FrequencyData{}, false
	}
	return cloneFrequency(f), true
}

// OutOfStockRecords returns all out-of-stock reports.
func (v transactionView) OutOfStockRecords() []OutOfStockRecord {
	out := make([]OutOfStockRecord, 0, len(v.state.outOfStock))
	for _, r := range v.state.outOfStock {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RecordedDate.Equal(out[j].RecordedDate) {
			return out[i].RecordedDate.Before(out[j].RecordedDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// InventoryItems returns all inventory records.
func (v transactionView) InventoryItems() []InventoryItem {
	out := make([]InventoryItem, 0, len(v.state.inventory))
	for _, i := range v.state.inventory {
		out = append(out, cloneInventory(i))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemName != out[j].ItemName {
			return out[i].ItemName < out[j].ItemName
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// FindInventoryItem retrieves an inventory record by ID.
func (v transactionView) FindInventoryItem(id string) (InventoryItem, bool) {
	i, ok := v.state.inventory[id]
	if !ok {
		return InventoryItem{}, false
	}
	return cloneInventory(i), true
}

// WasteRecords returns the full waste log.
func (v transactionView) WasteRecords() []WasteRecord {
	out := make([]WasteRecord, 0, len(v.state.waste))
	for _, w := range v.state.waste {
		out = append(out, cloneWaste(w))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WasteLoggedDate.Equal(out[j].WasteLoggedDate) {
			return out[i].WasteLoggedDate.Before(out[j].WasteLoggedDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Budget retrieves the budget record for a YYYY-MM month key.
func (v transactionView) Budget(month string) (BudgetTracking, bool) {
	b, ok := v.state.budgets[month]
	if !ok {
		return BudgetTracking{}, false
	}
	return cloneBudget(b), true
}

// Budgets returns all budget records ordered by month.
func (v transactionView) Budgets() []BudgetTracking {
	out := make([]BudgetTracking, 0, len(v.state.budgets))
	for _, b := range v.state.budgets {
		out = append(out, cloneBudget(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// SavingsRecords returns the full savings log.
func (v transactionView) SavingsRecords() []SavingsRecord {
	out := make([]SavingsRecord, 0, len(v.state.savings))
	for _, r := range v.state.savings {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TransactionDate.Equal(out[j].TransactionDate) {
			return out[i].TransactionDate.Before(out[j].TransactionDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// UserPreferences retrieves the preferences record for one user.
func (v transactionView) UserPreferences(user string) (UserPreferences, bool) {
	p, ok := v.state.prefs[user]
	if !ok {
		return UserPreferences{}, false
	}
	return clonePreferences(p), true
}

// Preferences returns all stored preference records.
func (v transactionView) Preferences() []UserPreferences {
	out := make([]UserPreferences, 0, len(v.state.prefs))
	for _, p := range v.state.prefs {
		out = append(out, clonePreferences(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User < out[j].User })
	return out
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := transactionView{state: &tx.state}
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

// GetItem retrieves a list item by ID.
func (s *Store) GetItem(id string) (GroceryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.state.items[id]
	if !ok {
		return GroceryItem{}, false
	}
	return cloneItem(i), true
}

// ListItems returns all list items.
func (s *Store) ListItems() []GroceryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListItems()
}

// ListReceipts returns all receipts.
func (s *Store) ListReceipts() []Receipt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListReceipts()
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindItem exposes item lookup within the transaction scope.
func (tx *transaction) FindItem(id string) (GroceryItem, bool) {
	i, ok := tx.state.items[id]
	if !ok {
		return GroceryItem{}, false
	}
	return cloneItem(i), true
}

// CreateItem stores a new list item within the transaction.
func (tx *transaction) CreateItem(i GroceryItem) (GroceryItem, error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if _, exists := tx.state.items[i.ID.String()]; exists {
		return GroceryItem{}, fmt.Errorf("item %q already exists", i.ID)
	}
	if i.Name == "" {
		return GroceryItem{}, domain.ValidationError{Field: "name", Message: "must not be empty"}
	}
	if i.AddedAt.IsZero() {
		i.AddedAt = tx.now
	}
	tx.state.items[i.ID.String()] = cloneItem(i)
	tx.recordChange(Change{Entity: domain.EntityGroceryItem, Action: domain.ActionCreate, After: cloneItem(i)})
	return cloneItem(i), nil
}

// UpdateItem mutates a list item using the provided mutator function.
func (tx *transaction) UpdateItem(id string, mutator func(*GroceryItem) error) (GroceryItem, error) {
	current, ok := tx.state.items[id]
	if !ok {
		return GroceryItem{}, domain.NotFoundError{Entity: domain.EntityGroceryItem, Key: id}
	}
	before := cloneItem(current)
	if err := mutator(&current); err != nil {
		return GroceryItem{}, err
	}
	current.ID = before.ID
	tx.state.items[id] = cloneItem(current)
	tx.recordChange(Change{Entity: domain.EntityGroceryItem, Action: domain.ActionUpdate, Before: before, After: cloneItem(current)})
	return cloneItem(current), nil
}

// DeleteItem removes a list item from the transaction state.
func (tx *transaction) DeleteItem(id string) error {
	current, ok := tx.state.items[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityGroceryItem, Key: id}
	}
	delete(tx.state.items, id)
	tx.recordChange(Change{Entity: domain.EntityGroceryItem, Action: domain.ActionDelete, Before: cloneItem(current)})
	return nil
}

// SaveReceipt stores a processed receipt, replacing any prior version with
// the same ID within the transaction scope.
func (tx *transaction) SaveReceipt(r Receipt) (Receipt, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.StoreName == "" {
		return Receipt{}, domain.ValidationError{Field: "store_name", Message: "must not be empty"}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = tx.now
	}
	action := domain.ActionCreate
	var before any
	if existing, ok := tx.state.receipts[r.ID.String()]; ok {
		action = domain.ActionUpdate
		before = cloneReceipt(existing)
	}
	tx.state.receipts[r.ID.String()] = cloneReceipt(r)
	tx.recordChange(Change{Entity: domain.EntityReceipt, Action: action, Before: before, After: cloneReceipt(r)})
	return cloneReceipt(r), nil
}

// AppendPricePoint grows the price log for an (item, store) pair.
func (tx *transaction) AppendPricePoint(itemName, store string, point domain.PricePoint) error {
	if itemName == "" || store == "" {
		return domain.ValidationError{Field: "item_name", Message: "price point requires item and store"}
	}
	key := priceKey(itemName, store)
	current, ok := tx.state.prices[key]
	var before any
	if ok {
		before = clonePriceHistory(current)
	} else {
		current = PriceHistory{ItemName: itemName, Store: store}
	}
	current.PricePoints = append(current.PricePoints, point)
	tx.state.prices[key] = clonePriceHistory(current)
	tx.recordChange(Change{Entity: domain.EntityPriceHistory, Action: domain.ActionAppend, Before: before, After: clonePriceHistory(current)})
	return nil
}

// AppendPurchase grows the purchase frequency log for a raw item name.
func (tx *transaction) AppendPurchase(itemName, category string, record domain.PurchaseRecord) error {
	if itemName == "" {
		return domain.ValidationError{Field: "item_name", Message: "purchase record requires item name"}
	}
	current, ok := tx.state.frequency[itemName]
	var before any
	if ok {
		before = cloneFrequency(current)
	} else {
		current = FrequencyData{ItemName: itemName, Category: category}
	}
	if category != "" {
		current.Category = category
	}
	current.PurchaseHistory = append(current.PurchaseHistory, record)
	tx.state.frequency[itemName] = cloneFrequency(current)
	tx.recordChange(Change{Entity: domain.EntityFrequency, Action: domain.ActionAppend, Before: before, After: cloneFrequency(current)})
	return nil
}

// AddOutOfStock stores a new out-of-stock report.
func (tx *transaction) AddOutOfStock(r OutOfStockRecord) (OutOfStockRecord, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.ItemName == "" || r.Store == "" {
		return OutOfStockRecord{}, domain.ValidationError{Field: "item_name", Message: "report requires item and store"}
	}
	tx.state.outOfStock[r.ID.String()] = r
	tx.recordChange(Change{Entity: domain.EntityOutOfStock, Action: domain.ActionAppend, After: r})
	return r, nil
}

// CreateInventoryItem stores a new inventory record.
func (tx *transaction) CreateInventoryItem(i InventoryItem) (InventoryItem, error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if _, exists := tx.state.inventory[i.ID.String()]; exists {
		return InventoryItem{}, fmt.Errorf("inventory item %q already exists", i.ID)
	}
	if i.ItemName == "" {
		return InventoryItem{}, domain.ValidationError{Field: "item_name", Message: "must not be empty"}
	}
	tx.state.inventory[i.ID.String()] = cloneInventory(i)
	tx.recordChange(Change{Entity: domain.EntityInventoryItem, Action: domain.ActionCreate, After: cloneInventory(i)})
	return cloneInventory(i), nil
}

// UpdateInventoryItem mutates an inventory record.
func (tx *transaction) UpdateInventoryItem(id string, mutator func(*InventoryItem) error) (InventoryItem, error) {
	current, ok := tx.state.inventory[id]
	if !ok {
		return InventoryItem{}, domain.NotFoundError{Entity: domain.EntityInventoryItem, Key: id}
	}
	before := cloneInventory(current)
	if err := mutator(&current); err != nil {
		return InventoryItem{}, err
	}
	current.ID = before.ID
	tx.state.inventory[id] = cloneInventory(current)
	tx.recordChange(Change{Entity: domain.EntityInventoryItem, Action: domain.ActionUpdate, Before: before, After: cloneInventory(current)})
	return cloneInventory(current), nil
}

// DeleteInventoryItem removes an inventory record.
func (tx *transaction) DeleteInventoryItem(id string) error {
	current, ok := tx.state.inventory[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityInventoryItem, Key: id}
	}
	delete(tx.state.inventory, id)
	tx.recordChange(Change{Entity: domain.EntityInventoryItem, Action: domain.ActionDelete, Before: cloneInventory(current)})
	return nil
}

// AddWasteRecord appends to the waste log.
func (tx *transaction) AddWasteRecord(w WasteRecord) (WasteRecord, error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.ItemName == "" {
		return WasteRecord{}, domain.ValidationError{Field: "item_name", Message: "must not be empty"}
	}
	tx.state.waste[w.ID.String()] = cloneWaste(w)
	tx.recordChange(Change{Entity: domain.EntityWasteRecord, Action: domain.ActionAppend, After: cloneWaste(w)})
	return cloneWaste(w), nil
}

// SaveBudget creates or replaces the budget record for its month.
func (tx *transaction) SaveBudget(b BudgetTracking) (BudgetTracking, error) {
	if b.Month == "" {
		return BudgetTracking{}, domain.ValidationError{Field: "month", Message: "must be YYYY-MM"}
	}
	action := domain.ActionCreate
	var before any
	if existing, ok := tx.state.budgets[b.Month]; ok {
		action = domain.ActionUpdate
		before = cloneBudget(existing)
	}
	tx.state.budgets[b.Month] = cloneBudget(b)
	tx.recordChange(Change{Entity: domain.EntityBudget, Action: action, Before: before, After: cloneBudget(b)})
	return cloneBudget(b), nil
}

// AddSavingsRecord appends to the savings log.
func (tx *transaction) AddSavingsRecord(r SavingsRecord) (SavingsRecord, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.SavingsAmount <= 0 {
		return SavingsRecord{}, domain.ValidationError{Field: "savings_amount", Message: "must be positive"}
	}
	tx.state.savings[r.ID.String()] = r
	tx.recordChange(Change{Entity: domain.EntitySavingsRecord, Action: domain.ActionAppend, After: r})
	return r, nil
}

// SavePreferences creates or replaces the preferences record for its user.
func (tx *transaction) SavePreferences(p UserPreferences) (UserPreferences, error) {
	if p.User == "" {
		return UserPreferences{}, domain.ValidationError{Field: "user", Message: "must not be empty"}
	}
	action := domain.ActionCreate
	var before any
	if existing, ok := tx.state.prefs[p.User]; ok {
		action = domain.ActionUpdate
		before = clonePreferences(existing)
	}
	tx.state.prefs[p.User] = clonePreferences(p)
	tx.recordChange(Change{Entity: domain.EntityPreferences, Action: action, Before: before, After: clonePreferences(p)})
	return clonePreferences(p), nil
}
