package core

import (
	"context"
	"sort"
	"strings"
	"time"

	"pantrycore/internal/blob"
	"pantrycore/internal/infra/persistence/memory"
	"pantrycore/pkg/domain"
)

// DefaultStore is used when a list item does not name a store.
const DefaultStore = "Giant"

// Service exposes the transactional list, reconciliation, and analytics
// operations over a persistent store.
type Service struct {
	store        PersistentStore
	logger       Logger
	metrics      MetricsRecorder
	tracer       Tracer
	nowFn        func() time.Time
	defaultStore string
	docs         blob.Store
}

// Option customizes service construction.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithTracer attaches a tracer.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithClock overrides the wall clock, pinning "today" for date-window math.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// WithDefaultStore overrides the store assigned to items added without one.
func WithDefaultStore(store string) Option {
	return func(s *Service) {
		if store != "" {
			s.defaultStore = store
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:        store,
		logger:       NoopLogger(),
		metrics:      noopMetrics{},
		tracer:       noopTracer{},
		nowFn:        func() time.Time { return time.Now().UTC() },
		defaultStore: DefaultStore,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service and in-memory store with the default
// rules engine.
func NewInMemoryService(opts ...Option) *Service {
	return NewService(memory.NewStore(NewDefaultRulesEngine()), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// today returns the current calendar day used for all date-window math.
func (s *Service) today() Date {
	return domain.DateOf(s.nowFn())
}

// AddItemInput carries the caller-supplied fields for a new list item.
type AddItemInput struct {
	Name            string
	Quantity        Quantity
	Unit            string
	Category        string
	Store           string
	Aisle           string
	BrandPreference string
	EstimatedPrice  *float64
	Priority        Priority
	AddedBy         string
	Notes           string
	AllowDuplicate  bool
}

// AddItem appends a new item to the shopping list. Adding a name that
// already has an active to_buy entry fails with DuplicateItemError unless
// the input allows duplicates.
func (s *Service) AddItem(ctx context.Context, input AddItemInput) (GroceryItem, Result, error) {
	ctx, done := s.instrument(ctx, "add_item")
	var created GroceryItem
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return ValidationError{Field: "name", Message: "item name is required"}
		}
		if !input.AllowDuplicate {
			for _, existing := range tx.Snapshot().ListItems() {
				if existing.Status == StatusToBuy && strings.EqualFold(existing.Name, name) {
					return DuplicateItemError{Name: name, ExistingID: existing.ID.String()}
				}
			}
		}
		item := GroceryItem{
			Name:            name,
			Quantity:        input.Quantity,
			Unit:            input.Unit,
			Category:        input.Category,
			Store:           input.Store,
			Aisle:           input.Aisle,
			BrandPreference: input.BrandPreference,
			EstimatedPrice:  input.EstimatedPrice,
			Priority:        input.Priority,
			AddedBy:         input.AddedBy,
			AddedAt:         s.nowFn(),
			Notes:           input.Notes,
			Status:          StatusToBuy,
		}
		if item.Quantity == (Quantity{}) {
			item.Quantity = domain.NumericQuantity(1)
		}
		if item.Category == "" {
			item.Category = GuessCategory(name)
		}
		if item.Store == "" {
			item.Store = s.defaultStore
		}
		if item.Priority == "" {
			item.Priority = PriorityMedium
		}
		if err := validatePriority(item.Priority); err != nil {
			return err
		}
		var err error
		created, err = tx.CreateItem(item)
		return err
	})
	done(err)
	return created, res, err
}

// GetItem looks up a single list item by ID.
func (s *Service) GetItem(ctx context.Context, id string) (GroceryItem, error) {
	_, done := s.instrument(ctx, "get_item")
	item, ok := s.store.GetItem(id)
	var err error
	if !ok {
		err = NotFoundError{Entity: EntityGroceryItem, Key: id}
	}
	done(err)
	return item, err
}

// RemoveItem deletes a list item. Removal is terminal.
func (s *Service) RemoveItem(ctx context.Context, id string) (GroceryItem, Result, error) {
	ctx, done := s.instrument(ctx, "remove_item")
	var removed GroceryItem
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		item, ok := tx.FindItem(id)
		if !ok {
			return NotFoundError{Entity: EntityGroceryItem, Key: id}
		}
		removed = item
		return tx.DeleteItem(id)
	})
	done(err)
	return removed, res, err
}

// ItemUpdate names the mutable fields of a list item. Nil fields are left
// untouched.
type ItemUpdate struct {
	Name            *string
	Quantity        *Quantity
	Unit            *string
	Category        *string
	Store           *string
	Aisle           *string
	BrandPreference *string
	EstimatedPrice  *float64
	Priority        *Priority
	Notes           *string
	Status          *ItemStatus
}

// UpdateItem applies a partial update to a list item. Status changes are
// validated against the allowed lifecycle transitions.
func (s *Service) UpdateItem(ctx context.Context, id string, update ItemUpdate) (GroceryItem, Result, error) {
	ctx, done := s.instrument(ctx, "update_item")
	var updated GroceryItem
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateItem(id, func(item *GroceryItem) error {
			if update.Name != nil {
				if strings.TrimSpace(*update.Name) == "" {
					return ValidationError{Field: "name", Message: "item name is required"}
				}
				item.Name = strings.TrimSpace(*update.Name)
			}
			if update.Quantity != nil {
				item.Quantity = *update.Quantity
			}
			if update.Unit != nil {
				item.Unit = *update.Unit
			}
			if update.Category != nil {
				item.Category = *update.Category
			}
			if update.Store != nil {
				item.Store = *update.Store
			}
			if update.Aisle != nil {
				item.Aisle = *update.Aisle
			}
			if update.BrandPreference != nil {
				item.BrandPreference = *update.BrandPreference
			}
			if update.EstimatedPrice != nil {
				item.EstimatedPrice = update.EstimatedPrice
			}
			if update.Priority != nil {
				if err := validatePriority(*update.Priority); err != nil {
					return err
				}
				item.Priority = *update.Priority
			}
			if update.Notes != nil {
				item.Notes = *update.Notes
			}
			if update.Status != nil {
				item.Status = *update.Status
			}
			return nil
		})
		return err
	})
	done(err)
	return updated, res, err
}

// MarkBought marks a list item bought, recording the observed quantity and
// price when supplied.
func (s *Service) MarkBought(ctx context.Context, id string, quantity *float64, price *float64) (GroceryItem, Result, error) {
	ctx, done := s.instrument(ctx, "mark_bought")
	var updated GroceryItem
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateItem(id, func(item *GroceryItem) error {
			item.Status = StatusBought
			if quantity != nil {
				item.Quantity = domain.NumericQuantity(*quantity)
			}
			if price != nil {
				item.EstimatedPrice = price
			}
			return nil
		})
		return err
	})
	done(err)
	return updated, res, err
}

// MarkStillNeeded flags an item that was not found while shopping.
func (s *Service) MarkStillNeeded(ctx context.Context, id string) (GroceryItem, Result, error) {
	ctx, done := s.instrument(ctx, "mark_still_needed")
	var updated GroceryItem
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateItem(id, func(item *GroceryItem) error {
			item.Status = StatusStillNeeded
			return nil
		})
		return err
	})
	done(err)
	return updated, res, err
}

// ClearBought removes every bought item from the list and returns the count
// of removed entries.
func (s *Service) ClearBought(ctx context.Context) (int, Result, error) {
	ctx, done := s.instrument(ctx, "clear_bought")
	var removed int
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		for _, item := range tx.Snapshot().ListItems() {
			if item.Status != StatusBought {
				continue
			}
			if err := tx.DeleteItem(item.ID.String()); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	done(err)
	if err != nil {
		return 0, res, err
	}
	return removed, res, nil
}

// ListFilter narrows ListItems output. Empty fields match everything.
type ListFilter struct {
	Store    string
	Category string
	Status   ItemStatus
}

// ListItems returns list items matching the filter, in name order.
func (s *Service) ListItems(ctx context.Context, filter ListFilter) ([]GroceryItem, error) {
	ctx, done := s.instrument(ctx, "list_items")
	var items []GroceryItem
	err := s.store.View(ctx, func(view TransactionView) error {
		for _, item := range view.ListItems() {
			if filter.Store != "" && !strings.EqualFold(item.Store, filter.Store) {
				continue
			}
			if filter.Category != "" && !strings.EqualFold(item.Category, filter.Category) {
				continue
			}
			if filter.Status != "" && item.Status != filter.Status {
				continue
			}
			items = append(items, item)
		}
		return nil
	})
	done(err)
	return items, err
}

// ItemsByStore groups list items by store. Items without a store land under
// "Unspecified".
func (s *Service) ItemsByStore(ctx context.Context) (map[string][]GroceryItem, error) {
	ctx, done := s.instrument(ctx, "items_by_store")
	grouped := make(map[string][]GroceryItem)
	err := s.store.View(ctx, func(view TransactionView) error {
		for _, item := range view.ListItems() {
			store := item.Store
			if store == "" {
				store = "Unspecified"
			}
			grouped[store] = append(grouped[store], item)
		}
		return nil
	})
	done(err)
	return grouped, err
}

// ItemsByCategory groups list items by category.
func (s *Service) ItemsByCategory(ctx context.Context) (map[string][]GroceryItem, error) {
	ctx, done := s.instrument(ctx, "items_by_category")
	grouped := make(map[string][]GroceryItem)
	err := s.store.View(ctx, func(view TransactionView) error {
		for _, item := range view.ListItems() {
			grouped[item.Category] = append(grouped[item.Category], item)
		}
		return nil
	})
	done(err)
	return grouped, err
}

// ReportOutOfStock records that an item was missing from a store's shelves.
func (s *Service) ReportOutOfStock(ctx context.Context, itemName, store, substitution, reportedBy string) (OutOfStockRecord, Result, error) {
	ctx, done := s.instrument(ctx, "report_out_of_stock")
	var created OutOfStockRecord
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		if strings.TrimSpace(itemName) == "" {
			return ValidationError{Field: "item_name", Message: "item name is required"}
		}
		if strings.TrimSpace(store) == "" {
			return ValidationError{Field: "store", Message: "store is required"}
		}
		var err error
		created, err = tx.AddOutOfStock(OutOfStockRecord{
			ItemName:     strings.TrimSpace(itemName),
			Store:        strings.TrimSpace(store),
			RecordedDate: s.today(),
			Substitution: substitution,
			ReportedBy:   reportedBy,
		})
		return err
	})
	done(err)
	return created, res, err
}

// SetBudget creates or replaces the budget for a month ("YYYY-MM", defaults
// to the current month). Category limits are optional.
func (s *Service) SetBudget(ctx context.Context, monthlyLimit float64, categoryLimits map[string]float64, month string) (BudgetTracking, Result, error) {
	ctx, done := s.instrument(ctx, "set_budget")
	var saved BudgetTracking
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		if monthlyLimit < 0 {
			return ValidationError{Field: "monthly_limit", Message: "monthly limit must not be negative"}
		}
		if month == "" {
			month = s.today().MonthKey()
		}
		budget := BudgetTracking{Month: month, MonthlyLimit: monthlyLimit}
		for _, category := range sortedKeys(categoryLimits) {
			budget.CategoryBudgets = append(budget.CategoryBudgets, CategoryBudget{
				Category: category,
				Limit:    categoryLimits[category],
			})
		}
		var err error
		saved, err = tx.SaveBudget(budget)
		return err
	})
	done(err)
	return saved, res, err
}

// SavePreferences stores per-user preferences, replacing any prior record.
func (s *Service) SavePreferences(ctx context.Context, prefs UserPreferences) (UserPreferences, Result, error) {
	ctx, done := s.instrument(ctx, "save_preferences")
	var saved UserPreferences
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		if strings.TrimSpace(prefs.User) == "" {
			return ValidationError{Field: "user", Message: "user is required"}
		}
		var err error
		saved, err = tx.SavePreferences(prefs)
		return err
	})
	done(err)
	return saved, res, err
}

// GetPreferences returns the stored preferences for a user.
func (s *Service) GetPreferences(ctx context.Context, user string) (UserPreferences, error) {
	ctx, done := s.instrument(ctx, "get_preferences")
	var prefs UserPreferences
	var found bool
	err := s.store.View(ctx, func(view TransactionView) error {
		prefs, found = view.UserPreferences(user)
		return nil
	})
	if err == nil && !found {
		err = NotFoundError{Entity: EntityPreferences, Key: user}
	}
	done(err)
	return prefs, err
}

func validatePriority(p Priority) error {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return nil
	default:
		return ValidationError{Field: "priority", Message: "priority must be high, medium, or low"}
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
