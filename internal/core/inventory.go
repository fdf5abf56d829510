package core

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// AddInventoryInput carries the caller-supplied fields for a new inventory
// record.
type AddInventoryInput struct {
	ItemName          string
	Quantity          float64
	Unit              string
	Category          string
	Location          InventoryLocation
	ExpirationDate    *Date
	LowStockThreshold float64
	PurchasedDate     Date
	ReceiptID         *uuid.UUID
	AddedBy           string
}

// AddInventoryItem records a new household stock entry.
func (s *Service) AddInventoryItem(ctx context.Context, input AddInventoryInput) (InventoryItem, Result, error) {
	ctx, done := s.instrument(ctx, "add_inventory_item")
	var created InventoryItem
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		if strings.TrimSpace(input.ItemName) == "" {
			return ValidationError{Field: "item_name", Message: "item name is required"}
		}
		item := InventoryItem{
			ItemName:          strings.TrimSpace(input.ItemName),
			Category:          input.Category,
			Quantity:          input.Quantity,
			Unit:              input.Unit,
			Location:          input.Location,
			ExpirationDate:    input.ExpirationDate,
			LowStockThreshold: input.LowStockThreshold,
			PurchasedDate:     input.PurchasedDate,
			ReceiptID:         input.ReceiptID,
			AddedBy:           input.AddedBy,
		}
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		if item.Category == "" {
			item.Category = GuessCategory(item.ItemName)
		}
		if item.Location == "" {
			item.Location = LocationPantry
		}
		switch item.Location {
		case LocationPantry, LocationFridge, LocationFreezer:
		default:
			return ValidationError{Field: "location", Message: "location must be pantry, fridge, or freezer"}
		}
		if item.LowStockThreshold == 0 {
			item.LowStockThreshold = 1
		}
		if item.PurchasedDate.IsZero() {
			item.PurchasedDate = s.today()
		}
		var err error
		created, err = tx.CreateInventoryItem(item)
		return err
	})
	done(err)
	return created, res, err
}

// AdjustInventoryQuantity sets or shifts an inventory item's quantity.
// Deltas floor at zero.
func (s *Service) AdjustInventoryQuantity(ctx context.Context, id string, quantity, delta *float64) (InventoryItem, Result, error) {
	ctx, done := s.instrument(ctx, "adjust_inventory_quantity")
	var updated InventoryItem
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		if quantity == nil && delta == nil {
			return ValidationError{Field: "quantity", Message: "provide a quantity or a delta"}
		}
		var err error
		updated, err = tx.UpdateInventoryItem(id, func(item *InventoryItem) error {
			if quantity != nil {
				item.Quantity = *quantity
			} else {
				item.Quantity += *delta
				if item.Quantity < 0 {
					item.Quantity = 0
				}
			}
			return nil
		})
		return err
	})
	done(err)
	return updated, res, err
}

// InventoryUpdate names the mutable fields of an inventory item. Nil fields
// are left untouched; ClearExpiration removes the expiration date.
type InventoryUpdate struct {
	ItemName          *string
	Quantity          *float64
	Unit              *string
	Category          *string
	Location          *InventoryLocation
	ExpirationDate    *Date
	ClearExpiration   bool
	LowStockThreshold *float64
}

// UpdateInventoryItem applies a partial update to an inventory record.
func (s *Service) UpdateInventoryItem(ctx context.Context, id string, update InventoryUpdate) (InventoryItem, Result, error) {
	ctx, done := s.instrument(ctx, "update_inventory_item")
	var updated InventoryItem
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateInventoryItem(id, func(item *InventoryItem) error {
			if update.ItemName != nil {
				if strings.TrimSpace(*update.ItemName) == "" {
					return ValidationError{Field: "item_name", Message: "item name is required"}
				}
				item.ItemName = strings.TrimSpace(*update.ItemName)
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
			if update.Location != nil {
				switch *update.Location {
				case LocationPantry, LocationFridge, LocationFreezer:
					item.Location = *update.Location
				default:
					return ValidationError{Field: "location", Message: "location must be pantry, fridge, or freezer"}
				}
			}
			if update.ClearExpiration {
				item.ExpirationDate = nil
			} else if update.ExpirationDate != nil {
				item.ExpirationDate = update.ExpirationDate
			}
			if update.LowStockThreshold != nil {
				item.LowStockThreshold = *update.LowStockThreshold
			}
			return nil
		})
		return err
	})
	done(err)
	return updated, res, err
}

// RemoveInventoryItem deletes an inventory record.
func (s *Service) RemoveInventoryItem(ctx context.Context, id string) (InventoryItem, Result, error) {
	ctx, done := s.instrument(ctx, "remove_inventory_item")
	var removed InventoryItem
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		item, ok := tx.Snapshot().FindInventoryItem(id)
		if !ok {
			return NotFoundError{Entity: EntityInventoryItem, Key: id}
		}
		removed = item
		return tx.DeleteInventoryItem(id)
	})
	done(err)
	return removed, res, err
}

// InventoryFilter narrows Inventory output. Empty fields match everything.
type InventoryFilter struct {
	Location InventoryLocation
	Category string
}

// Inventory lists inventory records matching the filter.
func (s *Service) Inventory(ctx context.Context, filter InventoryFilter) ([]InventoryItem, error) {
	ctx, done := s.instrument(ctx, "list_inventory")
	var items []InventoryItem
	err := s.store.View(ctx, func(view TransactionView) error {
		for _, item := range view.InventoryItems() {
			if filter.Location != "" && item.Location != filter.Location {
				continue
			}
			if filter.Category != "" && !strings.EqualFold(item.Category, filter.Category) {
				continue
			}
			items = append(items, item)
		}
		return nil
	})
	done(err)
	return items, err
}

// ExpiringSoon lists inventory expiring within the given number of days,
// soonest first.
func (s *Service) ExpiringSoon(ctx context.Context, days int) ([]InventoryItem, error) {
	ctx, done := s.instrument(ctx, "expiring_soon")
	var expiring []InventoryItem
	err := s.store.View(ctx, func(view TransactionView) error {
		cutoff := s.today().AddDays(days)
		for _, item := range view.InventoryItems() {
			if item.ExpirationDate != nil && !item.ExpirationDate.After(cutoff) {
				expiring = append(expiring, item)
			}
		}
		sort.Slice(expiring, func(i, j int) bool {
			if !expiring[i].ExpirationDate.Equal(*expiring[j].ExpirationDate) {
				return expiring[i].ExpirationDate.Before(*expiring[j].ExpirationDate)
			}
			return expiring[i].ItemName < expiring[j].ItemName
		})
		return nil
	})
	done(err)
	return expiring, err
}

// LowStock lists inventory at or below its low-stock threshold.
func (s *Service) LowStock(ctx context.Context) ([]InventoryItem, error) {
	ctx, done := s.instrument(ctx, "low_stock")
	var low []InventoryItem
	err := s.store.View(ctx, func(view TransactionView) error {
		for _, item := range view.InventoryItems() {
			if item.IsLowStock() {
				low = append(low, item)
			}
		}
		return nil
	})
	done(err)
	return low, err
}

// DefaultUseItUpHorizonDays is the default look-ahead for use-it-up payloads.
const DefaultUseItUpHorizonDays = 3

// UseItUp builds a payload of inventory expiring within the horizon, most
// urgent first, for downstream meal planning. User preferences contribute
// dietary constraints when available.
func (s *Service) UseItUp(ctx context.Context, days int, user string) (UseItUpPayload, error) {
	ctx, done := s.instrument(ctx, "use_it_up")
	var payload UseItUpPayload
	err := s.store.View(ctx, func(view TransactionView) error {
		if days <= 0 {
			days = DefaultUseItUpHorizonDays
		}
		today := s.today()

		type expiring struct {
			item      InventoryItem
			daysUntil int
		}
		var rows []expiring
		for _, item := range view.InventoryItems() {
			if item.ExpirationDate == nil {
				continue
			}
			daysUntil := item.ExpirationDate.DaysSince(today)
			if daysUntil <= days {
				rows = append(rows, expiring{item, daysUntil})
			}
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].daysUntil != rows[j].daysUntil {
				return rows[i].daysUntil < rows[j].daysUntil
			}
			return strings.ToLower(rows[i].item.ItemName) < strings.ToLower(rows[j].item.ItemName)
		})

		payload = UseItUpPayload{
			GeneratedOn: today,
			HorizonDays: days,
		}
		for rank, row := range rows {
			payload.Items = append(payload.Items, UseItUpItem{
				ItemName:            row.item.ItemName,
				Quantity:            row.item.Quantity,
				Unit:                row.item.Unit,
				Category:            row.item.Category,
				Location:            row.item.Location,
				ExpirationDate:      *row.item.ExpirationDate,
				DaysUntilExpiration: row.daysUntil,
				PriorityRank:        rank + 1,
			})
		}
		if user != "" {
			if prefs, ok := view.UserPreferences(user); ok {
				payload.DietaryRestrictions = prefs.DietaryRestrictions
				payload.Allergens = prefs.Allergens
			}
		}
		return nil
	})
	done(err)
	return payload, err
}

// RestockFromReceipt copies a processed receipt's line items into inventory.
func (s *Service) RestockFromReceipt(ctx context.Context, receiptID string) ([]InventoryItem, Result, error) {
	ctx, done := s.instrument(ctx, "restock_from_receipt")
	var added []InventoryItem
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		receipt, ok := tx.Snapshot().FindReceipt(receiptID)
		if !ok {
			return NotFoundError{Entity: EntityReceipt, Key: receiptID}
		}
		for _, line := range receipt.LineItems {
			category := line.Category
			if category == "" {
				category = GuessCategory(line.ItemName)
			}
			id := receipt.ID
			item, err := tx.CreateInventoryItem(InventoryItem{
				ItemName:          line.ItemName,
				Category:          category,
				Quantity:          line.Quantity,
				Location:          LocationPantry,
				LowStockThreshold: 1,
				PurchasedDate:     receipt.TransactionDate,
				ReceiptID:         &id,
			})
			if err != nil {
				return err
			}
			added = append(added, item)
		}
		return nil
	})
	done(err)
	return added, res, err
}
