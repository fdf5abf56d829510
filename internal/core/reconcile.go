package core

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"pantrycore/internal/blob"
	"pantrycore/pkg/domain"
	"pantrycore/pkg/normalize"
)

// ReceiptInput is the structured receipt payload supplied by an external
// capture step (OCR, manual entry).
type ReceiptInput struct {
	StoreName       string     `json:"store_name"`
	StoreLocation   string     `json:"store_location,omitempty"`
	TransactionDate Date       `json:"transaction_date"`
	TransactionTime string     `json:"transaction_time,omitempty"`
	PurchasedBy     string     `json:"purchased_by,omitempty"`
	LineItems       []LineItem `json:"line_items"`
	Subtotal        float64    `json:"subtotal,omitempty"`
	Tax             float64    `json:"tax,omitempty"`
	DiscountTotal   float64    `json:"discount_total,omitempty"`
	CouponTotal     float64    `json:"coupon_total,omitempty"`
	Total           float64    `json:"total"`
	PaymentMethod   string     `json:"payment_method,omitempty"`
}

func (in ReceiptInput) validate() error {
	if strings.TrimSpace(in.StoreName) == "" {
		return ValidationError{Field: "store_name", Message: "store name is required"}
	}
	if in.TransactionDate.IsZero() {
		return ValidationError{Field: "transaction_date", Message: "transaction date is required"}
	}
	if len(in.LineItems) == 0 {
		return ValidationError{Field: "line_items", Message: "receipt must have at least one line item"}
	}
	for _, line := range in.LineItems {
		if strings.TrimSpace(line.ItemName) == "" {
			return ValidationError{Field: "line_items", Message: "line items must have a name"}
		}
	}
	return nil
}

// ProcessReceipt persists a receipt and reconciles it against the open
// shopping list. Matched list items are marked bought with the observed
// quantity and price; every line item feeds the price and frequency logs
// under its raw name; discount savings become savings records. Validation
// failures abort before any write.
func (s *Service) ProcessReceipt(ctx context.Context, input ReceiptInput) (ReconciliationResult, Result, error) {
	ctx, done := s.instrument(ctx, "process_receipt")
	var result ReconciliationResult
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		if err := input.validate(); err != nil {
			return err
		}

		// Candidate pool: open to_buy items in list order. Matching is
		// greedy and order-sensitive; the first match wins and removes
		// the list item from further consideration.
		var candidates []GroceryItem
		for _, item := range tx.Snapshot().ListItems() {
			if item.Status == StatusToBuy {
				candidates = append(candidates, item)
			}
		}
		matchedIDs := make(map[string]bool)

		lines := make([]LineItem, len(input.LineItems))
		copy(lines, input.LineItems)

		var matched, newlyBought []string
		for i := range lines {
			line := &lines[i]
			var hit *GroceryItem
			for c := range candidates {
				candidate := &candidates[c]
				if matchedIDs[candidate.ID.String()] {
					continue
				}
				if itemsMatch(candidate.Name, line.ItemName) {
					hit = candidate
					break
				}
			}
			if hit == nil {
				newlyBought = append(newlyBought, line.ItemName)
				continue
			}
			matchedIDs[hit.ID.String()] = true
			matched = append(matched, hit.Name)
			id := hit.ID
			line.MatchedListItemID = &id
			if line.Category == "" {
				line.Category = hit.Category
			}
			price := line.TotalPrice
			quantity := line.Quantity
			if _, err := tx.UpdateItem(hit.ID.String(), func(item *GroceryItem) error {
				item.Status = StatusBought
				item.Quantity = domain.NumericQuantity(quantity)
				item.EstimatedPrice = &price
				return nil
			}); err != nil {
				return err
			}
		}

		var stillNeeded []string
		for _, candidate := range candidates {
			if !matchedIDs[candidate.ID.String()] {
				stillNeeded = append(stillNeeded, candidate.Name)
			}
		}

		receipt, err := tx.SaveReceipt(Receipt{
			StoreName:       input.StoreName,
			StoreLocation:   input.StoreLocation,
			TransactionDate: input.TransactionDate,
			TransactionTime: input.TransactionTime,
			PurchasedBy:     input.PurchasedBy,
			LineItems:       lines,
			Subtotal:        input.Subtotal,
			Tax:             input.Tax,
			DiscountTotal:   input.DiscountTotal,
			CouponTotal:     input.CouponTotal,
			Total:           input.Total,
			PaymentMethod:   input.PaymentMethod,
		})
		if err != nil {
			return err
		}

		// Every line item feeds the price and frequency logs, matched or
		// not, keyed by its raw name. Canonical grouping happens at read
		// time in the analytics layer.
		for _, line := range lines {
			receiptID := receipt.ID
			if err := tx.AppendPricePoint(line.ItemName, input.StoreName, PricePoint{
				Date:      input.TransactionDate,
				Price:     line.UnitPrice,
				Sale:      line.OnSale(),
				ReceiptID: &receiptID,
			}); err != nil {
				return err
			}
			category := line.Category
			if category == "" {
				category = GuessCategory(line.ItemName)
			}
			if err := tx.AppendPurchase(line.ItemName, category, PurchaseRecord{
				Date:     input.TransactionDate,
				Quantity: line.Quantity,
				Store:    input.StoreName,
			}); err != nil {
				return err
			}
		}

		if err := persistSavings(tx, receipt); err != nil {
			return err
		}

		result = ReconciliationResult{
			ReceiptID:      receipt.ID,
			MatchedItems:   len(matched),
			StillNeeded:    stillNeeded,
			NewlyBought:    newlyBought,
			TotalSpent:     input.Total,
			ItemsPurchased: len(lines),
		}
		return nil
	})
	if err == nil {
		s.archiveReceiptInput(ctx, result.ReceiptID.String(), input)
	}
	done(err)
	return result, res, err
}

// archiveReceiptInput writes the raw receipt payload to the document store
// after the transaction commits. Archive failures are logged and swallowed;
// the reconciled prices and dates are already durable.
func (s *Service) archiveReceiptInput(ctx context.Context, receiptID string, input ReceiptInput) {
	if s.docs == nil {
		return
	}
	payload, err := json.Marshal(input)
	if err != nil {
		s.logger.Warn("receipt archive encode failed", "receipt_id", receiptID, "error", err.Error())
		return
	}
	key := receiptDocumentKey(receiptID, "original.json")
	opts := blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"receipt_id": receiptID, "store": input.StoreName},
	}
	if _, err := s.docs.Put(ctx, key, bytes.NewReader(payload), opts); err != nil {
		s.logger.Warn("receipt archive failed", "receipt_id", receiptID, "error", err.Error())
	}
}

// persistSavings writes one savings record per discounted line item, plus a
// single receipt-level record for any discount not attributed to a line.
func persistSavings(tx Transaction, receipt Receipt) error {
	var attributed float64
	for _, line := range receipt.LineItems {
		savings := line.LineSavings()
		if savings <= 0 {
			continue
		}
		attributed += savings
		category := line.Category
		if category == "" {
			category = GuessCategory(line.ItemName)
		}
		if _, err := tx.AddSavingsRecord(SavingsRecord{
			ReceiptID:        receipt.ID,
			TransactionDate:  receipt.TransactionDate,
			Store:            receipt.StoreName,
			ItemName:         line.ItemName,
			Category:         category,
			SavingsAmount:    round2(savings),
			Source:           SavingsLineItemDiscount,
			Quantity:         line.Quantity,
			PaidUnitPrice:    line.UnitPrice,
			RegularUnitPrice: line.RegularUnitPrice,
		}); err != nil {
			return err
		}
	}

	receiptLevel := maxFloat(receipt.DiscountTotal, 0) + maxFloat(receipt.CouponTotal, 0)
	leftover := round2(receiptLevel - attributed)
	if leftover <= 0 {
		return nil
	}
	_, err := tx.AddSavingsRecord(SavingsRecord{
		ReceiptID:       receipt.ID,
		TransactionDate: receipt.TransactionDate,
		Store:           receipt.StoreName,
		Category:        CategoryOther,
		SavingsAmount:   leftover,
		Source:          SavingsReceiptDiscount,
	})
	return err
}

// itemsMatch applies the layered fuzzy-match policy between a shopping-list
// name and a receipt line name. Rules run in order; any hit is a match.
func itemsMatch(listName, receiptName string) bool {
	listNorm := normalize.Canonical(listName)
	receiptNorm := normalize.Canonical(receiptName)

	// Exact canonical equality.
	if listNorm == receiptNorm {
		return true
	}

	// Substring either direction.
	if strings.Contains(receiptNorm, listNorm) || strings.Contains(listNorm, receiptNorm) {
		return true
	}

	listWords := strings.Fields(listNorm)
	receiptWords := strings.Fields(receiptNorm)

	// Word-set containment: a multi-word list name fully contained in the
	// receipt name's word set.
	if len(listWords) >= 2 && wordsSubset(listWords, receiptWords) {
		return true
	}

	// Primary-word partial match. Short first words are skipped so "tea"
	// cannot latch onto "green matcha".
	if len(listWords) > 0 {
		primary := listWords[0]
		if len(primary) >= 4 {
			for _, word := range receiptWords {
				if strings.Contains(word, primary) || strings.Contains(primary, word) {
					return true
				}
			}
		}
	}

	return false
}

func wordsSubset(subset, super []string) bool {
	set := make(map[string]bool, len(super))
	for _, w := range super {
		set[w] = true
	}
	for _, w := range subset {
		if !set[w] {
			return false
		}
	}
	return true
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
