package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"pantrycore/internal/blob"
)

// ErrNoDocumentStore is returned by document operations when the service was
// built without WithDocumentStore.
var ErrNoDocumentStore = fmt.Errorf("document store not configured")

// WithDocumentStore attaches a blob store used for receipt attachments and
// export snapshots.
func WithDocumentStore(store blob.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.docs = store
		}
	}
}

// Documents returns the attached document store, or nil.
func (s *Service) Documents() blob.Store {
	return s.docs
}

func receiptDocumentKey(receiptID, filename string) string {
	return "receipts/" + receiptID + "/" + filename
}

func validateDocumentFilename(filename string) error {
	name := strings.TrimSpace(filename)
	if name == "" {
		return ValidationError{Field: "filename", Message: "is required"}
	}
	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		return ValidationError{Field: "filename", Message: "must be a bare file name"}
	}
	return nil
}

// findReceipt resolves a receipt id outside a write transaction.
func (s *Service) findReceipt(ctx context.Context, receiptID string) (Receipt, error) {
	var receipt Receipt
	err := s.store.View(ctx, func(view TransactionView) error {
		found, ok := view.FindReceipt(receiptID)
		if !ok {
			return NotFoundError{Entity: EntityReceipt, Key: receiptID}
		}
		receipt = found
		return nil
	})
	return receipt, err
}

// AttachReceiptDocument stores a scan or photo alongside a processed receipt.
// The document is keyed under the receipt id, so attachments travel with the
// receipt across drivers.
func (s *Service) AttachReceiptDocument(ctx context.Context, receiptID, filename, contentType string, r io.Reader) (blob.Info, error) {
	ctx, done := s.instrument(ctx, "attach_receipt_document")
	info, err := s.attachReceiptDocument(ctx, receiptID, filename, contentType, r)
	done(err)
	return info, err
}

func (s *Service) attachReceiptDocument(ctx context.Context, receiptID, filename, contentType string, r io.Reader) (blob.Info, error) {
	if s.docs == nil {
		return blob.Info{}, ErrNoDocumentStore
	}
	if err := validateDocumentFilename(filename); err != nil {
		return blob.Info{}, err
	}
	receipt, err := s.findReceipt(ctx, receiptID)
	if err != nil {
		return blob.Info{}, err
	}
	opts := blob.PutOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			"receipt_id":       receiptID,
			"store":            receipt.StoreName,
			"transaction_date": receipt.TransactionDate.String(),
		},
	}
	return s.docs.Put(ctx, receiptDocumentKey(receiptID, strings.TrimSpace(filename)), r, opts)
}

// ReceiptDocuments lists the attachments stored for a receipt, sorted by key.
func (s *Service) ReceiptDocuments(ctx context.Context, receiptID string) ([]blob.Info, error) {
	ctx, done := s.instrument(ctx, "receipt_documents")
	infos, err := s.receiptDocuments(ctx, receiptID)
	done(err)
	return infos, err
}

func (s *Service) receiptDocuments(ctx context.Context, receiptID string) ([]blob.Info, error) {
	if s.docs == nil {
		return nil, ErrNoDocumentStore
	}
	if _, err := s.findReceipt(ctx, receiptID); err != nil {
		return nil, err
	}
	return s.docs.List(ctx, "receipts/"+receiptID+"/")
}

// OpenReceiptDocument returns the metadata and content of one attachment.
// The caller owns the returned reader.
func (s *Service) OpenReceiptDocument(ctx context.Context, receiptID, filename string) (blob.Info, io.ReadCloser, error) {
	ctx, done := s.instrument(ctx, "open_receipt_document")
	if s.docs == nil {
		done(ErrNoDocumentStore)
		return blob.Info{}, nil, ErrNoDocumentStore
	}
	if err := validateDocumentFilename(filename); err != nil {
		done(err)
		return blob.Info{}, nil, err
	}
	info, rc, err := s.docs.Get(ctx, receiptDocumentKey(receiptID, strings.TrimSpace(filename)))
	done(err)
	return info, rc, err
}

// ReceiptDocumentURL returns a pre-signed GET URL for an attachment when the
// driver supports signing.
func (s *Service) ReceiptDocumentURL(ctx context.Context, receiptID, filename string, expiry time.Duration) (string, error) {
	ctx, done := s.instrument(ctx, "receipt_document_url")
	if s.docs == nil {
		done(ErrNoDocumentStore)
		return "", ErrNoDocumentStore
	}
	if err := validateDocumentFilename(filename); err != nil {
		done(err)
		return "", err
	}
	url, err := s.docs.PresignURL(ctx, receiptDocumentKey(receiptID, strings.TrimSpace(filename)), blob.SignedURLOptions{Method: "GET", Expiry: expiry})
	done(err)
	return url, err
}

// DeleteReceiptDocument removes one attachment, reporting whether it existed.
func (s *Service) DeleteReceiptDocument(ctx context.Context, receiptID, filename string) (bool, error) {
	ctx, done := s.instrument(ctx, "delete_receipt_document")
	if s.docs == nil {
		done(ErrNoDocumentStore)
		return false, ErrNoDocumentStore
	}
	if err := validateDocumentFilename(filename); err != nil {
		done(err)
		return false, err
	}
	ok, err := s.docs.Delete(ctx, receiptDocumentKey(receiptID, strings.TrimSpace(filename)))
	done(err)
	return ok, err
}

// ExportPayload is the JSON document written by ExportSnapshot.
type ExportPayload struct {
	ExportedAt        time.Time          `json:"exported_at"`
	Items             []GroceryItem      `json:"items"`
	Receipts          []Receipt          `json:"receipts"`
	PriceHistories    []PriceHistory     `json:"price_histories,omitempty"`
	FrequencyData     []FrequencyData    `json:"frequency_data,omitempty"`
	OutOfStockRecords []OutOfStockRecord `json:"out_of_stock_records,omitempty"`
	InventoryItems    []InventoryItem    `json:"inventory_items,omitempty"`
	WasteRecords      []WasteRecord      `json:"waste_records,omitempty"`
	Budgets           []BudgetTracking   `json:"budgets,omitempty"`
	SavingsRecords    []SavingsRecord    `json:"savings_records,omitempty"`
	Preferences       []UserPreferences  `json:"preferences,omitempty"`
}

// ExportSnapshot serializes the full state of the store and writes it to the
// document store under exports/. Returns the stored document's metadata.
func (s *Service) ExportSnapshot(ctx context.Context) (blob.Info, error) {
	ctx, done := s.instrument(ctx, "export_snapshot")
	info, err := s.exportSnapshot(ctx)
	done(err)
	return info, err
}

func (s *Service) exportSnapshot(ctx context.Context) (blob.Info, error) {
	if s.docs == nil {
		return blob.Info{}, ErrNoDocumentStore
	}
	now := s.nowFn().UTC()
	payload := ExportPayload{ExportedAt: now}
	err := s.store.View(ctx, func(view TransactionView) error {
		payload.Items = view.ListItems()
		payload.Receipts = view.ListReceipts()
		payload.PriceHistories = view.PriceHistories()
		payload.FrequencyData = view.FrequencyData()
		payload.OutOfStockRecords = view.OutOfStockRecords()
		payload.InventoryItems = view.InventoryItems()
		payload.WasteRecords = view.WasteRecords()
		payload.Budgets = view.Budgets()
		payload.SavingsRecords = view.SavingsRecords()
		payload.Preferences = view.Preferences()
		return nil
	})
	if err != nil {
		return blob.Info{}, err
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return blob.Info{}, err
	}
	key := "exports/pantry-" + now.Format("20060102T150405Z") + ".json"
	return s.docs.Put(ctx, key, strings.NewReader(string(b)), blob.PutOptions{ContentType: "application/json"})
}
