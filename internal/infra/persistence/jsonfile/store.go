// Package jsonfile provides a file-backed persistent store writing one JSON
// document per bucket under a data directory. Writes go through a temp file
// and rename so a crash never leaves a half-written bucket.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"pantrycore/internal/infra/persistence/memory"
	"pantrycore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// Store persists snapshots as JSON files, one per bucket.
type Store struct {
	*memory.Store
	dir string
	mu  sync.Mutex
}

// NewStore constructs a file-backed store rooted at dir, hydrating from any
// bucket files already present.
func NewStore(dir string, engine *domain.RulesEngine) (*Store, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	mem := memory.NewStore(engine)
	s := &Store{Store: mem, dir: dir}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func bucketFiles(snapshot *memory.Snapshot) map[string]any {
	return map[string]any{
		"grocery_list.json":  &snapshot.List,
		"receipts.json":      &snapshot.Receipts,
		"price_history.json": &snapshot.Prices,
		"frequency.json":     &snapshot.Frequency,
		"out_of_stock.json":  &snapshot.OutOfStock,
		"inventory.json":     &snapshot.Inventory,
		"waste_log.json":     &snapshot.WasteLog,
		"budgets.json":       &snapshot.Budgets,
		"savings.json":       &snapshot.Savings,
		"preferences.json":   &snapshot.Preferences,
	}
}

func (s *Store) load() error {
	var snapshot memory.Snapshot
	loaded := false
	for name, target := range bucketFiles(&snapshot) {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if len(data) == 0 {
			continue
		}
		if err := json.Unmarshal(data, target); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		loaded = true
	}
	if loaded {
		s.ImportState(snapshot)
	}
	return nil
}

func (s *Store) persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	for name, target := range bucketFiles(&snapshot) {
		data, err := json.MarshalIndent(target, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		path := filepath.Join(s.dir, name)
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, data, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		if err := os.Rename(tmp, path); err != nil {
			return fmt.Errorf("replace %s: %w", name, err)
		}
	}
	return nil
}

// RunInTransaction applies the provided function within a transaction, then
// writes all bucket files if successful.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if pErr := s.persist(); pErr != nil {
		return res, pErr
	}
	return res, nil
}

// Dir returns the configured data directory.
func (s *Store) Dir() string { return s.dir }
