package postgres

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
)

func TestNewStoreOpenFailure(t *testing.T) {
	boom := errors.New("refused")
	restore := OverrideSQLOpen(func(driver, dsn string) (*sql.DB, error) {
		if driver != defaultDriver {
			t.Fatalf("unexpected driver %q", driver)
		}
		return nil, boom
	})
	defer restore()

	if _, err := NewStore("", nil); !errors.Is(err, boom) {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestDefaultDSNApplied(t *testing.T) {
	var seen string
	restore := OverrideSQLOpen(func(driver, dsn string) (*sql.DB, error) {
		seen = dsn
		return nil, errors.New("stop here")
	})
	defer restore()

	_, _ = NewStore("", nil)
	if !strings.Contains(seen, "pantrycore") {
		t.Fatalf("default DSN not applied: %q", seen)
	}
}
