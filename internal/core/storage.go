package core

import (
	"fmt"
	"os"

	"pantrycore/internal/infra/persistence/jsonfile"
	"pantrycore/internal/infra/persistence/memory"
	"pantrycore/internal/infra/persistence/postgres"
	"pantrycore/internal/infra/persistence/sqlite"
	"pantrycore/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageJSONFile StorageDriver = "jsonfile" // one JSON file per bucket
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

type (
	Transaction     = domain.Transaction
	TransactionView = domain.TransactionView
	PersistentStore = domain.PersistentStore
)

// OpenPersistentStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	PANTRYCORE_STORAGE_DRIVER: memory|jsonfile|sqlite|postgres (default sqlite)
//	PANTRYCORE_SQLITE_PATH: path to sqlite file (default ./pantrycore.db)
//	PANTRYCORE_DATA_DIR: bucket directory when driver=jsonfile (default ./data)
//	PANTRYCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore(engine *RulesEngine) (PersistentStore, error) {
	driver := os.Getenv("PANTRYCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageJSONFile:
		dir := os.Getenv("PANTRYCORE_DATA_DIR")
		return jsonfile.NewStore(dir, engine)
	case StorageSQLite:
		path := os.Getenv("PANTRYCORE_SQLITE_PATH")
		return sqlite.NewStore(path, engine)
	case StoragePostgres:
		dsn := os.Getenv("PANTRYCORE_POSTGRES_DSN")
		return postgres.NewStore(dsn, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// NewMemoryStore returns an in-memory store guarded by the supplied rules
// engine. Callers outside this package use these constructors instead of
// importing the infra packages directly.
func NewMemoryStore(engine *RulesEngine) PersistentStore {
	return memory.NewStore(engine)
}

// NewSQLiteStore returns a sqlite-backed store at path.
func NewSQLiteStore(path string, engine *RulesEngine) (PersistentStore, error) {
	return sqlite.NewStore(path, engine)
}

// NewJSONFileStore returns a store persisting one JSON file per bucket under dir.
func NewJSONFileStore(dir string, engine *RulesEngine) (PersistentStore, error) {
	return jsonfile.NewStore(dir, engine)
}

// NewPostgresStore returns a PostgreSQL-backed store for the supplied DSN.
func NewPostgresStore(dsn string, engine *RulesEngine) (PersistentStore, error) {
	return postgres.NewStore(dsn, engine)
}
