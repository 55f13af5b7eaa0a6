package core

import (
	"fmt"
	"os"

	"homestock/internal/infra/persistence/memory"
	"homestock/internal/infra/persistence/postgres"
	"homestock/internal/infra/persistence/sqlite"

	"homestock/pkg/domain"
)

// StorageDriver identifies a concrete snapshot store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenSnapshotStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	HOMESTOCK_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	HOMESTOCK_SQLITE_PATH: path to sqlite file (default ./homestock.db)
//	HOMESTOCK_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenSnapshotStore() (domain.SnapshotStore, error) {
	driver := os.Getenv("HOMESTOCK_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		path := os.Getenv("HOMESTOCK_SQLITE_PATH")
		return sqlite.NewStore(path)
	case StoragePostgres:
		dsn := os.Getenv("HOMESTOCK_POSTGRES_DSN")
		return postgres.NewStore(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
