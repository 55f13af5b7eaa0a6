package core

import (
	"path/filepath"
	"testing"

	"homestock/internal/infra/persistence/memory"
	"homestock/internal/infra/persistence/sqlite"
)

func TestOpenSnapshotStoreMemory(t *testing.T) {
	t.Setenv("HOMESTOCK_STORAGE_DRIVER", "memory")
	store, err := OpenSnapshotStore()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("store type = %T, want *memory.Store", store)
	}
}

func TestOpenSnapshotStoreSQLiteDefault(t *testing.T) {
	t.Setenv("HOMESTOCK_STORAGE_DRIVER", "")
	t.Setenv("HOMESTOCK_SQLITE_PATH", filepath.Join(t.TempDir(), "homestock.db"))
	store, err := OpenSnapshotStore()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	if _, ok := store.(*sqlite.Store); !ok {
		t.Fatalf("store type = %T, want *sqlite.Store", store)
	}
}

func TestOpenSnapshotStoreUnknownDriver(t *testing.T) {
	t.Setenv("HOMESTOCK_STORAGE_DRIVER", "etcd")
	if _, err := OpenSnapshotStore(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
