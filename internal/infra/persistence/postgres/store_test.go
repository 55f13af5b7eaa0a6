package postgres

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite" // stand-in database for the state table in tests

	"homestock/pkg/domain"
)

// openTestStore routes the postgres store onto an embedded sqlite file. The
// store only uses a single state table with positional parameters, which
// sqlite executes identically.
func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return sql.Open("sqlite", path)
	})
	t.Cleanup(restore)
	s, err := NewStore("unused-dsn")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndHydrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s := openTestStore(t, path)

	if err := s.SetActor("mika"); err != nil {
		t.Fatalf("set actor: %v", err)
	}
	snap := domain.DefaultSnapshot("now")
	snap.StockItems = append(snap.StockItems, domain.StockItem{ID: "a", Name: "Rice", Status: domain.StockLow})
	if _, err := s.Save(snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.Backup(); err != nil {
		t.Fatalf("backup: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openTestStore(t, path)
	loaded, err := reopened.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.StockItems) != 1 || loaded.StockItems[0].Name != "Rice" {
		t.Fatalf("hydrated state: %+v", loaded.StockItems)
	}
	if loaded.UpdatedBy != "mika" || reopened.Actor() != "mika" {
		t.Fatalf("actor not hydrated: %q / %q", loaded.UpdatedBy, reopened.Actor())
	}
	infos, err := reopened.ListBackups()
	if err != nil || len(infos) != 1 {
		t.Fatalf("backups: %v err=%v", infos, err)
	}
}

func TestRestoreMirrorsToDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s := openTestStore(t, path)
	first := domain.DefaultSnapshot("now")
	if _, err := s.Save(first); err != nil {
		t.Fatalf("save: %v", err)
	}
	key, err := s.Backup()
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	second := first.Clone()
	second.ShoppingItems = append(second.ShoppingItems, domain.ShoppingItem{ID: "1", Name: "Milk"})
	if _, err := s.Save(second); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.Restore(key); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openTestStore(t, path)
	loaded, err := reopened.Load()
	if err != nil || len(loaded.ShoppingItems) != 0 {
		t.Fatalf("restore not durable: %+v err=%v", loaded.ShoppingItems, err)
	}
}

func TestNewStoreOpenFailure(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, errors.New("connection refused")
	})
	defer restore()
	if _, err := NewStore(""); err == nil {
		t.Fatal("expected open error")
	}
}
