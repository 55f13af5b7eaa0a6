// Package postgres provides a Postgres-backed snapshot store that mirrors the
// in-memory slot semantics into a single state table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"homestock/internal/infra/persistence/memory"
	"homestock/pkg/domain"
)

var _ domain.SnapshotStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/homestock?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store persists the slot map to Postgres while reusing the in-memory
// implementation for the slot semantics.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back
// to defaultDSN), ensures the state table exists, and hydrates the slot map
// from any existing rows.
func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		slot TEXT PRIMARY KEY,
		payload BYTEA NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("ensure state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db}
	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) hydrate(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT slot, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	slots := make(map[string][]byte)
	for rows.Next() {
		var slot string
		var payload []byte
		if err := rows.Scan(&slot, &payload); err != nil {
			return fmt.Errorf("scan state: %w", err)
		}
		slots[slot] = payload
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	s.ImportSlots(slots)
	return nil
}

func (s *Store) persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots := s.ExportSlots()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM state`); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	for slot, payload := range slots {
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(slot,payload) VALUES($1,$2)`, slot, payload); err != nil {
			return fmt.Errorf("insert %s: %w", slot, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Load delegates to the in-memory semantics and mirrors to Postgres.
func (s *Store) Load() (domain.Snapshot, error) {
	snap, err := s.Store.Load()
	if err != nil {
		return snap, err
	}
	return snap, s.persist(context.Background())
}

// Save stamps and writes the canonical slot. The stamped snapshot is
// returned even when the database write fails.
func (s *Store) Save(snap domain.Snapshot) (domain.Snapshot, error) {
	stamped, err := s.Store.Save(snap)
	if err != nil {
		return stamped, err
	}
	return stamped, s.persist(context.Background())
}

// Backup records a ring entry and mirrors to Postgres. A failed database
// write makes the backup a silent no-op.
func (s *Store) Backup() (string, error) {
	key, err := s.Store.Backup()
	if err != nil || key == "" {
		return "", err
	}
	if err := s.persist(context.Background()); err != nil {
		return "", nil
	}
	return key, nil
}

// Restore replaces the canonical snapshot from a backup and mirrors to
// Postgres.
func (s *Store) Restore(key string) (domain.Snapshot, error) {
	snap, err := s.Store.Restore(key)
	if err != nil {
		return snap, err
	}
	return snap, s.persist(context.Background())
}

// SetActor persists the actor slot.
func (s *Store) SetActor(name string) error {
	if err := s.Store.SetActor(name); err != nil {
		return err
	}
	return s.persist(context.Background())
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore
// function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	prev := sqlOpen
	sqlOpen = fn
	openMu.Unlock()
	return func() {
		openMu.Lock()
		sqlOpen = prev
		openMu.Unlock()
	}
}
