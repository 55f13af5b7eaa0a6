// Package sqlite persists the snapshot slot map to an embedded SQLite file.
// Every slot is one row in a single state table; after each mutating
// operation the full slot map is mirrored into the table.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"homestock/internal/infra/persistence/memory"
	"homestock/pkg/domain"
)

// Store is the SQLite-backed snapshot store. It embeds the in-memory store
// for the slot semantics and snapshots the slot map to disk after every
// successful operation.
type Store struct {
	*memory.Store
	db   *sql.DB
	path string
}

var _ domain.SnapshotStore = (*Store)(nil)

// NewStore opens (or creates) the database at path and hydrates the slot map
// from it. An empty path defaults to ./homestock.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "homestock.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		slot TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.hydrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) hydrate() error {
	rows, err := s.db.Query(`SELECT slot, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	slots := make(map[string][]byte)
	for rows.Next() {
		var slot string
		var payload []byte
		if err := rows.Scan(&slot, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		slots[slot] = payload
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	s.ImportSlots(slots)
	return nil
}

// persist mirrors the current slot map into the state table in one
// transaction. Deleting and reinserting keeps evicted backup slots from
// lingering on disk.
func (s *Store) persist() (retErr error) {
	slots := s.ExportSlots()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.Exec(`DELETE FROM state`); err != nil {
		retErr = fmt.Errorf("clear state: %w", err)
		return retErr
	}
	for slot, payload := range slots {
		if _, err := tx.Exec(`INSERT INTO state(slot,payload) VALUES(?,?)`, slot, payload); err != nil {
			retErr = fmt.Errorf("insert %s: %w", slot, err)
			return retErr
		}
	}
	return tx.Commit()
}

// Load delegates to the in-memory semantics and mirrors to disk, so a
// freshly written default snapshot is durable immediately.
func (s *Store) Load() (domain.Snapshot, error) {
	snap, err := s.Store.Load()
	if err != nil {
		return snap, err
	}
	return snap, s.persist()
}

// Save stamps and writes the canonical slot. The stamped snapshot is
// returned even when the disk write fails.
func (s *Store) Save(snap domain.Snapshot) (domain.Snapshot, error) {
	stamped, err := s.Store.Save(snap)
	if err != nil {
		return stamped, err
	}
	return stamped, s.persist()
}

// Backup records a ring entry and mirrors to disk. A failed disk write makes
// the backup a silent no-op.
func (s *Store) Backup() (string, error) {
	key, err := s.Store.Backup()
	if err != nil || key == "" {
		return "", err
	}
	if err := s.persist(); err != nil {
		return "", nil
	}
	return key, nil
}

// Restore replaces the canonical snapshot from a backup and mirrors to disk.
func (s *Store) Restore(key string) (domain.Snapshot, error) {
	snap, err := s.Store.Restore(key)
	if err != nil {
		return snap, err
	}
	return snap, s.persist()
}

// SetActor persists the actor slot.
func (s *Store) SetActor(name string) error {
	if err := s.Store.SetActor(name); err != nil {
		return err
	}
	return s.persist()
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
