// Package memory provides the in-memory snapshot store. It is the reference
// implementation of the persistence semantics; the file-backed drivers embed
// it and add durability around the same slot map.
package memory

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"homestock/pkg/domain"
)

// Store keeps the canonical snapshot, the actor label, and the backup ring
// as an in-process slot map. The zero state has nothing persisted.
type Store struct {
	mu        sync.Mutex
	nowFn     func() time.Time
	canonical []byte // nil until first save
	actor     string
	ring      *domain.BackupRing
}

var _ domain.SnapshotStore = (*Store)(nil)

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		nowFn: time.Now,
		ring:  domain.NewBackupRing(domain.BackupRingCapacity),
	}
}

// Load returns the persisted canonical snapshot. An absent or undecodable
// slot is replaced with a persisted default; Load never returns an unusable
// state.
func (s *Store) Load() (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (domain.Snapshot, error) {
	if s.canonical != nil {
		if snap, err := domain.ParseSnapshot(s.canonical); err == nil {
			return snap, nil
		}
	}
	snap := domain.DefaultSnapshot(domain.FormatISO(s.nowFn()))
	data, err := json.Marshal(snap)
	if err != nil {
		return snap, fmt.Errorf("encode default snapshot: %w", err)
	}
	s.canonical = data
	return snap, nil
}

// Save stamps updatedAt (and updatedBy when an actor is set) and writes the
// canonical slot. In-memory writes cannot fail.
func (s *Store) Save(snap domain.Snapshot) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(snap)
}

func (s *Store) saveLocked(snap domain.Snapshot) (domain.Snapshot, error) {
	stamped := snap.Clone()
	stamped.UpdatedAt = domain.FormatISO(s.nowFn())
	if s.actor != "" {
		stamped.UpdatedBy = s.actor
	}
	data, err := json.Marshal(stamped)
	if err != nil {
		return stamped, fmt.Errorf("encode snapshot: %w", err)
	}
	s.canonical = data
	return stamped, nil
}

// Backup copies the persisted canonical slot into a new time-keyed ring
// entry. When nothing is persisted yet it is a silent no-op.
func (s *Store) Backup() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backupLocked(), nil
}

func (s *Store) backupLocked() string {
	if s.canonical == nil {
		return ""
	}
	// Two backups within the same millisecond would share a key; bump until
	// the slot is free so neither overwrites the other.
	ms := s.nowFn().UnixMilli()
	key := domain.BackupKeyPrefix + strconv.FormatInt(ms, 10)
	for {
		if _, exists := s.ring.Get(key); !exists {
			break
		}
		ms++
		key = domain.BackupKeyPrefix + strconv.FormatInt(ms, 10)
	}
	s.ring.Add(key, s.canonical)
	return key
}

// ListBackups returns the retained backups, newest first.
func (s *Store) ListBackups() ([]domain.BackupInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := s.ring.Keys()
	infos := make([]domain.BackupInfo, 0, len(keys))
	for _, key := range keys {
		infos = append(infos, domain.BackupInfo{Key: key, CreatedAt: backupCreatedAt(key)})
	}
	return infos, nil
}

func backupCreatedAt(key string) string {
	ms, err := strconv.ParseInt(strings.TrimPrefix(key, domain.BackupKeyPrefix), 10, 64)
	if err != nil {
		return ""
	}
	return domain.ISOFromUnixMilli(ms)
}

// Restore replaces the canonical snapshot with the backup under key, taking
// a safety backup of the outgoing state first. A missing or undecodable
// backup fails without mutating anything.
func (s *Store) Restore(key string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.ring.Get(key)
	if !ok {
		return domain.Snapshot{}, domain.ErrBackupNotFound
	}
	snap, err := domain.ParseSnapshot(payload)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode backup %s: %w", key, err)
	}
	s.backupLocked()
	return s.saveLocked(snap)
}

// SetActor persists the device-local actor label. Empty clears it.
func (s *Store) SetActor(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actor = name
	return nil
}

// Actor returns the persisted actor label.
func (s *Store) Actor() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actor
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// ExportSlots returns a copy of the slot map in its serialized form. The
// durable drivers use it to mirror state into their backing table.
func (s *Store) ExportSlots() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]byte)
	if s.canonical != nil {
		out[domain.CanonicalSlot] = append([]byte(nil), s.canonical...)
	}
	if s.actor != "" {
		out[domain.ActorSlot] = []byte(s.actor)
	}
	for _, e := range s.ring.Entries() {
		out[e.Key] = e.Payload
	}
	return out
}

// ImportSlots hydrates the store from a serialized slot map, replacing all
// current state. Unknown slots are ignored.
func (s *Store) ImportSlots(slots map[string][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canonical = nil
	s.actor = ""
	s.ring = domain.NewBackupRing(domain.BackupRingCapacity)
	for key, payload := range slots {
		switch {
		case key == domain.CanonicalSlot:
			s.canonical = append([]byte(nil), payload...)
		case key == domain.ActorSlot:
			s.actor = string(payload)
		case strings.HasPrefix(key, domain.BackupKeyPrefix):
			s.ring.Add(key, payload)
		}
	}
}
