package domain

import "errors"

// Persistence slot keys. The durable store is a flat key-value space: one
// canonical snapshot slot, one actor-name slot, and time-keyed backup slots.
const (
	// CanonicalSlot holds the serialized canonical snapshot.
	CanonicalSlot = "home-stock-data"
	// ActorSlot holds the device-local actor label, persisted beside the
	// snapshot and applied to updatedBy at save time.
	ActorSlot = "home-stock-username"
	// BackupKeyPrefix prefixes backup slot keys; the suffix is the backup's
	// creation time in epoch milliseconds.
	BackupKeyPrefix = "home-stock-backup-"
	// BackupRingCapacity bounds the number of retained backups.
	BackupRingCapacity = 10
)

// ErrBackupNotFound is returned by Restore when no backup exists under the
// requested key.
var ErrBackupNotFound = errors.New("backup not found")

// BackupInfo describes one retained backup.
type BackupInfo struct {
	// Key is the slot key the backup is stored under.
	Key string
	// CreatedAt is the backup's creation time as an ISO timestamp, derived
	// from the key.
	CreatedAt string
}

// SnapshotStore is the durable persistence boundary for the canonical
// snapshot and its backup ring. Implementations are synchronous and
// local-storage speed; there is exactly one canonical snapshot per store.
type SnapshotStore interface {
	// Load reads the canonical snapshot. If the slot is absent, corrupt, or
	// structurally invalid it persists and returns a fresh default snapshot;
	// Load never returns an unusable state.
	Load() (Snapshot, error)

	// Save stamps updatedAt (and updatedBy when an actor is set), serializes
	// the snapshot, and writes the canonical slot. The stamped snapshot is
	// returned even when the write fails: in-memory state remains usable,
	// only durability is lost for that write.
	Save(s Snapshot) (Snapshot, error)

	// Backup copies the currently persisted canonical slot into a new ring
	// entry and trims the ring. It returns the new backup key, or "" when
	// nothing is persisted yet or the write fails (a silent no-op).
	Backup() (string, error)

	// ListBackups returns the retained backups, newest first.
	ListBackups() ([]BackupInfo, error)

	// Restore loads the backup under key. A missing or invalid backup fails
	// without mutating canonical state. On success a safety backup of the
	// outgoing canonical state is taken first, then the backup contents are
	// saved as the new canonical snapshot and returned.
	Restore(key string) (Snapshot, error)

	// SetActor persists the device-local actor label. An empty label clears
	// it; updatedBy then keeps its last stamped value on save.
	SetActor(name string) error

	// Actor returns the persisted actor label, if any.
	Actor() string

	// Close releases any underlying resources.
	Close() error
}
